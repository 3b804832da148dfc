//go:build !rhash_ct

package rhash

// ConstantTime reports whether this build normalizes and hashes descriptors
// in constant time. Build with -tags rhash_ct to enable it.
const ConstantTime = false
