//go:build rhash_ct

package rhash

// ConstantTime reports whether this build normalizes and hashes descriptors
// in constant time.
const ConstantTime = true
