// Package digest is the 256-bit digest engine behind descriptor fingerprints.
//
// SHA-256 is the fingerprint algorithm. SHA3-256 and BLAKE3-256 are available
// for callers that need a different primitive; every algorithm here produces
// exactly Size bytes.
package digest

import (
	"fmt"
	"hash"

	sha256simd "github.com/minio/sha256-simd"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Size is the length in bytes of every digest produced by this package.
const Size = 32

// Algorithm names a digest primitive. The zero value is SHA256.
type Algorithm uint8

const (
	SHA256 Algorithm = iota
	SHA3_256
	BLAKE3_256
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA3_256:
		return "sha3-256"
	case BLAKE3_256:
		return "blake3"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a name accepted by String back to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "sha256", "sha2-256", "":
		return SHA256, nil
	case "sha3-256":
		return SHA3_256, nil
	case "blake3", "blake3-256":
		return BLAKE3_256, nil
	default:
		return 0, fmt.Errorf("digest: unsupported algorithm %q", name)
	}
}

// MultihashCode returns the multicodec code for a.
func (a Algorithm) MultihashCode() (uint64, error) {
	switch a {
	case SHA256:
		return multihash.SHA2_256, nil
	case SHA3_256:
		return multihash.SHA3_256, nil
	case BLAKE3_256:
		return multihash.BLAKE3, nil
	default:
		return 0, fmt.Errorf("digest: no multihash code for %s", a)
	}
}

// AlgorithmForMultihash is the inverse of MultihashCode.
func AlgorithmForMultihash(code uint64) (Algorithm, error) {
	switch code {
	case multihash.SHA2_256:
		return SHA256, nil
	case multihash.SHA3_256:
		return SHA3_256, nil
	case multihash.BLAKE3:
		return BLAKE3_256, nil
	default:
		return 0, fmt.Errorf("digest: unsupported multihash code %#x", code)
	}
}

// New returns a streaming hash for a.
func New(a Algorithm) (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256simd.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case BLAKE3_256:
		return blake3.New(Size, nil), nil
	default:
		return nil, fmt.Errorf("digest: unsupported algorithm %s", a)
	}
}

// Sum returns the digest of data under a.
func Sum(a Algorithm, data []byte) ([Size]byte, error) {
	switch a {
	case SHA256:
		return sha256simd.Sum256(data), nil
	case SHA3_256:
		return sha3.Sum256(data), nil
	case BLAKE3_256:
		return blake3.Sum256(data), nil
	default:
		return [Size]byte{}, fmt.Errorf("digest: unsupported algorithm %s", a)
	}
}

// Sum256 is Sum(SHA256, data).
func Sum256(data []byte) [Size]byte {
	return sha256simd.Sum256(data)
}
