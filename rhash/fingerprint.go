package rhash

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/digest"
)

// Fingerprint is the 32-byte digest identifying a canonical descriptor.
type Fingerprint [digest.Size]byte

// String returns the lower-case hex encoding.
func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// Equal compares in constant time.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return subtle.ConstantTimeCompare(f[:], other[:]) == 1
}

// CID wraps f in a raw CIDv1 whose multihash names the SHA-256 function.
func (f Fingerprint) CID() cid.Cid {
	c, err := f.CIDFor(digest.SHA256)
	if err != nil {
		// SHA-256 always has a multihash code and a 32-byte digest.
		panic(err)
	}
	return c
}

// CIDFor wraps f in a raw CIDv1 for a fingerprint computed with alg.
func (f Fingerprint) CIDFor(alg digest.Algorithm) (cid.Cid, error) {
	code, err := alg.MultihashCode()
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.FromDigest(code, f[:])
}

// ParseFingerprint decodes 64 hex characters.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	if len(s) != 2*len(f) {
		return f, newError(KindMalformedInput, "RH-FP-001", fmt.Sprintf("fingerprint must be %d hex characters, got %d", 2*len(f), len(s)))
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return Fingerprint{}, wrapError(KindMalformedInput, "RH-FP-001", "fingerprint is not hex", err)
	}
	return f, nil
}

// FingerprintFromCID extracts the fingerprint carried by a raw CIDv1 and the
// algorithm that produced it.
func FingerprintFromCID(c cid.Cid) (Fingerprint, digest.Algorithm, error) {
	code, sum, err := cidutil.Digest(c)
	if err != nil {
		return Fingerprint{}, 0, wrapError(KindMalformedInput, "RH-FP-002", "CID does not carry a fingerprint", err)
	}
	alg, err := digest.AlgorithmForMultihash(code)
	if err != nil {
		return Fingerprint{}, 0, wrapError(KindMalformedInput, "RH-FP-002", "CID does not carry a fingerprint", err)
	}
	var f Fingerprint
	if len(sum) != len(f) {
		return Fingerprint{}, 0, newError(KindMalformedInput, "RH-FP-002", fmt.Sprintf("CID digest is %d bytes", len(sum)))
	}
	copy(f[:], sum)
	return f, alg, nil
}
