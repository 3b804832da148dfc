// Package cidutil addresses fingerprints and stored records as CIDv1 values
// with the "raw" multicodec.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash of data.
func CIDv1RawSHA256(data []byte) string {
	c, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return ""
	}
	return c.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// FromDigest wraps an already computed digest in a raw CIDv1. code is the
// multihash code of the function that produced sum.
func FromDigest(code uint64, sum []byte) (cid.Cid, error) {
	mh, err := multihash.Encode(sum, code)
	if err != nil {
		return cid.Undef, fmt.Errorf("cidutil: encode multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// Digest returns the multihash code and digest bytes carried by a raw CIDv1.
func Digest(c cid.Cid) (code uint64, sum []byte, err error) {
	if !c.Defined() {
		return 0, nil, fmt.Errorf("cidutil: undefined CID")
	}
	if c.Version() != 1 || c.Type() != cid.Raw {
		return 0, nil, fmt.Errorf("cidutil: %s is not a raw CIDv1", c)
	}
	dm, err := multihash.Decode(c.Hash())
	if err != nil {
		return 0, nil, fmt.Errorf("cidutil: decode multihash: %w", err)
	}
	return dm.Code, dm.Digest, nil
}

// Parse decodes a CID string and requires it to be a raw CIDv1.
func Parse(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("cidutil: %w", err)
	}
	if c.Version() != 1 || c.Type() != cid.Raw {
		return cid.Undef, fmt.Errorf("cidutil: %s is not a raw CIDv1", s)
	}
	return c, nil
}
