package storage

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/digest"
)

// CAS is a content-addressable store of canonical descriptor records.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - The CID of an object is the raw CIDv1 of its digest under the store's
//   algorithm (see Address). For SHA-256 stores the CID of an assembled
//   descriptor record carries the descriptor's fingerprint.
// - Get MUST verify the bytes against the requested CID and MUST return
//   ErrNotFound when the CID is absent.
type CAS interface {
	Put(b []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// Lister is implemented by stores that can enumerate their objects.
type Lister interface {
	List() ([]cid.Cid, error)
}

// Address returns the CID under which a store hashing with alg keeps b.
func Address(alg digest.Algorithm, b []byte) (cid.Cid, error) {
	code, err := alg.MultihashCode()
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	sum, err := digest.Sum(alg, b)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	return cidutil.FromDigest(code, sum[:])
}

// Verify checks that b is the object named by id. The hash function is taken
// from id's multihash.
func Verify(id cid.Cid, b []byte) error {
	code, want, err := cidutil.Digest(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCID, err)
	}
	alg, err := digest.AlgorithmForMultihash(code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	got, err := digest.Sum(alg, b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	if !bytes.Equal(got[:], want) {
		return ErrCIDMismatch
	}
	return nil
}
