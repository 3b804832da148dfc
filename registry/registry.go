// Package registry keeps canonical descriptor records in a content-addressable
// store so that a fingerprint can be resolved back to the descriptor it names.
//
// A record is the assembled canonical descriptor (rhash.Assemble). Because the
// fingerprint is the digest of that record, the CID a store assigns to it is
// the fingerprint wrapped in a raw CIDv1: no index is needed.
package registry

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
)

var (
	// ErrNoStore is returned when the Registry has no CAS.
	ErrNoStore = errors.New("registry: no store configured")
	// ErrNotCanonical is returned when a stored record does not hold a
	// canonical descriptor.
	ErrNotCanonical = errors.New("registry: record is not canonical")
)

// Registry stores and resolves descriptors. The CAS must address objects with
// the same algorithm as Fingerprinter.
type Registry struct {
	CAS           storage.CAS
	Fingerprinter rhash.Fingerprinter
}

// Register fingerprints a framed descriptor and stores its canonical record.
func (r *Registry) Register(framed []byte) (rhash.Fingerprint, cid.Cid, error) {
	d, err := rhash.Split(framed)
	if err != nil {
		return rhash.Fingerprint{}, cid.Undef, err
	}
	return r.RegisterDescriptor(d)
}

// RegisterDescriptor is Register for an unframed descriptor.
func (r *Registry) RegisterDescriptor(d rhash.Descriptor) (rhash.Fingerprint, cid.Cid, error) {
	if r.CAS == nil {
		return rhash.Fingerprint{}, cid.Undef, ErrNoStore
	}
	fp, err := r.Fingerprinter.ComputeDescriptor(d)
	if err != nil {
		return rhash.Fingerprint{}, cid.Undef, err
	}
	canon, err := rhash.Canonicalize(d)
	if err != nil {
		return rhash.Fingerprint{}, cid.Undef, err
	}
	want, err := fp.CIDFor(r.Fingerprinter.Algorithm)
	if err != nil {
		return rhash.Fingerprint{}, cid.Undef, err
	}
	id, err := r.CAS.Put(rhash.Assemble(canon))
	if err != nil {
		return rhash.Fingerprint{}, cid.Undef, fmt.Errorf("registry: store record: %w", err)
	}
	if id != want {
		return rhash.Fingerprint{}, cid.Undef, fmt.Errorf("registry: store addressed record as %s, fingerprint names %s: %w", id, want, storage.ErrCIDMismatch)
	}
	return fp, id, nil
}

// Resolve returns the canonical descriptor fingerprinted as fp.
func (r *Registry) Resolve(fp rhash.Fingerprint) (rhash.Descriptor, error) {
	id, err := fp.CIDFor(r.Fingerprinter.Algorithm)
	if err != nil {
		return rhash.Descriptor{}, err
	}
	return r.ResolveCID(id)
}

// ResolveCID returns the canonical descriptor stored under id.
func (r *Registry) ResolveCID(id cid.Cid) (rhash.Descriptor, error) {
	record, err := r.Record(id)
	if err != nil {
		return rhash.Descriptor{}, err
	}
	d, err := rhash.ParseAssembled(record)
	if err != nil {
		return rhash.Descriptor{}, err
	}
	canon, err := rhash.Canonicalize(d)
	if err != nil {
		return rhash.Descriptor{}, fmt.Errorf("%w: %v", ErrNotCanonical, err)
	}
	if !bytes.Equal(canon.Reference, d.Reference) || !bytes.Equal(canon.ContentType, d.ContentType) {
		return rhash.Descriptor{}, ErrNotCanonical
	}
	return d, nil
}

// Record returns the raw assembled record stored under id.
func (r *Registry) Record(id cid.Cid) ([]byte, error) {
	if r.CAS == nil {
		return nil, ErrNoStore
	}
	return r.CAS.Get(id)
}

// Has reports whether a record for fp is stored.
func (r *Registry) Has(fp rhash.Fingerprint) bool {
	if r.CAS == nil {
		return false
	}
	id, err := fp.CIDFor(r.Fingerprinter.Algorithm)
	if err != nil {
		return false
	}
	return r.CAS.Has(id)
}

// List returns the fingerprints of the stored records that were produced by
// the registry's algorithm. The store must implement storage.Lister.
func (r *Registry) List() ([]rhash.Fingerprint, error) {
	if r.CAS == nil {
		return nil, ErrNoStore
	}
	l, ok := r.CAS.(storage.Lister)
	if !ok {
		return nil, errors.New("registry: store cannot list")
	}
	ids, err := l.List()
	if err != nil {
		return nil, err
	}
	out := make([]rhash.Fingerprint, 0, len(ids))
	for _, id := range ids {
		fp, alg, err := rhash.FingerprintFromCID(id)
		if err != nil || alg != r.Fingerprinter.Algorithm {
			continue
		}
		out = append(out, fp)
	}
	return out, nil
}
