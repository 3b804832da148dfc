package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// Tiered layers a cache over a durable store.
//
// Put writes the durable store first and then the cache, and requires both to
// report the same CID. Get reads the cache, falls back to the durable store,
// and fills the cache on a durable hit. Cache failures other than a miss are
// returned rather than masked.
type Tiered struct {
	Cache   CAS
	Durable CAS
}

var _ CAS = Tiered{}

func (t Tiered) Put(b []byte) (cid.Cid, error) {
	if t.Durable == nil {
		return cid.Undef, errors.New("storage: Tiered has no durable store")
	}
	id, err := t.Durable.Put(b)
	if err != nil {
		return cid.Undef, err
	}
	if t.Cache == nil {
		return id, nil
	}
	cached, err := t.Cache.Put(b)
	if err != nil {
		return cid.Undef, err
	}
	if cached != id {
		return cid.Undef, ErrCIDMismatch
	}
	return id, nil
}

func (t Tiered) Get(id cid.Cid) ([]byte, error) {
	if t.Cache != nil {
		b, err := t.Cache.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	if t.Durable == nil {
		return nil, ErrNotFound
	}
	b, err := t.Durable.Get(id)
	if err != nil {
		return nil, err
	}
	if t.Cache != nil {
		if _, err := t.Cache.Put(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (t Tiered) Has(id cid.Cid) bool {
	if t.Cache != nil && t.Cache.Has(id) {
		return true
	}
	return t.Durable != nil && t.Durable.Has(id)
}

// List enumerates the durable store when it supports listing.
func (t Tiered) List() ([]cid.Cid, error) {
	l, ok := t.Durable.(Lister)
	if !ok {
		return nil, errors.New("storage: durable store cannot list")
	}
	return l.List()
}
