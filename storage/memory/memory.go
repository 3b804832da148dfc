package memory

import (
	"bytes"
	"sort"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/storage"
)

// CAS is an in-process content-addressable store. With a capacity set it
// evicts the oldest object first, which makes it suitable as the cache tier
// of storage.Tiered.
type CAS struct {
	alg digest.Algorithm
	max int

	mu      sync.RWMutex
	objects map[cid.Cid][]byte
	order   []cid.Cid
}

var (
	_ storage.CAS    = (*CAS)(nil)
	_ storage.Lister = (*CAS)(nil)
)

// Option configures a CAS.
type Option func(*CAS)

// WithAlgorithm selects the hash used to address objects.
func WithAlgorithm(alg digest.Algorithm) Option {
	return func(c *CAS) { c.alg = alg }
}

// WithCapacity bounds the number of objects held. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(c *CAS) { c.max = n }
}

func New(opts ...Option) *CAS {
	c := &CAS{objects: map[cid.Cid][]byte{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	id, err := storage.Address(c.alg, b)
	if err != nil {
		return cid.Undef, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.objects[id]; ok {
		if !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	if c.max > 0 && len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.objects, oldest)
	}
	c.objects[id] = bytes.Clone(b)
	c.order = append(c.order, id)
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	c.mu.RLock()
	b, ok := c.objects[id]
	c.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	if err := storage.Verify(id, b); err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.objects[id]
	return ok
}

// Len reports the number of objects held.
func (c *CAS) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

func (c *CAS) List() ([]cid.Cid, error) {
	c.mu.RLock()
	ids := append([]cid.Cid(nil), c.order...)
	c.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}
