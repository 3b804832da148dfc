package storage_test

import (
	"testing"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/storage"
	"xdao.co/resumehash/storage/localfs"
	"xdao.co/resumehash/storage/memory"
	"xdao.co/resumehash/storage/testkit"
)

func TestTiered_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, digest.SHA256, func(t *testing.T) storage.CAS {
		durable, err := localfs.New(t.TempDir())
		if err != nil {
			t.Fatalf("localfs.New: %v", err)
		}
		return storage.Tiered{Cache: memory.New(memory.WithCapacity(4)), Durable: durable}
	})
}

func TestTiered_FillsCacheOnDurableHit(t *testing.T) {
	durable, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	id, err := durable.Put([]byte("cold"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	cache := memory.New()
	tiered := storage.Tiered{Cache: cache, Durable: durable}
	if cache.Has(id) {
		t.Fatalf("cache should start cold")
	}
	if _, err := tiered.Get(id); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !cache.Has(id) {
		t.Fatalf("cache not filled after durable hit")
	}
}

func TestTiered_AlgorithmMismatch(t *testing.T) {
	durable, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	tiered := storage.Tiered{Cache: memory.New(memory.WithAlgorithm(digest.SHA3_256)), Durable: durable}
	if _, err := tiered.Put([]byte("x")); err != storage.ErrCIDMismatch {
		t.Fatalf("Put with mismatched tiers: %v, want ErrCIDMismatch", err)
	}
}

func TestTiered_RequiresDurable(t *testing.T) {
	if _, err := (storage.Tiered{Cache: memory.New()}).Put([]byte("x")); err == nil {
		t.Fatalf("expected error without durable store")
	}
}
