package testkit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/storage"
)

// NewCAS constructs a fresh, empty CAS instance for a test.
// The returned CAS MUST be isolated from other tests and MUST address new
// objects with the algorithm passed to RunCASConformance.
type NewCAS func(t *testing.T) storage.CAS

func RunCASConformance(t *testing.T, alg digest.Algorithm, newCAS NewCAS) {
	t.Helper()

	address := func(t *testing.T, b []byte) cid.Cid {
		t.Helper()
		id, err := storage.Address(alg, b)
		if err != nil {
			t.Fatalf("Address failed: %v", err)
		}
		return id
	}

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want := []byte("resumehash.descriptor.v1\x00\x00\x00\x00\x04/a/b")

		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if wantID := address(t, want); id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
		if err := storage.Verify(id, got); err != nil {
			t.Fatalf("Get returned bytes not matching requested CID: %v", err)
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")

		id1, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id := address(t, b)

		if cas.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		_, err := cas.Get(id)
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := cas.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !cas.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		if cas.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})

	t.Run("ListAfterPut", func(t *testing.T) {
		cas := newCAS(t)
		l, ok := cas.(storage.Lister)
		if !ok {
			t.Skip("store does not list")
		}
		ids, err := l.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != 0 {
			t.Fatalf("fresh store lists %d objects", len(ids))
		}

		want := map[cid.Cid]bool{}
		for _, b := range [][]byte{[]byte("one"), []byte("two"), []byte("three")} {
			id, err := cas.Put(b)
			if err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			want[id] = true
		}
		ids, err = l.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != len(want) {
			t.Fatalf("List returned %d objects, want %d", len(ids), len(want))
		}
		for _, id := range ids {
			if !want[id] {
				t.Fatalf("List returned unexpected CID %s", id)
			}
		}
	})
}

// RunVerifyChecks exercises storage.Verify on a CID/bytes pair produced by alg.
func RunVerifyChecks(t *testing.T, alg digest.Algorithm) {
	t.Helper()
	b := []byte("payload")
	id, err := storage.Address(alg, b)
	if err != nil {
		t.Fatalf("Address failed: %v", err)
	}
	if err := storage.Verify(id, b); err != nil {
		t.Fatalf("Verify(own bytes) = %v", err)
	}
	if err := storage.Verify(id, []byte("other")); !errors.Is(err, storage.ErrCIDMismatch) {
		t.Fatalf("Verify(other bytes) = %v, want ErrCIDMismatch", err)
	}
}
