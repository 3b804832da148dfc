package localfs

import (
	"errors"
	"os"
	"testing"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/storage"
	"xdao.co/resumehash/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	for _, alg := range []digest.Algorithm{digest.SHA256, digest.SHA3_256, digest.BLAKE3_256} {
		t.Run(alg.String(), func(t *testing.T) {
			testkit.RunCASConformance(t, alg, func(t *testing.T) storage.CAS {
				t.Helper()
				cas, err := New(t.TempDir(), WithAlgorithm(alg))
				if err != nil {
					t.Fatalf("New failed: %v", err)
				}
				return cas
			})
		})
	}
}

func TestLocalFS_RequiresRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	cas, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original")
	id, err := cas.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored object out-of-band.
	path := cas.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := cas.Get(id); !errors.Is(err, storage.ErrCIDMismatch) {
		t.Fatalf("Get mismatch: got %v want %v", err, storage.ErrCIDMismatch)
	}

	// Put must not repair or overwrite the corrupted object.
	if _, err := cas.Put(orig); !errors.Is(err, storage.ErrImmutable) {
		t.Fatalf("Put after corruption: got %v want %v", err, storage.ErrImmutable)
	}

	wantID, err := storage.Address(digest.SHA256, orig)
	if err != nil {
		t.Fatalf("Address failed: %v", err)
	}
	if id != wantID {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}

func TestLocalFS_ReadsOtherAlgorithms(t *testing.T) {
	dir := t.TempDir()
	sha3Store, err := New(dir, WithAlgorithm(digest.SHA3_256))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	id, err := sha3Store.Put([]byte("record"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	shaStore, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, err := shaStore.Get(id)
	if err != nil {
		t.Fatalf("Get through sha256 store: %v", err)
	}
	if string(got) != "record" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalFS_ListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	cas, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := cas.Put([]byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := os.WriteFile(dir+"/README", []byte("not an object"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	ids, err := cas.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("List returned %d objects, want 1", len(ids))
	}
}

func TestVerify(t *testing.T) {
	for _, alg := range []digest.Algorithm{digest.SHA256, digest.SHA3_256, digest.BLAKE3_256} {
		t.Run(alg.String(), func(t *testing.T) { testkit.RunVerifyChecks(t, alg) })
	}
}
