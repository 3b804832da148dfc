package rhash

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type vectorFile struct {
	Version     int                `json:"version"`
	Descriptors []descriptorVector `json:"descriptors"`
	Texts       []textVector       `json:"texts"`
}

type descriptorVector struct {
	Name                 string `json:"name"`
	Reference            string `json:"reference"`
	ContentType          string `json:"content_type"`
	CanonicalReference   string `json:"canonical_reference,omitempty"`
	CanonicalContentType string `json:"canonical_content_type,omitempty"`
	Fingerprint          string `json:"fingerprint,omitempty"`
	ErrorKind            string `json:"error_kind,omitempty"`
	RuleID               string `json:"rule_id,omitempty"`
}

type textVector struct {
	Name        string `json:"name"`
	Text        string `json:"text"`
	Normalized  string `json:"normalized"`
	Fingerprint string `json:"fingerprint"`
}

func loadVectors(t *testing.T) vectorFile {
	t.Helper()
	path := filepath.Join("..", "testdata", "conformance", "rhash", "vectors.json")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read vectors: %v", err)
	}
	var vf vectorFile
	if err := json.Unmarshal(b, &vf); err != nil {
		t.Fatalf("decode vectors: %v", err)
	}
	if vf.Version != 1 || len(vf.Descriptors) == 0 {
		t.Fatalf("unexpected vector file: version %d, %d descriptors", vf.Version, len(vf.Descriptors))
	}
	return vf
}

func TestConformanceVectors_Descriptors(t *testing.T) {
	for _, v := range loadVectors(t).Descriptors {
		t.Run(v.Name, func(t *testing.T) {
			framed := mustFrame(t, v.Reference, v.ContentType)
			fp, err := Compute(framed)

			if v.ErrorKind != "" {
				if err == nil {
					t.Fatalf("expected %s, got fingerprint %s", v.ErrorKind, fp)
				}
				if string(KindOf(err)) != v.ErrorKind || RuleID(err) != v.RuleID {
					t.Fatalf("got %s/%s, want %s/%s", KindOf(err), RuleID(err), v.ErrorKind, v.RuleID)
				}
				var out [32]byte
				if HashOnce(framed, &out) != StatusFailed {
					t.Fatalf("HashOnce should fail")
				}
				return
			}

			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if fp.String() != v.Fingerprint {
				t.Fatalf("fingerprint %s, want %s", fp, v.Fingerprint)
			}
			canon, err := Canonicalize(Descriptor{Reference: []byte(v.Reference), ContentType: []byte(v.ContentType)})
			if err != nil {
				t.Fatalf("Canonicalize: %v", err)
			}
			if string(canon.Reference) != v.CanonicalReference || string(canon.ContentType) != v.CanonicalContentType {
				t.Fatalf("canonical %q %q, want %q %q", canon.Reference, canon.ContentType, v.CanonicalReference, v.CanonicalContentType)
			}
		})
	}
}

func TestConformanceVectors_Texts(t *testing.T) {
	for _, v := range loadVectors(t).Texts {
		t.Run(v.Name, func(t *testing.T) {
			norm, err := NormalizeText([]byte(v.Text))
			if err != nil {
				t.Fatalf("NormalizeText: %v", err)
			}
			if string(norm) != v.Normalized {
				t.Fatalf("normalized %q, want %q", norm, v.Normalized)
			}
			fp, err := HashText([]byte(v.Text))
			if err != nil {
				t.Fatalf("HashText: %v", err)
			}
			if fp.String() != v.Fingerprint {
				t.Fatalf("fingerprint %s, want %s", fp, v.Fingerprint)
			}
		})
	}
}
