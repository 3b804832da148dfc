// Command rhash_vector_gen recomputes the expected outputs of the rhash
// conformance vectors.
//
// It reads a vector file, keeps each case's name and inputs, and rewrites
// the canonical forms, fingerprints and failure rules from the current
// implementation. Review the diff before committing the result.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"xdao.co/resumehash/rhash"
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

func main() {
	in := pflag.String("in", "testdata/conformance/rhash/vectors.json", "vector file to read")
	out := pflag.String("out", "", "output path (default: stdout)")
	pflag.Parse()

	b, err := os.ReadFile(*in)
	if err != nil {
		fatalf("read vectors: %v", err)
	}
	var vf vectorFile
	if err := json.Unmarshal(b, &vf); err != nil {
		fatalf("decode vectors: %v", err)
	}
	if err := regenerate(&vf); err != nil {
		fatalf("regenerate: %v", err)
	}
	enc, err := encode(vf)
	if err != nil {
		fatalf("encode vectors: %v", err)
	}
	if *out == "" {
		_, _ = os.Stdout.Write(enc)
		return
	}
	if err := os.WriteFile(*out, enc, 0o644); err != nil {
		fatalf("write vectors: %v", err)
	}
}

// regenerate fills in every expected field from the inputs.
func regenerate(vf *vectorFile) error {
	vf.Version = 1
	for i := range vf.Descriptors {
		v := &vf.Descriptors[i]
		d := rhash.Descriptor{Reference: []byte(v.Reference), ContentType: []byte(v.ContentType)}
		*v = descriptorVector{Name: v.Name, Reference: v.Reference, ContentType: v.ContentType}

		fp, err := rhash.ComputeDescriptor(d)
		if err != nil {
			if rhash.RuleID(err) == "" {
				return fmt.Errorf("%s: %w", v.Name, err)
			}
			v.ErrorKind = string(rhash.KindOf(err))
			v.RuleID = rhash.RuleID(err)
			continue
		}
		canon, err := rhash.Canonicalize(d)
		if err != nil {
			return fmt.Errorf("%s: canonicalize: %w", v.Name, err)
		}
		v.CanonicalReference = string(canon.Reference)
		v.CanonicalContentType = string(canon.ContentType)
		v.Fingerprint = fp.String()
	}
	for i := range vf.Texts {
		v := &vf.Texts[i]
		norm, err := rhash.NormalizeText([]byte(v.Text))
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		fp, err := rhash.HashText([]byte(v.Text))
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		v.Normalized = string(norm)
		v.Fingerprint = fp.String()
	}
	return nil
}

func encode(vf vectorFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(vf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
