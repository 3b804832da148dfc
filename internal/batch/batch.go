// Package batch fingerprints a stream of descriptors.
//
// Input is a CBOR sequence (RFC 8742) of Item maps. CBOR byte strings carry
// references and content-types exactly, including bytes that are not valid
// UTF-8. Output is a CBOR sequence of Result maps in input order.
package batch

import (
	"errors"
	"fmt"
	"io"

	"xdao.co/resumehash/internal/codec"
	"xdao.co/resumehash/rhash"
)

// Item is one descriptor to fingerprint.
type Item struct {
	Reference   []byte `cbor:"ref"`
	ContentType []byte `cbor:"content_type"`
}

// Result is the outcome for the Item at the same position. Exactly one of
// Fingerprint and RuleID is set.
type Result struct {
	Fingerprint []byte `cbor:"fingerprint,omitempty"`
	Kind        string `cbor:"kind,omitempty"`
	RuleID      string `cbor:"rule_id,omitempty"`
}

// Stats summarizes a run.
type Stats struct {
	Items  int
	Failed int
}

// Run reads items from r until EOF and writes one result per item to w.
// Descriptor failures are reported in the results; only I/O and decoding
// failures stop the run.
func Run(f rhash.Fingerprinter, r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats
	dec := codec.NewDecoder(r)
	enc := codec.NewEncoder(w)
	for {
		var it Item
		if err := dec.Decode(&it); err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, fmt.Errorf("batch: item %d: %w", stats.Items, err)
		}
		stats.Items++

		var res Result
		fp, err := f.ComputeDescriptor(rhash.Descriptor{Reference: it.Reference, ContentType: it.ContentType})
		if err != nil {
			var re *rhash.Error
			if !errors.As(err, &re) {
				return stats, err
			}
			stats.Failed++
			res = Result{Kind: string(re.Kind), RuleID: re.RuleID}
		} else {
			res = Result{Fingerprint: fp[:]}
		}
		if err := enc.Encode(res); err != nil {
			return stats, fmt.Errorf("batch: write result %d: %w", stats.Items-1, err)
		}
	}
}
