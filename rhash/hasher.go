package rhash

import "fmt"

// Hasher accumulates a framed descriptor delivered in pieces. It implements
// io.Writer. A Hasher is not safe for concurrent use.
type Hasher struct {
	f   Fingerprinter
	buf []byte
	err error
}

// NewHasher returns a Hasher that fingerprints with f.
func NewHasher(f Fingerprinter) *Hasher {
	return &Hasher{f: f}
}

// Write appends p. Once the accumulated input exceeds MaxInputLen every
// further Write, and Sum, fails.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.err != nil {
		return 0, h.err
	}
	if len(h.buf)+len(p) > MaxInputLen {
		h.err = newError(KindMalformedInput, "RH-FRAME-005", fmt.Sprintf("framed descriptor exceeds %d bytes", MaxInputLen))
		h.scrub()
		return 0, h.err
	}
	h.buf = append(h.buf, p...)
	return len(p), nil
}

// Sum fingerprints everything written since the last Reset and then resets
// the Hasher.
func (h *Hasher) Sum() (Fingerprint, error) {
	defer h.Reset()
	if h.err != nil {
		return Fingerprint{}, h.err
	}
	return h.f.Compute(h.buf)
}

// Reset discards the accumulated input.
func (h *Hasher) Reset() {
	h.scrub()
	h.err = nil
}

func (h *Hasher) scrub() {
	clear(h.buf)
	h.buf = h.buf[:0]
}
