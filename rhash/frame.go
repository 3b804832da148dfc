package rhash

import (
	"encoding/binary"
	"fmt"
)

// FrameVersion is the first byte of every framed descriptor.
const FrameVersion = 0x01

const (
	// MaxReferenceLen bounds the raw reference component.
	MaxReferenceLen = 4096
	// MaxContentTypeLen bounds the raw content-type component.
	MaxContentTypeLen = 1024

	frameHeaderLen = 1 + 4 + 4

	// MaxInputLen bounds a whole framed descriptor.
	MaxInputLen = frameHeaderLen + MaxReferenceLen + MaxContentTypeLen
)

// Descriptor is a (reference, content-type) pair.
type Descriptor struct {
	Reference   []byte
	ContentType []byte
}

type frameRule struct {
	id    string
	apply func([]byte) error
}

func frameRulesV1() []frameRule {
	return []frameRule{
		{
			id: "RH-FRAME-001",
			apply: func(b []byte) error {
				if len(b) < frameHeaderLen {
					return newError(KindMalformedInput, "RH-FRAME-001", "framed descriptor shorter than header")
				}
				return nil
			},
		},
		{
			id: "RH-FRAME-002",
			apply: func(b []byte) error {
				if b[0] != FrameVersion {
					return newError(KindMalformedInput, "RH-FRAME-002", fmt.Sprintf("unsupported frame version %#x", b[0]))
				}
				return nil
			},
		},
		{
			id: "RH-FRAME-005",
			apply: func(b []byte) error {
				if len(b) > MaxInputLen {
					return newError(KindMalformedInput, "RH-FRAME-005", "framed descriptor exceeds maximum length")
				}
				return nil
			},
		},
	}
}

// Split parses a framed descriptor:
//
//	0x01 | u32be len(ref) | ref | u32be len(ct) | ct
//
// The input must be consumed exactly. The returned slices alias framed.
func Split(framed []byte) (Descriptor, error) {
	for _, r := range frameRulesV1() {
		if err := r.apply(framed); err != nil {
			return Descriptor{}, err
		}
	}

	rest := framed[1:]
	ref, rest, err := readComponent(rest, MaxReferenceLen, "reference")
	if err != nil {
		return Descriptor{}, err
	}
	ct, rest, err := readComponent(rest, MaxContentTypeLen, "content-type")
	if err != nil {
		return Descriptor{}, err
	}
	if len(rest) != 0 {
		return Descriptor{}, newError(KindMalformedInput, "RH-FRAME-004", fmt.Sprintf("%d trailing bytes after content-type", len(rest)))
	}
	return Descriptor{Reference: ref, ContentType: ct}, nil
}

func readComponent(b []byte, limit int, name string) (component, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, newError(KindMalformedInput, "RH-FRAME-003", name+" length prefix truncated")
	}
	n := binary.BigEndian.Uint32(b)
	b = b[4:]
	if uint64(n) > uint64(limit) {
		return nil, nil, newError(KindMalformedInput, "RH-FRAME-005", fmt.Sprintf("%s exceeds %d bytes", name, limit))
	}
	if uint64(n) > uint64(len(b)) {
		return nil, nil, newError(KindMalformedInput, "RH-FRAME-003", name+" length overruns input")
	}
	return b[:n], b[n:], nil
}

// Frame encodes a descriptor in the framed form accepted by Compute.
func Frame(ref, contentType []byte) ([]byte, error) {
	if len(ref) > MaxReferenceLen {
		return nil, newError(KindMalformedInput, "RH-FRAME-005", fmt.Sprintf("reference exceeds %d bytes", MaxReferenceLen))
	}
	if len(contentType) > MaxContentTypeLen {
		return nil, newError(KindMalformedInput, "RH-FRAME-005", fmt.Sprintf("content-type exceeds %d bytes", MaxContentTypeLen))
	}
	out := make([]byte, 0, frameHeaderLen+len(ref)+len(contentType))
	out = append(out, FrameVersion)
	out = binary.BigEndian.AppendUint32(out, uint32(len(ref)))
	out = append(out, ref...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(contentType)))
	out = append(out, contentType...)
	return out, nil
}

// Frame encodes d. See the package-level Frame.
func (d Descriptor) Frame() ([]byte, error) {
	return Frame(d.Reference, d.ContentType)
}
