package rhash

import (
	"bytes"
	"encoding/binary"
	"fmt"

	ct "xdao.co/resumehash/internal/ctbytes"
)

// AssemblyTag opens every assembled record. It separates descriptor
// fingerprints from any other use of the digest.
const AssemblyTag = "resumehash.descriptor.v1"

const assemblyHeaderLen = len(AssemblyTag) + 1

// Assemble returns the byte string that is digested for a canonical
// descriptor:
//
//	"resumehash.descriptor.v1" 0x00 u32be(len ref) ref u32be(len ct) ct
//
// The length prefixes keep ("ab", "c") and ("a", "bc") apart.
func Assemble(d Descriptor) []byte {
	out := make([]byte, 0, assemblyHeaderLen+8+len(d.Reference)+len(d.ContentType))
	out = append(out, AssemblyTag...)
	out = append(out, 0)
	out = binary.BigEndian.AppendUint32(out, uint32(len(d.Reference)))
	out = append(out, d.Reference...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(d.ContentType)))
	out = append(out, d.ContentType...)
	return out
}

// ParseAssembled reverses Assemble. The returned slices alias b. It does not
// check that the components are canonical.
func ParseAssembled(b []byte) (Descriptor, error) {
	if len(b) < assemblyHeaderLen || !bytes.Equal(b[:len(AssemblyTag)], []byte(AssemblyTag)) || b[len(AssemblyTag)] != 0 {
		return Descriptor{}, newError(KindMalformedInput, "RH-ASM-001", "record does not start with the descriptor tag")
	}
	rest := b[assemblyHeaderLen:]
	var parts [2][]byte
	for i := range parts {
		if len(rest) < 4 {
			return Descriptor{}, newError(KindMalformedInput, "RH-ASM-002", "record length prefix truncated")
		}
		n := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if uint64(n) > uint64(len(rest)) {
			return Descriptor{}, newError(KindMalformedInput, "RH-ASM-002", "record length overruns input")
		}
		parts[i], rest = rest[:n], rest[n:]
	}
	if len(rest) != 0 {
		return Descriptor{}, newError(KindMalformedInput, "RH-ASM-003", fmt.Sprintf("%d trailing bytes in record", len(rest)))
	}
	return Descriptor{Reference: parts[0], ContentType: parts[1]}, nil
}

// assembleFixed is Assemble for components held in fixed-capacity buffers:
// the canonical reference is ref[:refLen] and the canonical content-type is
// contentType[:ctLen]. The record is returned in buf[:n]; len(buf) depends
// only on len(ref) and len(contentType).
func assembleFixed(ref []byte, refLen int, contentType []byte, ctLen int) (buf []byte, n int) {
	total := assemblyHeaderLen + 4 + len(ref) + 4 + len(contentType)
	buf = make([]byte, total)
	keep := make([]byte, total)
	defer clear(keep)

	pos := copy(buf, AssemblyTag)
	pos++
	for i := 0; i < pos; i++ {
		keep[i] = 1
	}
	pos = putRegion(buf, keep, pos, ref, refLen)
	putRegion(buf, keep, pos, contentType, ctLen)

	n = ct.Compact(buf, keep)
	return buf, n
}

func putRegion(buf, keep []byte, pos int, region []byte, n int) int {
	buf[pos] = byte(n >> 24)
	buf[pos+1] = byte(n >> 16)
	buf[pos+2] = byte(n >> 8)
	buf[pos+3] = byte(n)
	for i := 0; i < 4; i++ {
		keep[pos+i] = 1
	}
	pos += 4
	for i, c := range region {
		buf[pos+i] = c
		keep[pos+i] = ct.LessInt(i, n)
	}
	return pos + len(region)
}
