package rhash

import (
	"bytes"
	"fmt"
)

// NormalizeReference returns the canonical form of a reference.
//
// The rules, applied identically in both execution modes:
//
//   - Leading and trailing whitespace (SP, HT, LF, CR, FF) is removed. If what
//     remains is wrapped in one '<' ... '>' pair, the pair is removed and the
//     interior trimmed again.
//   - Any remaining byte <= 0x20, 0x7F, '<' or '>' is rejected (RH-REF-001),
//     as is a '%' not followed by two hex digits (RH-REF-002). Bytes >= 0x80
//     pass through verbatim.
//   - A leading scheme (ALPHA *(ALPHA / DIGIT / "+" / "-" / ".") ":") is
//     lowercased. When the scheme is followed by "//" the authority runs to
//     the next '/', '?' or '#'; its host part (after the first '@') is
//     lowercased.
//   - Before the first '?' or '#', '\' is treated as '/'. Within the path,
//     runs of '/' collapse to one and trailing slashes are dropped, except
//     that a path made only of slashes keeps one.
//   - Hex digits of percent escapes are uppercased.
//
// The input is never modified.
func NormalizeReference(ref []byte) ([]byte, error) {
	if len(ref) > MaxReferenceLen {
		return nil, newError(KindInvalidReference, "RH-REF-003", fmt.Sprintf("reference exceeds %d bytes", MaxReferenceLen))
	}
	if ConstantTime {
		buf, n, err := normalizeReferenceCT(ref)
		if err != nil {
			return nil, err
		}
		out := bytes.Clone(buf[:n])
		clear(buf)
		return out, nil
	}
	return normalizeReferenceStd(ref)
}

func normalizeReferenceStd(ref []byte) ([]byte, error) {
	b := trimSpace(ref)
	if len(b) >= 2 && b[0] == '<' && b[len(b)-1] == '>' {
		b = trimSpace(b[1 : len(b)-1])
	}

	for i, c := range b {
		if c <= 0x20 || c == 0x7F || c == '<' || c == '>' {
			return nil, newError(KindInvalidReference, "RH-REF-001", fmt.Sprintf("disallowed byte %#x at offset %d", c, i))
		}
		if c == '%' && (i+2 >= len(b) || !isHex(b[i+1]) || !isHex(b[i+2])) {
			return nil, newError(KindInvalidReference, "RH-REF-002", fmt.Sprintf("malformed percent escape at offset %d", i))
		}
	}

	se := schemeEnd(b)
	q := bytes.IndexAny(b, "?#")
	if q < 0 {
		q = len(b)
	}
	at := func(i int) byte {
		if i >= len(b) {
			return 0
		}
		if i < q && b[i] == '\\' {
			return '/'
		}
		return b[i]
	}

	hasAuth := se >= 0 && at(se+1) == '/' && at(se+2) == '/'
	authStart, authEnd, hostStart := 0, 0, 0
	if hasAuth {
		authStart = se + 3
		authEnd = authStart
		for authEnd < len(b) {
			c := at(authEnd)
			if c == '/' || c == '?' || c == '#' {
				break
			}
			authEnd++
		}
		hostStart = authStart
		if i := bytes.IndexByte(b[authStart:authEnd], '@'); i >= 0 {
			hostStart = authStart + i + 1
		}
	}

	pathStart := 0
	switch {
	case hasAuth:
		pathStart = authEnd
	case se >= 0:
		pathStart = se + 1
	}
	// Slashes at or past pathEnd are trailing.
	pathEnd := pathStart
	for i := pathStart; i < q; i++ {
		if at(i) != '/' {
			pathEnd = i + 1
		}
	}

	out := make([]byte, 0, len(b))
	for i := range b {
		c := at(i)
		if c == '/' && i > pathStart && i < q && (at(i-1) == '/' || i >= pathEnd) {
			continue
		}
		switch {
		case (i >= 1 && b[i-1] == '%') || (i >= 2 && b[i-2] == '%'):
			if 'a' <= c && c <= 'f' {
				c -= 'a' - 'A'
			}
		case i < se, hasAuth && i >= hostStart && i < authEnd:
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// schemeEnd returns the index of the ':' ending a leading scheme, or -1.
func schemeEnd(b []byte) int {
	if len(b) == 0 || !isAlpha(b[0]) {
		return -1
	}
	for i := 1; i < len(b); i++ {
		switch c := b[i]; {
		case c == ':':
			return i
		case isSchemeChar(c):
		default:
			return -1
		}
	}
	return -1
}
