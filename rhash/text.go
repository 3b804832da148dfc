package rhash

import (
	"bytes"

	"xdao.co/resumehash/digest"
	ct "xdao.co/resumehash/internal/ctbytes"
)

// MaxTextLen bounds the input of NormalizeText and HashText.
const MaxTextLen = 1 << 20

// NormalizeText folds free text to a canonical ASCII form: HT, LF, CR and FF
// become spaces, other control bytes are dropped, bytes above 0x7E become
// '?', letters are lowercased, and runs of spaces collapse to one with none
// at either end.
func NormalizeText(text []byte) ([]byte, error) {
	if len(text) > MaxTextLen {
		return nil, newError(KindMalformedInput, "RH-TEXT-001", "text exceeds maximum length")
	}
	if ConstantTime {
		buf, n := normalizeTextCT(text)
		out := bytes.Clone(buf[:n])
		clear(buf)
		return out, nil
	}
	return normalizeTextStd(text), nil
}

// HashText returns the SHA-256 digest of NormalizeText(text).
func HashText(text []byte) (Fingerprint, error) {
	if len(text) > MaxTextLen {
		return Fingerprint{}, newError(KindMalformedInput, "RH-TEXT-001", "text exceeds maximum length")
	}
	if ConstantTime {
		buf, n := normalizeTextCT(text)
		defer clear(buf)
		return Fingerprint(digest.SumFixed(buf, n)), nil
	}
	norm := normalizeTextStd(text)
	defer clear(norm)
	return Fingerprint(digest.Sum256(norm)), nil
}

func normalizeTextStd(text []byte) []byte {
	out := make([]byte, 0, len(text))
	seen, lastSpace := false, false
	for _, c := range text {
		switch {
		case c == '\t' || c == '\n' || c == '\r' || c == '\f':
			c = ' '
		case c < 0x20:
			continue
		case c > 0x7E:
			c = '?'
		case 'A' <= c && c <= 'Z':
			c += 'a' - 'A'
		}
		if c == ' ' {
			if !seen || lastSpace {
				continue
			}
		} else {
			seen = true
		}
		out = append(out, c)
		lastSpace = c == ' '
	}
	if len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return out
}

func normalizeTextCT(text []byte) ([]byte, int) {
	size := len(text)
	buf := make([]byte, size)
	keep := make([]byte, size)
	defer clear(keep)

	var seen, lastSpace byte
	for i := 0; i < size; i++ {
		c := text[i]
		space := ct.Eq(c, ' ') | ct.Eq(c, '\t') | ct.Eq(c, '\n') | ct.Eq(c, '\r') | ct.Eq(c, '\f')
		drop := ct.Less(c, 0x20) & ct.Not(space)

		v := ct.Select(ct.Less(0x7E, c), '?', c)
		v = ct.ToLower(v)
		v = ct.Select(space, ' ', v)

		emitSpace := space & seen & ct.Not(lastSpace)
		emitChar := ct.Not(space) & ct.Not(drop)
		emit := emitSpace | emitChar

		lastSpace = ct.Select(emit, space, lastSpace)
		seen |= emitChar

		buf[i] = v
		keep[i] = emit
	}
	n := ct.Compact(buf, keep)
	trailing := ct.Eq(ct.Lookup(buf, n-1), ' ') & ct.Not(ct.EqInt(n, 0))
	n -= int(trailing)
	for i := 0; i < size; i++ {
		buf[i] &= ct.Mask(ct.LessInt(i, n))
	}
	return buf, n
}
