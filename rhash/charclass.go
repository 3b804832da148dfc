package rhash

import ct "xdao.co/resumehash/internal/ctbytes"

// Byte classes. The plain functions serve the standard path; the ct* twins
// return 0/1 bits computed without branches or table lookups.

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func ctIsSpace(c byte) byte {
	return ct.Eq(c, ' ') | ct.Eq(c, '\t') | ct.Eq(c, '\n') | ct.Eq(c, '\r') | ct.Eq(c, '\f')
}

func isOWS(c byte) bool { return c == ' ' || c == '\t' }

func ctIsOWS(c byte) byte { return ct.Eq(c, ' ') | ct.Eq(c, '\t') }

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isSchemeChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.'
}

func ctIsSchemeChar(c byte) byte {
	return ct.IsAlpha(c) | ct.IsDigit(c) | ct.Eq(c, '+') | ct.Eq(c, '-') | ct.Eq(c, '.')
}

// isTchar reports an RFC 7230 token character.
func isTchar(c byte) bool {
	switch {
	case isAlpha(c), isDigit(c):
		return true
	case c == '!', '#' <= c && c <= '\'', c == '*', c == '+', c == '-', c == '.',
		c == '^', c == '_', c == '`', c == '|', c == '~':
		return true
	}
	return false
}

func ctIsTchar(c byte) byte {
	return ct.IsAlpha(c) | ct.IsDigit(c) |
		ct.Eq(c, '!') | ct.InRange(c, '#', '\'') | ct.Eq(c, '*') | ct.Eq(c, '+') |
		ct.Eq(c, '-') | ct.Eq(c, '.') | ct.Eq(c, '^') | ct.Eq(c, '_') |
		ct.Eq(c, '`') | ct.Eq(c, '|') | ct.Eq(c, '~')
}

// isQdtext reports a byte allowed unescaped inside a quoted-string.
func isQdtext(c byte) bool {
	return c == '\t' || c == ' ' || c == 0x21 || (0x23 <= c && c <= 0x5B) || (0x5D <= c && c <= 0x7E) || c >= 0x80
}

func ctIsQdtext(c byte) byte {
	return ct.Eq(c, '\t') | ct.Eq(c, ' ') | ct.Eq(c, 0x21) | ct.InRange(c, 0x23, 0x5B) |
		ct.InRange(c, 0x5D, 0x7E) | ct.InRange(c, 0x80, 0xFF)
}

// isQpair reports a byte allowed after a backslash inside a quoted-string.
func isQpair(c byte) bool {
	return c == '\t' || c == ' ' || (0x21 <= c && c <= 0x7E) || c >= 0x80
}

func ctIsQpair(c byte) byte {
	return ct.Eq(c, '\t') | ct.Eq(c, ' ') | ct.InRange(c, 0x21, 0x7E) | ct.InRange(c, 0x80, 0xFF)
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && isSpace(b[0]) {
		b = b[1:]
	}
	for len(b) > 0 && isSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}

// ctTrim returns the bounds [first, end) of the bytes in b[lo:hi] that are
// not whitespace. When there are none it returns (hi, hi).
func ctTrim(b []byte, lo, hi int) (int, int) {
	first, end := hi, hi
	var found byte
	for i := range b {
		in := ct.Not(ct.LessInt(i, lo)) & ct.LessInt(i, hi)
		hit := in & ct.Not(ctIsSpace(b[i]))
		first = ct.SelectInt(hit&ct.Not(found), i, first)
		end = ct.SelectInt(hit, i+1, end)
		found |= hit
	}
	return first, end
}

func lowerASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
