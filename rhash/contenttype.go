package rhash

import (
	"bytes"
	"fmt"
	"slices"
)

// NormalizeContentType returns the canonical form of a media type.
//
// The accepted grammar is
//
//	type "/" subtype *( OWS ";" OWS [ name "=" value ] ) OWS
//
// where type, subtype and name are tokens, value is a token or a
// quoted-string, and OWS is SP / HT. Surrounding whitespace (SP, HT, CR, LF,
// FF) is removed first.
//
// Canonicalization lowercases type, subtype and parameter names, keeps
// parameter values as written, drops empty parameters, unquotes a
// quoted-string whose content is a non-empty token (otherwise it stays quoted
// with only '"' and '\' escaped), and sorts parameters by their serialized
// name=value bytes. The result contains no whitespace outside quoted values.
//
// Failures carry Kind InvalidContentType and one of the RuleIDs:
//
//	RH-CT-001  no '/' between type and subtype
//	RH-CT-002  empty type or subtype
//	RH-CT-003  unexpected byte
//	RH-CT-004  malformed parameter
//	RH-CT-005  malformed quoted-string
//	RH-CT-006  content-type too long
func NormalizeContentType(contentType []byte) ([]byte, error) {
	if len(contentType) > MaxContentTypeLen {
		return nil, newError(KindInvalidContentType, "RH-CT-006", fmt.Sprintf("content-type exceeds %d bytes", MaxContentTypeLen))
	}
	if ConstantTime {
		buf, n, err := normalizeContentTypeCT(contentType)
		if err != nil {
			return nil, err
		}
		out := bytes.Clone(buf[:n])
		clear(buf)
		return out, nil
	}
	return normalizeContentTypeStd(contentType)
}

func ctError(ruleID string, format string, args ...any) error {
	return newError(KindInvalidContentType, ruleID, fmt.Sprintf(format, args...))
}

func normalizeContentTypeStd(in []byte) ([]byte, error) {
	b := trimSpace(in)

	i := 0
	for i < len(b) && isTchar(b[i]) {
		i++
	}
	switch {
	case i == len(b):
		return nil, ctError("RH-CT-001", "content-type has no '/' separator")
	case b[i] != '/':
		return nil, ctError("RH-CT-003", "unexpected byte %#x at offset %d", b[i], i)
	case i == 0:
		return nil, ctError("RH-CT-002", "content-type has an empty type")
	}
	i++
	subStart := i
	for i < len(b) && isTchar(b[i]) {
		i++
	}
	if i == subStart {
		return nil, ctError("RH-CT-002", "content-type has an empty subtype")
	}
	header := lowerASCII(b[:i])

	var params [][]byte
	for {
		for i < len(b) && isOWS(b[i]) {
			i++
		}
		if i == len(b) {
			break
		}
		if b[i] != ';' {
			return nil, ctError("RH-CT-003", "unexpected byte %#x at offset %d", b[i], i)
		}
		i++
		for i < len(b) && isOWS(b[i]) {
			i++
		}
		if i == len(b) || b[i] == ';' {
			continue
		}

		nameStart := i
		for i < len(b) && isTchar(b[i]) {
			i++
		}
		if i == nameStart {
			return nil, ctError("RH-CT-004", "parameter name expected at offset %d", i)
		}
		if i == len(b) || b[i] != '=' {
			return nil, ctError("RH-CT-004", "parameter %q has no '='", b[nameStart:i])
		}
		param := lowerASCII(b[nameStart:i])
		param = append(param, '=')
		i++
		if i == len(b) {
			return nil, ctError("RH-CT-004", "parameter %q has no value", b[nameStart:i-1])
		}

		if b[i] == '"' {
			val, next, err := readQuoted(b, i+1)
			if err != nil {
				return nil, err
			}
			param = appendValue(param, val)
			i = next
		} else {
			valStart := i
			for i < len(b) && isTchar(b[i]) {
				i++
			}
			if i == valStart {
				return nil, ctError("RH-CT-004", "parameter value expected at offset %d", i)
			}
			param = append(param, b[valStart:i]...)
		}
		params = append(params, param)
	}

	slices.SortFunc(params, bytes.Compare)
	out := header
	for _, p := range params {
		out = append(out, ';')
		out = append(out, p...)
	}
	return out, nil
}

// readQuoted reads a quoted-string body starting just past the opening quote.
// It returns the unescaped content and the offset after the closing quote.
func readQuoted(b []byte, i int) ([]byte, int, error) {
	var val []byte
	for i < len(b) {
		c := b[i]
		switch {
		case c == '"':
			return val, i + 1, nil
		case c == '\\':
			if i+1 >= len(b) || !isQpair(b[i+1]) {
				return nil, 0, ctError("RH-CT-005", "bad escape in quoted-string at offset %d", i)
			}
			val = append(val, b[i+1])
			i += 2
		case isQdtext(c):
			val = append(val, c)
			i++
		default:
			return nil, 0, ctError("RH-CT-005", "byte %#x not allowed in quoted-string at offset %d", c, i)
		}
	}
	return nil, 0, ctError("RH-CT-005", "unterminated quoted-string")
}

// appendValue appends val as a token when it is one, else as a minimal
// quoted-string.
func appendValue(dst, val []byte) []byte {
	token := len(val) > 0
	for _, c := range val {
		if !isTchar(c) {
			token = false
			break
		}
	}
	if token {
		return append(dst, val...)
	}
	dst = append(dst, '"')
	for _, c := range val {
		if c == '"' || c == '\\' {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return append(dst, '"')
}
