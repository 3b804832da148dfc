package rhash

import ct "xdao.co/resumehash/internal/ctbytes"

// normalizeReferenceCT applies the NormalizeReference rules with a fixed
// sequence of operations for a given input length. The canonical form is
// returned in buf[:n]; len(buf) == len(ref) and bytes past n are zero.
//
// Only len(ref) influences control flow and memory access. The first
// violation is recorded as a rule code and reported once, after all passes
// have run.
func normalizeReferenceCT(ref []byte) (buf []byte, n int, err error) {
	size := len(ref)

	start, end := ctTrim(ref, 0, size)
	first := ct.Lookup(ref, start)
	last := ct.Lookup(ref, end-1)
	bracket := ct.Eq(first, '<') & ct.Eq(last, '>') & ct.Not(ct.LessInt(end-start, 2))
	start, end = ctTrim(ref, start+int(bracket), end-int(bracket))

	rule, failed := 0, byte(0)

	// Pass 1: validation, scheme detection, first '?' or '#'.
	const (
		schemeInit = iota
		schemeIn
		schemeFound
		schemeNone
	)
	state := schemeInit
	se := 0
	q := end
	var qFound byte
	for i := 0; i < size; i++ {
		c := ref[i]
		in := ct.Not(ct.LessInt(i, start)) & ct.LessInt(i, end)

		badByte := in & (ct.Not(ct.Less(0x20, c)) | ct.Eq(c, 0x7F) | ct.Eq(c, '<') | ct.Eq(c, '>'))

		var c1, c2 byte
		if i+1 < size {
			c1 = ref[i+1]
		}
		if i+2 < size {
			c2 = ref[i+2]
		}
		escOK := ct.LessInt(i+2, end) & ct.IsHex(c1) & ct.IsHex(c2)
		badEscape := in & ct.Eq(c, '%') & ct.Not(escOK)
		bad := badByte | badEscape
		rule = ct.SelectInt(bad&ct.Not(failed), ct.SelectInt(badByte, 1, 2), rule)
		failed |= bad

		atInit := in & ct.EqInt(state, schemeInit)
		atIn := in & ct.EqInt(state, schemeIn)
		colon := ct.Eq(c, ':')
		next := ct.SelectInt(ct.IsAlpha(c), schemeIn, schemeNone)
		next = ct.SelectInt(atInit, next, state)
		inNext := ct.SelectInt(ctIsSchemeChar(c), schemeIn, schemeNone)
		inNext = ct.SelectInt(colon, schemeFound, inNext)
		next = ct.SelectInt(atIn, inNext, next)
		se = ct.SelectInt(atIn&colon, i, se)
		state = next

		isQ := in & (ct.Eq(c, '?') | ct.Eq(c, '#'))
		q = ct.SelectInt(isQ&ct.Not(qFound), i, q)
		qFound |= isQ
	}
	hasScheme := ct.EqInt(state, schemeFound)

	// Pass 2: map '\' to '/' before q. Bytes outside the range read as zero.
	mapped := make([]byte, size)
	defer clear(mapped)
	for i := 0; i < size; i++ {
		c := ref[i]
		in := ct.Not(ct.LessInt(i, start)) & ct.LessInt(i, end)
		c = ct.Select(ct.Eq(c, '\\')&ct.LessInt(i, q), '/', c)
		mapped[i] = c & ct.Mask(in)
	}

	hasAuth := hasScheme & ct.Eq(ct.Lookup(mapped, se+1), '/') & ct.Eq(ct.Lookup(mapped, se+2), '/')
	authStart := se + 3

	// Pass 3: authority end and host start.
	authEnd := end
	hostStart := authStart
	var endFound, atFound byte
	for i := 0; i < size; i++ {
		c := mapped[i]
		in := ct.Not(ct.LessInt(i, authStart)) & ct.LessInt(i, end)
		stop := in & (ct.Eq(c, '/') | ct.Eq(c, '?') | ct.Eq(c, '#'))
		authEnd = ct.SelectInt(stop&ct.Not(endFound), i, authEnd)
		endFound |= stop

		isAt := in & ct.Not(endFound) & ct.Eq(ref[i], '@')
		hostStart = ct.SelectInt(isAt&ct.Not(atFound), i+1, hostStart)
		atFound |= isAt
	}

	pathStart := ct.SelectInt(hasAuth, authEnd, ct.SelectInt(hasScheme, se+1, start))

	// Pass 4: end of the last non-slash path byte.
	pathEnd := pathStart
	for i := 0; i < size; i++ {
		inPath := ct.Not(ct.LessInt(i, pathStart)) & ct.LessInt(i, q)
		pathEnd = ct.SelectInt(inPath&ct.Not(ct.Eq(mapped[i], '/')), i+1, pathEnd)
	}

	// Pass 5: emit and mark kept bytes.
	buf = make([]byte, size)
	keep := make([]byte, size)
	defer clear(keep)
	for i := 0; i < size; i++ {
		c := mapped[i]
		in := ct.Not(ct.LessInt(i, start)) & ct.LessInt(i, end)

		var prev, prevRaw, prevRaw2 byte
		if i >= 1 {
			prev = mapped[i-1]
			prevRaw = ref[i-1] & ct.Mask(ct.Not(ct.LessInt(i-1, start)))
		}
		if i >= 2 {
			prevRaw2 = ref[i-2] & ct.Mask(ct.Not(ct.LessInt(i-2, start)))
		}

		drop := ct.Eq(c, '/') & ct.LessInt(pathStart, i) & ct.LessInt(i, q) &
			(ct.Eq(prev, '/') | ct.Not(ct.LessInt(i, pathEnd)))

		escDigit := ct.Eq(prevRaw, '%') | ct.Eq(prevRaw2, '%')
		foldScheme := hasScheme & ct.LessInt(i, se)
		foldHost := hasAuth & ct.Not(ct.LessInt(i, hostStart)) & ct.LessInt(i, authEnd)

		v := ct.Select(foldScheme|foldHost, ct.ToLower(c), c)
		v = ct.Select(escDigit, ct.ToUpper(c), v)

		buf[i] = v & ct.Mask(in)
		keep[i] = in & ct.Not(drop)
	}
	n = ct.Compact(buf, keep)

	if failed != 0 {
		clear(buf)
		if rule == 1 {
			return nil, 0, newError(KindInvalidReference, "RH-REF-001", "reference contains a disallowed byte")
		}
		return nil, 0, newError(KindInvalidReference, "RH-REF-002", "reference contains a malformed percent escape")
	}
	return buf, n, nil
}
