package rhash

import ct "xdao.co/resumehash/internal/ctbytes"

// Parser states for the constant-time content-type scan.
const (
	ctsType = iota
	ctsSub
	ctsAfter
	ctsParamStart
	ctsName
	ctsValueStart
	ctsTokenValue
	ctsQuoted
	ctsQuotedEsc
)

// Roles of bytes inside quoted values.
const (
	roleNone byte = iota
	roleOpen
	roleClose
	roleEscape
	roleContent
)

// Rule codes carried through the scan; index into ctRuleIDs.
var ctRuleIDs = [...]string{
	"",
	"RH-CT-001",
	"RH-CT-002",
	"RH-CT-003",
	"RH-CT-004",
	"RH-CT-005",
}

// normalizeContentTypeCT applies the NormalizeContentType rules with a fixed
// sequence of operations for a given input length. The canonical form is
// returned in buf[:n] with len(buf) == len(in); bytes past n are zero.
//
// The scan tags every byte with the parameter it belongs to (0 for
// type/subtype). Each parameter is then compacted into its own fixed-width
// slot, the slots are put in order by a sorting network, and the header and
// slots are compacted into the result.
func normalizeContentTypeCT(in []byte) (buf []byte, n int, err error) {
	size := len(in)
	start, end := ctTrim(in, 0, size)

	out := make([]byte, size)
	keep := make([]byte, size)
	owner := make([]int, size)
	role := make([]byte, size)
	defer func() {
		clear(out)
		clear(keep)
		clear(owner)
		clear(role)
	}()

	state := ctsType
	typeLen, subLen, param := 0, 0, 0
	rule, failed := 0, byte(0)

	for i := 0; i < size; i++ {
		c := in[i]
		inRange := ct.Not(ct.LessInt(i, start)) & ct.LessInt(i, end)

		tch := ctIsTchar(c)
		ows := ctIsOWS(c)
		semi := ct.Eq(c, ';')
		slash := ct.Eq(c, '/')
		equals := ct.Eq(c, '=')
		quote := ct.Eq(c, '"')
		bslash := ct.Eq(c, '\\')

		at := func(s int) byte { return inRange & ct.EqInt(state, s) }
		sType, sSub, sAfter := at(ctsType), at(ctsSub), at(ctsAfter)
		sPStart, sName, sVStart := at(ctsParamStart), at(ctsName), at(ctsValueStart)
		sTok, sQ, sQE := at(ctsTokenValue), at(ctsQuoted), at(ctsQuotedEsc)

		next := state
		var emit byte
		var e2, e3, e4, e5 byte

		// type
		next = ct.SelectInt(sType&slash, ctsSub, next)
		e2 |= sType & slash & ct.EqInt(typeLen, 0)
		e3 |= sType & ct.Not(tch|slash)
		emit |= sType & (tch | slash)
		typeLen += int(sType & tch)

		// subtype
		next = ct.SelectInt(sSub&ows, ctsAfter, next)
		next = ct.SelectInt(sSub&semi, ctsParamStart, next)
		e2 |= sSub & ct.Not(tch) & ct.EqInt(subLen, 0)
		e3 |= sSub & ct.Not(tch|ows|semi) & ct.Not(ct.EqInt(subLen, 0))
		emit |= sSub & tch
		subLen += int(sSub & tch)

		// between elements
		next = ct.SelectInt(sAfter&semi, ctsParamStart, next)
		e3 |= sAfter & ct.Not(ows|semi)

		// parameter start
		begin := sPStart & tch
		next = ct.SelectInt(begin, ctsName, next)
		e4 |= sPStart & ct.Not(ows|semi|tch)
		emit |= begin
		param += int(begin)

		// parameter name
		next = ct.SelectInt(sName&equals, ctsValueStart, next)
		e4 |= sName & ct.Not(tch|equals)
		emit |= sName & (tch | equals)

		// value start
		next = ct.SelectInt(sVStart&quote, ctsQuoted, next)
		next = ct.SelectInt(sVStart&tch, ctsTokenValue, next)
		e4 |= sVStart & ct.Not(quote|tch)
		emit |= sVStart & tch

		// token value
		next = ct.SelectInt(sTok&ows, ctsAfter, next)
		next = ct.SelectInt(sTok&semi, ctsParamStart, next)
		e3 |= sTok & ct.Not(tch|ows|semi)
		emit |= sTok & tch

		// quoted value
		qd := ctIsQdtext(c)
		next = ct.SelectInt(sQ&quote, ctsAfter, next)
		next = ct.SelectInt(sQ&bslash, ctsQuotedEsc, next)
		e5 |= sQ & ct.Not(quote|bslash|qd)

		// escaped byte
		qp := ctIsQpair(c)
		next = ct.SelectInt(sQE&qp, ctsQuoted, next)
		e5 |= sQE & ct.Not(qp)

		r := roleNone
		r = ct.Select(sVStart&quote, roleOpen, r)
		r = ct.Select(sQ&quote, roleClose, r)
		r = ct.Select(sQ&bslash, roleEscape, r)
		r = ct.Select(sQ&qd, roleContent, r)
		r = ct.Select(sQE&qp, roleContent, r)
		role[i] = r

		code := ct.SelectInt(e5, 5, 0)
		code = ct.SelectInt(e4, 4, code)
		code = ct.SelectInt(e3, 3, code)
		code = ct.SelectInt(e2, 2, code)
		bad := e2 | e3 | e4 | e5
		rule = ct.SelectInt(bad&ct.Not(failed), code, rule)
		failed |= bad

		out[i] = ct.Select(sType|sSub|sPStart|sName, ct.ToLower(c), c)
		keep[i] = emit
		owner[i] = ct.SelectInt(inRange, param, 0)
		state = next
	}

	// End state.
	endCode := ct.SelectInt(ct.EqInt(state, ctsType), 1, 0)
	endCode = ct.SelectInt(ct.EqInt(state, ctsSub)&ct.EqInt(subLen, 0), 2, endCode)
	endCode = ct.SelectInt(ct.EqInt(state, ctsName)|ct.EqInt(state, ctsValueStart), 4, endCode)
	endCode = ct.SelectInt(ct.EqInt(state, ctsQuoted)|ct.EqInt(state, ctsQuotedEsc), 5, endCode)
	endBad := ct.Not(ct.EqInt(endCode, 0))
	rule = ct.SelectInt(endBad&ct.Not(failed), endCode, rule)
	failed |= endBad

	maxParams := size/4 + 1
	overflow := ct.LessInt(maxParams, param)
	rule = ct.SelectInt(overflow&ct.Not(failed), 4, rule)
	failed |= overflow

	resolveQuotes(in, role, keep)

	// One fixed-width slot per possible parameter. Byte 0 of a slot is 1 when
	// the slot is unused so that unused slots sort last.
	width := size + 1
	slotCount := 1
	for slotCount < maxParams {
		slotCount <<= 1
	}
	slotBuf := make([]byte, slotCount*width)
	defer clear(slotBuf)
	slots := make([][]byte, slotCount)
	for s := range slots {
		slots[s] = slotBuf[s*width : (s+1)*width]
		slots[s][0] = 1
	}

	tmp := make([]byte, size)
	tmpKeep := make([]byte, size)
	defer func() {
		clear(tmp)
		clear(tmpKeep)
	}()
	for k := 1; k <= maxParams; k++ {
		for i := 0; i < size; i++ {
			mine := keep[i] & ct.EqInt(owner[i], k)
			tmp[i] = out[i] & ct.Mask(mine)
			tmpKeep[i] = mine
		}
		ct.Compact(tmp, tmpKeep)
		slot := slots[k-1]
		slot[0] = ct.LessInt(param, k)
		copy(slot[1:], tmp)
	}

	sortSlots(slots)

	total := size + len(slotBuf)
	buf = make([]byte, total)
	bufKeep := make([]byte, total)
	defer clear(bufKeep)
	for i := 0; i < size; i++ {
		buf[i] = out[i]
		bufKeep[i] = keep[i] & ct.EqInt(owner[i], 0)
	}
	pos := size
	for _, slot := range slots {
		used := ct.Not(slot[0])
		buf[pos] = ';'
		bufKeep[pos] = used
		pos++
		for _, c := range slot[1:] {
			buf[pos] = c
			bufKeep[pos] = used & ct.Not(ct.Eq(c, 0))
			pos++
		}
	}
	n = ct.Compact(buf, bufKeep)

	if failed != 0 {
		clear(buf)
		return nil, 0, ctError(ctRuleIDs[rule], "content-type does not parse")
	}
	// The canonical form is never longer than the input.
	return buf[:size], n, nil
}

// resolveQuotes decides, for every quoted value, whether it is emitted as a
// bare token, and sets the keep bits of its quote, escape and content bytes.
func resolveQuotes(in, role, keep []byte) {
	size := len(in)
	unquote := make([]byte, size)
	defer clear(unquote)

	// Backward: at each opening quote, whether the span is a non-empty token.
	allToken, nonEmpty := byte(1), byte(0)
	for i := size - 1; i >= 0; i-- {
		r := role[i]
		isClose := ct.Eq(r, roleClose)
		isContent := ct.Eq(r, roleContent)
		allToken = ct.Select(isClose, 1, allToken&ct.Select(isContent, ctIsTchar(in[i]), 1))
		nonEmpty = ct.Select(isClose, 0, nonEmpty|isContent)
		unquote[i] = ct.Eq(r, roleOpen) & allToken & nonEmpty
	}

	// Forward: apply the decision of the enclosing span.
	var cur byte
	for i := 0; i < size; i++ {
		r := role[i]
		cur = ct.Select(ct.Eq(r, roleOpen), unquote[i], cur)

		var next byte
		if i+1 < size {
			next = in[i+1]
		}
		special := ct.Eq(next, '"') | ct.Eq(next, '\\')
		isQuote := ct.Eq(r, roleOpen) | ct.Eq(r, roleClose)

		k := (isQuote & ct.Not(cur)) |
			(ct.Eq(r, roleEscape) & ct.Not(cur) & special) |
			ct.Eq(r, roleContent)
		keep[i] = ct.Select(ct.Not(ct.Eq(r, roleNone)), k, keep[i])
	}
}

// sortSlots sorts slots ascending with a bitonic network. len(slots) must be
// a power of two; the comparison sequence depends only on that length.
func sortSlots(slots [][]byte) {
	m := len(slots)
	for size := 2; size <= m; size <<= 1 {
		for stride := size >> 1; stride > 0; stride >>= 1 {
			for i := 0; i < m; i++ {
				j := i ^ stride
				if j <= i {
					continue
				}
				var swap byte
				if i&size == 0 {
					swap = ct.Greater(slots[i], slots[j])
				} else {
					swap = ct.Greater(slots[j], slots[i])
				}
				ct.CondSwap(swap, slots[i], slots[j])
			}
		}
	}
}
