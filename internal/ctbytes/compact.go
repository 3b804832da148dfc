package ctbytes

// Compact moves the bytes of vals whose keep bit is 1 to the front of vals,
// preserving their order, zeroes everything after them, and returns how many
// were kept.
//
// Each kept byte travels left by the number of dropped bytes before it. The
// distance is applied one bit at a time, lowest bit first; with distances
// non-decreasing along the slice no two kept bytes ever land on the same cell,
// so every round is a fixed sweep of reads at i and i+step. Total work is
// O(n log n) regardless of which bytes are kept.
//
// keep is overwritten.
func Compact(vals, keep []byte) int {
	n := len(vals)
	shift := make([]int, n)
	dropped := 0
	for i := 0; i < n; i++ {
		k := keep[i] & 1
		keep[i] = k
		vals[i] &= Mask(k)
		shift[i] = SelectInt(k, dropped, 0)
		dropped += int(Not(k))
	}

	for lg, step := 0, 1; step < n; lg, step = lg+1, step<<1 {
		for i := 0; i < n; i++ {
			var inV, inK byte
			var inS int
			if j := i + step; j < n {
				inV, inK, inS = vals[j], keep[j], shift[j]
			}
			move := inK & Bit(inS, lg)
			stay := keep[i] & Not(Bit(shift[i], lg))

			vals[i] = Select(move, inV, Select(stay, vals[i], 0))
			shift[i] = SelectInt(move, inS, SelectInt(stay, shift[i], 0))
			keep[i] = move | stay
		}
	}
	clear(shift)
	return n - dropped
}
