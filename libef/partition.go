package libef

// OrderedPartitions enumerates every ordered tuple of exactly e positive
// integers summing to d (the compositions of d of length e).  These are the
// candidate edge weightings of a simple graph with e edges and total degree d.
func OrderedPartitions(d, e int) [][]int64 {
	if e <= 0 || d < e {
		return nil
	}
	var out [][]int64
	part := make([]int64, e)

	var fill func(pos int, left int64)
	fill = func(pos int, left int64) {
		if pos == e-1 {
			part[pos] = left
			cp := make([]int64, e)
			copy(cp, part)
			out = append(out, cp)
			return
		}
		// leave at least 1 for each remaining slot
		for v := int64(1); v <= left-int64(e-1-pos); v++ {
			part[pos] = v
			fill(pos+1, left-v)
		}
	}
	fill(0, int64(d))
	return out
}

// UnorderedPartitions enumerates the integer partitions of n with parts in
// non-increasing order.
func UnorderedPartitions(n int) [][]int {
	var out [][]int
	part := make([]int, 0, n)

	var fill func(left, maxPart int)
	fill = func(left, maxPart int) {
		if left == 0 {
			cp := make([]int, len(part))
			copy(cp, part)
			out = append(out, cp)
			return
		}
		for v := min(left, maxPart); v >= 1; v-- {
			part = append(part, v)
			fill(left-v, v)
			part = part[:len(part)-1]
		}
	}
	fill(n, n)
	return out
}
