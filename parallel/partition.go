// parallel/partition.go
package parallel

import "golang.org/x/exp/constraints"

// Range is a half-open interval [Start, End) of indices handed to one task.
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Split cuts [0,n) into at most parts contiguous, non-empty ranges whose
// lengths differ by at most one. n<=0 yields nil.
func Split(n, parts int) []Range {
	return SplitRange(0, n, parts)
}

// SplitRange is Split over [start,end).
func SplitRange(start, end, parts int) []Range {
	n := end - start
	if n <= 0 {
		return nil
	}
	parts = clamp(parts, 1, n)
	out := make([]Range, 0, parts)
	base, rem := n/parts, n%parts
	lo := start
	for p := 0; p < parts; p++ {
		size := base
		if p < rem {
			size++
		}
		out = append(out, Range{Start: lo, End: lo + size})
		lo += size
	}
	return out
}

// SplitBalanced cuts [start,end) into at most parts contiguous, non-empty
// ranges so that the summed cost per range is roughly even. cost must be
// non-negative. Used for triangular loops where row i costs O(i).
func SplitBalanced(start, end, parts int, cost func(i int) float64) []Range {
	n := end - start
	if n <= 0 {
		return nil
	}
	parts = clamp(parts, 1, n)
	if parts == 1 || cost == nil {
		return SplitRange(start, end, parts)
	}
	total := 0.0
	for i := start; i < end; i++ {
		total += cost(i)
	}
	if total <= 0 {
		return SplitRange(start, end, parts)
	}

	out := make([]Range, 0, parts)
	lo := start
	acc := 0.0
	for i := start; i < end; i++ {
		acc += cost(i)
		left := parts - len(out) - 1 // ranges still to open after this one
		if left == 0 {
			break
		}
		remaining := end - i - 1
		target := total * float64(len(out)+1) / float64(parts)
		if acc >= target || remaining == left {
			out = append(out, Range{Start: lo, End: i + 1})
			lo = i + 1
		}
	}
	if lo < end {
		out = append(out, Range{Start: lo, End: end})
	}
	return out
}
