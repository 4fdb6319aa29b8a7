package align

import "github.com/grailbio/care/codec"

// shiftedHammingScalar is a base-by-base reference implementation of Align,
// used only to check the bit-parallel path's results in tests.
func shiftedHammingScalar(anchor []uint32, anchorLen int, candidate []uint32, candidateLen int, params Params) Result {
	m := minOverlap(params, anchorLen)
	if m < 1 {
		m = 1
	}
	lo := -candidateLen + m
	hi := anchorLen - m

	var best Result
	for shift := lo; shift <= hi; shift++ {
		overlapStart := shift
		if overlapStart < 0 {
			overlapStart = 0
		}
		overlapEnd := candidateLen + shift
		if overlapEnd > anchorLen {
			overlapEnd = anchorLen
		}
		overlap := overlapEnd - overlapStart
		if overlap < m {
			continue
		}
		maxMM := int(float64(overlap) * params.MaxErrorRate)

		mismatches := 0
		ok := true
		for c := overlapStart; c < overlapEnd; c++ {
			if codec.Code(anchor, c) != codec.Code(candidate, c-shift) {
				mismatches++
				if mismatches > maxMM {
					ok = false
					break
				}
			}
		}
		if !ok {
			continue
		}
		score := mismatches + (anchorLen + candidateLen - 2*overlap)
		cand := Result{Valid: true, Shift: shift, Overlap: overlap, Mismatches: mismatches, Score: score}
		if !best.Valid || better(cand, best) {
			best = cand
		}
	}
	return best
}
