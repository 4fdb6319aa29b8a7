package msa

import "github.com/grailbio/care/codec"

// MaxRefineIterations bounds the refinement loop.
const MaxRefineIterations = 5

// VetoWeight is the overlap-weight threshold at which a candidate
// scheduled for dropping instead vetoes the whole iteration's drop: an
// alignment that strong is trusted over the variant tally.
const VetoWeight = 0.9

// RefineParams configures Refine.
type RefineParams struct {
	DatasetCoverage float64 // basis of the significant-variant count threshold
	UseQuality      bool
}

// RefineResult is the outcome of Refine: the final MSA, the indices (into
// the original candidates slice passed to Refine) of surviving candidates,
// how many iterations ran, and whether the loop reached a stable MSA with
// no significant-variant column left, rather than simply exhausting the
// iteration cap or stalling on a vetoed column.
type RefineResult struct {
	MSA                 *MSA
	SurvivingCandidates []int
	Iterations          int
	Converged           bool
}

// Refine runs the bounded refinement loop: find a significant-variant
// anchor column, drop candidates carrying the variant base at that column
// (or, if the anchor itself carries the variant, every candidate whose base
// there differs from the anchor's), unless a
// dropped candidate's alignment weight vetoes the whole iteration, and
// rebuild the MSA from the survivors. It stops on Stable (no more
// significant-variant columns), on a no-op iteration (nothing could be
// dropped, so further iterations would repeat it forever), or after
// MaxRefineIterations.
func Refine(anchor Sequence, candidates []Sequence, params RefineParams) RefineResult {
	surviving := make([]int, len(candidates))
	for i := range surviving {
		surviving[i] = i
	}

	current := Build(anchor, selectSequences(candidates, surviving), params.UseQuality)

	for iter := 0; iter < MaxRefineIterations; iter++ {
		col, variantBase, found := findSignificantVariant(current, anchor, params.DatasetCoverage)
		if !found {
			return RefineResult{MSA: current, SurvivingCandidates: surviving, Iterations: iter, Converged: true}
		}

		anchorBase := Base(codec.Code(anchor.Encoded, col-current.AnchorStart))
		toDrop, vetoed := candidatesToDrop(candidates, surviving, col, current.MinShift, anchorBase, variantBase)
		if vetoed || len(toDrop) == 0 {
			return RefineResult{MSA: current, SurvivingCandidates: surviving, Iterations: iter + 1, Converged: false}
		}

		surviving = removeIndices(surviving, toDrop)
		current = Build(anchor, selectSequences(candidates, surviving), params.UseQuality)
	}

	return RefineResult{MSA: current, SurvivingCandidates: surviving, Iterations: MaxRefineIterations, Converged: false}
}

// findSignificantVariant scans anchor columns for a non-consensus base with
// count >= 0.3*datasetCoverage, returning the first one found in column
// order.
func findSignificantVariant(m *MSA, anchor Sequence, datasetCoverage float64) (col int, variant Base, found bool) {
	threshold := 0.3 * datasetCoverage
	for i := 0; i < anchor.Length; i++ {
		c := m.AnchorStart + i
		column := m.Columns[c]
		for b := Base(0); b < numBases; b++ {
			if b == column.Consensus {
				continue
			}
			if float64(column.Counts[b]) >= threshold {
				return c, b, true
			}
		}
	}
	return 0, 0, false
}

// candidatesToDrop decides, for each surviving candidate spanning column
// col, whether its base puts it on the wrong side of the variant, then
// applies the strong-alignment veto.
func candidatesToDrop(candidates []Sequence, surviving []int, col, minShift int, anchorBase, variantBase Base) (toDrop []int, vetoed bool) {
	for _, idx := range surviving {
		cand := candidates[idx]
		j := col - cand.Shift + minShift
		if j < 0 || j >= cand.Length {
			continue // does not span the column: keep unconditionally.
		}
		base := Base(codec.Code(cand.Encoded, j))

		var shouldDrop bool
		if anchorBase == variantBase {
			shouldDrop = base != anchorBase
		} else {
			shouldDrop = base == variantBase
		}
		if !shouldDrop {
			continue
		}
		if cand.DefaultWeight >= VetoWeight {
			return nil, true
		}
		toDrop = append(toDrop, idx)
	}
	return toDrop, false
}

func selectSequences(candidates []Sequence, indices []int) []Sequence {
	out := make([]Sequence, len(indices))
	for i, idx := range indices {
		out[i] = candidates[idx]
	}
	return out
}

func removeIndices(surviving, toDrop []int) []int {
	drop := make(map[int]bool, len(toDrop))
	for _, d := range toDrop {
		drop[d] = true
	}
	out := make([]int, 0, len(surviving)-len(toDrop))
	for _, idx := range surviving {
		if !drop[idx] {
			out = append(out, idx)
		}
	}
	return out
}
