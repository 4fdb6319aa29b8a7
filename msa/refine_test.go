package msa_test

import (
	"testing"

	"github.com/grailbio/care/msa"
	"github.com/stretchr/testify/require"
)

func TestRefineConvergesWithNoVariant(t *testing.T) {
	anchor := anchorSeq(t, "ACGTACGTACGT")
	candidates := []msa.Sequence{
		candidateSeq(t, "ACGTACGTACGT", 0, 1.0),
		candidateSeq(t, "ACGTACGTACGT", 0, 1.0),
	}

	result := msa.Refine(anchor, candidates, msa.RefineParams{DatasetCoverage: 3, UseQuality: false})
	require.True(t, result.Converged)
	require.ElementsMatch(t, []int{0, 1}, result.SurvivingCandidates)
}

func TestRefineDropsCandidatesSupportingMinorityVariant(t *testing.T) {
	anchor := anchorSeq(t, "AAAAAAAAAA")
	// Five candidates agree with the anchor; five carry a 'C' at column 5,
	// a significant variant (count 5 >= 0.3*10) that the anchor itself
	// doesn't carry, so they should be dropped.
	var candidates []msa.Sequence
	for i := 0; i < 5; i++ {
		candidates = append(candidates, candidateSeq(t, "AAAAAAAAAA", 0, 0.5))
	}
	for i := 0; i < 5; i++ {
		candidates = append(candidates, candidateSeq(t, "AAAAACAAAA", 0, 0.5))
	}

	result := msa.Refine(anchor, candidates, msa.RefineParams{DatasetCoverage: 10, UseQuality: false})
	require.True(t, result.Converged, "once the variant-bearing candidates are dropped the next pass is stable")
	require.Len(t, result.SurvivingCandidates, 5)
	for _, idx := range result.SurvivingCandidates {
		require.Less(t, idx, 5, "only the agreeing candidates should survive")
	}
}

func TestRefineVetoesStrongAlignmentWeight(t *testing.T) {
	anchor := anchorSeq(t, "AAAAAAAAAA")
	var candidates []msa.Sequence
	for i := 0; i < 5; i++ {
		candidates = append(candidates, candidateSeq(t, "AAAAAAAAAA", 0, 0.5))
	}
	for i := 0; i < 5; i++ {
		// High-weight candidates carrying the variant veto the drop.
		candidates = append(candidates, candidateSeq(t, "AAAAACAAAA", 0, 0.95))
	}

	result := msa.Refine(anchor, candidates, msa.RefineParams{DatasetCoverage: 10, UseQuality: false})
	require.False(t, result.Converged)
	require.Len(t, result.SurvivingCandidates, 10, "veto means nobody is dropped")
}

func TestRefineNeverExceedsIterationCap(t *testing.T) {
	// Two distinct minority variants, each resolved by its own iteration:
	// the loop must still never exceed MaxRefineIterations regardless of
	// how many drop rounds are needed.
	anchor := anchorSeq(t, "AAAAAAAAAA")
	var candidates []msa.Sequence
	for i := 0; i < 4; i++ {
		candidates = append(candidates, candidateSeq(t, "AAAAAAAAAA", 0, 0.5))
	}
	for i := 0; i < 4; i++ {
		candidates = append(candidates, candidateSeq(t, "AAAAACAAAA", 0, 0.5))
	}
	for i := 0; i < 4; i++ {
		candidates = append(candidates, candidateSeq(t, "AAAAAAACAA", 0, 0.5))
	}

	result := msa.Refine(anchor, candidates, msa.RefineParams{DatasetCoverage: 12, UseQuality: false})
	require.LessOrEqual(t, result.Iterations, msa.MaxRefineIterations)
}
