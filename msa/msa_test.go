package msa_test

import (
	"testing"

	"github.com/grailbio/care/codec"
	"github.com/grailbio/care/msa"
	"github.com/stretchr/testify/require"
)

func encodeSeq(t *testing.T, s string) []uint32 {
	t.Helper()
	dst := make([]uint32, codec.EncodedWords(len(s)))
	codec.Encode(dst, []byte(s))
	return dst
}

func anchorSeq(t *testing.T, s string) msa.Sequence {
	return msa.Sequence{Encoded: encodeSeq(t, s), Length: len(s), Shift: 0, DefaultWeight: 1.0}
}

func candidateSeq(t *testing.T, s string, shift int, weight float32) msa.Sequence {
	return msa.Sequence{Encoded: encodeSeq(t, s), Length: len(s), Shift: shift, DefaultWeight: weight}
}

func TestBuildConsensusMatchesUnanimousInput(t *testing.T) {
	anchor := anchorSeq(t, "ACGTACGT")
	candidates := []msa.Sequence{
		candidateSeq(t, "ACGTACGT", 0, 1.0),
		candidateSeq(t, "ACGTACGT", 0, 1.0),
	}

	m := msa.Build(anchor, candidates, false)
	require.Len(t, m.Columns, 8)
	for i, col := range m.Columns {
		require.Equal(t, uint32(3), col.Coverage, "column %d", i)
		require.Equal(t, float32(1.0), col.Support, "column %d", i)
	}
}

func TestBuildCoverageInvariant(t *testing.T) {
	anchor := anchorSeq(t, "ACGTACGT")
	candidates := []msa.Sequence{
		candidateSeq(t, "ACGT", -2, 0.8), // spans columns [-2,2)
		candidateSeq(t, "ACGT", 4, 0.6),  // spans columns [4,8)
	}

	m := msa.Build(anchor, candidates, false)
	for i, col := range m.Columns {
		var sum uint32
		for _, c := range col.Counts {
			sum += c
		}
		require.Equal(t, col.Coverage, sum, "column %d: sum(counts) must equal coverage", i)
	}
}

func TestBuildOrigFieldsOnlySetOnAnchorColumns(t *testing.T) {
	anchor := anchorSeq(t, "ACGT")
	candidates := []msa.Sequence{
		candidateSeq(t, "ACGT", 2, 1.0), // extends past the anchor's columns
	}

	m := msa.Build(anchor, candidates, false)
	require.Len(t, m.Columns, 6)
	for i, col := range m.Columns {
		if i >= m.AnchorStart && i < m.AnchorStart+m.AnchorLen {
			require.True(t, col.HasOrig, "column %d is an anchor column", i)
		} else {
			require.False(t, col.HasOrig, "column %d is not an anchor column", i)
		}
	}
}

func TestConsensusTiesBreakACGT(t *testing.T) {
	// The anchor (A) and one candidate (C) carry equal weight at the same
	// column; consensus must pick A (A < C in the tie-break order).
	anchor := anchorSeq(t, "A")
	candidates := []msa.Sequence{
		candidateSeq(t, "C", 0, 1.0),
	}
	m := msa.Build(anchor, candidates, false)
	require.Equal(t, msa.BaseA, m.Columns[0].Consensus)
}

func TestCandidateDefaultWeightClamps(t *testing.T) {
	require.Equal(t, float32(1.0), msa.CandidateDefaultWeight(0, 100, 0.1))
	require.Equal(t, float32(0.0), msa.CandidateDefaultWeight(100, 100, 0.01))
	require.Equal(t, float32(0.0), msa.CandidateDefaultWeight(0, 0, 0.1))
}

func TestQualityWeightTableMonotonicAndClamped(t *testing.T) {
	require.InDelta(t, 0.001, msa.QualityWeight(0), 1e-6)
	require.LessOrEqual(t, msa.QualityWeight(33), msa.QualityWeight(63))
	require.LessOrEqual(t, float32(msa.QualityWeight(255)), float32(1.0))
}
