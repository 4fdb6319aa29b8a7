package correct

import (
	"math"

	"github.com/grailbio/care/msa"
)

// Thresholds holds the three pass/fail bounds derived from a run's
// error-model configuration.
type Thresholds struct {
	AvgSupport  float64
	MinSupport  float64
	MinCoverage float64
}

// ComputeThresholds derives the HQ thresholds from the error model.
func ComputeThresholds(estimatedErrorRate, estimatedCoverage, mCoverage float64) Thresholds {
	return Thresholds{
		AvgSupport:  1 - estimatedErrorRate,
		MinSupport:  1 - 3*estimatedErrorRate,
		MinCoverage: estimatedCoverage * mCoverage / 6,
	}
}

// AnchorProperties summarizes an MSA's anchor columns.
type AnchorProperties struct {
	AvgSupport  float64
	MinSupport  float64
	MinCoverage float64
}

// AnchorMSAProperties computes AnchorProperties over m's anchor columns.
func AnchorMSAProperties(m *msa.MSA) AnchorProperties {
	var sumSupport float64
	minSupport := math.Inf(1)
	minCoverage := math.Inf(1)
	for i := 0; i < m.AnchorLen; i++ {
		col := m.Columns[m.AnchorStart+i]
		sumSupport += float64(col.Support)
		if s := float64(col.Support); s < minSupport {
			minSupport = s
		}
		if c := float64(col.Coverage); c < minCoverage {
			minCoverage = c
		}
	}
	return AnchorProperties{
		AvgSupport:  sumSupport / float64(m.AnchorLen),
		MinSupport:  minSupport,
		MinCoverage: minCoverage,
	}
}

// IsHQ reports whether props passes all three thresholds; a high-quality
// anchor is corrected wholesale to the consensus.
func IsHQ(props AnchorProperties, th Thresholds) bool {
	return props.AvgSupport >= th.AvgSupport &&
		props.MinSupport >= th.MinSupport &&
		props.MinCoverage >= th.MinCoverage
}

// AnchorParams configures CorrectAnchor's non-HQ neighborhood check.
type AnchorParams struct {
	NeighborRegionSize int
	ErrorRate          float64
}

// AnchorResult is the outcome of correcting one anchor.
type AnchorResult struct {
	HQ                   bool
	Corrected            []byte // nil if the anchor is emitted entirely uncorrected
	CorrectedPositions   []int
	UncorrectedPositions []int // differed from consensus but didn't qualify for correction
}

// CorrectAnchor runs the anchor-correction case analysis.
// original is the anchor's raw ASCII sequence (which, unlike the packed
// encoding, still carries any ambiguous bases); corrections are computed
// against it so that untouched positions pass through byte-for-byte.
func CorrectAnchor(anchor msa.Sequence, original []byte, m *msa.MSA, th Thresholds, params AnchorParams) AnchorResult {
	props := AnchorMSAProperties(m)
	if IsHQ(props, th) {
		return correctHQAnchor(anchor, original, m)
	}
	return correctNonHQAnchor(anchor, original, m, th, params)
}

func correctHQAnchor(anchor msa.Sequence, original []byte, m *msa.MSA) AnchorResult {
	corrected := make([]byte, anchor.Length)
	var correctedPositions []int
	for i := 0; i < anchor.Length; i++ {
		col := m.Columns[m.AnchorStart+i]
		consensusBase := baseByte(col.Consensus)
		corrected[i] = consensusBase
		if consensusBase != original[i] {
			correctedPositions = append(correctedPositions, i)
		}
	}
	return AnchorResult{HQ: true, Corrected: corrected, CorrectedPositions: correctedPositions}
}

func correctNonHQAnchor(anchor msa.Sequence, original []byte, m *msa.MSA, th Thresholds, params AnchorParams) AnchorResult {
	corrected := append([]byte(nil), original...)

	var correctedPositions, uncorrectedPositions []int
	anyCorrected := false

	for i := 0; i < anchor.Length; i++ {
		col := m.Columns[m.AnchorStart+i]
		anchorBase := original[i]
		consensusBase := baseByte(col.Consensus)
		if consensusBase == anchorBase {
			continue
		}
		if float64(col.Support) > 0.5 && float64(col.OrigCoverage) < th.MinCoverage &&
			neighborhoodQualifies(m, i, params.NeighborRegionSize, params.ErrorRate, th.MinCoverage) {
			corrected[i] = consensusBase
			correctedPositions = append(correctedPositions, i)
			anyCorrected = true
			continue
		}
		uncorrectedPositions = append(uncorrectedPositions, i)
	}

	result := AnchorResult{
		HQ:                   false,
		CorrectedPositions:   correctedPositions,
		UncorrectedPositions: uncorrectedPositions,
	}
	if anyCorrected {
		result.Corrected = corrected
	}
	return result
}

// neighborhoodQualifies checks the neighborRegionSize-wide window around
// position pos (clamped to the anchor span) against the "average support
// >= 1 - error_rate and min coverage >= min_coverage_threshold" rule.
func neighborhoodQualifies(m *msa.MSA, pos, regionSize int, errorRate, minCoverageThreshold float64) bool {
	lo := pos - regionSize
	if lo < 0 {
		lo = 0
	}
	hi := pos + regionSize
	if hi >= m.AnchorLen {
		hi = m.AnchorLen - 1
	}

	var sumSupport float64
	minCoverage := math.Inf(1)
	for i := lo; i <= hi; i++ {
		col := m.Columns[m.AnchorStart+i]
		sumSupport += float64(col.Support)
		if c := float64(col.Coverage); c < minCoverage {
			minCoverage = c
		}
	}
	n := hi - lo + 1
	avgSupport := sumSupport / float64(n)
	return avgSupport >= 1-errorRate && minCoverage >= minCoverageThreshold
}
