// Package filter implements the adaptive mismatch-ratio candidate filter:
// bucket aligned candidates by increasingly permissive mismatch-ratio
// thresholds and keep the tightest bucket that still reaches a coverage
// target.
package filter

// Candidate is the subset of an align.Result a caller needs to run the
// filter: the overlap length and mismatch count from the chosen-direction
// alignment.
type Candidate struct {
	Overlap    int
	Mismatches int
}

// Params configures Apply. BaseErrorRate is Config.EstimatedErrorRate;
// Target is the candidate count threshold (Config.EstimatedCoverage *
// Config.MCoverage, precomputed by the caller since it's shared across
// every anchor in a run).
type Params struct {
	BaseErrorRate float64
	Target        float64
}

// thresholdMultipliers are tried in order: the smallest multiplier whose
// bucket reaches the target wins.
var thresholdMultipliers = [3]float64{2, 3, 4}

// Apply buckets candidates by mismatches/overlap against each multiple of
// BaseErrorRate and returns the indices (into candidates, in original
// order) of the tightest bucket that reaches Target candidates. If no
// bucket reaches Target, ok is false and the anchor is left uncorrected by
// the caller.
func Apply(candidates []Candidate, params Params) (kept []int, ok bool) {
	for _, mult := range thresholdMultipliers {
		threshold := mult * params.BaseErrorRate
		bucket := bucketBelow(candidates, threshold)
		if float64(len(bucket)) >= params.Target {
			return bucket, true
		}
	}
	return nil, false
}

func bucketBelow(candidates []Candidate, threshold float64) []int {
	var bucket []int
	for i, c := range candidates {
		if c.Overlap <= 0 {
			continue
		}
		ratio := float64(c.Mismatches) / float64(c.Overlap)
		if ratio < threshold {
			bucket = append(bucket, i)
		}
	}
	return bucket
}
