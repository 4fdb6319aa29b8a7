// Package care wires together the correction components into the two
// operations exposed to callers: BuildIndex and CorrectReads.
package care

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Config is the closed set of correction options.
type Config struct {
	// K is the k-mer length used by the minhash index (1..32).
	K int
	// NumMaps is the number of independent minhash hash tables (1..16).
	NumMaps int
	// MaxCandidatesPerAnchor caps how many minhash hits survive per anchor.
	// 0 means auto-estimate via minhash.EstimateMaxCandidatesPerAnchor.
	MaxCandidatesPerAnchor int

	// MinOverlap is the absolute minimum alignment overlap.
	MinOverlap int
	// MinOverlapRatio is the minimum overlap as a fraction of anchor length.
	MinOverlapRatio float64
	// MaxErrorRate is the maximum allowed mismatch fraction within an
	// alignment's overlap.
	MaxErrorRate float64

	// EstimatedCoverage is the dataset's expected per-base read coverage.
	EstimatedCoverage float64
	// EstimatedErrorRate is the dataset's expected per-base sequencing error
	// rate.
	EstimatedErrorRate float64
	// MCoverage is the coverage safety factor applied to EstimatedCoverage
	// when deriving the candidate-count target and the minimum-coverage
	// threshold.
	MCoverage float64

	// UseQualityScores weights MSA columns by Phred quality.
	UseQualityScores bool
	// CorrectCandidates additionally emits corrected candidates for HQ
	// anchors.
	CorrectCandidates bool
	// ExcludeAmbiguousReads drops reads containing an ambiguous base from
	// both the anchor and candidate roles.
	ExcludeAmbiguousReads bool

	// NewColumnsToCorrect is the slop, on each side of the anchor's columns,
	// within which a candidate's span still qualifies for candidate
	// correction.
	NewColumnsToCorrect int

	// BatchSize is how many anchor ids a worker claims from the shared
	// cursor per fetch.
	BatchSize int
	// NumWorkers is the number of parallel correction workers.
	NumWorkers int
	// StripeCount is accepted but unused: the correction-flags bitmap in
	// package correct is lock-free (one atomic word per id) and has no
	// striped-lock mode.
	StripeCount int

	// MemoryBudgetBytes caps the minhash index's per-pass working set; 0
	// means unbounded (every map built in one pass).
	MemoryBudgetBytes int64
}

// neighborRegionSize is the width of the neighborhood a non-HQ anchor's
// low-coverage columns are checked against before a single-position
// correction is allowed. Fixed rather than configurable; the default
// matches NewColumnsToCorrect's.
const neighborRegionSize = 15

// DefaultConfig holds the documented defaults for every option.
var DefaultConfig = Config{
	K:                      20,
	NumMaps:                16,
	MaxCandidatesPerAnchor: 0,

	MinOverlap:      30,
	MinOverlapRatio: 0.3,
	MaxErrorRate:    0.2,

	EstimatedCoverage:  1,
	EstimatedErrorRate: 0.03,
	MCoverage:          0.6,

	UseQualityScores:      true,
	CorrectCandidates:     false,
	ExcludeAmbiguousReads: false,

	NewColumnsToCorrect: 15,

	BatchSize:   1000,
	NumWorkers:  1,
	StripeCount: 1 << 16,

	MemoryBudgetBytes: 0,
}

// Validate reports out-of-range Config values as an *errors.Error, never a
// panic.
func (c Config) Validate() error {
	switch {
	case c.K < 1 || c.K > 32:
		return errors.E(fmt.Sprintf("care: Config.K out of range [1,32]: %d", c.K))
	case c.NumMaps < 1 || c.NumMaps > 16:
		return errors.E(fmt.Sprintf("care: Config.NumMaps out of range [1,16]: %d", c.NumMaps))
	case c.MaxCandidatesPerAnchor < 0:
		return errors.E("care: Config.MaxCandidatesPerAnchor must be >= 0")
	case c.MinOverlap < 1:
		return errors.E("care: Config.MinOverlap must be >= 1")
	case c.MinOverlapRatio < 0 || c.MinOverlapRatio > 1:
		return errors.E("care: Config.MinOverlapRatio out of range [0,1]")
	case c.MaxErrorRate <= 0 || c.MaxErrorRate > 1:
		return errors.E("care: Config.MaxErrorRate out of range (0,1]")
	case c.EstimatedCoverage <= 0:
		return errors.E("care: Config.EstimatedCoverage must be > 0")
	case c.EstimatedErrorRate <= 0 || c.EstimatedErrorRate >= 1:
		return errors.E("care: Config.EstimatedErrorRate out of range (0,1)")
	case c.MCoverage <= 0:
		return errors.E("care: Config.MCoverage must be > 0")
	case c.NewColumnsToCorrect < 0:
		return errors.E("care: Config.NewColumnsToCorrect must be >= 0")
	case c.BatchSize < 1:
		return errors.E("care: Config.BatchSize must be >= 1")
	case c.NumWorkers < 1:
		return errors.E("care: Config.NumWorkers must be >= 1")
	}
	return nil
}
