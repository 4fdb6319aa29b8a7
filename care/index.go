package care

import (
	"github.com/grailbio/care/minhash"
	"github.com/grailbio/care/readstore"
)

// Index wraps the finalized minhash.Index together with the per-run
// candidate cap, computed once at build time so CorrectReads doesn't
// recompute it per anchor.
type Index struct {
	minhash *minhash.Index
	// MaxCandidatesPerAnchor is the effective per-anchor candidate cap: the
	// Config value if nonzero, else the auto estimate.
	MaxCandidatesPerAnchor int
}

// BuildIndex builds the minhash index over reads, plus the
// auto-candidate-cap estimate used by CorrectReads.
func BuildIndex(reads *readstore.Store, cfg Config) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	idx, err := minhash.Build(reads, minhash.BuildOpts{
		K:                 cfg.K,
		NumMaps:           cfg.NumMaps,
		EstimatedCoverage: cfg.EstimatedCoverage,
		MemoryBudgetBytes: cfg.MemoryBudgetBytes,
		ExcludeAmbiguous:  cfg.ExcludeAmbiguousReads,
	})
	if err != nil {
		return nil, err
	}

	maxCandidates := cfg.MaxCandidatesPerAnchor
	if maxCandidates == 0 {
		maxCandidates = minhash.EstimateMaxCandidatesPerAnchor(idx, reads)
	}
	return &Index{minhash: idx, MaxCandidatesPerAnchor: maxCandidates}, nil
}
