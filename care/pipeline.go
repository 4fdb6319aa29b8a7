package care

import (
	"github.com/grailbio/care/align"
	"github.com/grailbio/care/correct"
	"github.com/grailbio/care/filter"
	"github.com/grailbio/care/minhash"
	"github.com/grailbio/care/msa"
	"github.com/grailbio/care/readstore"
	"github.com/grailbio/care/scratch"
)

// pipeline holds one worker's reusable per-anchor state, grown with
// amortized doubling and never shrunk. Go's append already gives the
// doubling, so each field is simply reset to length 0 and appended into
// every anchor; the querier and aligner carry their own scratch the same
// way.
type pipeline struct {
	reads   *readstore.Store
	index   *Index
	flags   *correct.Flags
	cfg     Config
	thresh  correct.Thresholds
	querier *minhash.Querier
	aligner *align.Aligner

	anchorSeq    []byte
	candidateIDs []uint32

	survivorIDs        []uint32
	survivorDirections []align.Direction
	survivorEncoded    [][]uint32
	survivorQuality    [][]byte
	survivorResults    []align.Result

	filterBuf []filter.Candidate
	msaBuf    []msa.Sequence

	originalBuf []byte
}

func newPipeline(reads *readstore.Store, index *Index, flags *correct.Flags, cfg Config) *pipeline {
	return &pipeline{
		reads:   reads,
		index:   index,
		flags:   flags,
		cfg:     cfg,
		thresh:  correct.ComputeThresholds(cfg.EstimatedErrorRate, cfg.EstimatedCoverage, cfg.MCoverage),
		querier: minhash.NewQuerier(index.minhash),
		aligner: align.NewAligner(),
	}
}

// alignParams projects Config's overlap/error-rate fields into align.Params.
func (cfg Config) alignParams() align.Params {
	return align.Params{
		MinOverlap:      cfg.MinOverlap,
		MinOverlapRatio: cfg.MinOverlapRatio,
		MaxErrorRate:    cfg.MaxErrorRate,
	}
}

// process runs the full per-anchor data flow for an anchor it claims and
// writes exactly one anchor scratch.Record, plus candidate records if the
// anchor is HQ and Config.CorrectCandidates is set. It writes nothing for
// an id that is already claimed (by another worker, or as a corrected
// candidate) or, with Config.ExcludeAmbiguousReads, for an ambiguous read.
// It always returns nil: scratch.Writer.Append reports no error, so a
// scratch write failure surfaces only when CorrectReads closes the
// writers after every worker has finished, and does not raise the pool's
// abort flag.
func (p *pipeline) process(w *scratch.Writer, anchorID uint32) error {
	if p.cfg.ExcludeAmbiguousReads && p.reads.ContainsN(anchorID) {
		return nil
	}
	if !p.flags.TryClaim(anchorID) {
		return nil // another worker already owns this anchor.
	}

	anchorLen := p.reads.Length(anchorID)
	anchorEncoded := p.reads.Encoded(anchorID)
	// The original carries any ambiguous bases; the kmerizer skips windows
	// containing them, and edit encoding compares against them.
	p.anchorSeq = p.reads.AppendOriginal(p.anchorSeq[:0], anchorID)

	var anchorQuality []byte
	if p.cfg.UseQualityScores {
		anchorQuality = p.reads.Quality(anchorID)
	}

	p.candidateIDs = p.querier.Query(p.anchorSeq, minhash.QueryOpts{ExcludeID: anchorID, NumHits: 1})
	if p.index.MaxCandidatesPerAnchor > 0 && len(p.candidateIDs) > p.index.MaxCandidatesPerAnchor {
		p.candidateIDs = p.candidateIDs[:p.index.MaxCandidatesPerAnchor]
	}

	p.collectSurvivors(anchorEncoded, anchorLen)
	if len(p.survivorIDs) == 0 {
		return p.writeUncorrectedAnchor(w, anchorID)
	}

	kept, ok := p.applyFilter()
	if !ok {
		return p.writeUncorrectedAnchor(w, anchorID)
	}

	anchorMSASeq := msa.Sequence{Encoded: anchorEncoded, Length: anchorLen, Shift: 0, Quality: anchorQuality, DefaultWeight: 1.0}
	candSeqs := p.buildMSASequences(kept)

	refineResult := msa.Refine(anchorMSASeq, candSeqs, msa.RefineParams{
		DatasetCoverage: p.cfg.EstimatedCoverage,
		UseQuality:      p.cfg.UseQualityScores,
	})

	anchorResult := correct.CorrectAnchor(anchorMSASeq, p.anchorSeq, refineResult.MSA, p.thresh, correct.AnchorParams{
		NeighborRegionSize: neighborRegionSize,
		ErrorRate:          p.cfg.EstimatedErrorRate,
	})
	if anchorResult.HQ {
		p.flags.MarkHQAnchor(anchorID)
	}

	if err := p.writeAnchor(w, anchorID, anchorResult); err != nil {
		return err
	}

	if anchorResult.HQ && p.cfg.CorrectCandidates {
		if err := p.writeCandidates(w, kept, candSeqs, refineResult); err != nil {
			return err
		}
	}
	return nil
}

// collectSurvivors aligns every candidate (both orientations, via
// align.Select) and keeps only the valid ones, into p.survivor*. The
// anchor's own id never appears here; the minhash query already excluded
// it.
func (p *pipeline) collectSurvivors(anchorEncoded []uint32, anchorLen int) {
	p.survivorIDs = p.survivorIDs[:0]
	p.survivorDirections = p.survivorDirections[:0]
	p.survivorEncoded = p.survivorEncoded[:0]
	p.survivorQuality = p.survivorQuality[:0]
	p.survivorResults = p.survivorResults[:0]

	params := p.cfg.alignParams()
	for _, candID := range p.candidateIDs {
		if p.cfg.ExcludeAmbiguousReads && p.reads.ContainsN(candID) {
			continue
		}
		candLen := p.reads.Length(candID)
		candEncoded := p.reads.Encoded(candID)

		result, encoded, direction := p.aligner.Select(anchorEncoded, anchorLen, candEncoded, candLen, params)
		if !result.Valid {
			continue // unaligned pair: a silent per-candidate drop.
		}

		var quality []byte
		if p.cfg.UseQualityScores {
			quality = p.reads.Quality(candID)
			if direction == align.ReverseComplement && len(quality) > 0 {
				quality = reverseBytes(quality)
			}
		}

		p.survivorIDs = append(p.survivorIDs, candID)
		p.survivorDirections = append(p.survivorDirections, direction)
		p.survivorEncoded = append(p.survivorEncoded, encoded)
		p.survivorQuality = append(p.survivorQuality, quality)
		p.survivorResults = append(p.survivorResults, result)
	}
}

// applyFilter runs the adaptive mismatch-ratio filter over the aligned
// survivors and returns the indices (into p.survivor*) of the candidates
// it kept.
func (p *pipeline) applyFilter() ([]int, bool) {
	p.filterBuf = p.filterBuf[:0]
	for _, r := range p.survivorResults {
		p.filterBuf = append(p.filterBuf, filter.Candidate{Overlap: r.Overlap, Mismatches: r.Mismatches})
	}
	return filter.Apply(p.filterBuf, filter.Params{
		BaseErrorRate: p.cfg.EstimatedErrorRate,
		Target:        p.cfg.EstimatedCoverage * p.cfg.MCoverage,
	})
}

// buildMSASequences builds the msa.Sequence rows for the candidates kept by
// the filter, indexed the same way as p.survivor*.
func (p *pipeline) buildMSASequences(kept []int) []msa.Sequence {
	p.msaBuf = p.msaBuf[:0]
	for _, i := range kept {
		r := p.survivorResults[i]
		weight := msa.CandidateDefaultWeight(r.Mismatches, r.Overlap, p.cfg.MaxErrorRate)
		p.msaBuf = append(p.msaBuf, msa.Sequence{
			Encoded:       p.survivorEncoded[i],
			Length:        p.reads.Length(p.survivorIDs[i]),
			Shift:         r.Shift,
			Quality:       p.survivorQuality[i],
			DefaultWeight: weight,
		})
	}
	return p.msaBuf
}

// writeUncorrectedAnchor emits the anchor as-is, the local recovery for an
// anchor whose candidates didn't survive retrieval or filtering.
// p.anchorSeq already holds the anchor's original sequence.
func (p *pipeline) writeUncorrectedAnchor(w *scratch.Writer, anchorID uint32) error {
	enc := correct.EncodeCorrection(p.anchorSeq, p.anchorSeq)
	return appendRecord(w, scratch.KindAnchor, anchorID, false, enc, 0)
}

func (p *pipeline) writeAnchor(w *scratch.Writer, anchorID uint32, result correct.AnchorResult) error {
	corrected := result.Corrected
	if corrected == nil {
		corrected = p.anchorSeq
	}
	enc := correct.EncodeCorrection(p.anchorSeq, corrected)
	return appendRecord(w, scratch.KindAnchor, anchorID, result.HQ, enc, 0)
}

func (p *pipeline) writeCandidates(w *scratch.Writer, kept []int, candSeqs []msa.Sequence, refineResult msa.RefineResult) error {
	for _, survivingIdx := range refineResult.SurvivingCandidates {
		originalIdx := kept[survivingIdx]
		candID := p.survivorIDs[originalIdx]
		if p.flags.State(candID) == correct.CorrectedAsHQAnchor {
			continue // suppressed: already corrected as its own HQ anchor.
		}

		seq := candSeqs[survivingIdx]
		reverseComplemented := p.survivorDirections[originalIdx] == align.ReverseComplement
		candResult, ok := correct.CorrectCandidate(seq, reverseComplemented, refineResult.MSA, correct.CandidateParams{
			NewColumnsToCorrect: p.cfg.NewColumnsToCorrect,
		})
		if !ok {
			continue
		}

		// Claim the candidate id before writing, so two workers whose
		// anchors share this candidate can't both emit it. A read claimed
		// here is later skipped as an anchor; its candidate correction
		// stands in for the anchor pass.
		if !p.flags.TryClaim(candID) {
			continue
		}

		p.originalBuf = p.reads.AppendOriginal(p.originalBuf[:0], candID)
		enc := correct.EncodeCorrection(p.originalBuf, candResult.Corrected)
		if err := appendRecord(w, scratch.KindCandidate, candID, false, enc, int32(p.survivorResults[originalIdx].Shift)); err != nil {
			return err
		}
	}
	return nil
}

func appendRecord(w *scratch.Writer, kind scratch.Kind, id uint32, isHQ bool, enc correct.EncodedCorrection, shift int32) error {
	rec := &scratch.Record{
		ID:       id,
		Kind:     kind,
		IsHQ:     isHQ,
		UseEdits: enc.UseEdits,
		Shift:    shift,
	}
	if enc.UseEdits {
		rec.Edits = make([]scratch.Edit, len(enc.Edits))
		for i, e := range enc.Edits {
			rec.Edits[i] = scratch.Edit{Pos: int32(e.Pos), Base: e.Base}
		}
	} else {
		rec.FullSequence = append([]byte(nil), enc.FullSequence...)
	}
	w.Append(rec)
	return nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
