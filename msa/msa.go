// Package msa implements the weighted multiple-sequence-alignment column
// model: per-column base tallies built from an anchor and its aligned
// candidates, and the bounded iterative refinement loop that drops
// candidates supporting a spurious variant.
package msa

import (
	"math"

	"github.com/grailbio/care/codec"
)

// Base is a 2-bit base code, in the same A<C<G<T order codec uses, which
// doubles as the deterministic consensus tie-break order.
type Base uint8

const (
	BaseA Base = iota
	BaseC
	BaseG
	BaseT
	numBases = 4
)

// Sequence is one row contributing to an MSA: the anchor itself (Shift == 0,
// DefaultWeight == 1) or a candidate already rewritten into anchor
// orientation by align.Select.
type Sequence struct {
	Encoded       []uint32
	Length        int
	Shift         int
	Quality       []byte // nil when quality scores are disabled
	DefaultWeight float32
}

// CandidateDefaultWeight computes
// 1 - sqrt(mismatches / (overlap * maxErrorRate)), clamped to [0, 1]. The
// lower clamp matters when mismatches exceeds the overlap*maxErrorRate
// bound and the expression goes negative.
func CandidateDefaultWeight(mismatches, overlap int, maxErrorRate float64) float32 {
	if overlap <= 0 || maxErrorRate <= 0 {
		return 0
	}
	ratio := float64(mismatches) / (float64(overlap) * maxErrorRate)
	w := 1 - math.Sqrt(ratio)
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	return float32(w)
}

// Column is one position's tally across every contributing sequence.
type Column struct {
	Counts       [numBases]uint32
	Weights      [numBases]float32
	Coverage     uint32
	Consensus    Base
	Support      float32
	HasOrig      bool
	OrigWeight   float32
	OrigCoverage uint32
}

// MSA is a built column layout, spanning columns [0, len(Columns)) in its
// own coordinate space; MinShift converts back to alignment-shift space
// (column c corresponds to shift-space position c + MinShift).
type MSA struct {
	Columns     []Column
	MinShift    int
	AnchorStart int
	AnchorLen   int
}

// Build lays out columns spanning every contributing sequence and tallies
// counts/weights/coverage into them, then
// computes each column's consensus and support, and finally the anchor
// columns' orig_weight/orig_coverage.
func Build(anchor Sequence, candidates []Sequence, useQuality bool) *MSA {
	minShift := 0
	maxEnd := anchor.Length
	for _, c := range candidates {
		if c.Shift < minShift {
			minShift = c.Shift
		}
		if end := c.Shift + c.Length; end > maxEnd {
			maxEnd = end
		}
	}

	columns := make([]Column, maxEnd-minShift)
	tallyInto(columns, anchor, minShift, useQuality)
	for _, c := range candidates {
		tallyInto(columns, c, minShift, useQuality)
	}
	for i := range columns {
		finalizeColumn(&columns[i])
	}

	anchorStart := -minShift
	markOrig(columns, anchor, anchorStart)

	return &MSA{
		Columns:     columns,
		MinShift:    minShift,
		AnchorStart: anchorStart,
		AnchorLen:   anchor.Length,
	}
}

func tallyInto(columns []Column, seq Sequence, minShift int, useQuality bool) {
	base := seq.Shift - minShift
	for i := 0; i < seq.Length; i++ {
		col := &columns[base+i]
		code := codec.Code(seq.Encoded, i)

		qw := float32(1.0)
		if useQuality && seq.Quality != nil {
			qw = QualityWeight(seq.Quality[i])
		}

		col.Counts[code]++
		col.Weights[code] += seq.DefaultWeight * qw
		col.Coverage++
	}
}

// finalizeColumn picks the consensus base (argmax weight, ties broken
// A<C<G<T by scanning in that order and requiring a strict improvement) and
// computes support = max_weight / sum_weights.
func finalizeColumn(c *Column) {
	var sum float32
	best := BaseA
	bestWeight := float32(-1)
	for b := Base(0); b < numBases; b++ {
		sum += c.Weights[b]
		if c.Weights[b] > bestWeight {
			bestWeight = c.Weights[b]
			best = b
		}
	}
	c.Consensus = best
	if sum > 0 {
		c.Support = bestWeight / sum
	}
}

func markOrig(columns []Column, anchor Sequence, anchorStart int) {
	for i := 0; i < anchor.Length; i++ {
		col := &columns[anchorStart+i]
		code := codec.Code(anchor.Encoded, i)
		col.HasOrig = true
		col.OrigWeight = col.Weights[code]
		col.OrigCoverage = col.Counts[code]
	}
}
