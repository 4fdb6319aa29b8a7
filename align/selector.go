package align

import "github.com/grailbio/care/codec"

// Direction records which orientation of a candidate an alignment chose.
type Direction uint8

const (
	Forward Direction = iota
	ReverseComplement
)

// Select aligns candidate against anchor in both orientations and picks a
// winner: invalid loses; otherwise the direction with the larger
// overlap-mismatches wins; ties break by larger overlap, then by
// non-negative shift. It returns the winning alignment, the candidate's
// encoding rewritten into anchor orientation (reverse-complemented if that
// direction won), and which direction was chosen. The returned encoding is freshly allocated,
// since callers retain it across the whole anchor's pipeline. If neither
// direction is valid, the returned Result has Valid == false and encoded
// is nil.
func (a *Aligner) Select(anchor []uint32, anchorLen int, candidate []uint32, candidateLen int, params Params) (result Result, encoded []uint32, direction Direction) {
	fwd := a.Align(anchor, anchorLen, candidate, candidateLen, params)

	nWords := codec.EncodedWords(candidateLen)
	a.rcEncoded = a.rcEncoded[:0]
	if cap(a.rcEncoded) < nWords {
		a.rcEncoded = make([]uint32, nWords)
	}
	a.rcEncoded = a.rcEncoded[:nWords]
	for i := range a.rcEncoded {
		a.rcEncoded[i] = 0
	}
	codec.ReverseComplement(a.rcEncoded, candidate, candidateLen)
	rc := a.Align(anchor, anchorLen, a.rcEncoded, candidateLen, params)

	keepRC := func() (Result, []uint32, Direction) {
		out := make([]uint32, nWords)
		copy(out, a.rcEncoded)
		return rc, out, ReverseComplement
	}
	keepFwd := func() (Result, []uint32, Direction) {
		out := make([]uint32, nWords)
		copy(out, candidate)
		return fwd, out, Forward
	}

	switch {
	case !fwd.Valid && !rc.Valid:
		return Result{}, nil, Forward
	case !fwd.Valid:
		return keepRC()
	case !rc.Valid:
		return keepFwd()
	}

	if chooseReverseComplement(fwd, rc) {
		return keepRC()
	}
	return keepFwd()
}

// Select is the one-shot form of Aligner.Select, for callers outside the
// per-worker hot path.
func Select(anchor []uint32, anchorLen int, candidate []uint32, candidateLen int, params Params) (Result, []uint32, Direction) {
	return NewAligner().Select(anchor, anchorLen, candidate, candidateLen, params)
}

// chooseReverseComplement applies Select's ordered rule, given that both
// fwd and rc are already known valid.
func chooseReverseComplement(fwd, rc Result) bool {
	fwdMatch := fwd.Overlap - fwd.Mismatches
	rcMatch := rc.Overlap - rc.Mismatches
	if fwdMatch != rcMatch {
		return rcMatch > fwdMatch
	}
	if fwd.Overlap != rc.Overlap {
		return rc.Overlap > fwd.Overlap
	}
	fwdPos := fwd.Shift >= 0
	rcPos := rc.Shift >= 0
	if fwdPos != rcPos {
		return rcPos
	}
	return false
}
