package correct

import "github.com/grailbio/care/msa"

// CandidateParams configures CorrectCandidate.
type CandidateParams struct {
	NewColumnsToCorrect int
}

// CandidateResult is the consensus slice emitted for one surviving
// candidate, already rotated back to the candidate's original orientation.
type CandidateResult struct {
	Corrected []byte
}

// CorrectCandidate emits the consensus slice over cand's columns, provided
// cand's span falls within the anchor's columns extended by
// NewColumnsToCorrect on each side.
// reverseComplemented must reflect whichever direction align.Select chose
// for this candidate, so the emitted string is flipped back before
// recording. Callers are responsible for only calling this when the
// anchor is HQ, Config.CorrectCandidates is set, and the candidate's flag
// isn't already CorrectedAsHQAnchor.
func CorrectCandidate(cand msa.Sequence, reverseComplemented bool, m *msa.MSA, params CandidateParams) (CandidateResult, bool) {
	lo := m.AnchorStart - params.NewColumnsToCorrect
	hi := m.AnchorStart + m.AnchorLen + params.NewColumnsToCorrect

	candStart := cand.Shift - m.MinShift
	candEnd := candStart + cand.Length
	if candStart < lo || candEnd > hi {
		return CandidateResult{}, false
	}

	consensus := make([]byte, cand.Length)
	for i := 0; i < cand.Length; i++ {
		consensus[i] = baseByte(m.Columns[candStart+i].Consensus)
	}
	if reverseComplemented {
		consensus = reverseComplementBytes(consensus)
	}
	return CandidateResult{Corrected: consensus}, true
}
