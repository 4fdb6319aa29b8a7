package correct

import "github.com/grailbio/care/codec"

// Edit is one position-base correction; edit lists are kept in ascending
// position order.
type Edit struct {
	Pos  int
	Base byte
}

// EncodedCorrection is the chosen representation of a correction: a short
// edit script or the full corrected sequence.
type EncodedCorrection struct {
	UseEdits     bool
	Edits        []Edit
	FullSequence []byte
}

// ApplyEdits reproduces the full corrected sequence from original and an
// ascending-position edit list.
func ApplyEdits(original []byte, edits []Edit) []byte {
	out := append([]byte(nil), original...)
	for _, e := range edits {
		out[e.Pos] = e.Base
	}
	return out
}

// EncodeCorrection compares corrected to original and picks the edit-script
// encoding when the edit count doesn't exceed length/7 and original
// contains no ambiguous base, else the full corrected sequence.
func EncodeCorrection(original, corrected []byte) EncodedCorrection {
	var edits []Edit
	for i := range corrected {
		if original[i] != corrected[i] {
			edits = append(edits, Edit{Pos: i, Base: corrected[i]})
		}
	}
	if len(edits) <= len(corrected)/7 && !codec.HasAmbiguous(original) {
		return EncodedCorrection{UseEdits: true, Edits: edits}
	}
	return EncodedCorrection{UseEdits: false, FullSequence: corrected}
}
