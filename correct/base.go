// Package correct implements the consensus-correction step: the HQ
// decision over an anchor's MSA columns, anchor and candidate correction,
// edit-script encoding, and the process-wide correction-flags bitmap.
package correct

import "github.com/grailbio/care/msa"

func baseByte(b msa.Base) byte {
	switch b {
	case msa.BaseA:
		return 'A'
	case msa.BaseC:
		return 'C'
	case msa.BaseG:
		return 'G'
	case msa.BaseT:
		return 'T'
	default:
		return 'A'
	}
}

func complementByte(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	default:
		return b
	}
}

func reverseComplementBytes(s []byte) []byte {
	out := make([]byte, len(s))
	for i, b := range s {
		out[len(s)-1-i] = complementByte(b)
	}
	return out
}
