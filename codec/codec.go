// Package codec implements the 2-bit ACGT sequence representation shared by
// every component of the correction pipeline: pack/unpack between ASCII and
// packed words, reverse complement, and a rolling canonical k-mer iterator.
//
// Bases are packed 2 bits each (A=00, C=01, G=10, T=11) into 32-bit words,
// 16 bases per word. Sequences containing a base outside {A,C,G,T} cannot
// be packed faithfully; callers check with HasAmbiguous first.
package codec

import (
	"fmt"

	gunsafe "github.com/grailbio/base/unsafe"
)

// BasesPerWord is the number of 2-bit bases packed into one encoding word.
const BasesPerWord = 16

var baseToCode [256]int8

func init() {
	for i := range baseToCode {
		baseToCode[i] = -1
	}
	baseToCode['A'] = 0
	baseToCode['C'] = 1
	baseToCode['G'] = 2
	baseToCode['T'] = 3
}

// codeToBase maps a 2-bit code back to its ASCII base.
var codeToBase = [4]byte{'A', 'C', 'G', 'T'}

// complementCode maps a 2-bit code to the code of its complementary base.
// A<->T is 0<->3, C<->G is 1<->2, i.e. complement(x) = 3-x = x^3.
func complementCode(c uint32) uint32 { return c ^ 3 }

// EncodedWords returns the number of 32-bit words needed to pack a sequence
// of the given length.
func EncodedWords(length int) int {
	return (length + BasesPerWord - 1) / BasesPerWord
}

// HasAmbiguous reports whether seq contains a byte outside {A,C,G,T}
// (case-sensitive; callers are expected to have already upper-cased input,
// matching the rest of the pipeline's ASCII convention).
func HasAmbiguous(seq []byte) bool {
	for _, b := range seq {
		if baseToCode[b] < 0 {
			return true
		}
	}
	return false
}

// Encode packs seq (length L, bases restricted to ACGT) into dst, which must
// have length EncodedWords(L). It panics if seq contains an ambiguous base;
// callers must check HasAmbiguous first.
func Encode(dst []uint32, seq []byte) {
	nWords := EncodedWords(len(seq))
	if len(dst) != nWords {
		panic(fmt.Sprintf("codec.Encode: dst has %d words, want %d", len(dst), nWords))
	}
	for wi := 0; wi < nWords; wi++ {
		var word uint32
		base := wi * BasesPerWord
		end := base + BasesPerWord
		if end > len(seq) {
			end = len(seq)
		}
		for i := base; i < end; i++ {
			code := baseToCode[seq[i]]
			if code < 0 {
				panic(fmt.Sprintf("codec.Encode: ambiguous base %q at position %d", seq[i], i))
			}
			word |= uint32(code) << uint((i-base)*2)
		}
		dst[wi] = word
	}
}

// EncodeNoValidate packs seq into dst like Encode, but maps any byte
// outside {A,C,G,T} to A instead of panicking. Callers that need the
// original bases back must retain them separately; the readstore keeps the
// raw sequence of each ambiguous read for exactly that reason.
func EncodeNoValidate(dst []uint32, seq []byte) {
	nWords := EncodedWords(len(seq))
	if len(dst) != nWords {
		panic(fmt.Sprintf("codec.EncodeNoValidate: dst has %d words, want %d", len(dst), nWords))
	}
	for wi := 0; wi < nWords; wi++ {
		var word uint32
		base := wi * BasesPerWord
		end := base + BasesPerWord
		if end > len(seq) {
			end = len(seq)
		}
		for i := base; i < end; i++ {
			code := baseToCode[seq[i]]
			if code < 0 {
				code = 0
			}
			word |= uint32(code) << uint((i-base)*2)
		}
		dst[wi] = word
	}
}

// Decode unpacks the first length bases of src into dst, which must have
// length length.
func Decode(dst []byte, src []uint32, length int) {
	if len(dst) != length {
		panic(fmt.Sprintf("codec.Decode: dst has %d bytes, want %d", len(dst), length))
	}
	for i := 0; i < length; i++ {
		word := src[i/BasesPerWord]
		shift := uint((i % BasesPerWord) * 2)
		dst[i] = codeToBase[(word>>shift)&3]
	}
}

// DecodeString is a convenience wrapper around Decode that returns a string
// without an extra copy of the decoded bytes.
func DecodeString(src []uint32, length int) string {
	buf := make([]byte, length)
	Decode(buf, src, length)
	return gunsafe.BytesToString(buf)
}

// ReverseComplement writes the reverse complement of the first length bases
// of src into dst (length EncodedWords(length)), which must not alias src.
func ReverseComplement(dst []uint32, src []uint32, length int) {
	nWords := EncodedWords(length)
	if len(dst) != nWords {
		panic(fmt.Sprintf("codec.ReverseComplement: dst has %d words, want %d", len(dst), nWords))
	}
	for i := 0; i < length; i++ {
		srcWord := src[i/BasesPerWord]
		srcShift := uint((i % BasesPerWord) * 2)
		code := complementCode((srcWord >> srcShift) & 3)

		j := length - 1 - i
		dstWord := j / BasesPerWord
		dstShift := uint((j % BasesPerWord) * 2)
		dst[dstWord] |= code << dstShift
	}
}

// Base returns the base at position i (0-based) of a packed sequence.
func Base(src []uint32, i int) byte {
	word := src[i/BasesPerWord]
	shift := uint((i % BasesPerWord) * 2)
	return codeToBase[(word>>shift)&3]
}

// Code returns the 2-bit code at position i (0-based) of a packed sequence.
func Code(src []uint32, i int) uint32 {
	word := src[i/BasesPerWord]
	shift := uint((i % BasesPerWord) * 2)
	return (word >> shift) & 3
}
