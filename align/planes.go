package align

import "github.com/grailbio/care/codec"

// bitWords returns the number of 64-bit words needed to hold one bit per
// base for length bases.
func bitWords(length int) int {
	return (length + 63) / 64
}

// ensureWords returns buf resized to n words, all zero, growing the
// backing array as needed (amortized doubling, never shrunk).
func ensureWords(buf []uint64, n int) []uint64 {
	if cap(buf) < n {
		newCap := 2 * cap(buf)
		if newCap < n {
			newCap = n
		}
		buf = make([]uint64, n, newCap)
	} else {
		buf = buf[:n]
		for i := range buf {
			buf[i] = 0
		}
	}
	return buf
}

// fillPlanes splits a packed 2-bit sequence into two bit-planes of 64 bases
// each: hi holds the high bit of each base's code, lo the low bit. hi and
// lo are reused between calls.
func fillPlanes(hi, lo []uint64, encoded []uint32, length int) (hiOut, loOut []uint64) {
	n := bitWords(length)
	hi = ensureWords(hi, n)
	lo = ensureWords(lo, n)
	for i := 0; i < length; i++ {
		code := uint64(codec.Code(encoded, i))
		w, b := i/64, uint(i%64)
		lo[w] |= (code & 1) << b
		hi[w] |= ((code >> 1) & 1) << b
	}
	return hi, lo
}

// floorDiv and floorMod implement Euclidean (floor) division, unlike Go's
// built-in truncating division, so shiftRightInto behaves uniformly for
// negative shifts.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

// shiftRightInto fills dst (resized to outWords) with words shifted so that
// bit p of the result equals bit (p - shift) of words (zero outside the
// source range), i.e. a positive shift moves every bit to a higher
// position. A negative shift shifts left. This is the operation that moves
// a candidate's bit-planes into the anchor's coordinate frame for a given
// alignment shift.
func shiftRightInto(dst, words []uint64, shift int, outWords int) []uint64 {
	n := len(words)
	dst = ensureWords(dst, outWords)
	wordShift := floorDiv(shift, 64)
	bitShift := uint(floorMod(shift, 64))

	for i := 0; i < outWords; i++ {
		srcIdx := i - wordShift
		var lo, hi uint64
		if srcIdx >= 0 && srcIdx < n {
			lo = words[srcIdx]
		}
		if bitShift == 0 {
			dst[i] = lo
			continue
		}
		if srcIdx-1 >= 0 && srcIdx-1 < n {
			hi = words[srcIdx-1]
		}
		dst[i] = (lo << bitShift) | (hi >> (64 - bitShift))
	}
	return dst
}

// shiftRight is the allocating form of shiftRightInto, kept for tests.
func shiftRight(words []uint64, shift int, outWords int) []uint64 {
	return shiftRightInto(nil, words, shift, outWords)
}
