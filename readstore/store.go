// Package readstore provides random access to every read's length, packed
// sequence, and quality string. A Store is built once and is read-only and
// safe for concurrent use by many workers thereafter, the same promise the
// minhash index makes.
package readstore

import (
	"fmt"

	"github.com/grailbio/base/simd"
	"github.com/grailbio/care/codec"
)

// Store holds, for every read id in [0, N), its length, packed sequence, and
// quality string, in three parallel flat arenas; no read's data requires a
// separate heap object.
type Store struct {
	lengths     []int32
	seqOffsets  []int32 // seqOffsets[id] is the first encoding word of read id; seqOffsets[N] is the total word count.
	seqArena    []uint32
	qualOffsets []int32 // parallel to seqOffsets, but in bytes.
	qualArena   []byte
	ambiguous   []bool
	// raw holds the original ASCII of reads containing an ambiguous base,
	// which the 2-bit arena cannot represent faithfully (they are packed
	// with N mapped to A). Ambiguous reads are rare, so a sparse map costs
	// far less than keeping ASCII for every read.
	raw        map[uint32][]byte
	useQuality bool
}

// Builder accumulates reads before Finalize produces an immutable Store.
type Builder struct {
	lengths     []int32
	seqArena    []uint32
	seqOffsets  []int32
	qualArena   []byte
	qualOffsets []int32
	ambiguous   []bool
	raw         map[uint32][]byte
	useQuality  bool
}

// NewBuilder creates a Builder. If useQuality is false, quality strings
// are not retained and Store.Quality returns nil.
func NewBuilder(useQuality bool) *Builder {
	b := &Builder{useQuality: useQuality, raw: make(map[uint32][]byte)}
	b.seqOffsets = append(b.seqOffsets, 0)
	b.qualOffsets = append(b.qualOffsets, 0)
	return b
}

// Add appends one read (sequence upper-cased ASCII, quality Phred+33 bytes
// of the same length as seq, or nil if qualities aren't tracked) and
// returns its assigned id. Ids are assigned densely starting at 0.
func (b *Builder) Add(seq, qual []byte) uint32 {
	id := uint32(len(b.lengths))
	b.lengths = append(b.lengths, int32(len(seq)))

	ambiguous := codec.HasAmbiguous(seq)
	b.ambiguous = append(b.ambiguous, ambiguous)

	nWords := codec.EncodedWords(len(seq))
	start := len(b.seqArena)
	b.seqArena = append(b.seqArena, make([]uint32, nWords)...)
	codec.EncodeNoValidate(b.seqArena[start:start+nWords], seq)
	if ambiguous {
		b.raw[id] = append([]byte(nil), seq...)
	}
	b.seqOffsets = append(b.seqOffsets, int32(start+nWords))

	if b.useQuality {
		qstart := len(b.qualArena)
		b.qualArena = append(b.qualArena, qual...)
		b.qualOffsets = append(b.qualOffsets, int32(qstart+len(qual)))
	} else {
		b.qualOffsets = append(b.qualOffsets, b.qualOffsets[len(b.qualOffsets)-1])
	}
	return id
}

// Finalize produces the immutable Store. The Builder must not be reused
// afterward.
func (b *Builder) Finalize() *Store {
	return &Store{
		lengths:     b.lengths,
		seqOffsets:  b.seqOffsets,
		seqArena:    b.seqArena,
		qualOffsets: b.qualOffsets,
		qualArena:   b.qualArena,
		ambiguous:   b.ambiguous,
		raw:         b.raw,
		useQuality:  b.useQuality,
	}
}

// NumReads returns the number of reads in the store.
func (s *Store) NumReads() int { return len(s.lengths) }

// Length returns the length of read id.
func (s *Store) Length(id uint32) int { return int(s.lengths[id]) }

// ContainsN reports whether read id contains an ambiguous base.
func (s *Store) ContainsN(id uint32) bool { return s.ambiguous[id] }

// Encoded returns the packed 2-bit encoding of read id. The slice is a view
// into the store's arena; callers must not mutate it. If the read contains an
// ambiguous base, those positions are packed as A; AppendOriginal recovers
// the true bases.
func (s *Store) Encoded(id uint32) []uint32 {
	return s.seqArena[s.seqOffsets[id]:s.seqOffsets[id+1]]
}

// AppendOriginal appends read id's original ASCII sequence to dst and
// returns it: the retained raw bytes for a read containing an ambiguous
// base, a plain decode of the packed arena otherwise.
func (s *Store) AppendOriginal(dst []byte, id uint32) []byte {
	if raw, ok := s.raw[id]; ok {
		return append(dst, raw...)
	}
	length := int(s.lengths[id])
	start := len(dst)
	dst = append(dst, make([]byte, length)...)
	codec.Decode(dst[start:start+length], s.Encoded(id), length)
	return dst
}

// Quality returns the Phred+33 quality string of read id, or nil if the
// store was built with useQuality=false.
func (s *Store) Quality(id uint32) []byte {
	if !s.useQuality {
		return nil
	}
	return s.qualArena[s.qualOffsets[id]:s.qualOffsets[id+1]]
}

// UsesQuality reports whether the store retains quality strings.
func (s *Store) UsesQuality() bool { return s.useQuality }

// GatherLengths copies the lengths of ids into dst, which is grown
// (amortized doubling) as needed and returned.
func GatherLengths(dst []int32, s *Store, ids []uint32) []int32 {
	dst = growInt32(dst, len(ids))
	for i, id := range ids {
		dst[i] = s.lengths[id]
	}
	return dst[:len(ids)]
}

// GatherEncoded copies the packed encodings of ids into dst at a fixed
// pitch (words per read), which must be at least the encoded-word count of
// the longest id; dst is grown to len(ids)*pitch if necessary.
func GatherEncoded(dst []uint32, pitch int, s *Store, ids []uint32) []uint32 {
	need := len(ids) * pitch
	dst = growUint32(dst, need)
	for i, id := range ids {
		enc := s.Encoded(id)
		if len(enc) > pitch {
			panic(fmt.Sprintf("readstore.GatherEncoded: read %d needs %d words, pitch is %d", id, len(enc), pitch))
		}
		row := dst[i*pitch : i*pitch+pitch]
		copy(row, enc)
		for j := len(enc); j < pitch; j++ {
			row[j] = 0
		}
	}
	return dst[:need]
}

// GatherQualities copies the quality strings of ids into dst at a fixed
// pitch (bytes per read); dst is grown as needed.
func GatherQualities(dst []byte, pitch int, s *Store, ids []uint32) []byte {
	need := len(ids) * pitch
	dst = growByte(dst, need)
	for i, id := range ids {
		q := s.Quality(id)
		row := dst[i*pitch : i*pitch+pitch]
		copy(row, q)
		for j := len(q); j < pitch; j++ {
			row[j] = 0
		}
	}
	return dst[:need]
}

func growInt32(buf []int32, n int) []int32 {
	if cap(buf) >= n {
		return buf[:n]
	}
	newCap := cap(buf) * 2
	if newCap < n {
		newCap = n
	}
	grown := make([]int32, n, newCap)
	copy(grown, buf)
	return grown
}

func growUint32(buf []uint32, n int) []uint32 {
	if cap(buf) >= n {
		return buf[:n]
	}
	newCap := cap(buf) * 2
	if newCap < n {
		newCap = n
	}
	grown := make([]uint32, n, newCap)
	copy(grown, buf)
	return grown
}

// growByte resizes without preserving contents; gather callers overwrite
// every row they claim.
func growByte(buf []byte, n int) []byte {
	simd.ResizeUnsafe(&buf, n)
	return buf
}
