// Package scratch implements the per-worker result writer: ordered scratch
// files, one per worker, in a self-describing binary layout that a
// downstream merge can use to reconstruct per-id output in ascending id
// order.
package scratch

import (
	"encoding/binary"
	"fmt"
)

// Kind distinguishes an anchor record from a candidate record.
type Kind uint8

const (
	KindAnchor Kind = iota
	KindCandidate
)

// flag bits packed into a record's single flags byte.
const (
	flagIsHQ uint8 = 1 << iota
	flagUseEdits
)

// Edit is one position-base correction, matching correct.Edit; duplicated
// here (rather than importing package correct) to keep the wire format
// decoupled from the in-memory correction representation.
type Edit struct {
	Pos  int32
	Base byte
}

// Record is one corrected-sequence output.
type Record struct {
	ID           uint32
	Kind         Kind
	IsHQ         bool
	UseEdits     bool
	Edits        []Edit // valid iff UseEdits
	FullSequence []byte // valid iff !UseEdits
	Shift        int32  // valid iff Kind == KindCandidate
}

// marshalRecord writes the wire layout:
//
//	id: varint, kind: u8, flags: u8,
//	if use_edits: count: varint + (pos: varint, base: u8)*count
//	else: length: varint + bases[length]
//	if Candidate: shift: i32 (zigzag varint)
//
// It reuses a caller-supplied scratch buffer, growing it only when needed.
// Varints rather than fixed-width fields, since payloads are unboundedly
// variable-length and the recordio stream is already zstd-compressed, so
// there's no fixed-stride random access to preserve.
func marshalRecord(buf []byte, r *Record) []byte {
	buf = buf[:0]
	buf = appendVarint(buf, uint64(r.ID))
	buf = append(buf, byte(r.Kind))

	var flags uint8
	if r.IsHQ {
		flags |= flagIsHQ
	}
	if r.UseEdits {
		flags |= flagUseEdits
	}
	buf = append(buf, flags)

	if r.UseEdits {
		buf = appendVarint(buf, uint64(len(r.Edits)))
		for _, e := range r.Edits {
			buf = appendVarint(buf, uint64(e.Pos))
			buf = append(buf, e.Base)
		}
	} else {
		buf = appendVarint(buf, uint64(len(r.FullSequence)))
		buf = append(buf, r.FullSequence...)
	}

	if r.Kind == KindCandidate {
		var shiftBuf [binary.MaxVarintLen64]byte
		n := binary.PutVarint(shiftBuf[:], int64(r.Shift))
		buf = append(buf, shiftBuf[:n]...)
	}
	return buf
}

func appendVarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// marshalForRecordio adapts marshalRecord to recordio.WriterOpts' Marshal
// signature (scratch []byte, p interface{}) ([]byte, error).
func marshalForRecordio(buf []byte, p interface{}) ([]byte, error) {
	r, ok := p.(*Record)
	if !ok {
		return nil, fmt.Errorf("scratch: marshal: unexpected type %T", p)
	}
	return marshalRecord(buf, r), nil
}

// unmarshalForRecordio adapts unmarshalRecord to recordio.ScannerOpts'
// Unmarshal signature (in []byte) (interface{}, error).
func unmarshalForRecordio(in []byte) (interface{}, error) {
	return unmarshalRecord(in)
}

func unmarshalRecord(in []byte) (*Record, error) {
	r := &Record{}
	rest := in

	idVal, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, fmt.Errorf("scratch: truncated record: id")
	}
	r.ID = uint32(idVal)
	rest = rest[n:]

	if len(rest) < 2 {
		return nil, fmt.Errorf("scratch: truncated record: kind/flags")
	}
	r.Kind = Kind(rest[0])
	flags := rest[1]
	r.IsHQ = flags&flagIsHQ != 0
	r.UseEdits = flags&flagUseEdits != 0
	rest = rest[2:]

	if r.UseEdits {
		count, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, fmt.Errorf("scratch: truncated record: edit count")
		}
		rest = rest[n:]
		r.Edits = make([]Edit, count)
		for i := range r.Edits {
			pos, n := binary.Uvarint(rest)
			if n <= 0 {
				return nil, fmt.Errorf("scratch: truncated record: edit pos")
			}
			rest = rest[n:]
			if len(rest) < 1 {
				return nil, fmt.Errorf("scratch: truncated record: edit base")
			}
			r.Edits[i] = Edit{Pos: int32(pos), Base: rest[0]}
			rest = rest[1:]
		}
	} else {
		length, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, fmt.Errorf("scratch: truncated record: length")
		}
		rest = rest[n:]
		if uint64(len(rest)) < length {
			return nil, fmt.Errorf("scratch: truncated record: sequence")
		}
		r.FullSequence = append([]byte(nil), rest[:length]...)
		rest = rest[length:]
	}

	if r.Kind == KindCandidate {
		shift, n := binary.Varint(rest)
		if n <= 0 {
			return nil, fmt.Errorf("scratch: truncated record: shift")
		}
		r.Shift = int32(shift)
	}
	return r, nil
}
