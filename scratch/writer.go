package scratch

import (
	"io"

	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
)

func init() {
	// Registers the "zstd" transformer name with recordio.
	recordiozstd.Init()
}

// Writer appends Records to one worker's scratch file, in ascending anchor
// id order. It is not safe for concurrent use; each worker owns exactly
// one Writer, so scratch writes are never contended.
type Writer struct {
	w     recordio.Writer
	count int64
}

// NewWriter opens a scratch Writer over out, compressed with the zstd
// recordio transformer.
func NewWriter(out io.Writer) *Writer {
	w := recordio.NewWriter(out, recordio.WriterOpts{
		Marshal:      marshalForRecordio,
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(recordio.KeyTrailer, true)
	return &Writer{w: w}
}

// Append writes one record. Callers are responsible for id ordering;
// Writer does not reorder or buffer beyond what recordio itself does.
func (w *Writer) Append(r *Record) {
	w.w.Append(r)
	w.count++
}

// Close finishes the underlying recordio stream, setting a trailer with
// the record count so a reader can preallocate.
func (w *Writer) Close() error {
	w.w.SetTrailer(encodeTrailer(w.count))
	return w.w.Finish()
}

// Reader scans a worker's scratch file back into Records, in the order
// they were written (which, per Writer's contract, is ascending anchor id).
type Reader struct {
	s recordio.Scanner
}

// NewReader opens a scratch Reader over in, a scratch file produced by
// Writer.
func NewReader(in io.ReadSeeker) *Reader {
	return &Reader{s: recordio.NewScanner(in, recordio.ScannerOpts{
		Unmarshal: unmarshalForRecordio,
	})}
}

// Scan advances to the next Record, reporting whether one was found.
func (r *Reader) Scan() bool { return r.s.Scan() }

// Record returns the Record most recently advanced to by Scan.
func (r *Reader) Record() *Record { return r.s.Get().(*Record) }

// Err returns the first error encountered during scanning, if any.
func (r *Reader) Err() error { return r.s.Err() }

// Count returns the number of records the writer reported in its trailer,
// or -1 if the trailer is absent or unreadable (an older or truncated
// file).
func (r *Reader) Count() int64 {
	n, ok := decodeTrailer(r.s.Trailer())
	if !ok {
		return -1
	}
	return n
}
