package scratch

import "encoding/binary"

// trailerVersion guards the trailer layout.
const trailerVersion = 1

// encodeTrailer packs the record count recorded by Writer.Close into the
// recordio trailer, so a reader can learn how many records to expect
// without scanning the whole file first.
func encodeTrailer(count int64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(trailerVersion))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(count))
	return buf
}

func decodeTrailer(trailer []byte) (count int64, ok bool) {
	if len(trailer) != 16 {
		return 0, false
	}
	if binary.LittleEndian.Uint64(trailer[0:8]) != trailerVersion {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(trailer[8:16])), true
}
