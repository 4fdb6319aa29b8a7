package minhash

import (
	"reflect"
	"unsafe"

	"golang.org/x/sys/unix"
)

// shardEntry is one (map-specific hash, read id) pair collected during a
// build pass, before sorting and compaction.
type shardEntry struct {
	key uint64
	id  uint32
	_   uint32 // pad to 16 bytes; avoids straddling cache lines across entries.
}

const shardEntrySize = int(unsafe.Sizeof(shardEntry{}))

const hugePageSize = 2 << 20

// mmapShard anonymously maps n shardEntry-sized slots and advises the
// kernel to back them with transparent huge pages. The caller must
// munmapShard the returned raw bytes once done (after compacting into the
// finalized index, which uses ordinary Go-allocated slices).
func mmapShard(n int) (entries []shardEntry, raw []byte, err error) {
	if n == 0 {
		return nil, nil, nil
	}
	size := n * shardEntrySize
	raw, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	// Madvise is a throughput hint; a failure here doesn't affect
	// correctness, so it's intentionally not treated as fatal.
	_ = unix.Madvise(raw, unix.MADV_HUGEPAGE)

	var entriesSlice []shardEntry
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&entriesSlice))
	hdr.Data = uintptr(unsafe.Pointer(&raw[0]))
	hdr.Len = n
	hdr.Cap = n
	return entriesSlice, raw, nil
}

func munmapShard(raw []byte) error {
	if raw == nil {
		return nil
	}
	return unix.Munmap(raw)
}
