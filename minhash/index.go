// Package minhash implements the M-table inverted minhash index: bulk
// build from a readstore.Store, and per-query candidate retrieval with a
// per-map noise cutoff and optional num-hits filtering.
package minhash

import (
	"fmt"
)

// MaxMaps is the hard ceiling on the number of hash tables.
const MaxMaps = 16

// MaxK is the hard ceiling on k-mer length; a canonical k-mer hash is
// masked to 2k bits of a uint64.
const MaxK = 32

// mapTable is one finalized hash table: sorted unique keys, each with a
// sorted deduplicated id list, stored compacted into two parallel arrays
// plus an offset table. No inserts happen after finalization.
type mapTable struct {
	keys    []uint64
	offsets []int32
	values  []uint32
}

// Index is the finalized, read-only minhash index.
type Index struct {
	k                     int
	numMaps               int
	salts                 []uint64
	maps                  []mapTable
	maxResultsPerMapQuery int
}

// K returns the index's k-mer length.
func (idx *Index) K() int { return idx.k }

// NumMaps returns the number of hash tables actually built. This can be
// smaller than the number requested if a build pass failed to allocate its
// staging memory.
func (idx *Index) NumMaps() int { return idx.numMaps }

func validateBuildParams(k, numMaps int) error {
	if k < 1 || k > MaxK {
		return fmt.Errorf("minhash: k=%d out of range [1,%d]", k, MaxK)
	}
	if numMaps < 1 || numMaps > MaxMaps {
		return fmt.Errorf("minhash: num_maps=%d out of range [1,%d]", numMaps, MaxMaps)
	}
	return nil
}

func (t *mapTable) lookup(key uint64) []uint32 {
	lo, hi := 0, len(t.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.keys[mid] < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(t.keys) && t.keys[lo] == key {
		return t.values[t.offsets[lo]:t.offsets[lo+1]]
	}
	return nil
}
