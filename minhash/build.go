package minhash

import (
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/care/codec"
	"github.com/grailbio/care/readstore"
)

// BuildOpts configures Build. EstimatedCoverage sets the per-map noise
// cutoff (a query list longer than 2.5x the estimated coverage is treated
// as empty). MemoryBudgetBytes caps how many hash tables are built in a
// single pass; ExcludeAmbiguous skips reads containing an ambiguous base
// entirely.
type BuildOpts struct {
	K                 int
	NumMaps           int
	EstimatedCoverage float64
	MemoryBudgetBytes int64
	ExcludeAmbiguous  bool
}

// Build constructs a minhash Index over every read in reads. It returns an
// error only for out-of-range k or NumMaps. A pass failing to allocate its
// staging memory is not an error; it is logged and the returned index
// simply has fewer maps than requested.
func Build(reads *readstore.Store, opts BuildOpts) (*Index, error) {
	if err := validateBuildParams(opts.K, opts.NumMaps); err != nil {
		return nil, err
	}
	salts := defaultSalts(opts.NumMaps)
	hashers := make([]mapHasher, opts.NumMaps)
	for m := range hashers {
		hashers[m] = newMapHasher(m, salts[m])
	}

	n := reads.NumReads()
	bytesPerMapPass := int64(n) * int64(shardEntrySize)
	mapsPerPass := opts.NumMaps
	if opts.MemoryBudgetBytes > 0 && bytesPerMapPass > 0 {
		mapsPerPass = int(opts.MemoryBudgetBytes / bytesPerMapPass)
		if mapsPerPass < 1 {
			mapsPerPass = 1
		}
		if mapsPerPass > opts.NumMaps {
			mapsPerPass = opts.NumMaps
		}
	}

	maps := make([]mapTable, 0, opts.NumMaps)
	built := 0
	for built < opts.NumMaps {
		passSize := mapsPerPass
		if built+passSize > opts.NumMaps {
			passSize = opts.NumMaps - built
		}
		passHashers := hashers[built : built+passSize]
		passTables, err := buildPass(reads, opts.K, passHashers, opts.ExcludeAmbiguous)
		if err != nil {
			log.Error.Printf("minhash: build pass for maps [%d,%d) failed: %v; proceeding with %d of %d maps", built, built+passSize, err, built, opts.NumMaps)
			break
		}
		maps = append(maps, passTables...)
		built += passSize
	}

	return &Index{
		k:                     opts.K,
		numMaps:               len(maps),
		salts:                 salts[:len(maps)],
		maps:                  maps,
		maxResultsPerMapQuery: int(2.5 * opts.EstimatedCoverage),
	}, nil
}

// buildPass runs one full scan of reads, building one mapTable per hasher
// in passHashers. Each hasher's shard is staged in its own mmap'd buffer,
// sorted, deduplicated, and compacted before the buffer is released.
func buildPass(reads *readstore.Store, k int, passHashers []mapHasher, excludeAmbiguous bool) ([]mapTable, error) {
	n := reads.NumReads()
	entries := make([][]shardEntry, len(passHashers))
	raws := make([][]byte, len(passHashers))
	counts := make([]int, len(passHashers))
	defer func() {
		for _, raw := range raws {
			_ = munmapShard(raw)
		}
	}()
	for i := range passHashers {
		var err error
		entries[i], raws[i], err = mmapShard(n)
		if err != nil {
			return nil, err
		}
	}

	var decodeBuf []byte
	kz := codec.NewKmerizer(k)
	mins := make([]uint64, len(passHashers))
	valid := make([]bool, len(passHashers))

	for id := uint32(0); id < uint32(n); id++ {
		if excludeAmbiguous && reads.ContainsN(id) {
			continue
		}
		if reads.Length(id) < k {
			continue
		}
		// The kmerizer skips any window containing an ambiguous base, so an
		// included N-bearing read contributes only its clean k-mers.
		decodeBuf = reads.AppendOriginal(decodeBuf[:0], id)

		computeSignature(kz, decodeBuf, k, passHashers, mins, valid)
		for i := range passHashers {
			if !valid[i] {
				continue
			}
			entries[i][counts[i]] = shardEntry{key: mins[i], id: id}
			counts[i]++
		}
	}

	tables := make([]mapTable, len(passHashers))
	for i := range passHashers {
		tables[i] = compactShard(entries[i][:counts[i]])
	}
	return tables, nil
}

// compactShard sorts (key, id) pairs and compacts them into the
// keys/offsets/values layout; each key's id list comes out sorted ascending
// and deduplicated.
func compactShard(entries []shardEntry) mapTable {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].id < entries[j].id
	})

	var t mapTable
	i := 0
	for i < len(entries) {
		j := i
		key := entries[i].key
		for j < len(entries) && entries[j].key == key {
			j++
		}
		t.keys = append(t.keys, key)
		t.offsets = append(t.offsets, int32(len(t.values)))
		var prevID uint32
		first := true
		for _, e := range entries[i:j] {
			if first || e.id != prevID {
				t.values = append(t.values, e.id)
				prevID = e.id
				first = false
			}
		}
		i = j
	}
	t.offsets = append(t.offsets, int32(len(t.values)))
	return t
}
