package minhash

import "github.com/grailbio/care/codec"

// QueryOpts configures Query. ExcludeID is removed from the result, so an
// anchor never retrieves itself as its own candidate. NumHits, if >= 2,
// retains only ids that appeared in at least that many per-map candidate
// lists.
type QueryOpts struct {
	ExcludeID uint32
	NumHits   int
}

// Querier holds one caller's reusable query state: the per-map hashers
// (reconstructed from the index's salts) and the signature and merge
// scratch buffers, so a worker's per-anchor queries allocate nothing once
// the buffers have grown to their working size. A Querier is not safe for
// concurrent use; each worker owns its own.
type Querier struct {
	idx     *Index
	hashers []mapHasher
	kz      *codec.Kmerizer
	mins    []uint64
	valid   []bool
	lists   [][]uint32
	cursors []int
	out     []uint32
}

// NewQuerier creates a Querier over idx.
func NewQuerier(idx *Index) *Querier {
	q := &Querier{
		idx:     idx,
		hashers: make([]mapHasher, idx.numMaps),
		kz:      codec.NewKmerizer(idx.k),
		mins:    make([]uint64, idx.numMaps),
		valid:   make([]bool, idx.numMaps),
		lists:   make([][]uint32, 0, idx.numMaps),
		cursors: make([]int, idx.numMaps),
	}
	for m := range q.hashers {
		q.hashers[m] = newMapHasher(m, idx.salts[m])
	}
	return q
}

// Query returns the union (or, with NumHits >= 2, the intersection-like
// filtered union) of candidate read ids for seq. It never fails; an anchor
// with no usable k-mer, or whose candidates are all noise-cutoff, simply
// yields an empty result. The returned slice is valid only
// until the next Query call on this Querier.
func (q *Querier) Query(seq []byte, opts QueryOpts) []uint32 {
	idx := q.idx
	if len(seq) < idx.k {
		return nil
	}
	computeSignature(q.kz, seq, idx.k, q.hashers, q.mins, q.valid)

	q.lists = q.lists[:0]
	for m := 0; m < idx.numMaps; m++ {
		if !q.valid[m] {
			continue
		}
		list := idx.maps[m].lookup(q.mins[m])
		if len(list) > idx.maxResultsPerMapQuery {
			// Noise cutoff: an overloaded bucket carries no useful signal.
			continue
		}
		if len(list) > 0 {
			q.lists = append(q.lists, list)
		}
	}

	minHits := opts.NumHits
	if minHits < 1 {
		minHits = 1
	}
	q.out = mergeLists(q.out[:0], q.cursors, q.lists, minHits, opts.ExcludeID)
	return q.out
}

// Query is a convenience wrapper for one-off lookups; hot paths hold a
// Querier instead.
func Query(idx *Index, seq []byte, opts QueryOpts) []uint32 {
	return NewQuerier(idx).Query(seq, opts)
}

// mergeLists performs a k-way merge of sorted, deduplicated id lists into
// out, returning ids appearing in at least minHits of them, in ascending
// order, excluding excludeID. cursors must have capacity for len(lists).
func mergeLists(out []uint32, cursors []int, lists [][]uint32, minHits int, excludeID uint32) []uint32 {
	cursors = cursors[:len(lists)]
	for i := range cursors {
		cursors[i] = 0
	}
	for {
		minVal := uint32(0)
		found := false
		for i, l := range lists {
			if cursors[i] >= len(l) {
				continue
			}
			if !found || l[cursors[i]] < minVal {
				minVal = l[cursors[i]]
				found = true
			}
		}
		if !found {
			return out
		}
		hits := 0
		for i, l := range lists {
			if cursors[i] < len(l) && l[cursors[i]] == minVal {
				hits++
				cursors[i]++
			}
		}
		if hits >= minHits && minVal != excludeID {
			out = append(out, minVal)
		}
	}
}
