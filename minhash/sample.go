package minhash

import (
	"math"

	"github.com/grailbio/care/readstore"
)

// EstimateMaxCandidatesPerAnchor implements the Config.MaxCandidatesPerAnchor
// "0 = auto" rule: mean + 2.5*stddev of the raw minhash union size over a
// sample of the read set. The sample is the first N/10 reads in ascending
// id order, which is cheap and reproducible across runs of the same read
// set.
func EstimateMaxCandidatesPerAnchor(idx *Index, reads *readstore.Store) int {
	n := reads.NumReads()
	sampleSize := n / 10
	if sampleSize < 1 {
		sampleSize = n
	}
	if sampleSize == 0 {
		return 0
	}

	q := NewQuerier(idx)
	var seq []byte
	sizes := make([]float64, 0, sampleSize)
	for id := uint32(0); id < uint32(sampleSize); id++ {
		if reads.ContainsN(id) {
			continue
		}
		seq = reads.AppendOriginal(seq[:0], id)
		candidates := q.Query(seq, QueryOpts{ExcludeID: id, NumHits: 1})
		sizes = append(sizes, float64(len(candidates)))
	}
	if len(sizes) == 0 {
		return 0
	}

	var sum float64
	for _, v := range sizes {
		sum += v
	}
	mean := sum / float64(len(sizes))

	var variance float64
	for _, v := range sizes {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(sizes))
	stddev := math.Sqrt(variance)

	estimate := mean + 2.5*stddev
	if estimate < 1 {
		estimate = 1
	}
	return int(math.Ceil(estimate))
}
