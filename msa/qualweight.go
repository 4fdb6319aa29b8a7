package msa

import "math"

// NQual is the number of Phred-byte buckets in the quality-weight lookup
// table.
const NQual = 256

// QualityOffset is the Phred+33 ASCII offset used to turn a raw quality byte
// into a Phred score.
const QualityOffset = 33

// qualityWeightTable[q] = 1 - 10^(-(q-33)/10), clamped to [0.001, 1.0],
// precomputed once at package init so workers index it without
// synchronization.
var qualityWeightTable [NQual]float32

func init() {
	for q := 0; q < NQual; q++ {
		phred := float64(q) - QualityOffset
		w := 1.0 - math.Pow(10, -phred/10)
		if w < 0.001 {
			w = 0.001
		}
		if w > 1.0 {
			w = 1.0
		}
		qualityWeightTable[q] = float32(w)
	}
}

// QualityWeight returns the precomputed weight for a raw Phred+33 byte.
func QualityWeight(q byte) float32 {
	return qualityWeightTable[q]
}
