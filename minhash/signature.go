package minhash

import "github.com/grailbio/care/codec"

// computeSignature computes, for every hasher, the minimum remapped
// canonical k-mer hash over seq, reusing kz as scratch state.
// valid[i] is false if seq has no k-mer of length k at all, in which case
// mins[i] is meaningless for every i.
func computeSignature(kz *codec.Kmerizer, seq []byte, k int, hashers []mapHasher, mins []uint64, valid []bool) {
	for i := range valid {
		valid[i] = false
	}
	kz.Reset(seq)
	for kz.Scan() {
		canon, _ := kz.Get().Mask(k).Canonical()
		for i, h := range hashers {
			v := h.hash(canon)
			if !valid[i] || v < mins[i] {
				mins[i] = v
				valid[i] = true
			}
		}
	}
}
