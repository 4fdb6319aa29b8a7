package codec_test

import (
	"testing"

	"github.com/grailbio/care/codec"
	"github.com/stretchr/testify/require"
)

// recompute independently re-derives the hash for seq[pos:pos+k] by
// constructing a fresh Kmerizer over just that window, so it shares no
// incremental state with the rolling scan under test.
func recompute(k int, window []byte) codec.KmerHash {
	kz := codec.NewKmerizer(k)
	kz.Reset(window)
	if !kz.Scan() {
		panic("recompute: window should have produced exactly one k-mer")
	}
	return kz.Get()
}

func TestKmerizerRollingMatchesRecompute(t *testing.T) {
	seq := []byte("ACGTACGTTGCATGCATGCAACGT")
	k := 5
	kz := codec.NewKmerizer(k)
	kz.Reset(seq)
	count := 0
	for kz.Scan() {
		pos := kz.Pos()
		want := recompute(k, seq[pos:pos+k])
		got := kz.Get()
		require.Equal(t, want, got, "position %d", pos)
		count++
	}
	require.Equal(t, len(seq)-k+1, count)
}

func TestKmerizerSkipsAmbiguousWindows(t *testing.T) {
	seq := []byte("ACGTNACGTACGT")
	k := 4
	kz := codec.NewKmerizer(k)
	kz.Reset(seq)
	var positions []int
	for kz.Scan() {
		positions = append(positions, kz.Pos())
	}
	for _, p := range positions {
		require.False(t, codec.HasAmbiguous(seq[p:p+k]), "position %d should not span the N", p)
	}
	require.NotEmpty(t, positions)
}

func TestCanonicalPicksMin(t *testing.T) {
	h := codec.KmerHash{Fwd: 5, RC: 3}
	v, isFwd := h.Canonical()
	require.Equal(t, uint64(3), v)
	require.False(t, isFwd)

	h2 := codec.KmerHash{Fwd: 2, RC: 9}
	v2, isFwd2 := h2.Canonical()
	require.Equal(t, uint64(2), v2)
	require.True(t, isFwd2)
}

func TestMaskLimitsToLowBits(t *testing.T) {
	h := codec.KmerHash{Fwd: ^uint64(0), RC: ^uint64(0)}
	masked := h.Mask(5)
	require.Equal(t, uint64(1<<10)-1, masked.Fwd)
	require.Equal(t, uint64(1<<10)-1, masked.RC)
}
