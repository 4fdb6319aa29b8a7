package align

import (
	"testing"

	"github.com/grailbio/care/codec"
	"github.com/stretchr/testify/require"
)

func encodeSeq(t *testing.T, s string) []uint32 {
	t.Helper()
	dst := make([]uint32, codec.EncodedWords(len(s)))
	codec.Encode(dst, []byte(s))
	return dst
}

func TestAlignMatchesScalarReference(t *testing.T) {
	cases := []struct {
		name      string
		anchor    string
		candidate string
		params    Params
	}{
		{
			name:      "identical",
			anchor:    "ACGTACGTACGTACGTACGTACGT",
			candidate: "ACGTACGTACGTACGTACGTACGT",
			params:    Params{MinOverlap: 5, MinOverlapRatio: 0.5, MaxErrorRate: 0.2},
		},
		{
			name:      "one mismatch",
			anchor:    "ACGTACGTACGTACGTACGTACGT",
			candidate: "ACGTACGTCCGTACGTACGTACGT",
			params:    Params{MinOverlap: 5, MinOverlapRatio: 0.5, MaxErrorRate: 0.2},
		},
		{
			name:      "shifted overlap",
			anchor:    "ACGTACGTACGTACGTACGTACGT",
			candidate: "TACGTACGTACGTACGTACGTACGTTT",
			params:    Params{MinOverlap: 5, MinOverlapRatio: 0.3, MaxErrorRate: 0.2},
		},
		{
			name:      "short candidate",
			anchor:    "ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT",
			candidate: "ACGTACGT",
			params:    Params{MinOverlap: 4, MinOverlapRatio: 0.1, MaxErrorRate: 0.2},
		},
		{
			name:      "long sequences spanning multiple words",
			anchor:    repeatSeq("ACGT", 40),
			candidate: repeatSeq("ACGT", 40),
			params:    Params{MinOverlap: 20, MinOverlapRatio: 0.5, MaxErrorRate: 0.1},
		},
		{
			name:      "no admissible overlap",
			anchor:    "ACGT",
			candidate: "ACGT",
			params:    Params{MinOverlap: 10, MinOverlapRatio: 0.5, MaxErrorRate: 0.2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			anchorEnc := encodeSeq(t, tc.anchor)
			candEnc := encodeSeq(t, tc.candidate)

			got := Align(anchorEnc, len(tc.anchor), candEnc, len(tc.candidate), tc.params)
			want := shiftedHammingScalar(anchorEnc, len(tc.anchor), candEnc, len(tc.candidate), tc.params)

			require.Equal(t, want, got)
		})
	}
}

func repeatSeq(unit string, times int) string {
	out := make([]byte, 0, len(unit)*times)
	for i := 0; i < times; i++ {
		out = append(out, unit...)
	}
	return string(out)
}

func TestAlignInvalidWhenNoShiftFits(t *testing.T) {
	anchorEnc := encodeSeq(t, "ACGT")
	candEnc := encodeSeq(t, "ACGT")
	params := Params{MinOverlap: 10, MinOverlapRatio: 0.5, MaxErrorRate: 0.1}

	got := Align(anchorEnc, 4, candEnc, 4, params)
	require.False(t, got.Valid)
}

func TestAlignRespectsMaxErrorRate(t *testing.T) {
	anchor := "AAAAAAAAAAAAAAAAAAAA"
	candidate := "TTTTTTTTTTTTTTTTTTTT"
	anchorEnc := encodeSeq(t, anchor)
	candEnc := encodeSeq(t, candidate)

	strict := Params{MinOverlap: 10, MinOverlapRatio: 0, MaxErrorRate: 0.01}
	got := Align(anchorEnc, len(anchor), candEnc, len(candidate), strict)
	require.False(t, got.Valid, "every position mismatches; a tight error rate must reject all shifts")

	loose := Params{MinOverlap: 10, MinOverlapRatio: 0, MaxErrorRate: 1.0}
	got = Align(anchorEnc, len(anchor), candEnc, len(candidate), loose)
	require.True(t, got.Valid)
}

func TestAlignMonotonicInMaxErrorRate(t *testing.T) {
	anchor := "ACGTACGTACGTACGTACGTACGT"
	candidate := "ACGTACGTCCGTACGTACGTACGT"
	anchorEnc := encodeSeq(t, anchor)
	candEnc := encodeSeq(t, candidate)

	params := Params{MinOverlap: 10, MinOverlapRatio: 0, MaxErrorRate: 0.05}
	tight := Align(anchorEnc, len(anchor), candEnc, len(candidate), params)
	require.True(t, tight.Valid)

	// Loosening the rate must never invalidate a previously valid result.
	for _, rate := range []float64{0.1, 0.2, 0.5, 1.0} {
		params.MaxErrorRate = rate
		loose := Align(anchorEnc, len(anchor), candEnc, len(candidate), params)
		require.True(t, loose.Valid, "rate=%v", rate)
		require.LessOrEqual(t, loose.Score, tight.Score, "rate=%v", rate)
	}
}

func BenchmarkAlign(b *testing.B) {
	anchor := repeatSeq("ACGT", 38) // 152 bases, a typical short-read length
	candidate := "TT" + repeatSeq("ACGT", 37) + "GG"
	anchorEnc := make([]uint32, codec.EncodedWords(len(anchor)))
	codec.Encode(anchorEnc, []byte(anchor))
	candEnc := make([]uint32, codec.EncodedWords(len(candidate)))
	codec.Encode(candEnc, []byte(candidate))
	params := Params{MinOverlap: 30, MinOverlapRatio: 0.3, MaxErrorRate: 0.2}
	a := NewAligner()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Align(anchorEnc, len(anchor), candEnc, len(candidate), params)
	}
}

func TestShiftRightMovesSingleBit(t *testing.T) {
	// Bit 3 of a single-word vector, shifted right by n, must land at bit
	// 3+n (wrapped into the appropriate word), for both positive and
	// negative shifts.
	words := []uint64{1 << 3}

	for _, shift := range []int{0, 1, 60, 64, 65, 127, -1, -3} {
		out := shiftRight(words, shift, 4)
		wantPos := 3 + shift
		for i, w := range out {
			for b := 0; b < 64; b++ {
				bitPos := i*64 + b
				got := (w>>uint(b))&1 == 1
				require.Equal(t, bitPos == wantPos, got, "shift=%d word=%d bit=%d", shift, i, b)
			}
		}
	}
}
