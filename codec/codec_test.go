package codec_test

import (
	"testing"

	"github.com/grailbio/care/codec"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	seqs := []string{
		"A",
		"ACGT",
		"ACGTACGTACGTACGTACGT",
		"TTTTTTTTTTTTTTTTT",
		"GATTACAGATTACAGATTACA",
	}
	for _, s := range seqs {
		words := make([]uint32, codec.EncodedWords(len(s)))
		codec.Encode(words, []byte(s))
		got := codec.DecodeString(words, len(s))
		require.Equal(t, s, got, "round trip for %q", s)
	}
}

func TestReverseComplementInvolution(t *testing.T) {
	s := "ACGTACGTACGTACGTACGT"
	words := make([]uint32, codec.EncodedWords(len(s)))
	codec.Encode(words, []byte(s))

	rc := make([]uint32, codec.EncodedWords(len(s)))
	codec.ReverseComplement(rc, words, len(s))
	require.Equal(t, "ACGTACGTACGTACGTACGT", codec.DecodeString(rc, len(s)))

	s2 := "ACGTACGA"
	words2 := make([]uint32, codec.EncodedWords(len(s2)))
	codec.Encode(words2, []byte(s2))
	rc2 := make([]uint32, codec.EncodedWords(len(s2)))
	codec.ReverseComplement(rc2, words2, len(s2))
	require.Equal(t, "TCGTACGT", codec.DecodeString(rc2, len(s2)))

	rc2rc := make([]uint32, codec.EncodedWords(len(s2)))
	codec.ReverseComplement(rc2rc, rc2, len(s2))
	require.Equal(t, s2, codec.DecodeString(rc2rc, len(s2)), "revcomp should be an involution")
}

func TestHasAmbiguous(t *testing.T) {
	require.False(t, codec.HasAmbiguous([]byte("ACGT")))
	require.True(t, codec.HasAmbiguous([]byte("ACGN")))
}

func TestEncodePanicsOnAmbiguous(t *testing.T) {
	require.Panics(t, func() {
		words := make([]uint32, codec.EncodedWords(4))
		codec.Encode(words, []byte("ACGN"))
	})
}
