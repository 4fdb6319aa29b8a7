package minhash_test

import (
	"bytes"
	"testing"

	"github.com/grailbio/care/minhash"
	"github.com/stretchr/testify/require"
)

func TestWriteReadIndexRoundTrip(t *testing.T) {
	seqs := []string{
		"ACGTACGTACGTACGTACGT",
		"CCGTACGTACGTACGTACGT",
		"ACGTCCGTACGTACGTACGT",
		"TTTTTTTTTTTTTTTTTTTT",
	}
	store := buildStore(t, seqs)
	built, err := minhash.Build(store, minhash.BuildOpts{K: 5, NumMaps: 4, EstimatedCoverage: 10})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, minhash.WriteIndex(built, &buf))

	loaded, err := minhash.ReadIndex(&buf)
	require.NoError(t, err)
	require.Equal(t, built.K(), loaded.K())
	require.Equal(t, built.NumMaps(), loaded.NumMaps())

	// The reloaded index must answer queries identically to the built one.
	for id, seq := range seqs {
		want := minhash.Query(built, []byte(seq), minhash.QueryOpts{ExcludeID: uint32(id), NumHits: 1})
		got := minhash.Query(loaded, []byte(seq), minhash.QueryOpts{ExcludeID: uint32(id), NumHits: 1})
		require.Equal(t, want, got, "query for read %d diverged after reload", id)
	}
}

func TestReadIndexRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 32)) // version 0 header
	_, err := minhash.ReadIndex(&buf)
	require.Error(t, err)
}
