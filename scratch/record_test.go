package scratch_test

import (
	"bytes"
	"testing"

	"github.com/grailbio/care/scratch"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, records []*scratch.Record) []*scratch.Record {
	t.Helper()
	var buf bytes.Buffer
	w := scratch.NewWriter(&buf)
	for _, r := range records {
		w.Append(r)
	}
	require.NoError(t, w.Close())

	r := scratch.NewReader(bytes.NewReader(buf.Bytes()))
	require.EqualValues(t, len(records), r.Count())
	var out []*scratch.Record
	for r.Scan() {
		out = append(out, r.Record())
	}
	require.NoError(t, r.Err())
	return out
}

func TestWriterReaderRoundTripsFullSequenceAnchor(t *testing.T) {
	in := []*scratch.Record{
		{ID: 0, Kind: scratch.KindAnchor, IsHQ: true, FullSequence: []byte("ACGTACGT")},
		{ID: 1, Kind: scratch.KindAnchor, IsHQ: false, FullSequence: []byte("TTTT")},
	}
	out := roundTrip(t, in)
	require.Len(t, out, 2)
	for i := range in {
		require.Equal(t, in[i].ID, out[i].ID)
		require.Equal(t, in[i].Kind, out[i].Kind)
		require.Equal(t, in[i].IsHQ, out[i].IsHQ)
		require.Equal(t, in[i].FullSequence, out[i].FullSequence)
	}
}

func TestWriterReaderRoundTripsEditsCandidate(t *testing.T) {
	in := []*scratch.Record{
		{
			ID:       7,
			Kind:     scratch.KindCandidate,
			IsHQ:     false,
			UseEdits: true,
			Edits:    []scratch.Edit{{Pos: 2, Base: 'G'}, {Pos: 9, Base: 'A'}},
			Shift:    -3,
		},
	}
	out := roundTrip(t, in)
	require.Len(t, out, 1)
	require.Equal(t, in[0].Edits, out[0].Edits)
	require.Equal(t, in[0].Shift, out[0].Shift)
	require.True(t, out[0].UseEdits)
}

func TestWriterReaderRoundTripsNegativeShift(t *testing.T) {
	in := []*scratch.Record{
		{ID: 3, Kind: scratch.KindCandidate, FullSequence: []byte("GGCC"), Shift: -100},
	}
	out := roundTrip(t, in)
	require.Equal(t, int32(-100), out[0].Shift)
}

func TestWriterReaderEmptyStream(t *testing.T) {
	out := roundTrip(t, nil)
	require.Nil(t, out)
}
