package minhash

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Persisted index layout: a header {version, k, num_maps, threshold}, then per map
// {num_keys, keys[], offsets[num_keys+1], values[]}, all little-endian
// fixed-width integers. The per-map salts are not stored:
// defaultSalts is deterministic in num_maps, so a reader reconstructs the
// same signature function the writer used.

const persistVersion = 1

// WriteIndex writes idx to out in the persisted layout, so a later run can
// reload the index instead of rebuilding it.
func WriteIndex(idx *Index, out io.Writer) error {
	header := []int64{persistVersion, int64(idx.k), int64(idx.numMaps), int64(idx.maxResultsPerMapQuery)}
	if err := binary.Write(out, binary.LittleEndian, header); err != nil {
		return err
	}
	for m := range idx.maps {
		t := &idx.maps[m]
		if err := binary.Write(out, binary.LittleEndian, int64(len(t.keys))); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, t.keys); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, t.offsets); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, t.values); err != nil {
			return err
		}
	}
	return nil
}

// ReadIndex reads an index previously written by WriteIndex.
func ReadIndex(in io.Reader) (*Index, error) {
	header := make([]int64, 4)
	if err := binary.Read(in, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if header[0] != persistVersion {
		return nil, fmt.Errorf("minhash: unsupported index version %d", header[0])
	}
	k, numMaps, threshold := int(header[1]), int(header[2]), int(header[3])
	if err := validateBuildParams(k, numMaps); err != nil {
		return nil, err
	}

	maps := make([]mapTable, numMaps)
	for m := range maps {
		var numKeys int64
		if err := binary.Read(in, binary.LittleEndian, &numKeys); err != nil {
			return nil, err
		}
		t := &maps[m]
		t.keys = make([]uint64, numKeys)
		if err := binary.Read(in, binary.LittleEndian, t.keys); err != nil {
			return nil, err
		}
		t.offsets = make([]int32, numKeys+1)
		if err := binary.Read(in, binary.LittleEndian, t.offsets); err != nil {
			return nil, err
		}
		t.values = make([]uint32, t.offsets[numKeys])
		if err := binary.Read(in, binary.LittleEndian, t.values); err != nil {
			return nil, err
		}
	}

	return &Index{
		k:                     k,
		numMaps:               numMaps,
		salts:                 defaultSalts(numMaps),
		maps:                  maps,
		maxResultsPerMapQuery: threshold,
	}, nil
}
