package minhash

import (
	"encoding/binary"

	"blainsmith.com/go/seahash"
	farm "github.com/dgryski/go-farm"
	"github.com/minio/highwayhash"
)

// family identifies which of the three independent hash functions a given
// map index uses. Beyond the third map, families repeat with a different
// per-map salt; the assignment is a pure function of the map index, so a
// given build is reproducible.
type family uint8

const (
	familyFarm family = iota
	familyHighway
	familySeahash
	numFamilies = 3
)

// mapHasher computes the per-map remapping of a canonical k-mer hash used to
// pick that map's minimizer. Each of the M maps gets its own salt so that the
// M minimizers for one read are (with overwhelming probability) distinct
// positions.
type mapHasher struct {
	fam  family
	salt uint64
	key  [32]byte // only used by familyHighway
}

func newMapHasher(mapIndex int, salt uint64) mapHasher {
	h := mapHasher{fam: family(mapIndex % numFamilies), salt: salt}
	if h.fam == familyHighway {
		// highwayhash needs a 32-byte key; expand the 8-byte salt
		// deterministically rather than pulling in a KDF.
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint64(h.key[i*8:(i+1)*8], salt^uint64(i)*0x9E3779B97F4A7C15)
		}
	}
	return h
}

// hash remaps a canonical k-mer hash value through this map's hash family.
func (h mapHasher) hash(value uint64) uint64 {
	switch h.fam {
	case familyFarm:
		// Pass the value to hash as the seed over an empty byte slice,
		// relying on FarmHash's seed finalization to mix it thoroughly.
		return farm.Hash64WithSeed(nil, value^h.salt)
	case familyHighway:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], value)
		return highwayhash.Sum64(buf[:], h.key[:])
	case familySeahash:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], value^h.salt)
		return seahash.Sum64(buf[:])
	default:
		panic("minhash: unreachable hash family")
	}
}

// defaultSalts derives deterministic per-map salts from a fixed seed, so
// that a given num_maps always yields the same signature function (required
// for build-then-query reproducibility and for the build to be stageable
// across multiple memory-limited passes without changing results).
func defaultSalts(numMaps int) []uint64 {
	salts := make([]uint64, numMaps)
	x := uint64(0x2545F4914F6CDD1D)
	for i := range salts {
		// splitmix64 step: cheap, well-distributed, deterministic.
		x += 0x9E3779B97F4A7C15
		z := x
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		salts[i] = z
	}
	return salts
}
