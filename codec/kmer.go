package codec

import "math/bits"

// seedTable holds the per-base random constants used by the rolling ntHash
// recurrence (Mohamadi et al. 2016). Values are fixed arbitrary odd 64-bit
// constants; what matters is that they're independent across bases, not
// their particular provenance.
var seedTable = [4]uint64{
	0x3c8bfbb395c60474, // A
	0x3193c18562a02b4c, // C
	0x20323ed082572324, // G
	0x295549f54be24456, // T
}

func rol(x uint64, n uint) uint64 { return bits.RotateLeft64(x, int(n)) }
func ror(x uint64, n uint) uint64 { return bits.RotateLeft64(x, -int(n)) }

// KmerHash is a rolling forward/reverse-complement hash pair for a single
// k-mer window.
type KmerHash struct {
	Fwd, RC uint64
}

// Canonical returns the smaller of Fwd and RC, and whether the forward
// orientation was canonical.
func (h KmerHash) Canonical() (hash uint64, isCanonicalForward bool) {
	if h.Fwd <= h.RC {
		return h.Fwd, true
	}
	return h.RC, false
}

// Mask returns h with both hashes masked to the low 2*k bits,
// hash & ((1 << 2k) - 1).
func (h KmerHash) Mask(k int) KmerHash {
	m := mask64(k)
	return KmerHash{Fwd: h.Fwd & m, RC: h.RC & m}
}

func mask64(k int) uint64 {
	if k >= 32 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(2*k)) - 1
}

// Kmerizer produces the rolling (Fwd, RC) ntHash-style hash for every
// length-k window of a sequence, in position order.
type Kmerizer struct {
	k    int
	seq  []byte
	pos  int // position of the start of the current window; -1 before first Scan
	cur  KmerHash
}

// NewKmerizer constructs a Kmerizer for the given k (1..32, enforced by
// the index builder before any Kmerizer is made).
func NewKmerizer(k int) *Kmerizer {
	return &Kmerizer{k: k, pos: -1}
}

// Reset begins iterating seq from position 0.
func (kz *Kmerizer) Reset(seq []byte) {
	kz.seq = seq
	kz.pos = -1
}

// Scan advances to the next valid k-mer window, skipping over any window
// that contains an ambiguous base, and reports whether one was found.
func (kz *Kmerizer) Scan() bool {
	if kz.pos >= 0 && kz.pos+kz.k < len(kz.seq) {
		// Rolling update: slide the window right by one base.
		outBase := kz.seq[kz.pos]
		inBase := kz.seq[kz.pos+kz.k]
		if baseToCode[outBase] >= 0 && baseToCode[inBase] >= 0 {
			kz.roll(outBase, inBase)
			kz.pos++
			return true
		}
		// Fall through to the scan-for-a-valid-window path below.
	}

	start := kz.pos + 1
	if start < 0 {
		start = 0
	}
	for start+kz.k <= len(kz.seq) {
		if HasAmbiguous(kz.seq[start : start+kz.k]) {
			start++
			continue
		}
		kz.cur = kz.initWindow(kz.seq[start : start+kz.k])
		kz.pos = start
		return true
	}
	kz.pos = len(kz.seq)
	return false
}

// Get returns the hash pair for the current window.
func (kz *Kmerizer) Get() KmerHash { return kz.cur }

// Pos returns the 0-based start position of the current window.
func (kz *Kmerizer) Pos() int { return kz.pos }

func (kz *Kmerizer) initWindow(window []byte) KmerHash {
	k := kz.k
	var fwd, rc uint64
	for i, b := range window {
		code := baseToCode[b]
		fwd ^= rol(seedTable[code], uint(k-1-i))
		rcCode := complementCode(uint32(code))
		rc ^= rol(seedTable[rcCode], uint(i))
	}
	return KmerHash{Fwd: fwd, RC: rc}
}

func (kz *Kmerizer) roll(outBase, inBase byte) {
	k := kz.k
	outCode := baseToCode[outBase]
	inCode := baseToCode[inBase]
	outRC := complementCode(uint32(outCode))
	inRC := complementCode(uint32(inCode))

	fwd := kz.cur.Fwd
	fwd = rol(fwd, 1) ^ rol(seedTable[outCode], uint(k)) ^ seedTable[inCode]

	rc := kz.cur.RC
	rc = ror(rc, 1) ^ ror(seedTable[outRC], 1) ^ rol(seedTable[inRC], uint(k-1))

	kz.cur = KmerHash{Fwd: fwd, RC: rc}
}
