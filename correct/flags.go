package correct

import "sync/atomic"

// FlagState is one read id's position in the correction-flags state
// machine: Unprocessed -> CorrectedAsAnchor -> CorrectedAsHQAnchor,
// monotonically increasing and never reset.
type FlagState uint32

const (
	Unprocessed FlagState = iota
	CorrectedAsAnchor
	CorrectedAsHQAnchor
)

// Flags is the shared, lock-free per-id correction-state bitmap. It uses
// a CAS'd atomic word per id instead of striped mutexes guarding a packed
// bitmap: contention only ever happens on a single id's word, between at
// most a handful of workers, so there's nothing a stripe would buy beyond
// what the atomic already gives.
type Flags struct {
	states []uint32
}

// NewFlags allocates a Flags bitmap for n read ids, all Unprocessed.
func NewFlags(n int) *Flags {
	return &Flags{states: make([]uint32, n)}
}

// TryClaim attempts the Unprocessed -> CorrectedAsAnchor transition for id.
// It reports whether this call won the race. The same method serves both
// the anchor claim and the candidate claim; claiming a candidate id that
// is already CorrectedAsHQAnchor fails for the same reason any
// already-claimed id fails, suppressing a redundant candidate write.
func (f *Flags) TryClaim(id uint32) bool {
	return atomic.CompareAndSwapUint32(&f.states[id], uint32(Unprocessed), uint32(CorrectedAsAnchor))
}

// MarkHQAnchor monotonically upgrades id to CorrectedAsHQAnchor. Callers
// must only call this after TryClaim(id) returned true for this id, so
// there is no concurrent writer to race against.
func (f *Flags) MarkHQAnchor(id uint32) {
	atomic.StoreUint32(&f.states[id], uint32(CorrectedAsHQAnchor))
}

// State returns id's current flag state.
func (f *Flags) State(id uint32) FlagState {
	return FlagState(atomic.LoadUint32(&f.states[id]))
}
