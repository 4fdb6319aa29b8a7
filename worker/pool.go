package worker

import (
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// AbortFlag is the single shared "abort" flag: workers only check it at
// batch boundaries and finish their current anchor before exiting, so no
// in-flight pipeline is ever torn down mid-anchor.
type AbortFlag struct {
	raised int32
}

// Raise requests that every worker stop after its current batch. Safe to
// call from any worker or from the caller of Run.
func (a *AbortFlag) Raise() { atomic.StoreInt32(&a.raised, 1) }

// Raised reports whether Raise has been called.
func (a *AbortFlag) Raised() bool { return atomic.LoadInt32(&a.raised) != 0 }

// Config configures a Pool.
type Config struct {
	NumWorkers int
	BatchSize  int
}

// Pool runs Config.NumWorkers goroutines over a shared Cursor, each
// calling a caller-supplied per-anchor function. A Cursor stands in for
// the usual unit-of-work channel since anchor ids are a dense contiguous
// range rather than a precomputed shard list; errors.Once captures the
// first fatal error across workers without a race.
type Pool struct {
	cfg    Config
	cursor *Cursor
	Abort  AbortFlag
}

// NewPool creates a Pool that will hand out ids from cursor.
func NewPool(cfg Config, cursor *Cursor) *Pool {
	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Pool{cfg: cfg, cursor: cursor}
}

// ProcessFunc is one worker's per-anchor pipeline. workerIndex identifies
// the calling worker (e.g. to select its own scratch Writer and reusable
// buffers). An error return is fatal for the affected worker, which raises
// Pool.Abort so peers wind down at their next batch boundary.
type ProcessFunc func(workerIndex int, anchorID uint32) error

// Run spawns Config.NumWorkers goroutines, each pulling batches off the
// shared Cursor and calling process for every id in its batch, stopping
// early if Abort has been raised (by this worker's own process error or by
// the caller). It blocks until every worker has finished its current batch
// and returns the first error encountered, if any.
func Run(p *Pool, process ProcessFunc) error {
	e := errors.Once{}
	var wg sync.WaitGroup

	log.Debug.Printf("worker: starting %d workers, batch size %d", p.cfg.NumWorkers, p.cfg.BatchSize)
	for w := 0; w < p.cfg.NumWorkers; w++ {
		wg.Add(1)
		go func(workerIndex int) {
			defer wg.Done()
			for {
				if p.Abort.Raised() {
					return
				}
				lo, hi, ok := p.cursor.NextBatch(p.cfg.BatchSize)
				if !ok {
					return
				}
				for id := lo; id < hi; id++ {
					if err := process(workerIndex, id); err != nil {
						e.Set(err)
						p.Abort.Raise()
						log.Error.Printf("worker %d: anchor %d: %v; raising abort", workerIndex, id, err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
	return e.Err()
}
