package care

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/care/correct"
	"github.com/grailbio/care/readstore"
	"github.com/grailbio/care/scratch"
	"github.com/grailbio/care/worker"
)

// WorkerWriters supplies one output stream per worker. Opening and
// ultimately merging the underlying files is a caller concern;
// CorrectReads only writes self-describing scratch.Record streams into
// whatever WorkerWriters hands it.
type WorkerWriters interface {
	// Writer returns the destination for worker workerIndex's scratch
	// records, in [0, NumWorkers).
	Writer(workerIndex int) io.WriteCloser
}

// CorrectReads spawns Config.NumWorkers workers over the shared anchor
// cursor (package worker), running the full per-anchor pipeline for each
// claimed id and writing results through out.
func CorrectReads(index *Index, reads *readstore.Store, cfg Config, out WorkerWriters) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	flags := correct.NewFlags(reads.NumReads())
	cursor := worker.NewCursor(uint32(reads.NumReads()))
	pool := worker.NewPool(worker.Config{NumWorkers: cfg.NumWorkers, BatchSize: cfg.BatchSize}, cursor)

	writers := make([]*scratch.Writer, cfg.NumWorkers)
	closers := make([]io.WriteCloser, cfg.NumWorkers)
	pipelines := make([]*pipeline, cfg.NumWorkers)
	for i := 0; i < cfg.NumWorkers; i++ {
		closers[i] = out.Writer(i)
		writers[i] = scratch.NewWriter(closers[i])
		pipelines[i] = newPipeline(reads, index, flags, cfg)
	}

	log.Debug.Printf("care: correcting %d reads with %d workers, batch size %d", reads.NumReads(), cfg.NumWorkers, cfg.BatchSize)
	runErr := worker.Run(pool, func(workerIndex int, anchorID uint32) error {
		return pipelines[workerIndex].process(writers[workerIndex], anchorID)
	})

	closeErr := errors.Once{}
	for i := range writers {
		if err := writers[i].Close(); err != nil {
			closeErr.Set(err)
		}
		if err := closers[i].Close(); err != nil {
			closeErr.Set(err)
		}
	}

	if runErr != nil {
		return runErr
	}
	return closeErr.Err()
}
