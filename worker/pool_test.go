package worker_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/grailbio/care/worker"
	"github.com/stretchr/testify/require"
)

func TestRunVisitsEveryIDExactlyOnce(t *testing.T) {
	const n = 1000
	cursor := worker.NewCursor(n)
	pool := worker.NewPool(worker.Config{NumWorkers: 8, BatchSize: 7}, cursor)

	var mu sync.Mutex
	seen := make(map[uint32]int)

	err := worker.Run(pool, func(workerIndex int, id uint32) error {
		mu.Lock()
		seen[id]++
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, n)
	for id, count := range seen {
		require.Equalf(t, 1, count, "id %d visited %d times", id, count)
	}
}

func TestRunPropagatesErrorAndRaisesAbort(t *testing.T) {
	const n = 500
	cursor := worker.NewCursor(n)
	pool := worker.NewPool(worker.Config{NumWorkers: 4, BatchSize: 5}, cursor)

	err := worker.Run(pool, func(workerIndex int, id uint32) error {
		if id == 250 {
			return fmt.Errorf("boom")
		}
		return nil
	})
	require.Error(t, err)
	require.True(t, pool.Abort.Raised())
}

func TestNextBatchExhausts(t *testing.T) {
	cursor := worker.NewCursor(10)
	lo, hi, ok := cursor.NextBatch(4)
	require.True(t, ok)
	require.Equal(t, uint32(0), lo)
	require.Equal(t, uint32(4), hi)

	lo, hi, ok = cursor.NextBatch(4)
	require.True(t, ok)
	require.Equal(t, uint32(4), lo)
	require.Equal(t, uint32(8), hi)

	lo, hi, ok = cursor.NextBatch(4)
	require.True(t, ok)
	require.Equal(t, uint32(8), lo)
	require.Equal(t, uint32(10), hi)

	_, _, ok = cursor.NextBatch(4)
	require.False(t, ok)
}
