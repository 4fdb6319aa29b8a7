package care_test

import (
	"bytes"
	"io"
)

// bufferWriteCloser adapts a bytes.Buffer to io.WriteCloser for tests, since
// care.WorkerWriters hands out one io.WriteCloser per worker.
type bufferWriteCloser struct {
	*bytes.Buffer
}

func (bufferWriteCloser) Close() error { return nil }

// memWriters is an in-memory care.WorkerWriters backed by one buffer per
// worker, for tests that don't want to touch the filesystem.
type memWriters struct {
	buffers []*bytes.Buffer
}

func newMemWriters(n int) *memWriters {
	m := &memWriters{buffers: make([]*bytes.Buffer, n)}
	for i := range m.buffers {
		m.buffers[i] = &bytes.Buffer{}
	}
	return m
}

func (m *memWriters) Writer(workerIndex int) io.WriteCloser {
	return bufferWriteCloser{m.buffers[workerIndex]}
}
