// Package async moves writes off the caller's goroutine.
//
// The writer side of the transform buffers writes in memory and a
// background goroutine moves them to the wrapped writer. The reader side
// passes through unchanged.
//
//	b := rw.Wrap(netconn.New("tcp", "collector:9000"), async.New(async.DefaultConfig()))
//	w, _ := b.Writer()
//	w.Write(event) // returns once buffered
//	w.Flush()      // blocks until the collector has it
//	w.Close()
//
// Failed writes are not retried, and a short write is reported as
// io.ErrShortWrite. The first failure is sticky: it is reported by every
// later Write, Flush and Close, and nothing more reaches the wrapped writer. Each writer owns two goroutines (one without FlushInterval) that
// exit on Close, so every writer must be closed.
package async

import (
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Transform wraps writers in async Writers.
type Transform struct {
	config Config
}

// New creates an async transform.
func New(config Config) *Transform {
	return &Transform{config: config.normalize()}
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return t.config.Stage
}

// WrapReader implements rw.Transform. Reads are not affected.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	return r, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	return NewWriter(w, t.config), nil
}
