// Package metered reports stream activity of a stage to Prometheus.
//
// The transform passes bytes through unchanged and records reads, writes,
// flushes, byte counts and failures under a stage label:
//
//	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
//	b := rw.Wrap(file.New("out.bin"), metered.New("disk", reg))
//
// Wrapping the same builder at several depths with different stage names
// shows how each stage changes the volume, e.g. before and after
// compression.
package metered

import (
	"github.com/vnykmshr/rwflow/pkg/metrics"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Transform records metrics for one stage.
type Transform struct {
	stage string
	reg   *metrics.Registry
}

// New creates a metering transform. A nil registry uses
// metrics.DefaultRegistry.
func New(stage string, reg *metrics.Registry) *Transform {
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	return &Transform{stage: stage, reg: reg}
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return t.stage
}

// WrapReader implements rw.Transform.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	return &reader{inner: r, t: t}, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	return &writer{inner: w, t: t}, nil
}

type reader struct {
	inner rw.Reader
	t     *Transform
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	r.t.reg.ObserveRead(r.t.stage, n, err)
	return n, err
}

func (r *reader) Close() error {
	err := r.inner.Close()
	if err != nil {
		r.t.reg.ObserveError(r.t.stage, "close")
	}
	return err
}

type writer struct {
	inner rw.Writer
	t     *Transform
}

func (w *writer) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	w.t.reg.ObserveWrite(w.t.stage, n, err)
	return n, err
}

func (w *writer) Flush() error {
	err := w.inner.Flush()
	w.t.reg.ObserveFlush(w.t.stage, err)
	return err
}

func (w *writer) Close() error {
	err := w.inner.Close()
	if err != nil {
		w.t.reg.ObserveError(w.t.stage, "close")
	}
	return err
}
