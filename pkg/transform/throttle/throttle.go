// Package throttle limits the byte rate of both halves of a builder with a
// token bucket.
//
//	b := rw.Wrap(netconn.New("tcp", "backup:9000"), throttle.New(1<<20, 64<<10))
//
// Writes larger than the burst are split so no single write to the wrapped
// writer exceeds it. Reads are capped at the burst and paid for after the
// bytes arrive. By default every handle has its own budget; Shared makes
// all handles of one transform draw from a single bucket.
package throttle

import (
	"context"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Config holds configuration options for a throttle.
type Config struct {
	// Rate is the sustained rate in bytes per second.
	Rate Limit

	// Burst is the bucket capacity in bytes and the largest single
	// write passed to the wrapped writer.
	Burst int

	// Shared makes every handle draw from the same bucket.
	Shared bool

	// Context cancels waiting handles. Default: context.Background()
	Context context.Context

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock
}

// Transform rate-limits readers and writers.
type Transform struct {
	config Config
	shared *bucket
}

// New creates a throttle. It panics if rate or burst is not positive.
func New(rate Limit, burst int) *Transform {
	t, err := NewWithConfig(Config{Rate: rate, Burst: burst})
	if err != nil {
		panic(err)
	}
	return t
}

// NewWithConfig creates a throttle with the given configuration.
func NewWithConfig(config Config) (*Transform, error) {
	if config.Rate <= 0 {
		return nil, rwerrors.NewValidationError("throttle", "rate", config.Rate, "must be positive").
			WithHint("use throttle.Inf for no limit")
	}
	if err := validation.ValidatePositive("throttle", "burst", config.Burst); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	t := &Transform{config: config}
	if config.Shared {
		t.shared = newBucket(config.Rate, config.Burst, config.Clock)
	}
	return t, nil
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return "throttle"
}

// WrapReader implements rw.Transform.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	return &reader{inner: r, b: t.bucket(), ctx: t.config.Context}, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	return &writer{inner: w, b: t.bucket(), ctx: t.config.Context}, nil
}

func (t *Transform) bucket() *bucket {
	if t.shared != nil {
		return t.shared
	}
	return newBucket(t.config.Rate, t.config.Burst, t.config.Clock)
}

type reader struct {
	inner rw.Reader
	b     *bucket
	ctx   context.Context
}

func (r *reader) Read(p []byte) (int, error) {
	if len(p) > r.b.burst {
		p = p[:r.b.burst]
	}
	n, err := r.inner.Read(p)
	if werr := r.b.wait(r.ctx, n); werr != nil && err == nil {
		err = werr
	}
	return n, err
}

func (r *reader) Close() error {
	return r.inner.Close()
}

type writer struct {
	inner rw.Writer
	b     *bucket
	ctx   context.Context
}

func (w *writer) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > w.b.burst {
			chunk = chunk[:w.b.burst]
		}
		if err := w.b.wait(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.inner.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		if n < len(chunk) {
			return written, rwerrors.ErrShortWrite
		}
		p = p[n:]
	}
	return written, nil
}

func (w *writer) Flush() error {
	return w.inner.Flush()
}

func (w *writer) Close() error {
	return w.inner.Close()
}
