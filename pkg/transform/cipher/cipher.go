package cipher

import (
	stdcipher "crypto/cipher"
	"fmt"

	"github.com/valyala/bytebufferpool"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// StreamFactory returns a fresh keystream positioned at its start.
type StreamFactory func() (stdcipher.Stream, error)

// Transform applies a stream cipher to readers and writers.
type Transform struct {
	name    string
	factory StreamFactory
}

// New creates a cipher transform from factory.
func New(factory StreamFactory) *Transform {
	return NewNamed("cipher", factory)
}

// NewNamed creates a cipher transform reported under name.
func NewNamed(name string, factory StreamFactory) *Transform {
	return &Transform{name: name, factory: factory}
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return t.name
}

// WrapReader implements rw.Transform.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	s, err := t.stream()
	if err != nil {
		return nil, err
	}
	return &reader{r: r, s: s}, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	s, err := t.stream()
	if err != nil {
		return nil, err
	}
	return &writer{w: w, s: s}, nil
}

func (t *Transform) stream() (s stdcipher.Stream, err error) {
	if t.factory == nil {
		return nil, rwerrors.NewValidationError("cipher", "factory", nil, "cannot be nil")
	}
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", rwerrors.ErrTransform, v)
		}
	}()
	return t.factory()
}

// xor runs the keystream over src into dst and reports a panicking stream,
// such as one whose counter is exhausted, as ErrTransform.
func xor(s stdcipher.Stream, dst, src []byte) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", rwerrors.ErrTransform, v)
		}
	}()
	s.XORKeyStream(dst, src)
	return nil
}

type reader struct {
	r rw.Reader
	s stdcipher.Stream
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if xerr := xor(r.s, p[:n], p[:n]); xerr != nil {
			return 0, xerr
		}
	}
	return n, err
}

func (r *reader) Close() error {
	return r.r.Close()
}

type writer struct {
	w rw.Writer
	s stdcipher.Stream
}

func (w *writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return w.w.Write(p)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = append(buf.B[:0], p...)
	if err := xor(w.s, buf.B, buf.B); err != nil {
		return 0, err
	}

	n, err := w.w.Write(buf.B)
	if err == nil && n < len(p) {
		err = rwerrors.ErrShortWrite
	}
	return n, err
}

func (w *writer) Flush() error {
	return w.w.Flush()
}

func (w *writer) Close() error {
	return w.w.Close()
}
