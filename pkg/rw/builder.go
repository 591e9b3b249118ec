package rw

import (
	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
)

// Builder manufactures independent readers and writers over one logical stream.
type Builder interface {
	// Reader constructs a reader. If any intermediate construction fails,
	// the first error is returned.
	Reader() (Reader, error)

	// Writer constructs a writer. If any intermediate construction fails,
	// the first error is returned.
	Writer() (Writer, error)
}

// Transform adds one symmetric behavior to the read and write path.
type Transform interface {
	// Name identifies the transform in errors, logs and metrics.
	Name() string

	// WrapReader returns the decode view of r. On success the returned
	// reader owns r.
	WrapReader(r Reader) (Reader, error)

	// WrapWriter returns the encode view of w. On success the returned
	// writer owns w.
	WrapWriter(w Writer) (Writer, error)
}

// Wrap layers t around b. The call itself does no I/O.
func Wrap(b Builder, t Transform) Builder {
	return &wrapped{inner: b, transform: t}
}

// Chain wraps b with each transform in turn; the first transform sits
// closest to b.
func Chain(b Builder, transforms ...Transform) Builder {
	for _, t := range transforms {
		b = Wrap(b, t)
	}
	return b
}

// Unwrap returns the builder b wraps and the transform applied to it, or
// (nil, nil) when b is not the result of Wrap.
func Unwrap(b Builder) (Builder, Transform) {
	if w, ok := b.(*wrapped); ok {
		return w.inner, w.transform
	}
	return nil, nil
}

type wrapped struct {
	inner     Builder
	transform Transform
}

func (w *wrapped) Reader() (Reader, error) {
	r, err := w.inner.Reader()
	if err != nil {
		return nil, err
	}
	out, err := w.transform.WrapReader(r)
	if err != nil {
		_ = r.Close()
		return nil, rwerrors.NewOperationError(w.transform.Name(), "Reader", err)
	}
	return out, nil
}

func (w *wrapped) Writer() (Writer, error) {
	wr, err := w.inner.Writer()
	if err != nil {
		return nil, err
	}
	out, err := w.transform.WrapWriter(wr)
	if err != nil {
		_ = wr.Close()
		return nil, rwerrors.NewOperationError(w.transform.Name(), "Writer", err)
	}
	return out, nil
}

// Funcs turns two constructor functions into a Builder. A nil function
// makes the corresponding direction fail with ErrNotStarted.
type Funcs struct {
	ReaderFunc func() (Reader, error)
	WriterFunc func() (Writer, error)
}

// Reader implements Builder.
func (f Funcs) Reader() (Reader, error) {
	if f.ReaderFunc == nil {
		return nil, rwerrors.NewOperationError("rw", "Reader", rwerrors.ErrNotStarted).
			WithContext("no reader constructor")
	}
	return f.ReaderFunc()
}

// Writer implements Builder.
func (f Funcs) Writer() (Writer, error) {
	if f.WriterFunc == nil {
		return nil, rwerrors.NewOperationError("rw", "Writer", rwerrors.ErrNotStarted).
			WithContext("no writer constructor")
	}
	return f.WriterFunc()
}

// TransformFuncs turns two wrapping functions into a Transform. A nil
// function passes the handle through unchanged.
type TransformFuncs struct {
	Label   string
	Reading func(Reader) (Reader, error)
	Writing func(Writer) (Writer, error)
}

// Name implements Transform.
func (t TransformFuncs) Name() string {
	if t.Label == "" {
		return "transform"
	}
	return t.Label
}

// WrapReader implements Transform.
func (t TransformFuncs) WrapReader(r Reader) (Reader, error) {
	if t.Reading == nil {
		return r, nil
	}
	return t.Reading(r)
}

// WrapWriter implements Transform.
func (t TransformFuncs) WrapWriter(w Writer) (Writer, error) {
	if t.Writing == nil {
		return w, nil
	}
	return t.Writing(w)
}
