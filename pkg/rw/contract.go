package rw

import "io"

// Reader is the read half of the stream contract.
type Reader interface {
	io.Reader
	io.Closer
}

// Writer is the write half of the stream contract.
type Writer interface {
	io.Writer
	// Flush pushes buffered bytes to the wrapped writer and flushes it.
	Flush() error
	io.Closer
}

// Flusher is implemented by writers that can push buffered data downstream.
type Flusher interface {
	Flush() error
}

// NopReadCloser returns a Reader whose Close is a no-op unless r
// implements io.Closer, in which case Close is forwarded.
func NopReadCloser(r io.Reader) Reader {
	if rc, ok := r.(Reader); ok {
		return rc
	}
	return readCloser{r}
}

type readCloser struct {
	io.Reader
}

func (readCloser) Close() error { return nil }

// NopWriter adapts an io.Writer to the Writer contract. Flush and Close are
// forwarded when w implements them and are no-ops otherwise.
func NopWriter(w io.Writer) Writer {
	if ww, ok := w.(Writer); ok {
		return ww
	}
	return writer{w}
}

type writer struct {
	io.Writer
}

func (w writer) Flush() error {
	return FlushOf(w.Writer)
}

func (w writer) Close() error {
	if c, ok := w.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FlushOf flushes x if it implements Flusher.
func FlushOf(x any) error {
	if f, ok := x.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// CloseAll closes each closer in order and returns the first error.
func CloseAll(closers ...io.Closer) error {
	var first error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
