package compress

import (
	"errors"
	"fmt"
	"io"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Transform compresses writers and decompresses readers with one coder.
type Transform struct {
	coder Coder
	level Level
}

// New creates a compression transform.
func New(coder Coder, level Level) *Transform {
	return &Transform{coder: coder, level: level}
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return t.coder.Name()
}

// Level returns the configured level.
func (t *Transform) Level() Level {
	return t.level
}

// WrapReader implements rw.Transform.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	return &reader{coder: t.coder, inner: &recorder{r: r}, closer: r}, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	enc, err := t.coder.Encoder(w, t.level)
	if err != nil {
		return nil, err
	}
	return &writer{enc: enc, inner: w}, nil
}

// recorder remembers the last error of the reader it wraps so codec
// errors can be told apart from I/O errors.
type recorder struct {
	r   io.Reader
	err error
}

func (rc *recorder) Read(p []byte) (int, error) {
	n, err := rc.r.Read(p)
	if err != nil && err != io.EOF {
		rc.err = err
	}
	return n, err
}

type reader struct {
	coder  Coder
	inner  *recorder
	closer io.Closer
	dec    io.ReadCloser
	err    error
}

func (r *reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.dec == nil {
		dec, err := r.coder.Decoder(r.inner)
		if err == io.EOF {
			// Nothing written yet; try again on the next Read.
			return 0, io.EOF
		}
		if err != nil {
			r.err = r.classify(err)
			return 0, r.err
		}
		r.dec = dec
	}

	n, err := r.dec.Read(p)
	if err != nil {
		err = r.classify(err)
		if err != io.EOF {
			r.err = err
		}
	}
	return n, err
}

// classify wraps errors that did not come from the inner reader.
func (r *reader) classify(err error) error {
	if err == io.EOF {
		return err
	}
	if r.inner.err != nil && errors.Is(err, r.inner.err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", r.coder.Name(), rwerrors.ErrTransform, err)
}

func (r *reader) Close() error {
	var err error
	if r.dec != nil {
		err = r.dec.Close()
	}
	if cerr := r.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

type writer struct {
	enc   Encoder
	inner rw.Writer
}

func (w *writer) Write(p []byte) (int, error) {
	return w.enc.Write(p)
}

// Flush emits a decodable block and flushes the wrapped writer.
func (w *writer) Flush() error {
	if err := w.enc.Flush(); err != nil {
		return err
	}
	return w.inner.Flush()
}

// Close finishes the compressed stream and closes the wrapped writer.
func (w *writer) Close() error {
	err := w.enc.Close()
	if cerr := w.inner.Close(); err == nil {
		err = cerr
	}
	return err
}
