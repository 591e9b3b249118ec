// Package text reads and writes a whole stream as a string.
//
// A Sink ends a composition: it takes a builder but is not one itself.
//
//	s := text.New(rw.Wrap(buffer.New(), compress.New(compress.Gzip, compress.Default)))
//	_ = s.WriteString("hello")
//	v, _ := s.ReadString() // "hello"
package text

import (
	"fmt"
	"io"
	"unicode/utf8"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Sink moves strings through a builder.
type Sink struct {
	b rw.Builder
}

// New creates a text sink over b.
func New(b rw.Builder) *Sink {
	return &Sink{b: b}
}

// ReadBytes builds a fresh reader and reads it to the end.
func (s *Sink) ReadBytes() ([]byte, error) {
	r, err := s.b.Reader()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ReadString is ReadBytes for UTF-8 text. Invalid UTF-8 wraps
// errors.ErrTransform.
func (s *Sink) ReadString() (string, error) {
	data, err := s.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text: %w: stream is not valid UTF-8", rwerrors.ErrTransform)
	}
	return string(data), nil
}

// String returns the stream's contents, or "" if it cannot be read.
func (s *Sink) String() string {
	v, err := s.ReadString()
	if err != nil {
		return ""
	}
	return v
}

// WriteBytes builds a fresh writer, writes p, then flushes and closes the
// writer. A write that does not accept all of p fails with
// errors.ErrShortWrite.
func (s *Sink) WriteBytes(p []byte) error {
	w, err := s.b.Writer()
	if err != nil {
		return err
	}

	n, err := w.Write(p)
	if err == nil && n != len(p) {
		err = fmt.Errorf("text: wrote %d of %d bytes: %w", n, len(p), rwerrors.ErrShortWrite)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteString writes v as the stream's contents.
func (s *Sink) WriteString(v string) error {
	return s.WriteBytes([]byte(v))
}
