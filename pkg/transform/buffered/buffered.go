// Package buffered adds bufio buffering to both halves of a builder.
//
// Buffering changes how many calls reach the wrapped stage, never which
// bytes reach it. Writers must be flushed or closed for buffered bytes to
// move on.
package buffered

import (
	"bufio"

	"github.com/vnykmshr/rwflow/pkg/rw"
)

// DefaultSize is the buffer size used when a size is not positive.
const DefaultSize = 4096

// Config holds the buffer sizes of each direction.
type Config struct {
	// ReadSize is the read buffer size in bytes.
	// Default: 4096
	ReadSize int

	// WriteSize is the write buffer size in bytes.
	// Default: 4096
	WriteSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ReadSize:  DefaultSize,
		WriteSize: DefaultSize,
	}
}

// Transform wraps readers in bufio.Reader and writers in bufio.Writer.
type Transform struct {
	config Config
}

// New creates a buffering transform. Sizes that are not positive are
// replaced with DefaultSize.
func New(config Config) *Transform {
	if config.ReadSize <= 0 {
		config.ReadSize = DefaultSize
	}
	if config.WriteSize <= 0 {
		config.WriteSize = DefaultSize
	}
	return &Transform{config: config}
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return "buffered"
}

// WrapReader implements rw.Transform.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	return &Reader{Reader: bufio.NewReaderSize(r, t.config.ReadSize), inner: r}, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	return &Writer{Writer: bufio.NewWriterSize(w, t.config.WriteSize), inner: w}, nil
}

// Reader is a buffered reader. The embedded bufio.Reader gives access to
// ReadByte, ReadString, Peek and friends.
type Reader struct {
	*bufio.Reader
	inner rw.Reader
}

// Close closes the wrapped reader. Buffered unread bytes are discarded.
func (r *Reader) Close() error {
	return r.inner.Close()
}

// Writer is a buffered writer.
type Writer struct {
	*bufio.Writer
	inner rw.Writer
}

// Flush writes buffered bytes to the wrapped writer and flushes it.
func (w *Writer) Flush() error {
	if err := w.Writer.Flush(); err != nil {
		return err
	}
	return w.inner.Flush()
}

// Close flushes and closes the wrapped writer. The wrapped writer is closed
// even when the flush fails.
func (w *Writer) Close() error {
	err := w.Writer.Flush()
	if cerr := w.inner.Close(); err == nil {
		err = cerr
	}
	return err
}
