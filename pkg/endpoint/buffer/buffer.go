package buffer

import (
	"io"
	"sync"

	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Config holds configuration options for a shared buffer.
type Config struct {
	// InitialCapacity preallocates the backing store.
	// Default: 0
	InitialCapacity int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{}
}

// store is the backing buffer shared by a builder and everything it builds.
type store struct {
	mu   sync.Mutex
	data []byte
	gen  uint64 // bumped by Reset
}

// Builder builds readers and writers over a shared in-memory store.
type Builder struct {
	store *store
}

// New creates an empty shared buffer.
func New() *Builder {
	return &Builder{store: &store{}}
}

// NewWithConfig creates a shared buffer with the given configuration.
func NewWithConfig(config Config) (*Builder, error) {
	if err := validation.ValidateNonNegative("buffer", "initial_capacity", float64(config.InitialCapacity)); err != nil {
		return nil, err
	}
	return &Builder{store: &store{data: make([]byte, 0, config.InitialCapacity)}}, nil
}

// Reader returns a reader positioned at the start of the store.
func (b *Builder) Reader() (rw.Reader, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return &Reader{store: b.store, gen: b.store.gen}, nil
}

// Writer returns a writer that appends to the store.
func (b *Builder) Writer() (rw.Writer, error) {
	return &Writer{store: b.store}, nil
}

// Len returns the current number of bytes in the store.
func (b *Builder) Len() int {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return len(b.store.data)
}

// Bytes returns a copy of the store's contents.
func (b *Builder) Bytes() []byte {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	out := make([]byte, len(b.store.data))
	copy(out, b.store.data)
	return out
}

// Reset empties the store. Existing readers continue from the start of
// whatever is appended next.
func (b *Builder) Reset() {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.data = b.store.data[:0]
	b.store.gen++
}

// Reader reads from a shared store starting at its own cursor.
type Reader struct {
	store  *store
	cursor int
	gen    uint64
}

// Read copies min(remaining, len(p)) bytes and advances the cursor.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.gen != r.store.gen {
		r.gen = r.store.gen
		r.cursor = 0
	}
	n := copy(p, r.store.data[r.cursor:])
	r.cursor += n
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.cursor
}

// Close is a no-op; the store outlives its readers.
func (r *Reader) Close() error {
	return nil
}

// Writer appends to a shared store.
type Writer struct {
	store *store
}

// Write appends all of p.
func (w *Writer) Write(p []byte) (int, error) {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.data = append(w.store.data, p...)
	return len(p), nil
}

// Flush is a no-op; there is no medium to synchronize with.
func (w *Writer) Flush() error {
	return nil
}

// Close is a no-op; the store outlives its writers.
func (w *Writer) Close() error {
	return nil
}
