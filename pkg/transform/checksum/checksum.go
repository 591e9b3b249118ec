// Package checksum keeps a running checksum of the bytes that pass through
// a stage, without changing them.
//
// Readers hash what they actually returned and writers hash what the
// wrapped writer actually accepted, so the reader and writer of the same
// stream agree once both have seen all of it:
//
//	b := checksum.Wrap(buffer.New(), checksum.CRC32)
//	w, _ := b.NewWriter()
//	// ... write ...
//	r, _ := b.NewReader()
//	// ... read ...
//	w.Sum() == r.Sum()
//
// Querying Sum never touches the stream.
package checksum

import (
	"hash"
	"hash/crc32"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Algorithm names a checksum.
type Algorithm string

// Supported algorithms.
const (
	CRC32    Algorithm = "crc32"
	CRC32C   Algorithm = "crc32c"
	XXHash64 Algorithm = "xxhash64"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ParseAlgorithm validates name as an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	if err := validation.ValidateOneOf("checksum", "algorithm", name,
		string(CRC32), string(CRC32C), string(XXHash64)); err != nil {
		return "", err
	}
	return Algorithm(name), nil
}

// newHash returns a fresh hash for a. The empty algorithm is CRC32.
func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case CRC32, "":
		return crc32.NewIEEE(), nil
	case CRC32C:
		return crc32.New(castagnoli), nil
	case XXHash64:
		return xxhash.New(), nil
	}
	_, err := ParseAlgorithm(string(a))
	return nil, err
}

// Transform attaches a running checksum to readers and writers.
type Transform struct {
	alg Algorithm
}

// New creates a checksum transform. An unsupported algorithm is reported
// when the first handle is wrapped.
func New(alg Algorithm) *Transform {
	return &Transform{alg: alg}
}

// Name implements rw.Transform.
func (t *Transform) Name() string {
	return "checksum"
}

// Algorithm returns the configured algorithm.
func (t *Transform) Algorithm() Algorithm {
	return t.alg
}

// WrapReader implements rw.Transform.
func (t *Transform) WrapReader(r rw.Reader) (rw.Reader, error) {
	cr, err := t.reader(r)
	if err != nil {
		return nil, err
	}
	return cr, nil
}

// WrapWriter implements rw.Transform.
func (t *Transform) WrapWriter(w rw.Writer) (rw.Writer, error) {
	cw, err := t.writer(w)
	if err != nil {
		return nil, err
	}
	return cw, nil
}

func (t *Transform) reader(r rw.Reader) (*Reader, error) {
	h, err := t.alg.newHash()
	if err != nil {
		return nil, err
	}
	return &Reader{inner: r, sum: sum{h: h}}, nil
}

func (t *Transform) writer(w rw.Writer) (*Writer, error) {
	h, err := t.alg.newHash()
	if err != nil {
		return nil, err
	}
	return &Writer{inner: w, sum: sum{h: h}}, nil
}

// sum is a hash that can be queried while another goroutine feeds it.
type sum struct {
	mu sync.Mutex
	h  hash.Hash
}

func (s *sum) add(p []byte) {
	s.mu.Lock()
	s.h.Write(p)
	s.mu.Unlock()
}

func (s *sum) value() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch h := s.h.(type) {
	case hash.Hash32:
		return uint64(h.Sum32())
	case hash.Hash64:
		return h.Sum64()
	}
	return 0
}

// Reader hashes the bytes it returns.
type Reader struct {
	inner rw.Reader
	sum   sum
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.sum.add(p[:n])
	}
	return n, err
}

// Close closes the wrapped reader.
func (r *Reader) Close() error {
	return r.inner.Close()
}

// Sum returns the checksum of everything read so far.
func (r *Reader) Sum() uint64 {
	return r.sum.value()
}

// Writer hashes the bytes the wrapped writer accepted.
type Writer struct {
	inner rw.Writer
	sum   sum
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	if n > 0 {
		w.sum.add(p[:n])
	}
	return n, err
}

// Flush flushes the wrapped writer.
func (w *Writer) Flush() error {
	return w.inner.Flush()
}

// Close closes the wrapped writer.
func (w *Writer) Close() error {
	return w.inner.Close()
}

// Sum returns the checksum of everything written so far.
func (w *Writer) Sum() uint64 {
	return w.sum.value()
}

// Builder wraps another builder and hands out concrete checksum handles.
type Builder struct {
	inner     rw.Builder
	transform *Transform
}

// Wrap returns a checksum builder over b.
func Wrap(b rw.Builder, alg Algorithm) *Builder {
	return &Builder{inner: b, transform: New(alg)}
}

// NewReader builds a reader whose checksum can be queried.
func (b *Builder) NewReader() (*Reader, error) {
	r, err := b.inner.Reader()
	if err != nil {
		return nil, err
	}
	cr, err := b.transform.reader(r)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	return cr, nil
}

// NewWriter builds a writer whose checksum can be queried.
func (b *Builder) NewWriter() (*Writer, error) {
	w, err := b.inner.Writer()
	if err != nil {
		return nil, err
	}
	cw, err := b.transform.writer(w)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	return cw, nil
}

// Reader implements rw.Builder.
func (b *Builder) Reader() (rw.Reader, error) {
	r, err := b.NewReader()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Writer implements rw.Builder.
func (b *Builder) Writer() (rw.Writer, error) {
	w, err := b.NewWriter()
	if err != nil {
		return nil, err
	}
	return w, nil
}
