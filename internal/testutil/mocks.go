package testutil

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// MockWriter is a test writer that can simulate various write conditions
// including delays, errors, short writes, and call counting. It also
// satisfies the rw.Writer contract (Flush and Close).
type MockWriter struct {
	buf         *bytes.Buffer
	mu          sync.Mutex
	writeDelay  time.Duration
	errorOnNth  int
	writeCount  int
	flushCount  int
	closed      bool
	shortBy     int
	shouldError bool
	err         error
}

// NewMockWriter creates a new MockWriter.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		buf: &bytes.Buffer{},
	}
}

// Write implements io.Writer interface with configurable behavior.
func (mw *MockWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	mw.writeCount++

	if mw.writeDelay > 0 {
		time.Sleep(mw.writeDelay)
	}

	if mw.shouldError {
		return 0, mw.err
	}

	if mw.errorOnNth > 0 && mw.writeCount == mw.errorOnNth {
		return 0, errors.New("simulated error")
	}

	if mw.shortBy > 0 && len(p) > mw.shortBy {
		return mw.buf.Write(p[:len(p)-mw.shortBy])
	}

	return mw.buf.Write(p)
}

// Flush records the call.
func (mw *MockWriter) Flush() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.flushCount++
	return nil
}

// Close marks the writer closed.
func (mw *MockWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.closed = true
	return nil
}

// String returns the current buffer contents.
func (mw *MockWriter) String() string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.buf.String()
}

// Bytes returns a copy of the current buffer contents.
func (mw *MockWriter) Bytes() []byte {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return append([]byte(nil), mw.buf.Bytes()...)
}

// Len returns the current buffer length.
func (mw *MockWriter) Len() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.buf.Len()
}

// WriteCount returns the number of Write calls.
func (mw *MockWriter) WriteCount() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.writeCount
}

// FlushCount returns the number of Flush calls.
func (mw *MockWriter) FlushCount() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.flushCount
}

// Closed reports whether Close was called.
func (mw *MockWriter) Closed() bool {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.closed
}

// SetWriteDelay configures a delay for each write operation.
func (mw *MockWriter) SetWriteDelay(delay time.Duration) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.writeDelay = delay
}

// SetErrorOnNth configures the writer to error on the nth write.
func (mw *MockWriter) SetErrorOnNth(n int) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.errorOnNth = n
}

// SetAlwaysError configures the writer to always return the given error.
func (mw *MockWriter) SetAlwaysError(err error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.shouldError = true
	mw.err = err
}

// SetShortBy makes every write accept n bytes fewer than supplied.
func (mw *MockWriter) SetShortBy(n int) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.shortBy = n
}

// Reset clears the buffer and resets counters.
func (mw *MockWriter) Reset() {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.buf.Reset()
	mw.writeCount = 0
	mw.flushCount = 0
	mw.closed = false
	mw.shouldError = false
	mw.errorOnNth = 0
	mw.shortBy = 0
	mw.writeDelay = 0
	mw.err = nil
}

// ChunkReader returns at most Chunk bytes per Read call, which exercises
// callers that must cope with short reads. When WithDataErr is set the
// final chunk is returned together with io.EOF.
type ChunkReader struct {
	data        []byte
	Chunk       int
	WithDataErr bool
	closed      bool
}

// NewChunkReader creates a ChunkReader over data.
func NewChunkReader(data []byte, chunk int) *ChunkReader {
	return &ChunkReader{data: data, Chunk: chunk}
}

// Read implements io.Reader.
func (r *ChunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if r.Chunk > 0 && n > r.Chunk {
		n = r.Chunk
	}
	n = copy(p[:n], r.data)
	r.data = r.data[n:]
	if r.WithDataErr && len(r.data) == 0 {
		return n, io.EOF
	}
	return n, nil
}

// Close marks the reader closed.
func (r *ChunkReader) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *ChunkReader) Closed() bool {
	return r.closed
}

// ReadInChunks drains r using reads of exactly size bytes of capacity.
func ReadInChunks(r io.Reader, size int) ([]byte, error) {
	var out []byte
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// WriteInChunks writes data to w in pieces of size bytes.
func WriteInChunks(w io.Writer, data []byte, size int) error {
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
