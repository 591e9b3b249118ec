package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/logging"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// ErrBufferFull is returned when the internal buffer is full and cannot accept more data.
var ErrBufferFull = errors.New("buffer is full")

// Stats holds statistics about async writer performance.
type Stats struct {
	// BytesWritten is the total number of bytes accepted.
	BytesWritten int64

	// WriteCount is the total number of write operations.
	WriteCount int64

	// FlushCount is the total number of flush operations.
	FlushCount int64

	// ErrorCount is the total number of errors encountered.
	ErrorCount int64

	// BufferOverflows is the number of times the buffer was full.
	BufferOverflows int64

	// AverageWriteTime is the average time per write operation.
	AverageWriteTime time.Duration

	// TotalWriteTime is the total time spent writing.
	TotalWriteTime time.Duration

	// LastWriteTime is the timestamp of the last write operation.
	LastWriteTime time.Time

	// BufferUtilization is the current buffer utilization (0.0 to 1.0).
	BufferUtilization float64
}

// writeRequest represents a write operation request.
type writeRequest struct {
	data []byte
	ctx  context.Context
	done chan error // nil when the caller does not wait
}

// Writer accepts writes into a memory buffer and moves them to the wrapped
// writer from a background goroutine.
type Writer struct {
	underlying rw.Writer
	config     Config
	logger     *zap.Logger

	// Buffer and synchronization
	buffer   []byte
	bufferMu sync.Mutex
	// flushMu serializes writes to the underlying writer.
	flushMu sync.Mutex

	// Communication channels
	writeCh chan writeRequest
	flushCh chan chan error
	closeCh chan chan error

	// Background goroutine management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// State
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	errMu     sync.Mutex
	bgErr     error // first background failure, reported on the next call

	// Statistics
	stats   Stats
	statsMu sync.RWMutex
}

// NewWriter starts an async writer over w.
func NewWriter(w rw.Writer, config Config) *Writer {
	config = config.normalize()
	ctx, cancel := context.WithCancel(context.Background())

	aw := &Writer{
		underlying: w,
		config:     config,
		logger:     logging.Named(config.Logger, "async").With(zap.String("stage", config.Stage)),
		buffer:     make([]byte, 0, config.BufferSize),
		writeCh:    make(chan writeRequest, 100), // Buffered channel for requests
		flushCh:    make(chan chan error, 10),
		closeCh:    make(chan chan error, 1),
		ctx:        ctx,
		cancel:     cancel,
	}

	// Start background writer goroutine
	aw.wg.Add(1)
	go aw.writerLoop()

	// Start automatic flush goroutine if enabled
	if config.FlushInterval > 0 {
		aw.wg.Add(1)
		go aw.flushLoop()
	}

	return aw
}

// Write implements io.Writer. With BlockOnFull it returns once the data is
// buffered; otherwise it returns as soon as the request is queued.
func (aw *Writer) Write(p []byte) (int, error) {
	if err := aw.WriteContext(context.Background(), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString writes a string asynchronously.
func (aw *Writer) WriteString(s string) (int, error) {
	return aw.Write([]byte(s))
}

// WriteContext writes data with context support for cancellation.
func (aw *Writer) WriteContext(ctx context.Context, data []byte) error {
	if aw.IsClosed() {
		return rwerrors.ErrClosed
	}
	if err := aw.backgroundErr(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	if !aw.config.BlockOnFull {
		aw.bufferMu.Lock()
		wouldOverflow := len(aw.buffer)+len(data) > cap(aw.buffer)
		aw.bufferMu.Unlock()

		if wouldOverflow {
			aw.updateStats(func(s *Stats) {
				s.BufferOverflows++
			})
			if aw.config.Metrics != nil {
				aw.config.Metrics.AsyncDropped.WithLabelValues(aw.config.Stage).Inc()
			}
			if aw.config.OnBufferFull != nil {
				aw.config.OnBufferFull()
			}
			return ErrBufferFull
		}
	}

	// Create write request
	req := writeRequest{
		data: make([]byte, len(data)),
		ctx:  ctx,
	}
	copy(req.data, data)
	if aw.config.BlockOnFull {
		req.done = make(chan error, 1)
	}

	// Send request to background goroutine
	select {
	case aw.writeCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-aw.ctx.Done():
		return rwerrors.ErrClosed
	}

	if req.done == nil {
		return nil
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-aw.ctx.Done():
		return rwerrors.ErrClosed
	}
}

// Flush blocks until everything written so far has reached the wrapped
// writer, then flushes it.
func (aw *Writer) Flush() error {
	return aw.FlushContext(context.Background())
}

// FlushContext is Flush with cancellation.
func (aw *Writer) FlushContext(ctx context.Context) error {
	if aw.IsClosed() {
		return rwerrors.ErrClosed
	}

	done := make(chan error, 1)

	select {
	case aw.flushCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	case <-aw.ctx.Done():
		return rwerrors.ErrClosed
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-aw.ctx.Done():
		return rwerrors.ErrClosed
	}
}

// Close flushes remaining data, stops the background goroutines and closes
// the wrapped writer. Later calls return the first result.
func (aw *Writer) Close() error {
	aw.closeOnce.Do(func() {
		aw.closed.Store(true)

		done := make(chan error, 1)
		aw.closeCh <- done
		err := <-done
		aw.wg.Wait()

		if cerr := aw.underlying.Close(); err == nil {
			err = cerr
		}
		aw.closeErr = err
	})
	return aw.closeErr
}

// Stats returns statistics about the writer's performance.
func (aw *Writer) Stats() Stats {
	aw.statsMu.RLock()
	stats := aw.stats
	aw.statsMu.RUnlock()

	// Calculate buffer utilization
	aw.bufferMu.Lock()
	if cap(aw.buffer) > 0 {
		stats.BufferUtilization = float64(len(aw.buffer)) / float64(cap(aw.buffer))
	}
	aw.bufferMu.Unlock()

	// Calculate average write time
	if stats.WriteCount > 0 {
		stats.AverageWriteTime = time.Duration(int64(stats.TotalWriteTime) / stats.WriteCount)
	}

	return stats
}

// IsClosed returns true if the writer is closed.
func (aw *Writer) IsClosed() bool {
	return aw.closed.Load()
}

// BufferSize returns the current number of buffered bytes.
func (aw *Writer) BufferSize() int {
	aw.bufferMu.Lock()
	defer aw.bufferMu.Unlock()
	return len(aw.buffer)
}

// BufferCapacity returns the maximum buffer capacity.
func (aw *Writer) BufferCapacity() int {
	aw.bufferMu.Lock()
	defer aw.bufferMu.Unlock()
	return cap(aw.buffer)
}

// writerLoop is the main background goroutine that handles write operations.
func (aw *Writer) writerLoop() {
	defer aw.wg.Done()

	for {
		select {
		case req := <-aw.writeCh:
			aw.serve(req)

		case done := <-aw.flushCh:
			// Writes queued before the flush request belong to it.
			aw.drainQueue()
			err := aw.flushAll()
			if err == nil {
				err = aw.backgroundErr()
			}
			done <- err

		case done := <-aw.closeCh:
			aw.drainQueue()
			err := aw.flushAll()
			if err == nil {
				err = aw.backgroundErr()
			}
			aw.cancel()
			done <- err
			return
		}
	}
}

func (aw *Writer) serve(req writeRequest) {
	err := aw.handleWriteRequest(req)
	if req.done != nil {
		req.done <- err
	} else if err != nil {
		aw.setBackgroundErr(err)
	}
}

// drainQueue handles write requests that are already queued.
func (aw *Writer) drainQueue() {
	for {
		select {
		case req := <-aw.writeCh:
			aw.serve(req)
		default:
			return
		}
	}
}

// flushLoop automatically flushes the buffer at regular intervals.
func (aw *Writer) flushLoop() {
	defer aw.wg.Done()

	ticker := time.NewTicker(aw.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := aw.flushAll(); err != nil {
				aw.setBackgroundErr(err)
			}
		case <-aw.ctx.Done():
			return
		}
	}
}

// handleWriteRequest processes a write request.
func (aw *Writer) handleWriteRequest(req writeRequest) error {
	if err := aw.backgroundErr(); err != nil {
		return err
	}
	startTime := time.Now()

	aw.bufferMu.Lock()
	overflow := len(aw.buffer)+len(req.data) > cap(aw.buffer)
	aw.bufferMu.Unlock()

	if overflow {
		if err := aw.flushBuffer(); err != nil {
			return err
		}
	}

	if len(req.data) > cap(aw.buffer) {
		// Larger than the whole buffer: write through.
		aw.flushMu.Lock()
		_, err := aw.writeThrough(req.data)
		aw.flushMu.Unlock()
		if err != nil {
			aw.recordError(err)
			return err
		}
	} else {
		aw.bufferMu.Lock()
		aw.buffer = append(aw.buffer, req.data...)
		pending := len(aw.buffer)
		aw.bufferMu.Unlock()
		aw.observePending(pending)
	}

	duration := time.Since(startTime)
	aw.updateStats(func(s *Stats) {
		s.WriteCount++
		s.BytesWritten += int64(len(req.data))
		s.TotalWriteTime += duration
		s.LastWriteTime = time.Now()
	})

	return nil
}

// flushAll drains the buffer and flushes the wrapped writer.
func (aw *Writer) flushAll() error {
	if err := aw.flushBuffer(); err != nil {
		return err
	}
	aw.flushMu.Lock()
	defer aw.flushMu.Unlock()
	if err := aw.underlying.Flush(); err != nil {
		aw.recordError(err)
		return err
	}
	return nil
}

// flushBuffer writes all buffered data to the underlying writer.
func (aw *Writer) flushBuffer() error {
	aw.flushMu.Lock()
	defer aw.flushMu.Unlock()

	if err := aw.backgroundErr(); err != nil {
		aw.bufferMu.Lock()
		aw.buffer = aw.buffer[:0]
		aw.bufferMu.Unlock()
		aw.observePending(0)
		return err
	}

	aw.bufferMu.Lock()
	if len(aw.buffer) == 0 {
		aw.bufferMu.Unlock()
		return nil
	}

	// Copy buffer to avoid holding lock during write
	data := make([]byte, len(aw.buffer))
	copy(data, aw.buffer)
	aw.buffer = aw.buffer[:0]
	aw.bufferMu.Unlock()
	aw.observePending(0)

	startTime := time.Now()
	bytesWritten, err := aw.writeThrough(data)
	duration := time.Since(startTime)

	aw.updateStats(func(s *Stats) {
		s.FlushCount++
	})

	if aw.config.OnFlush != nil {
		aw.config.OnFlush(bytesWritten, duration)
	}
	if err != nil {
		aw.recordError(err)
	}
	return err
}

// writeThrough hands data to the wrapped writer once. Inner stages may be
// stateful, so a failed write is never repeated.
func (aw *Writer) writeThrough(data []byte) (int, error) {
	n, err := aw.underlying.Write(data)
	if err == nil && n < len(data) {
		err = rwerrors.ErrShortWrite
	}
	return n, err
}

func (aw *Writer) recordError(err error) {
	aw.setBackgroundErr(err)
	aw.updateStats(func(s *Stats) {
		s.ErrorCount++
	})
	aw.logger.Warn("write failed", zap.Error(err))
	if aw.config.Metrics != nil {
		aw.config.Metrics.ObserveError(aw.config.Stage, "async_write")
	}
	if aw.config.OnError != nil {
		aw.config.OnError(err)
	}
}

func (aw *Writer) setBackgroundErr(err error) {
	aw.errMu.Lock()
	if aw.bgErr == nil {
		aw.bgErr = err
	}
	aw.errMu.Unlock()
}

func (aw *Writer) backgroundErr() error {
	aw.errMu.Lock()
	defer aw.errMu.Unlock()
	return aw.bgErr
}

func (aw *Writer) observePending(n int) {
	if aw.config.Metrics != nil {
		aw.config.Metrics.AsyncPending.WithLabelValues(aw.config.Stage).Set(float64(n))
	}
}

// updateStats safely updates statistics.
func (aw *Writer) updateStats(updater func(*Stats)) {
	aw.statsMu.Lock()
	defer aw.statsMu.Unlock()
	updater(&aw.stats)
}
