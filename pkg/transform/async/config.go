package async

import (
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/rwflow/pkg/metrics"
)

// Config holds configuration options for async writers.
type Config struct {
	// BufferSize is the size of the internal buffer in bytes.
	// Default: 64KB
	BufferSize int

	// FlushInterval is how often to flush the buffer automatically.
	// Set to 0 to disable automatic flushing.
	// Default: 1 second
	FlushInterval time.Duration

	// BlockOnFull determines behavior when buffer is full.
	// If true, Write blocks until the data has been buffered.
	// If false, Write returns ErrBufferFull immediately.
	// Default: true
	BlockOnFull bool

	// Stage names the writer in metrics and logs.
	// Default: "async"
	Stage string

	// Metrics receives pending-bytes and dropped-write metrics. Nil disables them.
	Metrics *metrics.Registry

	// Logger receives background write failures.
	Logger *zap.Logger

	// OnError is called when write errors occur.
	OnError func(error)

	// OnFlush is called after each flush operation.
	OnFlush func(bytesWritten int, duration time.Duration)

	// OnBufferFull is called when the buffer becomes full.
	OnBufferFull func()
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:    64 * 1024, // 64KB
		FlushInterval: time.Second,
		BlockOnFull:   true,
		Stage:         "async",
	}
}

// normalize fills unset fields from DefaultConfig.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	if c.Stage == "" {
		c.Stage = def.Stage
	}
	return c
}
