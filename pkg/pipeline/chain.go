package pipeline

import (
	"go.uber.org/zap"

	"github.com/vnykmshr/rwflow/pkg/common/logging"
	"github.com/vnykmshr/rwflow/pkg/metrics"
	"github.com/vnykmshr/rwflow/pkg/rw"
	"github.com/vnykmshr/rwflow/pkg/sink/codec"
	"github.com/vnykmshr/rwflow/pkg/sink/text"
	"github.com/vnykmshr/rwflow/pkg/transform/async"
	"github.com/vnykmshr/rwflow/pkg/transform/buffered"
	"github.com/vnykmshr/rwflow/pkg/transform/checksum"
	"github.com/vnykmshr/rwflow/pkg/transform/cipher"
	"github.com/vnykmshr/rwflow/pkg/transform/compress"
	"github.com/vnykmshr/rwflow/pkg/transform/metered"
	"github.com/vnykmshr/rwflow/pkg/transform/throttle"
)

// Chain is a builder under construction.
type Chain struct {
	b      rw.Builder
	err    error
	stages []string
	logger *zap.Logger
}

// From starts a chain over b.
func From(b rw.Builder) *Chain {
	return &Chain{b: b, logger: logging.NewNop()}
}

// WithLogger sets the logger used to report chain assembly at debug level.
func (c *Chain) WithLogger(l *zap.Logger) *Chain {
	c.logger = logging.Named(l, "pipeline")
	return c
}

// Reader implements rw.Builder.
func (c *Chain) Reader() (rw.Reader, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.b.Reader()
}

// Writer implements rw.Builder.
func (c *Chain) Writer() (rw.Writer, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.b.Writer()
}

// Builder returns the composed builder.
func (c *Chain) Builder() rw.Builder {
	return c.b
}

// Err returns the first error met while assembling the chain.
func (c *Chain) Err() error {
	return c.err
}

// Stages returns the transform names in the order they were added.
func (c *Chain) Stages() []string {
	return append([]string(nil), c.stages...)
}

// Then wraps the chain with t.
func (c *Chain) Then(t rw.Transform) *Chain {
	if c.err != nil {
		return c
	}
	c.b = rw.Wrap(c.b, t)
	c.stages = append(c.stages, t.Name())
	c.logger.Debug("stage added",
		zap.String("transform", t.Name()),
		zap.Int("depth", len(c.stages)))
	return c
}

func (c *Chain) then(t rw.Transform, err error) *Chain {
	if c.err != nil {
		return c
	}
	if err != nil {
		c.err = err
		c.logger.Debug("stage rejected", zap.Error(err))
		return c
	}
	return c.Then(t)
}

// Buffered adds bufio buffering with the default size.
func (c *Chain) Buffered() *Chain {
	return c.Then(buffered.New(buffered.DefaultConfig()))
}

// BufferedSize adds bufio buffering of n bytes in each direction.
func (c *Chain) BufferedSize(n int) *Chain {
	return c.Then(buffered.New(buffered.Config{ReadSize: n, WriteSize: n}))
}

// Compress adds compression with coder at level.
func (c *Chain) Compress(coder compress.Coder, level compress.Level) *Chain {
	return c.Then(compress.New(coder, level))
}

// Gzip adds gzip compression.
func (c *Chain) Gzip(level compress.Level) *Chain {
	return c.Compress(compress.Gzip, level)
}

// Zlib adds zlib compression.
func (c *Chain) Zlib(level compress.Level) *Chain {
	return c.Compress(compress.Zlib, level)
}

// Deflate adds raw deflate compression.
func (c *Chain) Deflate(level compress.Level) *Chain {
	return c.Compress(compress.Deflate, level)
}

// Zstd adds zstd compression.
func (c *Chain) Zstd(level compress.Level) *Chain {
	return c.Compress(compress.Zstd, level)
}

// S2 adds s2 compression.
func (c *Chain) S2(level compress.Level) *Chain {
	return c.Compress(compress.S2, level)
}

// ChaCha20 adds ChaCha20 encryption.
func (c *Chain) ChaCha20(key, nonce []byte) *Chain {
	t, err := cipher.ChaCha20(key, nonce)
	return c.then(t, err)
}

// Salsa20 adds Salsa20 encryption.
func (c *Chain) Salsa20(key, nonce []byte) *Chain {
	t, err := cipher.Salsa20(key, nonce)
	return c.then(t, err)
}

// AESCTR adds AES in counter mode.
func (c *Chain) AESCTR(key, iv []byte) *Chain {
	t, err := cipher.AESCTR(key, iv)
	return c.then(t, err)
}

// Checksum adds a pass-through checksum stage. Use checksum.Wrap on the
// chain instead when the running sum must be read.
func (c *Chain) Checksum(alg checksum.Algorithm) *Chain {
	return c.Then(checksum.New(alg))
}

// Metered adds a metrics stage named name. A nil registry uses
// metrics.DefaultRegistry.
func (c *Chain) Metered(name string, reg *metrics.Registry) *Chain {
	return c.Then(metered.New(name, reg))
}

// Async adds a background writer.
func (c *Chain) Async(config async.Config) *Chain {
	return c.Then(async.New(config))
}

// Throttle limits each handle to rate bytes per second with bursts of up
// to burst bytes.
func (c *Chain) Throttle(rate throttle.Limit, burst int) *Chain {
	t, err := throttle.NewWithConfig(throttle.Config{Rate: rate, Burst: burst})
	return c.then(t, err)
}

// Text ends the chain with a string sink.
func (c *Chain) Text() *text.Sink {
	return text.New(c)
}

// Codec ends the chain with a value sink in format f.
func (c *Chain) Codec(f codec.Format) *codec.Sink {
	return codec.New(c, f)
}

// Gob ends the chain with a gob value sink.
func (c *Chain) Gob() *codec.Sink {
	return c.Codec(codec.Gob)
}

// JSON ends the chain with a JSON value sink.
func (c *Chain) JSON() *codec.Sink {
	return c.Codec(codec.JSON)
}

// YAML ends the chain with a YAML value sink.
func (c *Chain) YAML() *codec.Sink {
	return c.Codec(codec.YAML)
}
