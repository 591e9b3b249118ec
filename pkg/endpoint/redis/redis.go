// Package redis is a stream endpoint backed by a Redis string key.
//
// The key is used as an append log: writers APPEND every Write, readers walk
// the value with GETRANGE from their own cursor and report io.EOF once the
// cursor reaches the length the key had at that moment. A reader that hits
// io.EOF may see more data on a later Read if a writer appended meanwhile.
package redis

import (
	"context"
	"io"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Config holds configuration for a Redis endpoint.
type Config struct {
	// Client is the Redis connection. Required.
	Client goredis.UniversalClient

	// Key names the string value used as the stream.
	Key string

	// Timeout bounds every Redis command.
	// Default: 500ms
	Timeout time.Duration

	// Truncate deletes the key when a Writer is created.
	Truncate bool
}

// DefaultConfig returns a configuration for key on client.
func DefaultConfig(client goredis.UniversalClient, key string) Config {
	return Config{
		Client:  client,
		Key:     key,
		Timeout: 500 * time.Millisecond,
	}
}

// Builder produces handles over one Redis key.
type Builder struct {
	config Config
}

// New creates a Redis endpoint. It panics if client is nil or key is empty.
func New(client goredis.UniversalClient, key string) *Builder {
	b, err := NewWithConfig(DefaultConfig(client, key))
	if err != nil {
		panic(err)
	}
	return b
}

// NewWithConfig creates a Redis endpoint with the given configuration.
func NewWithConfig(config Config) (*Builder, error) {
	if config.Client == nil {
		return nil, validation.ValidateNotNil("redis", "client", nil)
	}
	if err := validation.ValidateNotEmpty("redis", "key", config.Key); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("redis", "timeout", float64(config.Timeout)); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig(nil, "").Timeout
	}
	return &Builder{config: config}, nil
}

// Key returns the Redis key.
func (b *Builder) Key() string {
	return b.config.Key
}

// Reader returns a reader starting at offset zero.
func (b *Builder) Reader() (rw.Reader, error) {
	return &reader{config: b.config}, nil
}

// Writer returns a writer that appends to the key.
func (b *Builder) Writer() (rw.Writer, error) {
	if b.config.Truncate {
		ctx, cancel := context.WithTimeout(context.Background(), b.config.Timeout)
		defer cancel()
		if err := b.config.Client.Del(ctx, b.config.Key).Err(); err != nil {
			return nil, rwerrors.NewOperationError("redis", "truncate", err).WithContext(b.config.Key)
		}
	}
	return &writer{config: b.config}, nil
}

type reader struct {
	config Config
	mu     sync.Mutex
	offset int64
	closed bool
}

func (r *reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, rwerrors.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	chunk, err := r.config.Client.GetRange(ctx, r.config.Key, r.offset, r.offset+int64(len(p))-1).Result()
	if err != nil {
		return 0, rwerrors.NewOperationError("redis", "getrange", err).WithContext(r.config.Key)
	}
	if chunk == "" {
		return 0, io.EOF
	}
	n := copy(p, chunk)
	r.offset += int64(n)
	return n, nil
}

func (r *reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type writer struct {
	config Config
	mu     sync.Mutex
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, rwerrors.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
	defer cancel()

	if err := w.config.Client.Append(ctx, w.config.Key, string(p)).Err(); err != nil {
		return 0, rwerrors.NewOperationError("redis", "append", err).WithContext(w.config.Key)
	}
	return len(p), nil
}

// Flush is a no-op; every Write is a completed APPEND.
func (w *writer) Flush() error {
	return nil
}

func (w *writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}
