// Package netconn is a stream endpoint that dials a network address.
//
// Every Reader and every Writer dials its own connection. Reading returns
// what the peer sends; writing sends to the peer. Close closes the
// connection.
package netconn

import (
	"context"
	"net"
	"time"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Config holds configuration options for a network endpoint.
type Config struct {
	// Network is "tcp", "tcp4", "tcp6", "unix" or any network net.Dial accepts.
	Network string

	// Address is the peer address.
	Address string

	// DialTimeout bounds each dial.
	// Default: 10 seconds
	DialTimeout time.Duration

	// KeepAlive is the TCP keep-alive period. Zero uses the net package default.
	KeepAlive time.Duration
}

// DefaultConfig returns a configuration for network and address.
func DefaultConfig(network, address string) Config {
	return Config{
		Network:     network,
		Address:     address,
		DialTimeout: 10 * time.Second,
	}
}

// Builder dials one address.
type Builder struct {
	config Config
	dialer net.Dialer
}

// New creates a network endpoint. It panics if network or address is empty.
func New(network, address string) *Builder {
	b, err := NewWithConfig(DefaultConfig(network, address))
	if err != nil {
		panic(err)
	}
	return b
}

// NewWithConfig creates a network endpoint with the given configuration.
func NewWithConfig(config Config) (*Builder, error) {
	if err := validation.ValidateNotEmpty("netconn", "network", config.Network); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("netconn", "address", config.Address); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("netconn", "dial_timeout", float64(config.DialTimeout)); err != nil {
		return nil, err
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultConfig("", "").DialTimeout
	}
	return &Builder{
		config: config,
		dialer: net.Dialer{Timeout: config.DialTimeout, KeepAlive: config.KeepAlive},
	}, nil
}

// Reader dials a connection for reading.
func (b *Builder) Reader() (rw.Reader, error) {
	return b.DialContext(context.Background())
}

// Writer dials a connection for writing.
func (b *Builder) Writer() (rw.Writer, error) {
	return b.DialContext(context.Background())
}

// DialContext dials a connection usable as both reader and writer.
func (b *Builder) DialContext(ctx context.Context) (*Conn, error) {
	c, err := b.dialer.DialContext(ctx, b.config.Network, b.config.Address)
	if err != nil {
		return nil, rwerrors.NewOperationError("netconn", "dial", err).WithContext(b.config.Address)
	}
	return &Conn{Conn: c}, nil
}

// Conn is a dialed connection satisfying both rw.Reader and rw.Writer.
type Conn struct {
	net.Conn
}

// Flush is a no-op; writes go straight to the socket.
func (c *Conn) Flush() error {
	return nil
}

// CloseWrite shuts down the sending side when the connection supports it,
// so the peer sees end of stream while replies can still be read.
func (c *Conn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}
