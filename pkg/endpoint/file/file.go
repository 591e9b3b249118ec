// Package file is a stream endpoint backed by a path on disk.
//
// Every Reader opens the file read-only from the start. Every Writer
// creates the file, truncating it unless Append is set. Flush syncs the
// file to stable storage.
package file

import (
	"os"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Config holds configuration options for a file endpoint.
type Config struct {
	// Path is the file to read and write.
	Path string

	// Append makes writers add to the end instead of truncating.
	// Default: false
	Append bool

	// Perm is used when a writer creates the file.
	// Default: 0o644
	Perm os.FileMode
}

// DefaultConfig returns a configuration for path.
func DefaultConfig(path string) Config {
	return Config{Path: path, Perm: 0o644}
}

// Builder opens one path for reading and writing.
type Builder struct {
	config Config
}

// New creates a file endpoint for path. It panics if path is empty.
func New(path string) *Builder {
	b, err := NewWithConfig(DefaultConfig(path))
	if err != nil {
		panic(err)
	}
	return b
}

// NewWithConfig creates a file endpoint with the given configuration.
func NewWithConfig(config Config) (*Builder, error) {
	if err := validation.ValidateNotEmpty("file", "path", config.Path); err != nil {
		return nil, err
	}
	if config.Perm == 0 {
		config.Perm = 0o644
	}
	return &Builder{config: config}, nil
}

// Path returns the configured path.
func (b *Builder) Path() string {
	return b.config.Path
}

// Reader opens the file for reading.
func (b *Builder) Reader() (rw.Reader, error) {
	f, err := os.Open(b.config.Path)
	if err != nil {
		return nil, rwerrors.NewOperationError("file", "open", err)
	}
	return f, nil
}

// Writer opens the file for writing.
func (b *Builder) Writer() (rw.Writer, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if b.config.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(b.config.Path, flags, b.config.Perm)
	if err != nil {
		return nil, rwerrors.NewOperationError("file", "create", err)
	}
	return &writer{File: f}, nil
}

// writer adds Flush to *os.File.
type writer struct {
	*os.File
}

// Flush commits the file's contents to stable storage.
func (w *writer) Flush() error {
	return w.Sync()
}
