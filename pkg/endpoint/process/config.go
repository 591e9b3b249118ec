package process

import (
	"io"

	"go.uber.org/zap"

	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/metrics"
)

// Config holds the command line and environment of a process endpoint.
type Config struct {
	// Name is the program to run. It is resolved through PATH.
	Name string

	// Args are passed to the program.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the current environment.
	Env []string

	// Stdout receives standard output of detached writer instances.
	// Default: discarded
	Stdout io.Writer

	// Stderr receives standard error of every instance.
	// Default: discarded
	Stderr io.Writer

	// Terminal runs attached instances on a pseudo-terminal.
	Terminal bool

	// Logger receives debug events for spawns and reaps.
	Logger *zap.Logger

	// Metrics counts spawns. Nil disables metering.
	Metrics *metrics.Registry
}

// DefaultConfig returns a configuration for name with no arguments.
func DefaultConfig(name string) Config {
	return Config{Name: name}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateNotEmpty("process", "name", c.Name)
}
