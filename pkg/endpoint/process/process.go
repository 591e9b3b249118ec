package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/logging"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Builder spawns instances of one command.
type Builder struct {
	config Config
	logger *zap.Logger
}

// New creates a detached process endpoint for name and args.
// It panics if name is empty.
func New(name string, args ...string) *Builder {
	cfg := DefaultConfig(name)
	cfg.Args = args
	b, err := NewWithConfig(cfg)
	if err != nil {
		panic(err)
	}
	return b
}

// NewWithConfig creates a process endpoint with the given configuration.
func NewWithConfig(config Config) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.Args = append([]string(nil), config.Args...)
	config.Env = append([]string(nil), config.Env...)
	return &Builder{
		config: config,
		logger: logging.Named(config.Logger, "process"),
	}, nil
}

// Config returns a copy of the builder's configuration.
func (b *Builder) Config() Config {
	return b.config
}

// Reader spawns a fresh instance and returns its standard output. Closing
// the reader closes the pipe and waits for the instance to exit.
func (b *Builder) Reader() (rw.Reader, error) {
	cmd := b.command()
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, spawnError(b.config.Name, err)
	}
	inst, err := b.spawn(cmd, "detached")
	if err != nil {
		return nil, err
	}
	return &reader{rc: stdout, inst: inst}, nil
}

// Writer spawns a fresh instance and returns its standard input. Closing
// the writer closes the pipe and waits for the instance to exit.
func (b *Builder) Writer() (rw.Writer, error) {
	cmd := b.command()
	cmd.Stdout = b.config.Stdout
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, spawnError(b.config.Name, err)
	}
	inst, err := b.spawn(cmd, "detached")
	if err != nil {
		return nil, err
	}
	return &writer{wc: stdin, inst: inst}, nil
}

func (b *Builder) command() *exec.Cmd {
	cmd := exec.Command(b.config.Name, b.config.Args...)
	cmd.Dir = b.config.Dir
	if len(b.config.Env) > 0 {
		cmd.Env = append(os.Environ(), b.config.Env...)
	}
	cmd.Stderr = b.config.Stderr
	return cmd
}

func (b *Builder) spawn(cmd *exec.Cmd, mode string) (*instance, error) {
	if err := cmd.Start(); err != nil {
		return nil, spawnError(b.config.Name, err)
	}
	return b.track(cmd, mode), nil
}

// track registers an already started command.
func (b *Builder) track(cmd *exec.Cmd, mode string) *instance {
	inst := &instance{
		cmd: cmd,
		id:  uuid.NewString(),
	}
	inst.logger = b.logger.With(
		zap.String("id", inst.id),
		zap.String("command", b.config.Name),
		zap.String("mode", mode),
	)
	inst.logger.Debug("spawned", zap.Int("pid", cmd.Process.Pid))
	b.config.Metrics.ObserveSpawn(b.config.Name, mode)
	return inst
}

func spawnError(name string, err error) error {
	return rwerrors.NewOperationError("process", "spawn", err).WithContext(name)
}

// instance is one spawned process.
type instance struct {
	cmd    *exec.Cmd
	id     string
	logger *zap.Logger

	waitOnce sync.Once
	waitErr  error
}

// wait reaps the process once; later calls return the first result.
func (i *instance) wait() error {
	i.waitOnce.Do(func() {
		i.waitErr = i.cmd.Wait()
		if i.waitErr != nil {
			i.logger.Debug("reaped", zap.Error(i.waitErr))
		} else {
			i.logger.Debug("reaped")
		}
	})
	return i.waitErr
}

// reader is the stdout side of an instance. A nil inst means attached mode,
// where Close only releases the pipe.
type reader struct {
	rc   io.ReadCloser
	inst *instance

	closeOnce sync.Once
	closeErr  error
}

func (r *reader) Read(p []byte) (int, error) {
	return r.rc.Read(p)
}

func (r *reader) Close() error {
	r.closeOnce.Do(func() {
		err := r.rc.Close()
		if errors.Is(err, os.ErrClosed) {
			err = nil
		}
		if r.inst != nil {
			err = errors.Join(err, r.inst.wait())
		}
		r.closeErr = err
	})
	return r.closeErr
}

// writer is the stdin side of an instance. A nil inst means attached mode.
type writer struct {
	wc   io.WriteCloser
	inst *instance

	closeOnce sync.Once
	closeErr  error
}

func (w *writer) Write(p []byte) (int, error) {
	return w.wc.Write(p)
}

// Flush is a no-op; pipe writes are unbuffered.
func (w *writer) Flush() error {
	return nil
}

func (w *writer) Close() error {
	w.closeOnce.Do(func() {
		err := w.wc.Close()
		if errors.Is(err, os.ErrClosed) {
			err = nil
		}
		if w.inst != nil {
			err = errors.Join(err, w.inst.wait())
		}
		w.closeErr = err
	})
	return w.closeErr
}
