package process

import (
	"errors"
	"io"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Child is a running instance started in attached mode. Its stdin and
// stdout are handed out at most once each.
type Child struct {
	inst   *instance
	stdin  atomic.Pointer[writer]
	stdout atomic.Pointer[reader]
}

// Start spawns one instance with both standard input and output piped.
func (b *Builder) Start() (*Child, error) {
	cmd := b.command()
	if b.config.Terminal {
		return b.startTerminal(cmd)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, spawnError(b.config.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, spawnError(b.config.Name, err)
	}
	inst, err := b.spawn(cmd, "attached")
	if err != nil {
		return nil, err
	}

	c := &Child{inst: inst}
	c.stdin.Store(&writer{wc: stdin})
	c.stdout.Store(&reader{rc: stdout})
	return c, nil
}

// ID returns the identifier used in log events for this instance.
func (c *Child) ID() string {
	return c.inst.id
}

// PID returns the operating system process id.
func (c *Child) PID() int {
	return c.inst.cmd.Process.Pid
}

// Reader claims the instance's standard output. A second call returns an
// error wrapping errors.ErrAlreadyClaimed.
func (c *Child) Reader() (rw.Reader, error) {
	r := c.stdout.Swap(nil)
	if r == nil {
		return nil, claimError("Reader", c.inst.id)
	}
	c.inst.logger.Debug("claimed stdout")
	return r, nil
}

// Writer claims the instance's standard input. A second call returns an
// error wrapping errors.ErrAlreadyClaimed.
func (c *Child) Writer() (rw.Writer, error) {
	w := c.stdin.Swap(nil)
	if w == nil {
		return nil, claimError("Writer", c.inst.id)
	}
	c.inst.logger.Debug("claimed stdin")
	return w, nil
}

// Wait closes standard input if it was never claimed, waits for the
// instance to exit and releases an unclaimed standard output. Claimed
// handles must be drained before Wait is called. Handles not claimed by
// then can no longer be claimed.
func (c *Child) Wait() error {
	if w := c.stdin.Swap(nil); w != nil {
		_ = w.Close()
	}
	err := c.inst.wait()
	if r := c.stdout.Swap(nil); r != nil {
		_ = r.Close()
	}
	return err
}

// Kill terminates the instance. It does not reap it; call Wait.
func (c *Child) Kill() error {
	return c.inst.cmd.Process.Kill()
}

// Communicate claims both handles, writes input and reads all output
// concurrently, then waits for the instance to exit. A program that exits
// without consuming all of its input is not an error.
func (c *Child) Communicate(input []byte) ([]byte, error) {
	w, err := c.Writer()
	if err != nil {
		return nil, err
	}
	r, err := c.Reader()
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	var out []byte
	var g errgroup.Group
	g.Go(func() error {
		_, err := w.Write(input)
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		if errors.Is(err, syscall.EPIPE) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		out, err = io.ReadAll(r)
		return err
	})
	ioErr := g.Wait()
	_ = r.Close()

	if err := c.Wait(); err != nil {
		return out, err
	}
	return out, ioErr
}

func claimError(op, id string) error {
	return rwerrors.NewOperationError("process", op, rwerrors.ErrAlreadyClaimed).WithContext(id)
}
