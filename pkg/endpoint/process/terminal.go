package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/creack/pty"
)

// startTerminal runs cmd on a pseudo-terminal. Reader and Writer share the
// master side, which is closed once both handles are closed.
func (b *Builder) startTerminal(cmd *exec.Cmd) (*Child, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, spawnError(b.config.Name, err)
	}
	inst := b.track(cmd, "terminal")

	t := &terminal{f: ptmx}
	t.refs.Store(2)

	c := &Child{inst: inst}
	c.stdin.Store(&writer{wc: &terminalEnd{t: t}})
	c.stdout.Store(&reader{rc: &terminalEnd{t: t}})
	return c, nil
}

type terminal struct {
	f    *os.File
	refs atomic.Int32
}

// terminalEnd is one reference to the shared master.
type terminalEnd struct {
	t    *terminal
	once sync.Once
}

// Read maps EIO, which Linux reports once the slave side is gone, to io.EOF.
func (e *terminalEnd) Read(p []byte) (int, error) {
	n, err := e.t.f.Read(p)
	if err != nil && errors.Is(err, syscall.EIO) {
		err = io.EOF
	}
	return n, err
}

func (e *terminalEnd) Write(p []byte) (int, error) {
	return e.t.f.Write(p)
}

func (e *terminalEnd) Close() error {
	var err error
	e.once.Do(func() {
		if e.t.refs.Add(-1) == 0 {
			err = e.t.f.Close()
		}
	})
	return err
}
