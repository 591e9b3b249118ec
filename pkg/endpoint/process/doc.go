// Package process turns an external command into a stream endpoint.
//
// A Builder has two modes.
//
// Detached mode is the Builder itself. Every Reader call spawns a fresh
// instance and returns its standard output; every Writer call spawns a
// fresh instance and returns its standard input. A reader and a writer
// from the same Builder never talk to the same instance, so detached mode
// is for one-directional use:
//
//	out, err := process.New("git", "log", "--oneline").Reader()
//
// Attached mode is started explicitly. Start spawns one instance with both
// pipes and returns a Child. Each pipe can be claimed exactly once:
//
//	child, err := process.New("gzip", "-c").Start()
//	w, _ := child.Writer() // stdin
//	r, _ := child.Reader() // stdout
//	_, err = child.Reader() // wraps errors.ErrAlreadyClaimed
//
// Feeding stdin and draining stdout from the same goroutine deadlocks once
// the OS pipe buffers fill. Use Communicate, or drive the two handles from
// separate goroutines.
//
// Closing a detached handle closes the pipe and reaps the instance. In
// attached mode closing a handle only closes its pipe; Wait reaps.
//
// With Config.Terminal set, Start runs the command on a pseudo-terminal
// and both handles share the terminal's master side.
package process
