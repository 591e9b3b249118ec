/*
Package rw defines the stream contract and the builder composition engine that
every rwflow endpoint, transform and sink is written against.

A Builder manufactures readers and writers on demand. The two are independent:
asking for a reader never builds or consumes a writer, and each call may fail
on its own (opening a file, spawning a process, dialing a socket). Because a
reader and a writer come from the same Builder, they are inverses of each
other: bytes written through one can be read back through the other.

# Stream Contract

	type Reader interface {
		io.Reader
		io.Closer
	}

	type Writer interface {
		io.Writer
		Flush() error
		io.Closer
	}

Readers signal end of stream with io.EOF. Writers push buffered bytes one
level down on Flush and finalize on Close (a compression stage writes its
trailer, then closes the writer it wraps). Every stage exclusively owns the
handle it wraps, so closing the outermost handle tears down the whole chain.

# Composition

A Transform adds one behavior to both directions:

	type Transform interface {
		Name() string
		WrapReader(r Reader) (Reader, error)
		WrapWriter(w Writer) (Writer, error)
	}

Wrap layers a Transform around a Builder and returns another Builder, so
compositions nest to any depth:

	b := rw.Chain(buffer.New(),
		checksum.New(checksum.CRC32),
		cipher.MustChaCha20(key, nonce),
		buffered.New(buffered.DefaultConfig()),
	)

Building a composition performs no I/O. All work happens inside Reader and
Writer, and if a transform fails to wrap, the handle it was given is closed
before the error is returned.

# Sinks

Terminal sinks (package sink/text and sink/codec) consume a Builder but do
not implement Builder themselves, which keeps them from being wrapped again.
*/
package rw
