/*
Package buffer provides an in-memory source whose readers and writers share
one growable byte store.

Writers always append; each reader keeps its own cursor. A write is visible to
every reader as soon as Write returns, and a Read copies from a single
consistent snapshot of the store's length, so concurrent readers and writers
never observe torn data.

	b := buffer.New()

	w, _ := b.Writer()
	w.Write([]byte("hello"))

	r, _ := b.Reader()
	data, _ := io.ReadAll(r) // "hello"

A reader at the end of the store returns io.EOF. That is not final: if a
writer appends more afterwards, the next Read returns the new bytes.

# Thread Safety

All access to the store goes through a single mutex, held only for the copy
or append. Readers, writers and the Builder may be used from different
goroutines. An individual Reader is not meant to be shared between goroutines,
since its cursor is unsynchronized.
*/
package buffer
