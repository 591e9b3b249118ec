package buffer

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"
	"testing"

	"github.com/vnykmshr/rwflow/internal/testutil"
	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
)

func TestNew(t *testing.T) {
	b := New()
	testutil.AssertEqual(t, b.Len(), 0)

	r, err := b.Reader()
	testutil.AssertNoError(t, err)
	n, err := r.Read(make([]byte, 4))
	testutil.AssertEqual(t, n, 0)
	testutil.AssertErrorIs(t, err, io.EOF)
}

func TestNewWithConfig(t *testing.T) {
	b, err := NewWithConfig(Config{InitialCapacity: 1024})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cap(b.store.data), 1024)

	_, err = NewWithConfig(Config{InitialCapacity: -1})
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
}

func TestWriteThenRead(t *testing.T) {
	b := New()

	w, err := b.Writer()
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte("hello, "))
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte("world"))
	testutil.AssertNoError(t, err)

	r, err := b.Reader()
	testutil.AssertNoError(t, err)
	data, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(data), "hello, world")
}

func TestReaderBuiltBeforeWrite(t *testing.T) {
	b := New()
	r, _ := b.Reader()
	w, _ := b.Writer()

	_, _ = w.Write([]byte("late"))

	data, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(data), "late")
}

func TestEOFIsNotFinal(t *testing.T) {
	b := New()
	r, _ := b.Reader()
	w, _ := b.Writer()

	_, _ = w.Write([]byte("one"))
	first, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(first), "one")

	_, err = r.Read(make([]byte, 8))
	testutil.AssertErrorIs(t, err, io.EOF)

	_, _ = w.Write([]byte("two"))
	second, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(second), "two")
}

func TestPartialReads(t *testing.T) {
	b := New()
	w, _ := b.Writer()
	payload := testutil.Payload(1000)
	_, _ = w.Write(payload)

	r, _ := b.Reader()
	got, err := testutil.ReadInChunks(r, 7)
	testutil.AssertNoError(t, err)
	testutil.AssertBytesEqual(t, got, payload)
	testutil.AssertEqual(t, r.(*Reader).Offset(), 1000)
}

func TestZeroLengthRead(t *testing.T) {
	b := New()
	r, _ := b.Reader()
	n, err := r.Read(nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 0)
}

func TestIndependentReaders(t *testing.T) {
	b := New()
	w, _ := b.Writer()
	_, _ = w.Write([]byte("abcdef"))

	r1, _ := b.Reader()
	r2, _ := b.Reader()

	buf := make([]byte, 3)
	n, _ := r1.Read(buf)
	testutil.AssertEqual(t, string(buf[:n]), "abc")

	all, _ := io.ReadAll(r2)
	testutil.AssertEqual(t, string(all), "abcdef")

	rest, _ := io.ReadAll(r1)
	testutil.AssertEqual(t, string(rest), "def")
}

func TestMultipleWritersAccumulate(t *testing.T) {
	b := New()
	w1, _ := b.Writer()
	w2, _ := b.Writer()

	_, _ = w1.Write([]byte("a"))
	_, _ = w2.Write([]byte("b"))
	_, _ = w1.Write([]byte("c"))
	testutil.AssertNoError(t, w1.Close())
	testutil.AssertNoError(t, w2.Flush())

	testutil.AssertEqual(t, string(b.Bytes()), "abc")
}

func TestBytesIsCopy(t *testing.T) {
	b := New()
	w, _ := b.Writer()
	_, _ = w.Write([]byte("xyz"))

	snapshot := b.Bytes()
	snapshot[0] = 'q'
	testutil.AssertEqual(t, string(b.Bytes()), "xyz")
}

func TestReset(t *testing.T) {
	b := New()
	w, _ := b.Writer()
	r, _ := b.Reader()

	_, _ = w.Write([]byte("old data"))
	_, _ = io.ReadAll(r)
	b.Reset()
	testutil.AssertEqual(t, b.Len(), 0)

	_, _ = w.Write([]byte("new"))
	data, _ := io.ReadAll(r)
	testutil.AssertEqual(t, string(data), "new")
}

func TestResetThenLongerAppend(t *testing.T) {
	b := New()
	w, _ := b.Writer()
	r, _ := b.Reader()

	_, _ = w.Write([]byte("12345"))
	data, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(data), "12345")

	b.Reset()
	_, _ = w.Write([]byte("abcdefghij"))

	data, err = io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(data), "abcdefghij")

	// Readers created after the reset are unaffected by it.
	fresh, _ := b.Reader()
	data, _ = io.ReadAll(fresh)
	testutil.AssertEqual(t, string(data), "abcdefghij")
}

func TestConcurrentWritersAndReader(t *testing.T) {
	const (
		writers = 8
		records = 200
		size    = 8
	)

	b := New()
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w, _ := b.Writer()
			rec := make([]byte, size)
			for j := 0; j < records; j++ {
				binary.BigEndian.PutUint32(rec[:4], uint32(id))
				binary.BigEndian.PutUint32(rec[4:], uint32(j))
				_, _ = w.Write(rec)
			}
		}(i)
	}

	// Concurrent reads only ever see whole records, since each append is
	// atomic with respect to the snapshot a Read copies from.
	r, _ := b.Reader()
	var got bytes.Buffer
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	buf := make([]byte, 64)
	drain := func() {
		for {
			n, err := r.Read(buf)
			if n%size != 0 {
				t.Errorf("torn read of %d bytes", n)
			}
			got.Write(buf[:n])
			if err == io.EOF {
				return
			}
		}
	}

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			drain()
		}
	}
	drain()

	testutil.AssertEqual(t, got.Len(), writers*records*size)

	// Per writer, records arrive in the order they were written.
	next := make([]uint32, writers)
	data := got.Bytes()
	for off := 0; off < len(data); off += size {
		id := binary.BigEndian.Uint32(data[off:])
		seq := binary.BigEndian.Uint32(data[off+4:])
		testutil.AssertEqual(t, seq, next[id])
		next[id]++
	}
}
