package checksum

import (
	"errors"
	"hash/crc32"
	"io"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/vnykmshr/rwflow/internal/testutil"
	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/endpoint/buffer"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

func TestCRC32KnownValue(t *testing.T) {
	b := Wrap(buffer.New(), CRC32)

	w, err := b.NewWriter()
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte{1, 2, 3, 4, 5})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Close())
	testutil.AssertEqual(t, w.Sum(), uint64(1191942644))

	r, err := b.NewReader()
	testutil.AssertNoError(t, err)
	got, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertBytesEqual(t, got, []byte{1, 2, 3, 4, 5})
	testutil.AssertEqual(t, r.Sum(), uint64(1191942644))
}

func TestAlgorithmsMatchReference(t *testing.T) {
	payload := testutil.Payload(10_000)
	tests := []struct {
		alg  Algorithm
		want uint64
	}{
		{CRC32, uint64(crc32.ChecksumIEEE(payload))},
		{CRC32C, uint64(crc32.Checksum(payload, crc32.MakeTable(crc32.Castagnoli)))},
		{XXHash64, xxhash.Sum64(payload)},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			b := Wrap(buffer.New(), tt.alg)

			w, err := b.NewWriter()
			testutil.AssertNoError(t, err)
			testutil.AssertNoError(t, testutil.WriteInChunks(w, payload, 333))
			testutil.AssertEqual(t, w.Sum(), tt.want)

			r, err := b.NewReader()
			testutil.AssertNoError(t, err)
			_, err = testutil.ReadInChunks(r, 17)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, r.Sum(), tt.want)
		})
	}
}

func TestSumIsRunning(t *testing.T) {
	w, err := New(CRC32).WrapWriter(testutil.NewMockWriter())
	testutil.AssertNoError(t, err)
	cw := w.(*Writer)

	testutil.AssertEqual(t, cw.Sum(), uint64(0))
	_, _ = cw.Write([]byte{1, 2})
	partial := cw.Sum()
	testutil.AssertEqual(t, partial, uint64(crc32.ChecksumIEEE([]byte{1, 2})))

	// Querying does not disturb the running value.
	testutil.AssertEqual(t, cw.Sum(), partial)
	_, _ = cw.Write([]byte{3, 4, 5})
	testutil.AssertEqual(t, cw.Sum(), uint64(1191942644))
}

func TestWriterHashesAcceptedBytesOnly(t *testing.T) {
	mw := testutil.NewMockWriter()
	mw.SetShortBy(2)
	w, err := New(CRC32).WrapWriter(mw)
	testutil.AssertNoError(t, err)

	n, _ := w.Write([]byte{1, 2, 3, 4, 5, 9, 9})
	testutil.AssertEqual(t, n, 5)
	testutil.AssertEqual(t, w.(*Writer).Sum(), uint64(1191942644))
}

func TestReaderHashesReturnedBytesWithError(t *testing.T) {
	inner := testutil.NewChunkReader([]byte{1, 2, 3, 4, 5}, 0)
	inner.WithDataErr = true
	r, err := New(CRC32).WrapReader(inner)
	testutil.AssertNoError(t, err)

	n, err := r.Read(make([]byte, 10))
	testutil.AssertErrorIs(t, err, io.EOF)
	testutil.AssertEqual(t, n, 5)
	testutil.AssertEqual(t, r.(*Reader).Sum(), uint64(1191942644))
}

func TestBuilderPropagatesErrors(t *testing.T) {
	boom := errors.New("open failed")
	b := Wrap(rw.Funcs{
		ReaderFunc: func() (rw.Reader, error) { return nil, boom },
		WriterFunc: func() (rw.Writer, error) { return nil, boom },
	}, XXHash64)

	r, err := b.Reader()
	testutil.AssertErrorIs(t, err, boom)
	if r != nil {
		t.Error("reader should be nil on error")
	}
	w, err := b.Writer()
	testutil.AssertErrorIs(t, err, boom)
	if w != nil {
		t.Error("writer should be nil on error")
	}
}

func TestFlushAndCloseForwarded(t *testing.T) {
	mw := testutil.NewMockWriter()
	w, err := New(CRC32C).WrapWriter(mw)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Flush())
	testutil.AssertNoError(t, w.Close())
	testutil.AssertEqual(t, mw.FlushCount(), 1)
	testutil.AssertEqual(t, mw.Closed(), true)
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("xxhash64")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, alg, XXHash64)

	_, err = ParseAlgorithm("md5")
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
}

func TestUnsupportedAlgorithmIsRejected(t *testing.T) {
	tr := New("md5")

	_, err := tr.WrapWriter(testutil.NewMockWriter())
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
	_, err = tr.WrapReader(testutil.NewChunkReader(nil, 0))
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)

	inner := testutil.NewChunkReader([]byte("data"), 0)
	b := Wrap(rw.Funcs{
		ReaderFunc: func() (rw.Reader, error) { return inner, nil },
		WriterFunc: func() (rw.Writer, error) { return testutil.NewMockWriter(), nil },
	}, "md5")
	_, err = b.NewReader()
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
	testutil.AssertEqual(t, inner.Closed(), true)
	_, err = b.Writer()
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
}

func TestEmptyAlgorithmIsCRC32(t *testing.T) {
	w, err := New("").WrapWriter(testutil.NewMockWriter())
	testutil.AssertNoError(t, err)
	_, _ = w.Write([]byte{1, 2, 3, 4, 5})
	testutil.AssertEqual(t, w.(*Writer).Sum(), uint64(1191942644))
}
