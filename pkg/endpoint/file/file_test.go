package file

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/vnykmshr/rwflow/internal/testutil"
	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/rw"
	"github.com/vnykmshr/rwflow/pkg/transform/compress"
)

func write(t *testing.T, b rw.Builder, data string) {
	t.Helper()
	w, err := b.Writer()
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte(data))
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Flush())
	testutil.AssertNoError(t, w.Close())
}

func read(t *testing.T, b rw.Builder) string {
	t.Helper()
	r, err := b.Reader()
	testutil.AssertNoError(t, err)
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	return string(data)
}

func TestRoundTrip(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "data.txt"))
	write(t, b, "on disk")
	testutil.AssertEqual(t, read(t, b), "on disk")
}

func TestWriterTruncates(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "data.txt"))
	write(t, b, "first version")
	write(t, b, "second")
	testutil.AssertEqual(t, read(t, b), "second")
}

func TestAppend(t *testing.T) {
	b, err := NewWithConfig(Config{Path: filepath.Join(t.TempDir(), "log.txt"), Append: true})
	testutil.AssertNoError(t, err)
	write(t, b, "a")
	write(t, b, "b")
	testutil.AssertEqual(t, read(t, b), "ab")
}

func TestPerm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	b, err := NewWithConfig(Config{Path: path, Perm: 0o600})
	testutil.AssertNoError(t, err)
	write(t, b, "x")

	info, err := os.Stat(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, info.Mode().Perm()&0o077, os.FileMode(0))
}

func TestMissingFile(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "absent"))
	_, err := b.Reader()
	testutil.AssertErrorIs(t, err, os.ErrNotExist)
	testutil.AssertEqual(t, rwerrors.IsOperationError(err), true)
}

func TestWriterInMissingDirectory(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "no", "such", "dir", "f"))
	_, err := b.Writer()
	testutil.AssertErrorIs(t, err, os.ErrNotExist)
}

func TestEmptyPath(t *testing.T) {
	_, err := NewWithConfig(Config{})
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
}

func TestCompressedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.gz")
	b := rw.Wrap(New(path), compress.New(compress.Gzip, compress.Default))
	write(t, b, "zipped on disk")
	testutil.AssertEqual(t, read(t, b), "zipped on disk")
	testutil.AssertEqual(t, New(path).Path(), path)
}
