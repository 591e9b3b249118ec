package cipher

import (
	"bytes"
	stdcipher "crypto/cipher"
	"errors"
	"fmt"
	"io"
	"testing"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/salsa20"

	"github.com/vnykmshr/rwflow/internal/testutil"
	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/endpoint/buffer"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

var (
	testKey     = bytes.Repeat([]byte{0x42}, 32)
	testNonce12 = bytes.Repeat([]byte{0x24}, 12)
	testNonce24 = bytes.Repeat([]byte{0x24}, 24)
	testNonce8  = bytes.Repeat([]byte{0x24}, 8)
	testIV      = bytes.Repeat([]byte{0x24}, 16)
)

func transforms(t *testing.T) map[string]*Transform {
	t.Helper()
	must := func(tr *Transform, err error) *Transform {
		t.Helper()
		testutil.AssertNoError(t, err)
		return tr
	}
	return map[string]*Transform{
		"chacha20":  must(ChaCha20(testKey, testNonce12)),
		"xchacha20": must(ChaCha20(testKey, testNonce24)),
		"salsa20":   must(Salsa20(testKey, testNonce8)),
		"xsalsa20":  must(Salsa20(testKey, testNonce24)),
		"aes-ctr":   must(AESCTR(testKey, testIV)),
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 63, 64, 65, 1000, 100_000}
	chunks := []int{1, 7, 64, 4096}

	for name, tr := range transforms(t) {
		for _, size := range sizes {
			for _, chunk := range chunks {
				t.Run(fmt.Sprintf("%s/%d/%d", name, size, chunk), func(t *testing.T) {
					src := buffer.New()
					b := rw.Wrap(src, tr)
					payload := testutil.Payload(size)

					w, err := b.Writer()
					testutil.AssertNoError(t, err)
					testutil.AssertNoError(t, testutil.WriteInChunks(w, payload, chunk))
					testutil.AssertNoError(t, w.Close())

					if size > 16 && bytes.Equal(src.Bytes(), payload) {
						t.Fatal("stored bytes equal plaintext")
					}

					r, err := b.Reader()
					testutil.AssertNoError(t, err)
					got, err := testutil.ReadInChunks(r, chunk+3)
					testutil.AssertNoError(t, err)
					testutil.AssertBytesEqual(t, got, payload)
				})
			}
		}
	}
}

func TestTransformName(t *testing.T) {
	for name, tr := range transforms(t) {
		testutil.AssertEqual(t, tr.Name(), name)
	}
	testutil.AssertEqual(t, New(nil).Name(), "cipher")
}

func TestChaCha20MatchesReference(t *testing.T) {
	payload := testutil.Payload(5000)

	ref, err := chacha20.NewUnauthenticatedCipher(testKey, testNonce12)
	testutil.AssertNoError(t, err)
	want := make([]byte, len(payload))
	ref.XORKeyStream(want, payload)

	src := buffer.New()
	w, err := rw.Wrap(src, MustChaCha20(testKey, testNonce12)).Writer()
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, testutil.WriteInChunks(w, payload, 333))
	testutil.AssertBytesEqual(t, src.Bytes(), want)
}

func TestSalsaMatchesReference(t *testing.T) {
	for _, nonce := range [][]byte{testNonce8, testNonce24} {
		t.Run(fmt.Sprintf("nonce%d", len(nonce)), func(t *testing.T) {
			payload := testutil.Payload(10_000)

			var key [32]byte
			copy(key[:], testKey)
			want := make([]byte, len(payload))
			salsa20.XORKeyStream(want, payload, nonce, &key)

			// Odd chunk sizes cross block boundaries at every offset.
			for _, chunk := range []int{1, 13, 64, 100, 777} {
				s := newSalsaStream(testKey, nonce)
				got := make([]byte, len(payload))
				for off := 0; off < len(payload); off += chunk {
					end := off + chunk
					if end > len(payload) {
						end = len(payload)
					}
					s.XORKeyStream(got[off:end], payload[off:end])
				}
				testutil.AssertBytesEqual(t, got, want)
			}
		})
	}
}

func TestIndependentStreams(t *testing.T) {
	b := rw.Wrap(buffer.New(), MustChaCha20(testKey, testNonce12))

	w, err := b.Writer()
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte("same start"))
	testutil.AssertNoError(t, err)

	for i := 0; i < 2; i++ {
		r, err := b.Reader()
		testutil.AssertNoError(t, err)
		got, err := io.ReadAll(r)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, string(got), "same start")
	}
}

func TestWriterLeavesCallerBufferUntouched(t *testing.T) {
	mw := testutil.NewMockWriter()
	w, err := MustChaCha20(testKey, testNonce12).WrapWriter(mw)
	testutil.AssertNoError(t, err)

	p := []byte("do not touch")
	orig := append([]byte(nil), p...)
	n, err := w.Write(p)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, len(p))
	testutil.AssertBytesEqual(t, p, orig)

	if bytes.Equal(mw.Bytes(), orig) {
		t.Error("inner writer received plaintext")
	}
}

func TestReaderTransformsOnlyReturnedBytes(t *testing.T) {
	tr := MustChaCha20(testKey, testNonce12)

	cipherText := encrypt(t, tr, []byte("abcdef"))
	inner := testutil.NewChunkReader(cipherText, 2)
	r, err := tr.WrapReader(inner)
	testutil.AssertNoError(t, err)

	p := bytes.Repeat([]byte{0xEE}, 16)
	n, err := r.Read(p)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 2)
	testutil.AssertEqual(t, string(p[:2]), "ab")
	testutil.AssertBytesEqual(t, p[2:], bytes.Repeat([]byte{0xEE}, 14))

	rest, err := io.ReadAll(r)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(rest), "cdef")
}

func TestReaderDataWithEOF(t *testing.T) {
	tr := MustChaCha20(testKey, testNonce12)

	inner := testutil.NewChunkReader(encrypt(t, tr, []byte("final")), 0)
	inner.WithDataErr = true
	r, err := tr.WrapReader(inner)
	testutil.AssertNoError(t, err)

	p := make([]byte, 32)
	n, err := r.Read(p)
	testutil.AssertErrorIs(t, err, io.EOF)
	testutil.AssertEqual(t, string(p[:n]), "final")
}

func TestShortInnerWrite(t *testing.T) {
	mw := testutil.NewMockWriter()
	mw.SetShortBy(2)
	w, err := MustChaCha20(testKey, testNonce12).WrapWriter(mw)
	testutil.AssertNoError(t, err)

	n, err := w.Write([]byte("twelve bytes"))
	testutil.AssertEqual(t, n, 10)
	testutil.AssertErrorIs(t, err, io.ErrShortWrite)
	testutil.AssertEqual(t, rwerrors.IsShortWrite(err), true)
}

func TestFlushAndCloseForwarded(t *testing.T) {
	mw := testutil.NewMockWriter()
	w, err := MustChaCha20(testKey, testNonce12).WrapWriter(mw)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, w.Flush())
	testutil.AssertNoError(t, w.Close())
	testutil.AssertEqual(t, mw.FlushCount(), 1)
	testutil.AssertEqual(t, mw.Closed(), true)
}

func TestInvalidKeyAndNonce(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Transform, error)
	}{
		{"chacha short key", func() (*Transform, error) { return ChaCha20(testKey[:16], testNonce12) }},
		{"chacha bad nonce", func() (*Transform, error) { return ChaCha20(testKey, testNonce8) }},
		{"salsa short key", func() (*Transform, error) { return Salsa20(testKey[:16], testNonce8) }},
		{"salsa bad nonce", func() (*Transform, error) { return Salsa20(testKey, testNonce12) }},
		{"aes bad key", func() (*Transform, error) { return AESCTR(testKey[:20], testIV) }},
		{"aes bad iv", func() (*Transform, error) { return AESCTR(testKey, testNonce12) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
		})
	}
}

func TestMustChaCha20Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustChaCha20(nil, nil)
}

func TestKeyIsCopied(t *testing.T) {
	key := append([]byte(nil), testKey...)
	tr := MustChaCha20(key, testNonce12)
	want := encrypt(t, tr, []byte("copy"))

	key[0] ^= 0xFF
	testutil.AssertBytesEqual(t, encrypt(t, tr, []byte("copy")), want)
}

func TestFactoryError(t *testing.T) {
	boom := errors.New("no entropy")
	tr := New(func() (stdcipher.Stream, error) { return nil, boom })

	inner := testutil.NewChunkReader(nil, 0)
	src := rw.Funcs{ReaderFunc: func() (rw.Reader, error) { return inner, nil }}

	_, err := rw.Wrap(src, tr).Reader()
	testutil.AssertErrorIs(t, err, boom)
	testutil.AssertEqual(t, inner.Closed(), true)
}

func TestFactoryPanic(t *testing.T) {
	tr := New(func() (stdcipher.Stream, error) { panic("bad key schedule") })
	_, err := tr.WrapWriter(testutil.NewMockWriter())
	testutil.AssertErrorIs(t, err, rwerrors.ErrTransform)
}

func TestNilFactory(t *testing.T) {
	_, err := New(nil).WrapReader(testutil.NewChunkReader(nil, 0))
	testutil.AssertErrorIs(t, err, rwerrors.ErrInvalidConfiguration)
}

type exhaustedStream struct{}

func (exhaustedStream) XORKeyStream(dst, src []byte) {
	panic("counter overflow")
}

func TestStreamPanicBecomesError(t *testing.T) {
	tr := New(func() (stdcipher.Stream, error) { return exhaustedStream{}, nil })

	mw := testutil.NewMockWriter()
	w, err := tr.WrapWriter(mw)
	testutil.AssertNoError(t, err)
	n, err := w.Write([]byte("x"))
	testutil.AssertEqual(t, n, 0)
	testutil.AssertEqual(t, rwerrors.IsTransform(err), true)
	testutil.AssertEqual(t, mw.Len(), 0)

	r, err := tr.WrapReader(testutil.NewChunkReader([]byte("x"), 0))
	testutil.AssertNoError(t, err)
	_, err = r.Read(make([]byte, 4))
	testutil.AssertErrorIs(t, err, rwerrors.ErrTransform)
}

func TestDeriveKey(t *testing.T) {
	a := DeriveKey([]byte("passphrase"), []byte("salt"), 32)
	b := DeriveKey([]byte("passphrase"), []byte("salt"), 32)
	c := DeriveKey([]byte("passphrase"), []byte("pepper"), 32)

	testutil.AssertEqual(t, len(a), 32)
	testutil.AssertBytesEqual(t, a, b)
	if bytes.Equal(a, c) {
		t.Error("different salts should derive different keys")
	}

	_, err := ChaCha20(a, testNonce12)
	testutil.AssertNoError(t, err)
}

func encrypt(t *testing.T, tr *Transform, plain []byte) []byte {
	t.Helper()
	mw := testutil.NewMockWriter()
	w, err := tr.WrapWriter(mw)
	testutil.AssertNoError(t, err)
	_, err = w.Write(plain)
	testutil.AssertNoError(t, err)
	return mw.Bytes()
}
