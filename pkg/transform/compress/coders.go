package compress

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/vnykmshr/rwflow/pkg/common/validation"
)

// Encoder is a compressing writer.
type Encoder interface {
	io.WriteCloser
	Flush() error
}

// Coder creates encoders and decoders for one format.
type Coder interface {
	Name() string
	Encoder(w io.Writer, level Level) (Encoder, error)
	Decoder(r io.Reader) (io.ReadCloser, error)
}

// Available coders.
var (
	Gzip    Coder = gzipCoder{}
	Zlib    Coder = zlibCoder{}
	Deflate Coder = deflateCoder{}
	Zstd    Coder = zstdCoder{}
	S2      Coder = s2Coder{}
	Snappy  Coder = snappyCoder{}
)

var coders = []Coder{Gzip, Zlib, Deflate, Zstd, S2, Snappy}

// ByName returns the coder registered under name.
func ByName(name string) (Coder, error) {
	if name == "flate" {
		name = "deflate"
	}
	names := make([]string, len(coders))
	for i, c := range coders {
		if c.Name() == name {
			return c, nil
		}
		names[i] = c.Name()
	}
	return nil, validation.ValidateOneOf("compress", "codec", name, names...)
}

// flateLevel maps a Level onto the deflate family's levels.
func flateLevel(l Level) int {
	switch l {
	case Default:
		return flate.DefaultCompression
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return int(l)
	}
}

type gzipCoder struct{}

func (gzipCoder) Name() string { return "gzip" }

func (gzipCoder) Encoder(w io.Writer, l Level) (Encoder, error) {
	return gzip.NewWriterLevel(w, flateLevel(l))
}

func (gzipCoder) Decoder(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

type zlibCoder struct{}

func (zlibCoder) Name() string { return "zlib" }

func (zlibCoder) Encoder(w io.Writer, l Level) (Encoder, error) {
	return zlib.NewWriterLevel(w, flateLevel(l))
}

func (zlibCoder) Decoder(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

type deflateCoder struct{}

func (deflateCoder) Name() string { return "deflate" }

func (deflateCoder) Encoder(w io.Writer, l Level) (Encoder, error) {
	return flate.NewWriter(w, flateLevel(l))
}

func (deflateCoder) Decoder(r io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

type zstdCoder struct{}

func (zstdCoder) Name() string { return "zstd" }

func (zstdCoder) Encoder(w io.Writer, l Level) (Encoder, error) {
	var level zstd.EncoderLevel
	switch l {
	case Default:
		level = zstd.SpeedDefault
	case Fastest:
		level = zstd.SpeedFastest
	case Best:
		level = zstd.SpeedBestCompression
	default:
		level = zstd.EncoderLevelFromZstd(int(l))
	}
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(level),
		zstd.WithEncoderConcurrency(1),
	)
}

func (zstdCoder) Decoder(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

type s2Coder struct{}

func (s2Coder) Name() string { return "s2" }

func (s2Coder) Encoder(w io.Writer, l Level) (Encoder, error) {
	opts := []s2.WriterOption{s2.WriterConcurrency(1)}
	switch {
	case l == Best:
		opts = append(opts, s2.WriterBestCompression())
	case l > 1:
		opts = append(opts, s2.WriterBetterCompression())
	}
	return s2.NewWriter(w, opts...), nil
}

func (s2Coder) Decoder(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

// snappyCoder writes the framed snappy format. Levels are ignored.
type snappyCoder struct{}

func (snappyCoder) Name() string { return "snappy" }

func (snappyCoder) Encoder(w io.Writer, _ Level) (Encoder, error) {
	return snappy.NewBufferedWriter(w), nil
}

func (snappyCoder) Decoder(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}
