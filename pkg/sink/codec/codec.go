// Package codec saves and loads typed values through a builder.
//
// Values are encoded on the writer side and decoded on the reader side of
// the same composition, so a value saved through compression and
// encryption loads back through them:
//
//	s := codec.New(rw.Chain(file.New("state.bin"), compress.New(compress.S2, compress.Default)), codec.Gob)
//	_ = s.Save(state)
//	loaded, err := codec.LoadAs[State](s)
//
// Gob is the default binary format. JSON uses bytedance/sonic and YAML uses
// gopkg.in/yaml.v3.
package codec

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/rw"
)

// Codec encodes values to a writer and decodes them from a reader.
type Codec interface {
	Name() string
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
}

// Format names a built-in codec.
type Format string

// Built-in formats.
const (
	Gob  Format = "gob"
	JSON Format = "json"
	YAML Format = "yaml"
)

// Codec returns the codec for f. Unknown formats use Gob.
func (f Format) Codec() Codec {
	switch f {
	case JSON:
		return jsonCodec{}
	case YAML:
		return yamlCodec{}
	default:
		return gobCodec{}
	}
}

// ParseFormat validates name as a Format.
func ParseFormat(name string) (Format, error) {
	if err := validation.ValidateOneOf("codec", "format", name, string(Gob), string(JSON), string(YAML)); err != nil {
		return "", err
	}
	return Format(name), nil
}

// Sink saves and loads values through a builder.
type Sink struct {
	b     rw.Builder
	codec Codec
}

// New creates a sink using a built-in format.
func New(b rw.Builder, format Format) *Sink {
	return NewWithCodec(b, format.Codec())
}

// NewWithCodec creates a sink using a custom codec.
func NewWithCodec(b rw.Builder, c Codec) *Sink {
	return &Sink{b: b, codec: c}
}

// Save builds a fresh writer, encodes v, then flushes and closes it.
// The first failure from the builder, the codec or the stream is returned.
func (s *Sink) Save(v any) error {
	w, err := s.b.Writer()
	if err != nil {
		return err
	}

	err = s.codec.Encode(w, v)
	if err != nil {
		err = fmt.Errorf("%s encode: %w", s.codec.Name(), err)
	} else {
		err = w.Flush()
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// Load builds a fresh reader and decodes one value into v, which must be a
// pointer. Decoding failures wrap errors.ErrTransform; errors raised by the
// stream itself are returned unchanged.
func (s *Sink) Load(v any) error {
	r, err := s.b.Reader()
	if err != nil {
		return err
	}

	src := &streamReader{r: r}
	err = s.codec.Decode(src, v)
	switch {
	case err == nil:
	case src.err != nil:
		err = fmt.Errorf("%s decode: %w", s.codec.Name(), src.err)
	default:
		err = fmt.Errorf("%s decode: %w: %w", s.codec.Name(), rwerrors.ErrTransform, err)
	}
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return err
}

// streamReader keeps the last non-EOF error of the stream so it is not
// mistaken for malformed input.
type streamReader struct {
	r   io.Reader
	err error
}

func (sr *streamReader) Read(p []byte) (int, error) {
	n, err := sr.r.Read(p)
	if err != nil && err != io.EOF {
		sr.err = err
	}
	return n, err
}

// LoadAs decodes one value of type T from s.
func LoadAs[T any](s *Sink) (T, error) {
	var v T
	err := s.Load(&v)
	return v, err
}

type gobCodec struct{}

func (gobCodec) Name() string { return string(Gob) }

func (gobCodec) Encode(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(v)
}

func (gobCodec) Decode(r io.Reader, v any) error {
	return gob.NewDecoder(r).Decode(v)
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return string(JSON) }

func (jsonCodec) Encode(w io.Writer, v any) error {
	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	return sonic.ConfigDefault.NewDecoder(r).Decode(v)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return string(YAML) }

func (yamlCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (yamlCodec) Decode(r io.Reader, v any) error {
	return yaml.NewDecoder(r).Decode(v)
}
