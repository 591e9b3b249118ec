package pipeline

import (
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/rw"
	"github.com/vnykmshr/rwflow/pkg/transform/async"
	"github.com/vnykmshr/rwflow/pkg/transform/buffered"
	"github.com/vnykmshr/rwflow/pkg/transform/checksum"
	"github.com/vnykmshr/rwflow/pkg/transform/cipher"
	"github.com/vnykmshr/rwflow/pkg/transform/compress"
	"github.com/vnykmshr/rwflow/pkg/transform/metered"
	"github.com/vnykmshr/rwflow/pkg/transform/throttle"
)

// Stage kinds accepted in a Spec besides the compression coder names.
const (
	KindBuffered = "buffered"
	KindChaCha20 = "chacha20"
	KindSalsa20  = "salsa20"
	KindAESCTR   = "aes-ctr"
	KindChecksum = "checksum"
	KindMetered  = "metered"
	KindAsync    = "async"
	KindThrottle = "throttle"
)

// Spec describes a composition, innermost stage first.
type Spec struct {
	Stages []Stage `yaml:"stages"`
}

// Stage describes one transform. Fields that do not apply to Kind are
// ignored.
type Stage struct {
	// Kind selects the transform: buffered, gzip, zlib, deflate, zstd, s2,
	// snappy, chacha20, salsa20, aes-ctr, checksum, metered, async or
	// throttle.
	Kind string `yaml:"kind"`

	// Level is the compression level name or number.
	Level string `yaml:"level,omitempty"`

	// Key is the hex-encoded cipher key.
	Key string `yaml:"key,omitempty"`

	// Passphrase derives the cipher key with cipher.DeriveKey when Key is empty.
	Passphrase string `yaml:"passphrase,omitempty"`

	// Salt is the hex-encoded salt used with Passphrase.
	Salt string `yaml:"salt,omitempty"`

	// Nonce is the hex-encoded cipher nonce or IV.
	Nonce string `yaml:"nonce,omitempty"`

	// Size is the buffer size of buffered and async stages and the burst
	// of throttle stages.
	Size int `yaml:"size,omitempty"`

	// Rate is the throttle rate in bytes per second.
	Rate float64 `yaml:"rate,omitempty"`

	// Algorithm is the checksum algorithm.
	Algorithm string `yaml:"algorithm,omitempty"`

	// Name labels metered and async stages.
	Name string `yaml:"name,omitempty"`
}

// ParseSpec decodes and validates a YAML composition.
func ParseSpec(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, rwerrors.NewOperationError("pipeline", "parse", err)
	}
	if _, err := s.Transforms(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Transforms builds the transform of every stage, innermost first.
func (s *Spec) Transforms() ([]rw.Transform, error) {
	out := make([]rw.Transform, 0, len(s.Stages))
	for i, st := range s.Stages {
		t, err := st.Transform()
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, st.Kind, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Apply builds the composition over b.
func (s *Spec) Apply(b rw.Builder) (*Chain, error) {
	ts, err := s.Transforms()
	if err != nil {
		return nil, err
	}
	c := From(b)
	for _, t := range ts {
		c.Then(t)
	}
	return c, nil
}

// Transform builds the transform described by st.
func (st Stage) Transform() (rw.Transform, error) {
	kind := strings.ToLower(strings.TrimSpace(st.Kind))
	switch kind {
	case KindBuffered:
		return buffered.New(buffered.Config{ReadSize: st.Size, WriteSize: st.Size}), nil

	case KindChaCha20, KindSalsa20, KindAESCTR:
		return st.cipher(kind)

	case KindChecksum:
		alg := st.Algorithm
		if alg == "" {
			alg = string(checksum.CRC32)
		}
		a, err := checksum.ParseAlgorithm(alg)
		if err != nil {
			return nil, err
		}
		return checksum.New(a), nil

	case KindMetered:
		name := st.Name
		if name == "" {
			name = KindMetered
		}
		return metered.New(name, nil), nil

	case KindAsync:
		cfg := async.DefaultConfig()
		if st.Size > 0 {
			cfg.BufferSize = st.Size
		}
		if st.Name != "" {
			cfg.Stage = st.Name
		}
		return async.New(cfg), nil

	case KindThrottle:
		burst := st.Size
		if burst == 0 {
			burst = int(st.Rate)
		}
		t, err := throttle.NewWithConfig(throttle.Config{Rate: throttle.Limit(st.Rate), Burst: burst})
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	coder, err := compress.ByName(kind)
	if err != nil {
		return nil, rwerrors.NewValidationError("pipeline", "kind", st.Kind, "unknown stage kind")
	}
	level, err := compress.ParseLevel(st.Level)
	if err != nil {
		return nil, err
	}
	return compress.New(coder, level), nil
}

func (st Stage) cipher(kind string) (rw.Transform, error) {
	key, err := st.key()
	if err != nil {
		return nil, err
	}
	nonce, err := decodeHex("nonce", st.Nonce)
	if err != nil {
		return nil, err
	}

	var t *cipher.Transform
	switch kind {
	case KindChaCha20:
		t, err = cipher.ChaCha20(key, nonce)
	case KindSalsa20:
		t, err = cipher.Salsa20(key, nonce)
	default:
		t, err = cipher.AESCTR(key, nonce)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (st Stage) key() ([]byte, error) {
	if st.Key != "" || st.Passphrase == "" {
		return decodeHex("key", st.Key)
	}
	salt, err := decodeHex("salt", st.Salt)
	if err != nil {
		return nil, err
	}
	return cipher.DeriveKey([]byte(st.Passphrase), salt, 32), nil
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, rwerrors.NewValidationError("pipeline", field, len(s), "not hex").
			WithHint("encode " + field + " as hexadecimal")
	}
	return b, nil
}
