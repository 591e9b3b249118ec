package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/sha256"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/pbkdf2"

	"github.com/vnykmshr/rwflow/pkg/common/validation"
)

// DeriveIterations is the PBKDF2 iteration count used by DeriveKey.
const DeriveIterations = 4096

// ChaCha20 returns a ChaCha20 transform. key must be 32 bytes. A 12-byte
// nonce selects ChaCha20, a 24-byte nonce selects XChaCha20.
func ChaCha20(key, nonce []byte) (*Transform, error) {
	if err := validation.ValidateLength("cipher", "key", key, chacha20.KeySize); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("cipher", "nonce", nonce, chacha20.NonceSize, chacha20.NonceSizeX); err != nil {
		return nil, err
	}

	name := "chacha20"
	if len(nonce) == chacha20.NonceSizeX {
		name = "xchacha20"
	}
	k, n := clone(key), clone(nonce)
	return NewNamed(name, func() (stdcipher.Stream, error) {
		return chacha20.NewUnauthenticatedCipher(k, n)
	}), nil
}

// MustChaCha20 is like ChaCha20 but panics on an invalid key or nonce.
func MustChaCha20(key, nonce []byte) *Transform {
	t, err := ChaCha20(key, nonce)
	if err != nil {
		panic(err)
	}
	return t
}

// Salsa20 returns a Salsa20/20 transform. key must be 32 bytes. An 8-byte
// nonce selects Salsa20, a 24-byte nonce selects XSalsa20.
func Salsa20(key, nonce []byte) (*Transform, error) {
	if err := validation.ValidateLength("cipher", "key", key, 32); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("cipher", "nonce", nonce, 8, 24); err != nil {
		return nil, err
	}

	name := "salsa20"
	if len(nonce) == 24 {
		name = "xsalsa20"
	}
	k, n := clone(key), clone(nonce)
	return NewNamed(name, func() (stdcipher.Stream, error) {
		return newSalsaStream(k, n), nil
	}), nil
}

// AESCTR returns an AES transform in counter mode. key must be 16, 24 or
// 32 bytes and iv one AES block.
func AESCTR(key, iv []byte) (*Transform, error) {
	if err := validation.ValidateLength("cipher", "key", key, 16, 24, 32); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("cipher", "iv", iv, aes.BlockSize); err != nil {
		return nil, err
	}

	k, v := clone(key), clone(iv)
	return NewNamed("aes-ctr", func() (stdcipher.Stream, error) {
		block, err := aes.NewCipher(k)
		if err != nil {
			return nil, err
		}
		return stdcipher.NewCTR(block, v), nil
	}), nil
}

// DeriveKey stretches a passphrase into a size-byte key with PBKDF2-SHA256.
func DeriveKey(passphrase, salt []byte, size int) []byte {
	return pbkdf2.Key(passphrase, salt, DeriveIterations, size, sha256.New)
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
