package cipher

import (
	"encoding/binary"

	"golang.org/x/crypto/salsa20/salsa"
)

// salsaStream keeps Salsa20 keystream state between calls, which the
// salsa package leaves to the caller.
type salsaStream struct {
	key     [32]byte
	counter [16]byte // nonce in [0:8], little-endian block number in [8:16]
	block   [64]byte
	used    int // keystream bytes of block already consumed
}

func newSalsaStream(key, nonce []byte) *salsaStream {
	s := &salsaStream{used: 64}
	copy(s.key[:], key)

	if len(nonce) == 24 {
		var hNonce [16]byte
		copy(hNonce[:], nonce[:16])
		salsa.HSalsa20(&s.key, &hNonce, &s.key, &salsa.Sigma)
		nonce = nonce[16:]
	}
	copy(s.counter[:8], nonce)
	return s
}

func (s *salsaStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("salsa20: output smaller than input")
	}
	dst = dst[:len(src)]

	// Leftover keystream from the previous call.
	if s.used < 64 {
		n := len(src)
		if rest := 64 - s.used; n > rest {
			n = rest
		}
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ s.block[s.used+i]
		}
		s.used += n
		dst, src = dst[n:], src[n:]
	}

	if full := len(src) / 64 * 64; full > 0 {
		ctr := s.counter
		salsa.XORKeyStream(dst[:full], src[:full], &ctr, &s.key)
		s.advance(uint64(full / 64))
		dst, src = dst[full:], src[full:]
	}

	if len(src) > 0 {
		var zero [64]byte
		ctr := s.counter
		salsa.XORKeyStream(s.block[:], zero[:], &ctr, &s.key)
		s.advance(1)
		for i := range src {
			dst[i] = src[i] ^ s.block[i]
		}
		s.used = len(src)
	}
}

func (s *salsaStream) advance(blocks uint64) {
	n := binary.LittleEndian.Uint64(s.counter[8:])
	if n+blocks < n {
		panic("salsa20: counter exhausted")
	}
	binary.LittleEndian.PutUint64(s.counter[8:], n+blocks)
}
