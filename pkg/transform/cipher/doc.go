// Package cipher adds a symmetric stream cipher to both halves of a builder.
//
// Writers encrypt what they are given and readers decrypt what they read.
// Every reader and writer gets its own keystream started from the same key
// and nonce, so a reader built after a writer decrypts its output from the
// first byte:
//
//	key := cipher.DeriveKey([]byte("passphrase"), salt, 32)
//	t, err := cipher.ChaCha20(key, nonce)
//	b := rw.Wrap(buffer.New(), t)
//
// Readers transform exactly the bytes returned by the inner reader, so they
// work with any read size. Writers never modify the caller's slice; the
// ciphertext is produced in a pooled scratch buffer.
//
// Reusing a key and nonce for two different plaintexts breaks the cipher.
// Integrity is not provided; pair the cipher with a checksum stage or an
// authenticated format when tampering matters.
package cipher
