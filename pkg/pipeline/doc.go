// Package pipeline assembles builder compositions fluently or from a YAML
// description.
//
// A Chain is itself an rw.Builder. Each chain method wraps the current
// builder with one more transform, outermost last:
//
//	b := pipeline.From(file.New("data.bin")).
//		Zstd(compress.Default).
//		ChaCha20(key, nonce).
//		Buffered()
//
// Writing to b buffers, encrypts, compresses and stores; reading from b does
// the reverse. Sink methods end the chain with a value-level API:
//
//	err := pipeline.From(buffer.New()).Gzip(compress.Best).JSON().Save(v)
//
// Constructors that can fail (ciphers with bad key sizes) do not interrupt
// the chain. The first such error is kept, returned by Err, and returned by
// every later Reader or Writer call.
//
// The same compositions can be described in YAML:
//
//	stages:
//	  - kind: zstd
//	    level: best
//	  - kind: chacha20
//	    key: 000102...1f
//	    nonce: 000000000000000000000000
//	  - kind: buffered
//	    size: 8192
//
// ParseSpec validates the description and Spec.Apply builds it over a base
// builder.
package pipeline
