// Package compress adds a compression codec to both halves of a builder.
//
// Writers compress what they are given; Close writes the codec's trailer
// and then closes the wrapped writer, so a compressed stream is only
// complete after Close. Flush emits everything written so far as a
// decodable block where the codec supports it.
//
// Readers decompress. The decoder is created on the first Read, which lets
// a reader be built before the data it will read exists.
//
// All codecs come from github.com/klauspost/compress:
//
//	b := rw.Wrap(file.New("events.log.zst"), compress.New(compress.Zstd, compress.Best))
//
// Errors produced by the codec itself (bad header, checksum mismatch,
// corrupt block) wrap errors.ErrTransform. Errors from the wrapped reader
// pass through unchanged.
package compress
