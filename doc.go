/*
Package rwflow composes paired readers and writers out of reusable stages.

A builder (pkg/rw) produces a fresh reader and a fresh writer over one
logical stream. Transforms wrap a builder in a new builder, so encoding on
the write path and the matching decoding on the read path are added in one
step and stay in sync.

Endpoints (pkg/endpoint):
  - buffer: Shared in-memory byte store
  - process: External commands, per-handle or one attached child
  - file: Files on disk
  - netconn: Dialed network connections
  - redis: A Redis key used as an append log

Transforms (pkg/transform):
  - cipher: ChaCha20, Salsa20 and AES-CTR stream ciphers
  - compress: gzip, zlib, deflate, zstd, s2 and snappy
  - buffered: bufio in both directions
  - checksum: CRC32, CRC32C and xxHash64 of the plain stream
  - metered: Prometheus metrics per stage
  - async: Background writes
  - throttle: Token bucket byte rate limiting

Sinks (pkg/sink):
  - text: Whole-stream strings
  - codec: gob, JSON and YAML values

Assembly (pkg/pipeline, pkg/config):
  - pipeline: Fluent chains and YAML stage lists
  - config: RWFLOW_* environment defaults

Example usage:

	import (
		"github.com/vnykmshr/rwflow/pkg/endpoint/file"
		"github.com/vnykmshr/rwflow/pkg/pipeline"
		"github.com/vnykmshr/rwflow/pkg/transform/compress"
	)

	sink := pipeline.From(file.New("state.json.zst")).
		Zstd(compress.Default).
		ChaCha20(key, nonce).
		JSON()

	if err := sink.Save(state); err != nil {
		return err
	}
*/
package rwflow
