// Package blobio is the shared on-disk codec for pipeline blobs:
// gob-encoded values compressed with zstd. Encoding is deterministic
// for equal input, which the idempotent-resume guarantee relies on.
package blobio

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	// Single-threaded encoding keeps output byte-stable for equal input.
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	decoder, _ = zstd.NewReader(nil)
}

// Marshal gob-encodes v and compresses the result.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("blobio: encode: %w", err)
	}
	return encoder.EncodeAll(buf.Bytes(), nil), nil
}

// Unmarshal decompresses data and gob-decodes it into v.
func Unmarshal(data []byte, v any) error {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("blobio: decompress: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("blobio: decode: %w", err)
	}
	return nil
}
