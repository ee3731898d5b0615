package qrimage

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// blobPrefix marks values written by this codec. Records migrated from
// older deployments carry plain image text and must keep decoding as-is.
const blobPrefix = "zstd:"

type BlobCodecInterface interface {
	Encode(val string) (string, error)
	Decode(val string) (string, error)
}

// ZstdBlobCodec compresses image blobs (PNG data URLs, SVG markup) before
// they land in the hash record. SVG especially compresses to a fraction
// of its size, which matters for a value store with per-record limits.
type ZstdBlobCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdBlobCodec() (BlobCodecInterface, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdBlobCodec{encoder: encoder, decoder: decoder}, nil
}

func (c *ZstdBlobCodec) Encode(val string) (string, error) {
	if val == "" {
		return "", nil
	}
	compressed := c.encoder.EncodeAll([]byte(val), make([]byte, 0, len(val)/2))
	return blobPrefix + base64.StdEncoding.EncodeToString(compressed), nil
}

func (c *ZstdBlobCodec) Decode(val string) (string, error) {
	if !strings.HasPrefix(val, blobPrefix) {
		return val, nil
	}
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(val, blobPrefix))
	if err != nil {
		return "", fmt.Errorf("blob decode: %w", err)
	}
	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", fmt.Errorf("blob decompress: %w", err)
	}
	return string(raw), nil
}
