package zStdCompression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type ZStdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newZStd(level zstd.EncoderLevel) (*ZStdCompression, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to initialize encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to initialize decoder: %w", err)
	}
	return &ZStdCompression{encoder: enc, decoder: dec}, nil
}

func (z *ZStdCompression) Process(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

func (z *ZStdCompression) Unprocess(data []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to decode: %w", err)
	}
	return out, nil
}
