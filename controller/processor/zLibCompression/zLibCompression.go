package zLibCompression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

type ZLibCompression struct {
	level int
}

func (z *ZLibCompression) Process(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zl, err := zlib.NewWriterLevel(&buf, z.level)
	if err != nil {
		return nil, fmt.Errorf("zlib: invalid level %d: %w", z.level, err)
	}
	if _, err := zl.Write(data); err != nil {
		_ = zl.Close()
		return nil, fmt.Errorf("zlib: failed to write data: %w", err)
	}
	if err := zl.Close(); err != nil {
		return nil, fmt.Errorf("zlib: failed to close writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (z *ZLibCompression) Unprocess(data []byte) ([]byte, error) {
	zl, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: failed to create reader: %w", err)
	}
	defer zl.Close()
	out, err := io.ReadAll(zl)
	if err != nil {
		return nil, fmt.Errorf("zlib: failed to read data: %w", err)
	}
	return out, nil
}
