package gZipCompression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

type GZipCompression struct {
	level int
}

// Compress the payload before it is cut into symbols, fewer symbols
// mean fewer stego packets per session
func (g *GZipCompression) Process(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, fmt.Errorf("gzip: invalid level %d: %w", g.level, err)
	}
	if _, err := gz.Write(data); err != nil {
		_ = gz.Close()
		return nil, fmt.Errorf("gzip: failed to write data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("gzip: failed to close writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *GZipCompression) Unprocess(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: failed to create reader: %w", err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("gzip: failed to read data: %w", err)
	}
	return out, nil
}
