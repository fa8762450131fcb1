package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

// DeflateCompression implements the archive blob codec. Blocks are
// zlib-wrapped deflate streams; blocks written once are readable forever,
// so the format must not change without a migration.
type DeflateCompression struct {
	level int
}

func (d *DeflateCompression) Compress(val []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, d.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}
	if _, err := w.Write(val); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *DeflateCompression) Decompress(val []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(val))
	if err != nil {
		return nil, fmt.Errorf("failed to open deflate stream: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func NewDeflateCompressor() CompressorInterface {
	return &DeflateCompression{level: zlib.BestCompression}
}
