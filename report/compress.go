package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdSuffix marks dump files that are compressed.
const ZstdSuffix = ".zst"

// NewZstdWriter compresses everything written to it into w. The returned
// writer must be closed to flush the last frame. Closing it does not close w.
func NewZstdWriter(w io.Writer) (io.WriteCloser, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("report: failed to create zstd encoder: %w", err)
	}

	return zw, nil
}

// NewZstdReader decompresses a stream written by NewZstdWriter.
func NewZstdReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("report: failed to create zstd decoder: %w", err)
	}

	return zr.IOReadCloser(), nil
}

type dumpFile struct {
	io.Writer
	closers []io.Closer
}

func (d *dumpFile) Close() error {
	var first error

	for _, c := range d.closers {
		err := c.Close()
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Create creates a dump file. Paths ending in ZstdSuffix are compressed.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, ZstdSuffix) {
		return f, nil
	}

	zw, err := NewZstdWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &dumpFile{Writer: zw, closers: []io.Closer{zw, f}}, nil
}
