package archiveutil

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewCompressor wraps w in the compression used by a tar
// format. Closing the compressor does not close w.
func NewCompressor(format Format, w io.Writer) (io.WriteCloser, error) {
	switch format {
	case FormatTar:
		return nopWriteCloser{w}, nil
	case FormatTarGzip:
		return gzip.NewWriter(w), nil
	case FormatTarZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return enc, nil
	case FormatTarXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating xz writer: %w", err)
		}
		return xw, nil
	default:
		return nil, fmt.Errorf("unsupported compression for format: %s", format)
	}
}
