package archiveutil

import (
	"archive/tar"
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
)

// Tar writes the files into a tar stream. The stream is
// finished, but w is not closed.
func Tar(ctx context.Context, w io.Writer, files []File) error {
	log := logr.FromContextOrDiscard(ctx)
	tw := tar.NewWriter(w)

	for _, f := range files {
		log.V(5).Info("adding file to tar archive", "name", f.Name, "size", len(f.Data))
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     f.Name,
			Mode:     int64(modeOrDefault(f.Mode)),
			Size:     int64(len(f.Data)),
			ModTime:  f.ModTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header for '%s': %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("writing '%s': %w", f.Name, err)
		}
	}
	return tw.Close()
}

// CompressedTar writes a tar stream through the compressor
// for the given format.
func CompressedTar(ctx context.Context, w io.Writer, format Format, files []File) error {
	cw, err := NewCompressor(format, w)
	if err != nil {
		return err
	}
	if err := Tar(ctx, cw, files); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}
