package archiveutil

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/klauspost/compress/zip"
)

// Zip writes the files into a zip archive using deflate.
func Zip(ctx context.Context, w io.Writer, files []File) error {
	log := logr.FromContextOrDiscard(ctx)
	zw := zip.NewWriter(w)

	for _, f := range files {
		log.V(5).Info("adding file to zip archive", "name", f.Name, "size", len(f.Data))
		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.ModTime,
		}
		hdr.SetMode(modeOrDefault(f.Mode))
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("writing header for '%s': %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("writing '%s': %w", f.Name, err)
		}
	}
	return zw.Close()
}
