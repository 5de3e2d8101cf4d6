package archiveutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// FormatFromPath picks the archive format from the
// file extension.
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	// check double extensions first
	for _, ext := range []string{".tar.gz", ".tar.zst", ".tar.xz"} {
		if strings.HasSuffix(name, ext) {
			return extensions[ext], nil
		}
	}
	if f, ok := extensions[filepath.Ext(name)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown archive extension: %s", path)
}

// Write encodes the files in the given format.
func Write(ctx context.Context, w io.Writer, format Format, files []File) error {
	if format == FormatZip {
		return Zip(ctx, w, files)
	}
	return CompressedTar(ctx, w, format, files)
}

// WriteFile creates an archive at path, choosing the format
// from its extension. A partially written archive is removed.
func WriteFile(ctx context.Context, path string, files []File) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	log.V(1).Info("writing archive", "format", format, "files", len(files))

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if err := Write(ctx, f, format, files); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		log.Error(err, "failed to write archive")
		return err
	}
	return f.Close()
}

func modeOrDefault(m os.FileMode) os.FileMode {
	if m == 0 {
		return defaultMode
	}
	return m
}
