package archiveutil

import (
	"os"
	"time"
)

// File is an in-memory file to be written into an archive.
type File struct {
	Name    string
	Data    []byte
	Mode    os.FileMode
	ModTime time.Time
}

type Format string

const (
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarGzip Format = "tar.gz"
	FormatTarZstd Format = "tar.zst"
	FormatTarXZ   Format = "tar.xz"
)

var extensions = map[string]Format{
	".zip":     FormatZip,
	".tar":     FormatTar,
	".tar.gz":  FormatTarGzip,
	".tgz":     FormatTarGzip,
	".tar.zst": FormatTarZstd,
	".tar.xz":  FormatTarXZ,
	".txz":     FormatTarXZ,
}

const defaultMode os.FileMode = 0644
