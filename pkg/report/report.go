package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/vollodin61/PkgDiffBranch/pkg/archiveutil"
)

// Encode writes v as indented json.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return enc.Encode(v)
}

// Marshal returns the indented json encoding
// of the report's result.
func (r *Report) Marshal() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, r.Result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Name returns the file name of a report.
func Name(base, target, arch string) string {
	return fmt.Sprintf("%s_%s_%s.json", sanitise(base), sanitise(target), sanitise(arch))
}

// Name returns the file name of the report.
func (r *Report) Name() string {
	return Name(r.Base, r.Target, r.Arch)
}

// Sha256 returns the hex-encoded digest of b.
func Sha256(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Write encodes the result of a single report to w. When given
// more than one report, the output is an object keyed
// by architecture.
func Write(w io.Writer, reports []Report) error {
	if len(reports) == 1 {
		return Encode(w, reports[0].Result)
	}
	byArch := make(map[string]any, len(reports))
	for _, r := range reports {
		byArch[r.Arch] = r.Result
	}
	return Encode(w, byArch)
}

// WriteFile writes the reports to path in the
// same layout as Write.
func WriteFile(ctx context.Context, path string, reports []Report) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	buf := &bytes.Buffer{}
	if err := Write(buf, reports); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Clean(path), buf.Bytes(), 0644); err != nil {
		log.Error(err, "failed to write report")
		return err
	}
	log.Info("result written", "reports", len(reports))
	return nil
}

// WriteDir writes one file per report into dir.
func WriteDir(ctx context.Context, dir string, reports []Report) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("dir", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for i := range reports {
		data, err := reports[i].Marshal()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, reports[i].Name())
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing report '%s': %w", path, err)
		}
		log.Info("result written", "arch", reports[i].Arch, "path", path)
	}
	return nil
}

// Files renders the reports and a manifest describing
// them as archive entries.
func Files(m Manifest, reports []Report) ([]archiveutil.File, error) {
	if m.Generated.IsZero() {
		m.Generated = time.Now().UTC()
	}
	m.Files = make(map[string]string, len(reports))

	files := make([]archiveutil.File, 0, len(reports)+1)
	for i := range reports {
		data, err := reports[i].Marshal()
		if err != nil {
			return nil, err
		}
		name := reports[i].Name()
		m.Files[name] = "sha256:" + Sha256(data)
		files = append(files, archiveutil.File{
			Name:    name,
			Data:    data,
			ModTime: m.Generated,
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	buf := &bytes.Buffer{}
	if err := Encode(buf, m); err != nil {
		return nil, err
	}
	files = append(files, archiveutil.File{
		Name:    ManifestName,
		Data:    buf.Bytes(),
		ModTime: m.Generated,
	})
	return files, nil
}

// WriteArchive writes the reports and their manifest to an
// archive whose format is chosen from the path's extension.
func WriteArchive(ctx context.Context, path string, m Manifest, reports []Report) error {
	files, err := Files(m, reports)
	if err != nil {
		return err
	}
	if err := archiveutil.WriteFile(ctx, path, files); err != nil {
		return err
	}
	logr.FromContextOrDiscard(ctx).Info("result archive written", "path", path, "reports", len(reports))
	return nil
}

// sanitise replaces path separators so that
// names stay within the output directory.
func sanitise(s string) string {
	return strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(s)
}
