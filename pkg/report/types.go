package report

import (
	"time"

	"github.com/vollodin61/PkgDiffBranch/pkg/diff"
)

// Report is the comparison of two branches
// for one architecture.
type Report struct {
	Base   string
	Target string
	Arch   string
	Result *diff.Result
}

// Manifest describes the contents of a report archive.
type Manifest struct {
	Run       string            `json:"run"`
	Base      string            `json:"base"`
	Target    string            `json:"target"`
	Generated time.Time         `json:"generated"`
	Files     map[string]string `json:"files"`
	// Failed lists the architectures that could not be compared
	Failed []string `json:"failed,omitempty"`
}

const (
	ManifestName = "manifest.json"
	indent       = "    "
)
