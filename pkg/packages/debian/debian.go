package debian

import (
	"strings"

	version "github.com/knqyf263/go-deb-version"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
)

// Compare implements packages.VersionComparator. Versions that
// Debian cannot parse are compared byte-wise.
func (c Comparator) Compare(a, b packages.Record) int {
	s1, s2 := debianVersion(a), debianVersion(b)
	v1, err := version.NewVersion(s1)
	if err != nil {
		c.Log.V(1).Info("failed to parse debian version, falling back to string comparison", "name", a.Name, "version", s1, "err", err.Error())
		return strings.Compare(s1, s2)
	}
	v2, err := version.NewVersion(s2)
	if err != nil {
		c.Log.V(1).Info("failed to parse debian version, falling back to string comparison", "name", b.Name, "version", s2, "err", err.Error())
		return strings.Compare(s1, s2)
	}
	switch {
	case v1.LessThan(v2):
		return -1
	case v1.GreaterThan(v2):
		return 1
	default:
		return 0
	}
}

// debianVersion renders "[epoch:]upstream-revision".
func debianVersion(r packages.Record) string {
	return r.EVR()
}
