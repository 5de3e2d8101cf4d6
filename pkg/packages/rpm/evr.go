package rpm

import (
	"strings"

	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
)

// ParseEVR splits "[epoch:]version[-release]". The release is
// everything after the last '-'.
func ParseEVR(s string) EVR {
	var evr EVR
	if i := strings.IndexByte(s, ':'); i >= 0 {
		evr.Epoch, s = s[:i], s[i+1:]
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		evr.Version, evr.Release = s[:i], s[i+1:]
	} else {
		evr.Version = s
	}
	return evr
}

func (e EVR) String() string {
	sb := strings.Builder{}
	if e.Epoch != "" {
		sb.WriteString(e.Epoch)
		sb.WriteString(":")
	}
	sb.WriteString(e.Version)
	if e.Release != "" {
		sb.WriteString("-")
		sb.WriteString(e.Release)
	}
	return sb.String()
}

// CompareEVR compares the epochs first, then the versions. Releases
// are only compared when both sides have one.
func CompareEVR(a, b EVR) int {
	if rc := Vercmp(epochOrDefault(a.Epoch), epochOrDefault(b.Epoch)); rc != 0 {
		return rc
	}
	if rc := Vercmp(a.Version, b.Version); rc != 0 {
		return rc
	}
	if a.Release == "" || b.Release == "" {
		return 0
	}
	return Vercmp(a.Release, b.Release)
}

// Compare implements packages.VersionComparator.
func (Comparator) Compare(a, b packages.Record) int {
	return CompareEVR(fromRecord(a), fromRecord(b))
}

func fromRecord(r packages.Record) EVR {
	return EVR{
		Epoch:   r.Epoch,
		Version: r.Version,
		Release: r.Release,
	}
}

func epochOrDefault(s string) string {
	if s == "" {
		return defaultEpoch
	}
	return s
}
