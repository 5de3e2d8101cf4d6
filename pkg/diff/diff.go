package diff

import (
	"sort"

	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages/rpm"
	"golang.org/x/exp/maps"
)

// Compare produces the three-way difference between base and
// target. Neither snapshot is modified. A nil comparator
// uses RPM ordering.
//
// Packages with a higher version in the target are rendered with
// the version-release found in the base snapshot.
func Compare(base, target packages.Snapshot, cmp packages.VersionComparator) (*Result, error) {
	if cmp == nil {
		cmp = rpm.Comparator{}
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	baseIdx := base.Index()
	targetIdx := target.Index()

	result := &Result{
		InTargetNotInBase:     []string{},
		InBaseNotInTarget:     []string{},
		HigherVersionInTarget: []string{},
	}

	for _, name := range sortedKeys(targetIdx) {
		t := targetIdx[name]
		b, ok := baseIdx[name]
		if !ok {
			result.InTargetNotInBase = append(result.InTargetNotInBase, t.String())
			continue
		}
		if cmp.Compare(t, b) > 0 {
			result.HigherVersionInTarget = append(result.HigherVersionInTarget, b.String())
		}
	}
	for _, name := range sortedKeys(baseIdx) {
		if _, ok := targetIdx[name]; !ok {
			result.InBaseNotInTarget = append(result.InBaseNotInTarget, baseIdx[name].String())
		}
	}

	return result, nil
}

// sortedKeys returns package names
// sorted alphabetically.
func sortedKeys(idx map[string]packages.Record) []string {
	keys := maps.Keys(idx)
	sort.Strings(keys)
	return keys
}
