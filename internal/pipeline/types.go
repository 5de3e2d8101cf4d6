package pipeline

import (
	"context"
	"fmt"

	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/report"
)

// PairFetcher retrieves the snapshots of two branches
// for one architecture.
type PairFetcher interface {
	FetchPair(ctx context.Context, branchA, branchB, arch string) (packages.Snapshot, packages.Snapshot, error)
}

// Outcome is the result of comparing one architecture.
// Exactly one of Report and Err is set.
type Outcome struct {
	Arch   string
	Report *report.Report
	Err    error
}

// ArchError attributes a failure to the architecture
// and branches involved.
type ArchError struct {
	Arch   string
	Base   string
	Target string
	Err    error
}

func (e *ArchError) Error() string {
	return fmt.Sprintf("arch %s (%s -> %s): %s", e.Arch, e.Base, e.Target, e.Err)
}

func (e *ArchError) Unwrap() error {
	return e.Err
}
