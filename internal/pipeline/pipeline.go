package pipeline

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	v1 "github.com/vollodin61/PkgDiffBranch/pkg/api/v1"
	"github.com/vollodin61/PkgDiffBranch/pkg/config"
	"github.com/vollodin61/PkgDiffBranch/pkg/diff"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages/alpine"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages/debian"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages/rpm"
	"github.com/vollodin61/PkgDiffBranch/pkg/report"
	"golang.org/x/sync/errgroup"
)

// ComparatorFor returns the version ordering of a scheme.
func ComparatorFor(ctx context.Context, scheme v1.VersionScheme) (packages.VersionComparator, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("scheme", scheme)
	switch scheme {
	case v1.SchemeRPM, "":
		return rpm.Comparator{}, nil
	case v1.SchemeDebian:
		return debian.Comparator{Log: log}, nil
	case v1.SchemeAlpine:
		return alpine.Comparator{Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown version scheme: %s", scheme)
	}
}

// Run compares the base and target branches for every configured
// architecture. Architectures run concurrently and independently;
// a failure in one never stops the others. Outcomes are returned
// in the order the architectures were configured.
func Run(ctx context.Context, cfg config.Config, fetcher PairFetcher) ([]Outcome, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("base", cfg.Base, "target", cfg.Target)

	cmp, err := ComparatorFor(ctx, cfg.Scheme)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(cfg.Architectures))

	g := errgroup.Group{}
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for i, arch := range cfg.Architectures {
		g.Go(func() error {
			alog := log.WithValues("arch", arch)
			r, err := compare(logr.NewContext(ctx, alog), cfg.Base, cfg.Target, arch, fetcher, cmp)
			if err != nil {
				alog.Error(err, "failed to compare architecture")
				outcomes[i] = Outcome{
					Arch: arch,
					Err: &ArchError{
						Arch:   arch,
						Base:   cfg.Base,
						Target: cfg.Target,
						Err:    err,
					},
				}
				return nil
			}
			alog.Info("compared architecture", "onlyInTarget", len(r.Result.InTargetNotInBase), "onlyInBase", len(r.Result.InBaseNotInTarget), "higherInTarget", len(r.Result.HigherVersionInTarget))
			outcomes[i] = Outcome{Arch: arch, Report: r}
			return nil
		})
	}
	// tasks record their own errors
	_ = g.Wait()

	return outcomes, nil
}

func compare(ctx context.Context, base, target, arch string, fetcher PairFetcher, cmp packages.VersionComparator) (*report.Report, error) {
	log := logr.FromContextOrDiscard(ctx)

	baseSnapshot, targetSnapshot, err := fetcher.FetchPair(ctx, base, target, arch)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("fetched snapshots", "baseCount", len(baseSnapshot), "targetCount", len(targetSnapshot))

	result, err := diff.Compare(baseSnapshot, targetSnapshot, cmp)
	if err != nil {
		return nil, err
	}
	return &report.Report{
		Base:   base,
		Target: target,
		Arch:   arch,
		Result: result,
	}, nil
}

// Reports returns the reports of every successful outcome.
func Reports(outcomes []Outcome) []report.Report {
	var out []report.Report
	for _, o := range outcomes {
		if o.Report != nil {
			out = append(out, *o.Report)
		}
	}
	return out
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
