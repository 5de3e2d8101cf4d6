package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/go-logr/logr"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/requestutil"
	"github.com/vollodin61/PkgDiffBranch/pkg/retry"
)

func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	// an unset policy gets the default delay too, a set
	// one keeps its own
	policy := opts.Retry
	if policy.Attempts == 0 && policy.Delay == 0 {
		policy.Delay = retry.DefaultDelay
	}
	if policy.Attempts == 0 {
		policy.Attempts = retry.DefaultAttempts
	}
	return &Fetcher{
		baseURL: strings.TrimSuffix(opts.URL, "/"),
		client:  client,
		policy:  policy,
	}
}

// FetchPair retrieves the snapshots of two branches for the same
// architecture, one after the other. Either both are returned
// or neither is.
func (f *Fetcher) FetchPair(ctx context.Context, branchA, branchB, arch string) (packages.Snapshot, packages.Snapshot, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("arch", arch)
	log.V(1).Info("fetching branch pair", "base", branchA, "target", branchB)

	a, err := f.Fetch(ctx, branchA, arch)
	if err != nil {
		return nil, nil, err
	}
	b, err := f.Fetch(ctx, branchB, arch)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Fetch retrieves the package snapshot of a branch for one
// architecture.
//
// A 400 response means the branch does not support the architecture
// and any other non-200 response is logged. Both return an empty
// snapshot. Connection failures are retried according to the
// Fetcher's retry policy.
func (f *Fetcher) Fetch(ctx context.Context, branch, arch string) (packages.Snapshot, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("branch", branch, "arch", arch)
	target := f.URL(branch)

	var snapshot packages.Snapshot
	err := f.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		alog := log.WithValues("attempt", attempt)
		s, err := f.fetch(logr.NewContext(ctx, alog), target, arch)
		if err != nil {
			return err
		}
		snapshot = s
		return nil
	})
	if err != nil {
		var ee *retry.ExhaustedError
		if errors.As(err, &ee) {
			log.Error(ee.Err, "giving up on catalog request", "url", target, "attempts", ee.Attempts)
			return nil, &FetchFailure{
				Branch:   branch,
				Arch:     arch,
				URL:      target,
				Attempts: ee.Attempts,
				Err:      ee.Err,
			}
		}
		return nil, err
	}
	log.V(1).Info("fetched snapshot", "count", len(snapshot))
	return snapshot, nil
}

// URL returns the catalog address of a branch.
func (f *Fetcher) URL(branch string) string {
	return fmt.Sprintf("%s/%s", f.baseURL, url.PathEscape(branch))
}

func (f *Fetcher) fetch(ctx context.Context, target, arch string) (packages.Snapshot, error) {
	log := logr.FromContextOrDiscard(ctx)
	log.V(2).Info("requesting catalog", "url", target)

	snapshot := packages.Snapshot{}
	err := requests.
		URL(target).
		Param("arch", arch).
		Client(f.client).
		// status codes are handled below rather than
		// by the default validator
		AddValidator(func(*http.Response) error { return nil }).
		Handle(func(response *http.Response) error {
			log.V(2).Info("catalog request completed", "code", response.StatusCode)
			switch response.StatusCode {
			case http.StatusOK:
				var body Response
				if err := requestutil.ToJSON(&body)(response); err != nil {
					// a body cut off by the transport is retried
					// like any other connection failure
					var re *requestutil.ReadError
					if errors.As(err, &re) {
						return err
					}
					return &DecodeError{URL: target, Err: err}
				}
				s, err := packages.Parse(body.Packages)
				if err != nil {
					return err
				}
				snapshot = s
				return nil
			case http.StatusBadRequest:
				log.Info("architecture is not available in branch", "code", response.StatusCode)
				return nil
			default:
				log.Error(fmt.Errorf("unexpected response code: %d", response.StatusCode), "catalog request failed, using an empty snapshot", "url", target)
				return nil
			}
		}).
		Fetch(ctx)
	if err == nil {
		return snapshot, nil
	}

	// cancellation of the caller is never retried
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var de *DecodeError
	var mre *packages.MalformedRecordError
	if errors.As(err, &de) || errors.As(err, &mre) {
		return nil, err
	}
	log.V(1).Info("failed to connect to catalog", "url", target, "err", err.Error())
	return nil, retry.Retryable(&TransientConnectionError{URL: target, Err: err})
}
