package catalog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/retry"
)

// Response is the body returned by the catalog for
// one branch and architecture.
type Response struct {
	Length   int                   `json:"length"`
	Packages []packages.WireRecord `json:"packages"`
}

// Options configure a Fetcher.
type Options struct {
	// URL is the catalog base address. Branch names
	// are appended as the last path element.
	URL string
	// Client is shared by every request made by the Fetcher.
	// When nil, a client with Timeout is created.
	Client  *http.Client
	Timeout time.Duration
	Retry   retry.Policy
}

type Fetcher struct {
	baseURL string
	client  *http.Client
	policy  retry.Policy
}

const DefaultTimeout = 30 * time.Second

// TransientConnectionError is a connection-level failure of
// a single attempt. It is retried.
type TransientConnectionError struct {
	URL string
	Err error
}

func (e *TransientConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %s", e.URL, e.Err)
}

func (e *TransientConnectionError) Unwrap() error {
	return e.Err
}

// FetchFailure is returned once every attempt to fetch a
// snapshot failed to connect.
type FetchFailure struct {
	Branch   string
	Arch     string
	URL      string
	Attempts int
	Err      error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("failed to fetch branch '%s' (arch: %s) from %s after %d attempts: %s", e.Branch, e.Arch, e.URL, e.Attempts, e.Err)
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a successful response
// could not be decoded. It is not retried.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %s", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
