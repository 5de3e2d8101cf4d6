package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/retry"
)

// flakyTransport fails the first n requests with a
// connection error.
type flakyTransport struct {
	failures int
	calls    int
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

type recordingSleep struct {
	calls []time.Duration
}

func (r *recordingSleep) Sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

// catalogServer serves fixed responses per branch and records
// every request it receives.
type catalogServer struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	codes    map[string]int
}

func newCatalogServer(t *testing.T) (*catalogServer, *httptest.Server) {
	cs := &catalogServer{
		bodies: map[string]string{},
		codes:  map[string]int{},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		branch := strings.TrimPrefix(r.URL.Path, "/api/export/branch_binary_packages/")
		cs.mu.Lock()
		cs.requests = append(cs.requests, branch+"?"+r.URL.RawQuery)
		code, ok := cs.codes[branch]
		body := cs.bodies[branch]
		cs.mu.Unlock()
		if !ok {
			code = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return cs, ts
}

func newFetcher(ts *httptest.Server, transport http.RoundTripper, rs *recordingSleep) *Fetcher {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return NewFetcher(Options{
		URL:    ts.URL + "/api/export/branch_binary_packages/",
		Client: &http.Client{Transport: transport, Timeout: 5 * time.Second},
		Retry: retry.Policy{
			Attempts: 3,
			Delay:    5 * time.Second,
			Sleep:    rs.Sleep,
		},
	})
}

func TestFetcher_Fetch(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	t.Run("successful request", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["sisyphus"] = `{"request_args":{"arch":"x86_64"},"length":1,"packages":[{"name":"package1","version":"1.0","release":"1","arch":"x86_64"}]}`

		rs := &recordingSleep{}
		out, err := newFetcher(ts, nil, rs).Fetch(ctx, "sisyphus", "x86_64")
		require.NoError(t, err)
		assert.EqualValues(t, packages.Snapshot{{Name: "package1", Version: "1.0", Release: "1", Arch: "x86_64"}}, out)
		assert.EqualValues(t, []string{"sisyphus?arch=x86_64"}, cs.requests)
		assert.Empty(t, rs.calls)
	})
	t.Run("missing packages field", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["p10"] = `{"length":0}`

		out, err := newFetcher(ts, nil, &recordingSleep{}).Fetch(ctx, "p10", "x86_64")
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
	t.Run("unsupported architecture", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.codes["p10"] = http.StatusBadRequest
		cs.bodies["p10"] = `{"message":"unknown arch"}`

		rs := &recordingSleep{}
		out, err := newFetcher(ts, nil, rs).Fetch(ctx, "p10", "mipsel")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Len(t, cs.requests, 1)
		assert.Empty(t, rs.calls)
	})
	t.Run("server errors are soft", func(t *testing.T) {
		for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
			cs, ts := newCatalogServer(t)
			cs.codes["p10"] = code

			out, err := newFetcher(ts, nil, &recordingSleep{}).Fetch(ctx, "p10", "x86_64")
			assert.NoError(t, err)
			assert.Empty(t, out)
			assert.Len(t, cs.requests, 1, "code %d should not be retried", code)
		}
	})
	t.Run("malformed body is not retried", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["p10"] = `{"packages":[{"name":`

		_, err := newFetcher(ts, nil, &recordingSleep{}).Fetch(ctx, "p10", "x86_64")
		var de *DecodeError
		assert.True(t, errors.As(err, &de))
		assert.Len(t, cs.requests, 1)
	})
	t.Run("malformed record is not retried", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["p10"] = `{"packages":[{"name":"bash","version":"5.2"}]}`

		_, err := newFetcher(ts, nil, &recordingSleep{}).Fetch(ctx, "p10", "x86_64")
		var mre *packages.MalformedRecordError
		assert.True(t, errors.As(err, &mre))
		assert.Len(t, cs.requests, 1)
	})
	t.Run("connection failures are retried", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["p10"] = `{"packages":[]}`

		rs := &recordingSleep{}
		ft := &flakyTransport{failures: 2, next: http.DefaultTransport}
		out, err := newFetcher(ts, ft, rs).Fetch(ctx, "p10", "x86_64")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.EqualValues(t, 3, ft.calls)
		assert.EqualValues(t, []time.Duration{5 * time.Second, 5 * time.Second}, rs.calls)
	})
	t.Run("connection failures are exhausted", func(t *testing.T) {
		_, ts := newCatalogServer(t)

		rs := &recordingSleep{}
		ft := &flakyTransport{failures: 3, next: http.DefaultTransport}
		_, err := newFetcher(ts, ft, rs).Fetch(ctx, "p10", "aarch64")

		var ff *FetchFailure
		require.True(t, errors.As(err, &ff))
		assert.EqualValues(t, "p10", ff.Branch)
		assert.EqualValues(t, "aarch64", ff.Arch)
		assert.EqualValues(t, 3, ff.Attempts)
		assert.True(t, strings.HasSuffix(ff.URL, "/p10"))

		var tce *TransientConnectionError
		assert.True(t, errors.As(err, &tce))
		assert.Contains(t, err.Error(), "connection reset by peer")
		assert.EqualValues(t, 3, ft.calls)
		assert.Len(t, rs.calls, 2)
	})
	t.Run("cancelled context is not retried", func(t *testing.T) {
		_, ts := newCatalogServer(t)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		rs := &recordingSleep{}
		_, err := newFetcher(ts, nil, rs).Fetch(cctx, "p10", "x86_64")
		assert.ErrorIs(t, err, context.Canceled)

		var ff *FetchFailure
		assert.False(t, errors.As(err, &ff))
		assert.Empty(t, rs.calls)
	})
}

// truncatedServer sends the start of a catalog body on the first
// failures requests and then breaks off. Later requests succeed.
func truncatedServer(t *testing.T, failures int32, breakOff func(w http.ResponseWriter, r *http.Request)) (*atomic.Int32, *httptest.Server) {
	calls := &atomic.Int32{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > failures {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"packages":[{"name":"bash","version":"5.2","release":"alt1"}]}`))
			return
		}
		breakOff(w, r)
	}))
	t.Cleanup(ts.Close)
	return calls, ts
}

// stall flushes part of the body and then waits for the
// client to give up.
func stall(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"packages":[`))
	w.(http.Flusher).Flush()
	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
}

// hangUp promises a longer body than it sends and closes
// the connection.
func hangUp(w http.ResponseWriter, _ *http.Request) {
	conn, buf, err := w.(http.Hijacker).Hijack()
	if err != nil {
		return
	}
	_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 1000\r\n\r\n{\"packages\":[")
	_ = buf.Flush()
	_ = conn.Close()
}

func TestFetcher_FetchInterruptedBody(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	var cases = []struct {
		name     string
		breakOff func(w http.ResponseWriter, r *http.Request)
	}{
		{"timeout while reading the body", stall},
		{"connection closed mid body", hangUp},
	}
	for _, tt := range cases {
		t.Run(tt.name+" is retried until exhausted", func(t *testing.T) {
			calls, ts := truncatedServer(t, 3, tt.breakOff)

			rs := &recordingSleep{}
			f := NewFetcher(Options{
				URL:    ts.URL + "/api/export/branch_binary_packages/",
				Client: &http.Client{Timeout: 200 * time.Millisecond},
				Retry:  retry.Policy{Attempts: 3, Delay: 5 * time.Second, Sleep: rs.Sleep},
			})
			_, err := f.Fetch(ctx, "sisyphus", "x86_64")

			var ff *FetchFailure
			require.True(t, errors.As(err, &ff), "unexpected error: %v", err)
			assert.EqualValues(t, 3, ff.Attempts)

			var tce *TransientConnectionError
			assert.True(t, errors.As(err, &tce))
			var de *DecodeError
			assert.False(t, errors.As(err, &de))

			assert.EqualValues(t, 3, calls.Load())
			assert.Len(t, rs.calls, 2)
		})
		t.Run(tt.name+" recovers on the next attempt", func(t *testing.T) {
			calls, ts := truncatedServer(t, 1, tt.breakOff)

			rs := &recordingSleep{}
			f := NewFetcher(Options{
				URL:    ts.URL + "/api/export/branch_binary_packages/",
				Client: &http.Client{Timeout: 200 * time.Millisecond},
				Retry:  retry.Policy{Attempts: 3, Delay: 5 * time.Second, Sleep: rs.Sleep},
			})
			out, err := f.Fetch(ctx, "sisyphus", "x86_64")
			require.NoError(t, err)
			assert.EqualValues(t, packages.Snapshot{{Name: "bash", Version: "5.2", Release: "alt1"}}, out)
			assert.EqualValues(t, 2, calls.Load())
			assert.EqualValues(t, []time.Duration{5 * time.Second}, rs.calls)
		})
	}
}

func TestNewFetcher_RetryDefaults(t *testing.T) {
	var cases = []struct {
		name string
		in   retry.Policy
		out  retry.Policy
	}{
		{"unset", retry.Policy{}, retry.Policy{Attempts: retry.DefaultAttempts, Delay: retry.DefaultDelay}},
		{"only delay", retry.Policy{Delay: time.Second}, retry.Policy{Attempts: retry.DefaultAttempts, Delay: time.Second}},
		{"only attempts", retry.Policy{Attempts: 5}, retry.Policy{Attempts: 5}},
		{"both", retry.Policy{Attempts: 2, Delay: time.Minute}, retry.Policy{Attempts: 2, Delay: time.Minute}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(Options{URL: "https://example.org", Retry: tt.in})
			assert.EqualValues(t, tt.out.Attempts, f.policy.Attempts)
			assert.EqualValues(t, tt.out.Delay, f.policy.Delay)
		})
	}
}

func TestFetcher_FetchPair(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	t.Run("both branches are fetched in order", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["p10"] = `{"packages":[{"name":"package2","version":"1.9","release":"1"}]}`
		cs.bodies["sisyphus"] = `{"packages":[{"name":"package2","version":"2.0","release":"1"}]}`

		a, b, err := newFetcher(ts, nil, &recordingSleep{}).FetchPair(ctx, "p10", "sisyphus", "aarch64")
		require.NoError(t, err)
		assert.EqualValues(t, "1.9", a[0].Version)
		assert.EqualValues(t, "2.0", b[0].Version)
		assert.EqualValues(t, []string{"p10?arch=aarch64", "sisyphus?arch=aarch64"}, cs.requests)
	})
	t.Run("failure of the second branch fails the pair", func(t *testing.T) {
		cs, ts := newCatalogServer(t)
		cs.bodies["p10"] = `{"packages":[]}`
		cs.bodies["sisyphus"] = `not json`

		a, b, err := newFetcher(ts, nil, &recordingSleep{}).FetchPair(ctx, "p10", "sisyphus", "x86_64")
		assert.Error(t, err)
		assert.Nil(t, a)
		assert.Nil(t, b)
	})
	t.Run("failure of the first branch skips the second", func(t *testing.T) {
		cs, ts := newCatalogServer(t)

		ft := &flakyTransport{failures: 3, next: http.DefaultTransport}
		_, _, err := newFetcher(ts, ft, &recordingSleep{}).FetchPair(ctx, "p10", "sisyphus", "x86_64")
		var ff *FetchFailure
		require.True(t, errors.As(err, &ff))
		assert.EqualValues(t, "p10", ff.Branch)
		assert.Empty(t, cs.requests)
	})
}

func TestFetcher_URL(t *testing.T) {
	f := NewFetcher(Options{URL: "https://rdb.altlinux.org/api/export/branch_binary_packages/"})
	assert.EqualValues(t, "https://rdb.altlinux.org/api/export/branch_binary_packages/p10", f.URL("p10"))

	f = NewFetcher(Options{URL: "https://rdb.altlinux.org/api/export/branch_binary_packages"})
	assert.EqualValues(t, "https://rdb.altlinux.org/api/export/branch_binary_packages/sisyphus", f.URL("sisyphus"))
}
