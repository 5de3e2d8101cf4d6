package config

import (
	"errors"
	"time"

	v1 "github.com/vollodin61/PkgDiffBranch/pkg/api/v1"
)

// Config is everything a comparison run needs. It is built once
// by the command and passed down explicitly.
type Config struct {
	APIURL        string
	Base          string
	Target        string
	Architectures []string
	Scheme        v1.VersionScheme
	Parallelism   int
	Timeout       time.Duration
	Attempts      int
	RetryDelay    time.Duration
	Output        Output
}

// Output selects where results go. When every field
// is empty, results are printed.
type Output struct {
	File    string
	Dir     string
	Archive string
}

// environment is read by envconfig. API_URL and ARCHITECTURES
// keep the names used by existing deployments.
type environment struct {
	APIURL        string        `envconfig:"API_URL"`
	Architectures []string      `envconfig:"ARCHITECTURES"`
	Base          string        `envconfig:"PKGDIFF_BASE"`
	Target        string        `envconfig:"PKGDIFF_TARGET"`
	Scheme        string        `envconfig:"PKGDIFF_SCHEME"`
	Timeout       time.Duration `envconfig:"PKGDIFF_TIMEOUT"`
	Parallelism   int           `envconfig:"PKGDIFF_PARALLELISM"`
}

const (
	DefaultBase        = "p10"
	DefaultTarget      = "sisyphus"
	DefaultArch        = "x86_64"
	DefaultParallelism = 4
	DefaultDotEnv      = ".env"
)

var (
	ErrMissingURL           = errors.New("catalog url is not set (use --url or API_URL)")
	ErrMissingBranch        = errors.New("both base and target branches are required")
	ErrMissingArchitectures = errors.New("at least one architecture is required")
	ErrConflictingOutput    = errors.New("only one of output file, output directory or archive may be set")
)
