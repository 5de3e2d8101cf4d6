package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/vollodin61/PkgDiffBranch/pkg/airutil"
	v1 "github.com/vollodin61/PkgDiffBranch/pkg/api/v1"
	"github.com/vollodin61/PkgDiffBranch/pkg/catalog"
	"github.com/vollodin61/PkgDiffBranch/pkg/retry"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// Default returns the configuration used when
// nothing else is provided.
func Default() Config {
	return Config{
		Base:          DefaultBase,
		Target:        DefaultTarget,
		Architectures: []string{DefaultArch},
		Scheme:        v1.SchemeRPM,
		Parallelism:   DefaultParallelism,
		Timeout:       catalog.DefaultTimeout,
		Attempts:      retry.DefaultAttempts,
		RetryDelay:    retry.DefaultDelay,
	}
}

// Load builds the configuration from the defaults, an optional
// dotenv file, the environment and an optional config document,
// in that order of precedence.
func Load(ctx context.Context, dotEnv, file string) (Config, error) {
	log := logr.FromContextOrDiscard(ctx)

	cfg := Default()
	if dotEnv != "" {
		if err := godotenv.Load(dotEnv); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("reading %s: %w", dotEnv, err)
			}
			log.V(2).Info("skipping missing dotenv file", "path", dotEnv)
		} else {
			log.V(1).Info("loaded dotenv file", "path", dotEnv)
		}
	}
	if err := cfg.FromEnv(); err != nil {
		return Config{}, err
	}
	if file != "" {
		log.V(1).Info("reading configuration file", "path", file)
		if err := cfg.FromFile(file); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// FromEnv overrides fields that are set in the environment.
func (c *Config) FromEnv() error {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	setString(&c.APIURL, env.APIURL)
	setString(&c.Base, env.Base)
	setString(&c.Target, env.Target)
	if len(env.Architectures) > 0 {
		c.Architectures = env.Architectures
	}
	if env.Scheme != "" {
		c.Scheme = v1.VersionScheme(env.Scheme)
	}
	if env.Timeout > 0 {
		c.Timeout = env.Timeout
	}
	if env.Parallelism > 0 {
		c.Parallelism = env.Parallelism
	}
	return nil
}

// FromFile overrides fields that are set in a YAML or
// JSON Comparison document.
func (c *Config) FromFile(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()

	var doc v1.Comparison
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&doc); err != nil {
		return fmt.Errorf("decoding config file '%s': %w", path, err)
	}
	if doc.Kind != "" && doc.Kind != v1.Kind {
		return fmt.Errorf("unexpected kind in config file '%s': %s", path, doc.Kind)
	}
	return c.apply(doc.Spec)
}

func (c *Config) apply(spec v1.ComparisonSpec) error {
	setString(&c.APIURL, spec.URL)
	setString(&c.Base, spec.Base)
	setString(&c.Target, spec.Target)
	if len(spec.Architectures) > 0 {
		c.Architectures = spec.Architectures
	}
	if spec.Scheme != "" {
		c.Scheme = spec.Scheme
	}
	if spec.Parallelism > 0 {
		c.Parallelism = spec.Parallelism
	}
	if spec.Retry.Attempts > 0 {
		c.Attempts = spec.Retry.Attempts
	}
	if spec.Timeout != "" {
		d, err := time.ParseDuration(spec.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		c.Timeout = d
	}
	if spec.Retry.Delay != "" {
		d, err := time.ParseDuration(spec.Retry.Delay)
		if err != nil {
			return fmt.Errorf("parsing retry delay: %w", err)
		}
		c.RetryDelay = d
	}
	setString(&c.Output.File, spec.Output.File)
	setString(&c.Output.Dir, spec.Output.Dir)
	setString(&c.Output.Archive, spec.Output.Archive)
	return nil
}

// Expand substitutes environment references in every
// string value.
func (c *Config) Expand() {
	c.APIURL = airutil.ExpandEnv(c.APIURL)
	c.Base = airutil.ExpandEnv(c.Base)
	c.Target = airutil.ExpandEnv(c.Target)
	c.Architectures = airutil.ExpandEnvAll(c.Architectures)
	c.Output.File = airutil.ExpandEnv(c.Output.File)
	c.Output.Dir = airutil.ExpandEnv(c.Output.Dir)
	c.Output.Archive = airutil.ExpandEnv(c.Output.Archive)
}

// Validate checks that the configuration can be used
// for a comparison run.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return ErrMissingURL
	}
	u, err := url.ParseRequestURI(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid catalog url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported catalog url scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(c.Base) == "" || strings.TrimSpace(c.Target) == "" {
		return ErrMissingBranch
	}
	if len(c.Architectures) == 0 {
		return ErrMissingArchitectures
	}
	for _, a := range c.Architectures {
		if strings.TrimSpace(a) == "" {
			return ErrMissingArchitectures
		}
	}
	if !slices.Contains(v1.Schemes, c.Scheme) {
		return fmt.Errorf("unknown version scheme: %s", c.Scheme)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1: %d", c.Parallelism)
	}
	if c.Attempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1: %d", c.Attempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative: %s", c.RetryDelay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	var outputs int
	for _, o := range []string{c.Output.File, c.Output.Dir, c.Output.Archive} {
		if o != "" {
			outputs++
		}
	}
	if outputs > 1 {
		return ErrConflictingOutput
	}
	return nil
}

// RetryPolicy returns the catalog retry policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		Attempts: c.Attempts,
		Delay:    c.RetryDelay,
	}
}

// Dedupe removes repeated architectures, keeping
// the first occurrence.
func (c *Config) Dedupe() {
	seen := map[string]bool{}
	out := make([]string, 0, len(c.Architectures))
	for _, a := range c.Architectures {
		a = strings.TrimSpace(a)
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	c.Architectures = out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
