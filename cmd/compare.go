package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vollodin61/PkgDiffBranch/internal/pipeline"
	v1 "github.com/vollodin61/PkgDiffBranch/pkg/api/v1"
	"github.com/vollodin61/PkgDiffBranch/pkg/catalog"
	"github.com/vollodin61/PkgDiffBranch/pkg/config"
	"github.com/vollodin61/PkgDiffBranch/pkg/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "compare the packages of two branches",
	Long: `Compare the binary packages of a base branch against a target branch.

For every architecture, reports the packages only found in the target,
the packages only found in the base and the packages with a higher
version in the target.`,
	RunE: compare,
}

const (
	flagURL        = "url"
	flagBase       = "base"
	flagTarget     = "target"
	flagBranch1    = "branch1"
	flagBranch2    = "branch2"
	flagArch       = "arch"
	flagScheme     = "scheme"
	flagOutputFile = "output-file"
	flagOutputDir  = "output-dir"
	flagArchive    = "archive"
	flagParallel   = "parallelism"
	flagTimeout    = "timeout"
	flagRetries    = "retries"
	flagRetryDelay = "retry-delay"
	flagOutput     = "output"
)

// formatJSON is the only result format.
const formatJSON = "json"

func init() {
	defaults := config.Default()

	compareCmd.Flags().String(flagURL, "", "catalog base url (defaults to API_URL)")
	compareCmd.Flags().String(flagBase, defaults.Base, "branch to compare against")
	compareCmd.Flags().String(flagTarget, defaults.Target, "branch expected to be ahead of the base")
	compareCmd.Flags().String(flagBranch1, "", "")
	compareCmd.Flags().String(flagBranch2, "", "")
	compareCmd.Flags().StringSlice(flagArch, defaults.Architectures, "architectures to compare (defaults to ARCHITECTURES)")
	compareCmd.Flags().String(flagScheme, string(defaults.Scheme), fmt.Sprintf("version ordering, one of %v", v1.Schemes))
	compareCmd.Flags().StringP(flagOutputFile, "o", "", "write the result to a json file")
	compareCmd.Flags().String(flagOutputDir, "", "write one json file per architecture into a directory")
	compareCmd.Flags().String(flagArchive, "", "write the results to an archive (.zip, .tar, .tar.gz, .tar.zst, .tar.xz)")
	compareCmd.Flags().Int(flagParallel, defaults.Parallelism, "number of architectures compared at once")
	compareCmd.Flags().Duration(flagTimeout, defaults.Timeout, "timeout of a single catalog request")
	compareCmd.Flags().Int(flagRetries, defaults.Attempts, "attempts per catalog request on connection failure")
	compareCmd.Flags().Duration(flagRetryDelay, defaults.RetryDelay, "delay between attempts")
	compareCmd.Flags().String(flagOutput, formatJSON, "result format, only json is supported")

	_ = compareCmd.Flags().MarkDeprecated(flagBranch1, "use --base instead")
	_ = compareCmd.Flags().MarkDeprecated(flagBranch2, "use --target instead")
	_ = compareCmd.MarkFlagDirname(flagOutputDir)
	compareCmd.MarkFlagsMutuallyExclusive(flagOutputFile, flagOutputDir, flagArchive)
}

func compare(cmd *cobra.Command, _ []string) error {
	run := uuid.NewString()
	log := logr.FromContextOrDiscard(cmd.Context()).WithValues("run", run)
	ctx := logr.NewContext(cmd.Context(), log)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	log.Info("comparing branches", "base", cfg.Base, "target", cfg.Target, "archs", cfg.Architectures, "url", cfg.APIURL)

	fetcher := catalog.NewFetcher(catalog.Options{
		URL:     cfg.APIURL,
		Timeout: cfg.Timeout,
		Retry:   cfg.RetryPolicy(),
	})
	outcomes, err := pipeline.Run(ctx, cfg, fetcher)
	if err != nil {
		return err
	}

	reports := pipeline.Reports(outcomes)
	failed := pipeline.Failed(outcomes)
	for _, o := range failed {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", o.Err)
	}

	if len(reports) > 0 {
		if err := writeReports(ctx, cmd.OutOrStdout(), cfg, run, reports, failed); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d architectures failed", len(failed), len(outcomes))
	}
	return nil
}

func writeReports(ctx context.Context, out io.Writer, cfg config.Config, run string, reports []report.Report, failed []pipeline.Outcome) error {
	switch {
	case cfg.Output.Archive != "":
		m := report.Manifest{
			Run:    run,
			Base:   cfg.Base,
			Target: cfg.Target,
		}
		for _, o := range failed {
			m.Failed = append(m.Failed, o.Arch)
		}
		return report.WriteArchive(ctx, cfg.Output.Archive, m, reports)
	case cfg.Output.Dir != "":
		return report.WriteDir(ctx, cfg.Output.Dir, reports)
	case cfg.Output.File != "":
		if err := report.WriteFile(ctx, cfg.Output.File, reports); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Result written to %s\n", cfg.Output.File)
		return nil
	default:
		return report.Write(out, reports)
	}
}

// loadConfig builds the configuration from the environment, the
// config file and finally any flags that were explicitly set.
func loadConfig(ctx context.Context, cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString(flagConfig)
	envFile, _ := cmd.Flags().GetString(flagEnvFile)

	cfg, err := config.Load(ctx, envFile, configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if format, _ := flags.GetString(flagOutput); format != formatJSON {
		return config.Config{}, fmt.Errorf("unsupported output format: %s", format)
	}
	if flags.Changed(flagURL) {
		cfg.APIURL, _ = flags.GetString(flagURL)
	}
	if flags.Changed(flagBranch1) {
		cfg.Base, _ = flags.GetString(flagBranch1)
	}
	if flags.Changed(flagBase) {
		cfg.Base, _ = flags.GetString(flagBase)
	}
	if flags.Changed(flagBranch2) {
		cfg.Target, _ = flags.GetString(flagBranch2)
	}
	if flags.Changed(flagTarget) {
		cfg.Target, _ = flags.GetString(flagTarget)
	}
	if flags.Changed(flagArch) {
		cfg.Architectures, _ = flags.GetStringSlice(flagArch)
	}
	if flags.Changed(flagScheme) {
		scheme, _ := flags.GetString(flagScheme)
		cfg.Scheme = v1.VersionScheme(scheme)
	}
	if flags.Changed(flagParallel) {
		cfg.Parallelism, _ = flags.GetInt(flagParallel)
	}
	if flags.Changed(flagTimeout) {
		cfg.Timeout, _ = flags.GetDuration(flagTimeout)
	}
	if flags.Changed(flagRetries) {
		cfg.Attempts, _ = flags.GetInt(flagRetries)
	}
	if flags.Changed(flagRetryDelay) {
		cfg.RetryDelay, _ = flags.GetDuration(flagRetryDelay)
	}
	// flags replace whichever output the config file chose
	if flags.Changed(flagOutputFile) || flags.Changed(flagOutputDir) || flags.Changed(flagArchive) {
		cfg.Output = config.Output{}
		cfg.Output.File, _ = flags.GetString(flagOutputFile)
		cfg.Output.Dir, _ = flags.GetString(flagOutputDir)
		cfg.Output.Archive, _ = flags.GetString(flagArchive)
	}

	cfg.Expand()
	cfg.Dedupe()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
