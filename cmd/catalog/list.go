package catalog

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/vollodin61/PkgDiffBranch/pkg/catalog"
	"github.com/vollodin61/PkgDiffBranch/pkg/config"
	"github.com/vollodin61/PkgDiffBranch/pkg/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print the packages of a branch",
	RunE:  list,
}

const (
	flagBranch = "branch"
	flagArch   = "arch"
	flagURL    = "url"
)

func init() {
	listCmd.Flags().StringP(flagBranch, "b", config.DefaultBase, "branch to list")
	listCmd.Flags().StringP(flagArch, "a", config.DefaultArch, "architecture to list")
	listCmd.Flags().String(flagURL, "", "catalog base url (defaults to API_URL)")
}

func list(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	branch, _ := cmd.Flags().GetString(flagBranch)
	arch, _ := cmd.Flags().GetString(flagArch)

	cfg, err := config.Load(cmd.Context(), envFile, configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed(flagURL) {
		cfg.APIURL, _ = cmd.Flags().GetString(flagURL)
	}
	cfg.Expand()
	if cfg.APIURL == "" {
		return config.ErrMissingURL
	}

	log := logr.FromContextOrDiscard(cmd.Context())
	log.V(1).Info("listing packages", "branch", branch, "arch", arch, "url", cfg.APIURL)

	fetcher := catalog.NewFetcher(catalog.Options{
		URL:     cfg.APIURL,
		Timeout: cfg.Timeout,
		Retry:   cfg.RetryPolicy(),
	})
	snapshot, err := fetcher.Fetch(cmd.Context(), branch, arch)
	if err != nil {
		return err
	}
	log.Info("fetched packages", "branch", branch, "arch", arch, "count", len(snapshot))
	return report.Encode(cmd.OutOrStdout(), snapshot)
}
