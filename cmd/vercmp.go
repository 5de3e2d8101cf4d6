package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vollodin61/PkgDiffBranch/internal/pipeline"
	v1 "github.com/vollodin61/PkgDiffBranch/pkg/api/v1"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages"
	"github.com/vollodin61/PkgDiffBranch/pkg/packages/rpm"
)

var vercmpCmd = &cobra.Command{
	Use:   "vercmp [a] [b]",
	Short: "compare two [epoch:]version[-release] strings",
	Long:  "Prints -1, 0 or 1 when a is older than, equal to or newer than b.",
	Args:  cobra.ExactArgs(2),
	RunE:  vercmp,
}

func init() {
	vercmpCmd.Flags().String(flagScheme, string(v1.SchemeRPM), fmt.Sprintf("version ordering, one of %v", v1.Schemes))
}

func vercmp(cmd *cobra.Command, args []string) error {
	scheme, _ := cmd.Flags().GetString(flagScheme)

	cmp, err := pipeline.ComparatorFor(cmd.Context(), v1.VersionScheme(scheme))
	if err != nil {
		return err
	}
	a, b := toRecord(args[0]), toRecord(args[1])
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cmp.Compare(a, b))
	return err
}

func toRecord(s string) packages.Record {
	evr := rpm.ParseEVR(s)
	return packages.Record{
		Epoch:   evr.Epoch,
		Version: evr.Version,
		Release: evr.Release,
	}
}
