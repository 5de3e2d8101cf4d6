package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/djcass44/go-utils/logging"
	"github.com/spf13/cobra"
	"github.com/vollodin61/PkgDiffBranch/cmd/catalog"
	"github.com/vollodin61/PkgDiffBranch/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var command = &cobra.Command{
	Use:          "pkgdiff",
	Short:        "compare binary packages between two branches",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetInt(flagLogLevel)

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.Level(logLevel * -1))

		_, ctx := logging.NewZap(cmd.Context(), zc)
		cmd.SetContext(ctx)
	},
}

const (
	flagLogLevel = "v"
	flagConfig   = "config"
	flagEnvFile  = "env-file"
)

func init() {
	command.PersistentFlags().Int(flagLogLevel, 0, "log level. Higher is more")
	command.PersistentFlags().StringP(flagConfig, "c", "", "path to a comparison configuration file")
	command.PersistentFlags().String(flagEnvFile, config.DefaultDotEnv, "path to a dotenv file, ignored if missing")

	_ = command.MarkPersistentFlagFilename(flagConfig, ".yaml", ".yml", ".json")
	command.AddCommand(compareCmd, vercmpCmd, catalog.Command)
}

func Execute(version string) {
	command.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := command.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
