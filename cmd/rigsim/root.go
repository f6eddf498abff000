package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// rootOptions are the flags shared by every subcommand.
	rootOptions struct {
		configFile string
		verbose    bool
	}
)

// newRootCmd creates the rigsim command tree.
func newRootCmd() *cobra.Command {
	options := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "rigsim",
		Short: "Propulsion test rig simulator",
		Long: `Runs the propulsion test rig firmware logic against a simulated board.

Type the console commands on stdin: w to increase, s to decrease and x to zero the
throttle, M for the menu and Q to quit.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&options.configFile, "config", "", "rig config file (YAML)")
	cmd.PersistentFlags().BoolVarP(&options.verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	cmd.AddCommand(newRunCmd(options))
	cmd.AddCommand(newConfigCmd(options))
	return cmd
}

// newLogger builds the zap logger writing to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
