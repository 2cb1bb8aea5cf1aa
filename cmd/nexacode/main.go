package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode/internal/adapters/cli"
	"github.com/varunrmantri23/nexacode/internal/config"
	"github.com/varunrmantri23/nexacode/internal/logging"
)

var (
	verbose    bool
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nexacode",
	Short: "NexaCode - live HTML/CSS/JS playground server",
	Long: `NexaCode serves editing sessions that compose markup, styles and script
into a sandboxed live preview, and stores projects and collections.

Settings come from an optional YAML file (--config) and NEXACODE_* environment
variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Dev, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd, watchCmd, exportCmd, initCmd, doctorCmd)
}

func output(cmd *cobra.Command) *cli.Output {
	return cli.NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
