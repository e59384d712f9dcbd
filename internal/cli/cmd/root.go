// Package cmd implements the sigdrift command-line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/davrins/sigdrift/internal/config"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool

	// Shared resources
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sigdrift",
	Short: "A daemon that drifts through a music library under external signal control",
	Long: `Sigdrift connects to a running mpv instance and to a periodic
signal bridge, both over local Unix sockets. Each signal tick selects a
track and a position inside it:
  • track index and seek position are derived from the sample
  • the player is driven load → wait-for-loaded → seek → play
  • every tick is recorded in a local play history`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version and config-init run before any config exists.
		switch cmd.Name() {
		case "version", "init":
			return nil
		}
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/sigdrift/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimize output")

	// Add commands
	rootCmd.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		newHistoryCmd(),
		newLibraryCmd(),
		newConfigCmd(),
		versionCmd,
	)
}

func setupLogger() error {
	var zcfg zap.Config

	switch {
	case verbose:
		zcfg = zap.NewDevelopmentConfig()
	case quiet:
		zcfg = zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		zcfg = zap.NewProductionConfig()
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err == nil {
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	// Log to a file unless in verbose mode
	if !verbose && cfg.Log.EnableFileLogging {
		logDir := cfg.SystemPaths.LogDir
		if logDir != "" {
			if err := os.MkdirAll(logDir, 0755); err == nil {
				zcfg.OutputPaths = []string{filepath.Join(logDir, "sigdrift.log")}
			}
		}
	}

	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
