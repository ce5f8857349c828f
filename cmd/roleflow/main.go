package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dusk-indust/roleflow/internal/config"
)

var (
	// Global flags
	cfgPath        string
	projectFile    string
	verbose        bool
	acceptDefaults bool
	discover       []string
	probeTimeout   time.Duration

	// Initialized in PersistentPreRunE
	cfg    *config.Service
	logger *zap.Logger
)

// version is set by goreleaser at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "roleflow",
	Short: "roleflow - role routing and pipeline orchestration for coding-assistant tasks",
	Long: `roleflow classifies a task against a small table of roles (product,
architect, engineer, delivery), runs the activated roles strictly in
pipeline order, adjudicates their declared conflicts by dimension
ownership, and assembles one final document.

Roles can be disabled per project; a disabled role's vocabulary and
decision authority transfer down its fallback chain so every concern
keeps exactly one accountable role.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadService(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if projectFile != "" {
			cfg.Project.File = projectFile
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if lvl, perr := zapcore.ParseLevel(cfg.Log.Level); perr == nil {
			zc.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the service config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&projectFile, "project", "", "project instructions file to scan for the role section (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&discover, "discover", nil, "candidate step-producer URLs to probe for role cards")
	rootCmd.PersistentFlags().DurationVar(&probeTimeout, "probe-timeout", 500*time.Millisecond, "per-endpoint timeout when probing producers")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(serveMCPCmd)
	rootCmd.AddCommand(serveStepCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the roleflow version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
