package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arloliu/slumber"
	"github.com/arloliu/slumber/internal/config"
	"github.com/arloliu/slumber/internal/logging"
)

var (
	version = slumber.Version
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slumber",
		Short: "Bayesian regression of mammal sleep on brain mass",
		Long: `slumber fits a Bayesian linear regression of the logit sleep ratio
on log10 brain mass, predicts sleep hours across the observed range of
brain masses and renders scatter, trend and predictive ribbon plots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newDataCmd(),
		newFitCmd(),
	)

	return rootCmd
}

// loadConfig resolves defaults, the config file, environment variables and
// finally the command-line flags, then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if f := flags.Lookup("out"); f != nil && f.Changed {
		cfg.Output.Dir = f.Value.String()
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		cfg.Output.Format = f.Value.String()
	}
	if f := flags.Lookup("seed"); f != nil && f.Changed {
		cfg.Model.Seed, _ = flags.GetUint64("seed")
	}
	if f := flags.Lookup("chains"); f != nil && f.Changed {
		cfg.Model.Chains, _ = flags.GetInt("chains")
	}
	if f := flags.Lookup("data"); f != nil && f.Changed {
		cfg.Data.Path = f.Value.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr(), cfg.Logging.NoColor || !isTerminal(cmd))
}

// isTerminal reports whether the command's error stream is a character device.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "CSV file with msleep columns (default: built-in table)")
	cmd.Flags().Uint64("seed", 0, "Base random seed (default 1234)")
	cmd.Flags().Int("chains", 0, "Number of sampler chains (default 4)")
}
