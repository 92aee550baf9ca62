package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/market-ingest/internal/config"
)

const defaultConfigPath = "configs/ingest.yaml"

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Load Alpha Vantage news and daily prices into PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "path to config file; skipped when the default is absent")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config; skipped when absent")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides config)")

	cmd.AddCommand(
		newNewsCmd(opts),
		newPricesCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig reads the dotenv file and config, applies flag overrides and
// validates the result.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
