package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/app"
	"github.com/michaelbrown/codepad/internal/config"
	"github.com/michaelbrown/codepad/internal/logging"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "codepad",
	Short: "Codepad - run code and preview web projects",
	Long: `Codepad runs snippets in a local script sandbox or on a remote judge,
and composes html, css and js files into a single sandboxed preview.

JavaScript runs locally; every other language is submitted to the judge
configured in codepad.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ./codepad.yaml or ~/.codepad/codepad.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setup loads config and builds the logger and execution backends.
func setup() (*config.Config, *zap.Logger, *app.Backends, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	backends, err := app.NewBackends(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, backends, nil
}
