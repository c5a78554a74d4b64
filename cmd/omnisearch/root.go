package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/config"
	logpkg "github.com/kailas-cloud/omnisearch/internal/logger"
	"github.com/kailas-cloud/omnisearch/internal/version"
)

type rootOptions struct {
	env        string
	configPath string
	network    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "omnisearch",
		Short:         "Resolve ledger explorer search input to addresses, objects and transactions",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment, selects config/<env>.yaml and the log format")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path, overrides the --env lookup")
	cmd.PersistentFlags().StringVarP(&opts.network, "network", "n", "", "network to search (default from config)")

	cmd.AddCommand(newServeCmd(opts), newPreviewCmd(opts), newResolveCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath) //nolint:wrapcheck // already descriptive
	}
	return config.Load(o.env) //nolint:wrapcheck // already descriptive
}

func (o *rootOptions) newLogger(cfg config.Config) (*zap.Logger, error) {
	return logpkg.NewLogger(o.env, logpkg.Options{ //nolint:wrapcheck // already descriptive
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
}
