package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/config"
	"github.com/MikeMC777/yummigo-orders/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "yummigoctl",
		Short:         "Operator tool for the yummigo order services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

// env loads config and a logger for commands that touch a store.
func env() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
