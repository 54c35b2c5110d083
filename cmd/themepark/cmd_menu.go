package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/menu"
)

var menuCmd = &cobra.Command{
	Use:                "menu [flags]",
	Short:              "Run the interactive text menu",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := quietLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, _, err := bootService(ctx, args, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		return menu.New(svc, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	},
}

// quietLogger пишет в stderr только предупреждения и ошибки, чтобы не мешать диалогу.
func quietLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
