package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/config"
	"github.com/mmeshcher/themepark/internal/processor"
	"github.com/mmeshcher/themepark/internal/repository"
	"github.com/mmeshcher/themepark/internal/service"
)

// openStore выбирает хранилище журналов: PostgreSQL, затем Redis, затем каталог с JSON-файлами.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Store, error) {
	switch {
	case cfg.DatabaseURI != "":
		logger.Info("using postgres ledger store")
		return repository.NewPostgresStore(cfg.DatabaseURI)
	case cfg.RedisAddr != "":
		logger.Info("using redis ledger store", zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisStore(ctx, cfg.RedisAddr)
	default:
		logger.Info("using file ledger store", zap.String("dir", cfg.DataDir))
		return repository.NewFileStore(cfg.DataDir)
	}
}

// bootService читает конфигурацию, открывает хранилище и загружает журналы.
func bootService(ctx context.Context, args []string, logger *zap.Logger) (*service.Service, *config.Config, error) {
	cfg, err := config.Parse(args)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("storage initialization error: %w", err)
	}

	var proc service.PaymentProcessor
	if cfg.PaymentProcessorAddress != "" {
		client, err := processor.NewClient(cfg.PaymentProcessorAddress)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		proc = client
	}

	svc := service.NewService(store, proc, logger)
	if err := svc.Load(ctx); err != nil {
		_ = svc.Close()
		return nil, nil, fmt.Errorf("load ledgers: %w", err)
	}
	return svc, cfg, nil
}
