// Package config содержит логику чтения конфигурации системы бронирования билетов.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress = "localhost:8080"
	defaultDataDir    = "data"
)

// Config содержит параметры конфигурации. Переменные окружения имеют приоритет над флагами.
type Config struct {
	RunAddress              string `env:"RUN_ADDRESS"`
	DataDir                 string `env:"DATA_DIR"`
	DatabaseURI             string `env:"DATABASE_URI"`
	RedisAddr               string `env:"REDIS_ADDR"`
	PaymentProcessorAddress string `env:"PAYMENT_PROCESSOR_ADDRESS"`
	AuthSecret              string `env:"AUTH_SECRET"`
}

// Parse считывает конфигурацию из аргументов командной строки и переменных окружения.
// На -h и -help печатает описание флагов в stderr и возвращает flag.ErrHelp.
func Parse(args []string) (*Config, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, usage io.Writer) (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	fromEnv := *cfg

	fs := flag.NewFlagSet("themepark", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	fs.StringVar(&cfg.DataDir, "f", defaultDataDir, "directory for JSON ledger files")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	fs.StringVar(&cfg.RedisAddr, "r", "", "redis address")
	fs.StringVar(&cfg.PaymentProcessorAddress, "p", "", "payment processor address")
	fs.StringVar(&cfg.AuthSecret, "s", "", "secret for signing auth cookies")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(usage)
			fmt.Fprintln(usage, "Flags (environment variables take precedence):")
			fs.PrintDefaults()
		}
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	override(&cfg.RunAddress, fromEnv.RunAddress)
	override(&cfg.DataDir, fromEnv.DataDir)
	override(&cfg.DatabaseURI, fromEnv.DatabaseURI)
	override(&cfg.RedisAddr, fromEnv.RedisAddr)
	override(&cfg.PaymentProcessorAddress, fromEnv.PaymentProcessorAddress)
	override(&cfg.AuthSecret, fromEnv.AuthSecret)

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}

	return cfg, nil
}

func override(dst *string, envValue string) {
	if envValue != "" {
		*dst = envValue
	}
}
