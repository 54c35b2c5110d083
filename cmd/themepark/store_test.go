package main

import (
	"bytes"
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/repository"
)

func TestOpenStore_DefaultsToFiles(t *testing.T) {
	for _, k := range []string{"DATABASE_URI", "REDIS_ADDR", "PAYMENT_PROCESSOR_ADDRESS", "DATA_DIR"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()

	svc, cfg, err := bootService(context.Background(), []string{"-f", dir}, zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, dir, cfg.DataDir)
	assert.Len(t, svc.Tickets(context.Background()), 6)

	store, err := openStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repository.FileStore{}, store)
}

func TestBootService_BadFlag(t *testing.T) {
	_, _, err := bootService(context.Background(), []string{"--no-such-flag"}, zap.NewNop())
	assert.Error(t, err)
}

func TestBootService_HelpFlag(t *testing.T) {
	_, _, err := bootService(context.Background(), []string{"-h"}, zap.NewNop())
	assert.ErrorIs(t, err, flag.ErrHelp)

	// cobra печатает справку команды и завершает работу без ошибки
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"tickets", "--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Print the ticket catalog")
}

func TestBootService_BadProcessorAddress(t *testing.T) {
	t.Setenv("DATABASE_URI", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PAYMENT_PROCESSOR_ADDRESS", "ftp://processor")

	_, _, err := bootService(context.Background(), []string{"-f", t.TempDir()}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported scheme")
}
