package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  timeout: 10s\n"), 0o600))

	var seen atomic.Int64
	w, err := NewWatcher(path, func(_ context.Context, cfg *Config) error {
		seen.Store(int64(cfg.Generator.TimeoutDuration()))
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("generator:\n  timeout: 45s\n"), 0o600))

	require.Eventually(t, func() bool {
		return time.Duration(seen.Load()) == 45*time.Second
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresInvalidRevision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  timeout: 10s\n"), 0o600))

	var calls atomic.Int32
	w, err := NewWatcher(path, func(context.Context, *Config) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("generator:\n  type: magic\n"), 0o600))
	time.Sleep(200 * time.Millisecond)

	w.Stop()
	w.Stop()
	require.Equal(t, int32(0), calls.Load())
}
