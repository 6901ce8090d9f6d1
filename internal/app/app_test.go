package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/config"
	"phishguard/internal/models"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestBuildBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"memory", func(*config.Config) {}},
		{"file", func(c *config.Config) {
			c.Storage.Backend = config.BackendFile
			c.Storage.HistoryFile = filepath.Join(t.TempDir(), "h.json")
		}},
		{"redis", func(c *config.Config) {
			c.Storage.Backend = config.BackendRedis
			c.Storage.RedisAddr = mr.Addr()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			cfg := config.Default()
			tt.mutate(cfg)

			a, err := Build(ctx, cfg, quiet)
			require.NoError(t, err)
			defer a.Close()

			res, err := a.Scanner.Scan(ctx, models.SignalsFromURL("http://signin.example.xyz", true), models.OriginManual)
			require.NoError(t, err)
			assert.True(t, res.Stored)

			list, err := a.History.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestBuildRejectsBadProxy(t *testing.T) {
	cfg := config.Default()
	cfg.Proxy.List = []string{"http://proxy:3128"}

	_, err := Build(context.Background(), cfg, quiet)
	assert.Error(t, err)
}

func TestBuildRedisDown(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.RedisAddr = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, quiet)
	assert.Error(t, err)
}
