package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/s7bits/bitstream"
	"github.com/spacemeshos/s7bits/config"
	"github.com/spacemeshos/s7bits/transport"
)

func TestDefaultConfigValidates(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	cfg := config.DefaultConfig()
	req.NoError(cfg.Validate())

	area, err := cfg.ParseArea()
	req.NoError(err)
	req.Equal(transport.PA, area)

	order, err := cfg.ParseOrder()
	req.NoError(err)
	req.Equal(bitstream.LSBFirst, order)

	level, err := cfg.ParseLogLevel()
	req.NoError(err)
	req.Equal(zapcore.InfoLevel, level)

	n, err := cfg.MaxSpanBytes()
	req.NoError(err)
	req.Zero(n)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"transport", func(cfg *config.Config) { cfg.Transport = "modbus" }},
		{"file without datadir", func(cfg *config.Config) { cfg.Transport = config.TransportFile; cfg.DataDir = "" }},
		{"rack", func(cfg *config.Config) { cfg.Rack = 8 }},
		{"slot", func(cfg *config.Config) { cfg.Slot = -1 }},
		{"port", func(cfg *config.Config) { cfg.Port = 70000 }},
		{"timeout", func(cfg *config.Config) { cfg.Timeout = 0 }},
		{"idle timeout", func(cfg *config.Config) { cfg.IdleTimeout = -time.Second }},
		{"area", func(cfg *config.Config) { cfg.Area = "DB0" }},
		{"order", func(cfg *config.Config) { cfg.Order = "middle" }},
		{"max span", func(cfg *config.Config) { cfg.MaxSpan = "lots" }},
		{"log level", func(cfg *config.Config) { cfg.LogLevel = "loud" }},
	}
	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			tc.modify(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestMaxSpanBytes(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	cfg := config.DefaultConfig()
	for in, want := range map[string]uint64{
		"":     0,
		"0":    0,
		"222":  222,
		"4K":   4 << 10,
		"64kb": 64 << 10,
		"1M":   1 << 20,
	} {
		cfg.MaxSpan = in
		n, err := cfg.MaxSpanBytes()
		req.NoError(err, in)
		req.Equal(want, n, in)
	}
}
