package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spacemeshos/smutil"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/s7bits/bitstream"
	"github.com/spacemeshos/s7bits/transport"
)

const (
	TransportS7   = "s7"
	TransportFile = "file"
)

const (
	DefaultHomeDirName    = ".s7bits"
	DefaultDataDirName    = "data"
	DefaultConfigFileName = "config.toml"

	DefaultTransport   = TransportS7
	DefaultArea        = "PA"
	DefaultRack        = 0
	DefaultSlot        = 1
	DefaultPort        = 102
	DefaultTimeout     = 5 * time.Second
	DefaultIdleTimeout = 60 * time.Second
	DefaultOrder       = "lsb"
	DefaultMaxSpan     = "0"
	DefaultLogLevel    = "info"

	MaxRack = 7
	MaxSlot = 31
)

var (
	DefaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), DefaultHomeDirName)
	DefaultDataDir    = filepath.Join(DefaultHomeDir, DefaultDataDirName)
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFileName)
)

type Config struct {
	HomeDir    string `mapstructure:"homedir"`
	ConfigFile string `mapstructure:"config"`
	LogLevel   string `mapstructure:"log-level"`

	// Transport selects how bytes reach the area: "s7" talks to a PLC,
	// "file" reads and writes area images in DataDir.
	Transport string `mapstructure:"transport"`
	DataDir   string `mapstructure:"datadir"`

	Rack        int           `mapstructure:"rack"`
	Slot        int           `mapstructure:"slot"`
	Port        int           `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle-timeout"`

	Area    string `mapstructure:"area"`
	Order   string `mapstructure:"order"`
	MaxSpan string `mapstructure:"max-span"`
}

func DefaultConfig() *Config {
	return &Config{
		HomeDir:     DefaultHomeDir,
		ConfigFile:  DefaultConfigFile,
		LogLevel:    DefaultLogLevel,
		Transport:   DefaultTransport,
		DataDir:     DefaultDataDir,
		Rack:        DefaultRack,
		Slot:        DefaultSlot,
		Port:        DefaultPort,
		Timeout:     DefaultTimeout,
		IdleTimeout: DefaultIdleTimeout,
		Area:        DefaultArea,
		Order:       DefaultOrder,
		MaxSpan:     DefaultMaxSpan,
	}
}

func (cfg *Config) Validate() error {
	if cfg.Transport != TransportS7 && cfg.Transport != TransportFile {
		return fmt.Errorf("invalid `Transport`; expected: %q or %q, given: %q", TransportS7, TransportFile, cfg.Transport)
	}

	if cfg.Transport == TransportFile && cfg.DataDir == "" {
		return fmt.Errorf("invalid `DataDir`; expected: a directory for the %q transport, given: none", TransportFile)
	}

	if cfg.Rack < 0 || cfg.Rack > MaxRack {
		return fmt.Errorf("invalid `Rack`; expected: 0-%d, given: %d", MaxRack, cfg.Rack)
	}

	if cfg.Slot < 0 || cfg.Slot > MaxSlot {
		return fmt.Errorf("invalid `Slot`; expected: 0-%d, given: %d", MaxSlot, cfg.Slot)
	}

	if cfg.Port <= 0 || cfg.Port > 0xFFFF {
		return fmt.Errorf("invalid `Port`; expected: 1-65535, given: %d", cfg.Port)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("invalid `Timeout`; expected: > 0, given: %v", cfg.Timeout)
	}

	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("invalid `IdleTimeout`; expected: >= 0, given: %v", cfg.IdleTimeout)
	}

	if _, err := cfg.ParseArea(); err != nil {
		return fmt.Errorf("invalid `Area`: %w", err)
	}

	if _, err := cfg.ParseOrder(); err != nil {
		return fmt.Errorf("invalid `Order`: %w", err)
	}

	if _, err := cfg.MaxSpanBytes(); err != nil {
		return fmt.Errorf("invalid `MaxSpan`; expected: a byte size such as 512 or 4K, given: %q", cfg.MaxSpan)
	}

	if _, err := cfg.ParseLogLevel(); err != nil {
		return fmt.Errorf("invalid `LogLevel`: %w", err)
	}

	return nil
}

func (cfg *Config) ParseArea() (transport.Area, error) {
	return transport.ParseArea(cfg.Area)
}

func (cfg *Config) ParseOrder() (bitstream.Order, error) {
	return bitstream.ParseOrder(cfg.Order)
}

func (cfg *Config) ParseLogLevel() (zapcore.Level, error) {
	var level zapcore.Level
	err := level.UnmarshalText([]byte(cfg.LogLevel))
	return level, err
}

// MaxSpanBytes returns the per-request byte limit; 0 means no limit.
func (cfg *Config) MaxSpanBytes() (uint64, error) {
	s := strings.TrimSpace(cfg.MaxSpan)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	return bytefmt.ToBytes(strings.ToUpper(s))
}
