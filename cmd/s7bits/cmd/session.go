package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/s7bits/codec"
	"github.com/spacemeshos/s7bits/config"
	"github.com/spacemeshos/s7bits/transport/file"
	"github.com/spacemeshos/s7bits/transport/s7"
)

// session is one connected transport plus the codec bound to the configured
// area.
type session struct {
	transport codec.Transport
	codec     *codec.Codec
	logger    *zap.Logger
	closer    io.Closer
}

func (s *session) Close() error {
	defer s.logger.Sync() // nolint:errcheck
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	level, err := cfg.ParseLogLevel()
	if err != nil {
		return nil, err
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core), nil
}

var errHostMissing = errors.New("PLC host is required for the s7 transport")

// openSession connects the configured transport. host is ignored by the file
// transport.
func openSession(cfg *config.Config, host string, logger *zap.Logger) (*session, error) {
	s := &session{logger: logger}

	switch cfg.Transport {
	case config.TransportS7:
		if host == "" {
			return nil, errHostMissing
		}
		tr, err := s7.Dial(host, cfg.Rack, cfg.Slot,
			s7.WithPort(cfg.Port),
			s7.WithTimeout(cfg.Timeout),
			s7.WithIdleTimeout(cfg.IdleTimeout),
			s7.WithLogger(logger.Named("s7")),
		)
		if err != nil {
			return nil, err
		}
		s.transport = tr
		s.closer = tr
	case config.TransportFile:
		tr, err := file.New(afero.NewOsFs(), cfg.DataDir, file.WithLogger(logger.Named("file")))
		if err != nil {
			return nil, err
		}
		s.transport = tr
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}

	area, err := cfg.ParseArea()
	if err != nil {
		s.Close()
		return nil, err
	}
	order, err := cfg.ParseOrder()
	if err != nil {
		s.Close()
		return nil, err
	}
	maxBytes, err := cfg.MaxSpanBytes()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.codec, err = codec.New(s.transport, area,
		codec.WithOrder(order),
		codec.WithMaxBytes(maxBytes),
		codec.WithLogger(logger.Named("codec")),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func hostArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
