package codec

import (
	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/bitstream"
)

type option struct {
	order    bitstream.Order
	maxBytes uint64
	logger   *zap.Logger
}

type Option func(*option)

// WithOrder sets the intra-byte bit numbering, LSB-first by default.
func WithOrder(order bitstream.Order) Option {
	return func(opts *option) {
		opts.order = order
	}
}

// WithMaxBytes caps the byte range of a single request. Zero means no cap.
func WithMaxBytes(n uint64) Option {
	return func(opts *option) {
		opts.maxBytes = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *option) {
		opts.logger = logger
	}
}
