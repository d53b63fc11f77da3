// Package s7 provides a Transport talking ISO-on-TCP to Siemens S7 PLCs.
package s7

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/robinson/gos7"
	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/transport"
)

const (
	DefaultPort        = 102
	DefaultTimeout     = 5 * time.Second
	DefaultIdleTimeout = 60 * time.Second

	// MaxByteAddress is the highest byte offset an S7 area can address.
	MaxByteAddress = 0xFFFF
)

// Client is the subset of gos7.Client used for area access.
type Client interface {
	AGReadEB(start int, size int, buffer []byte) error
	AGWriteEB(start int, size int, buffer []byte) error
	AGReadAB(start int, size int, buffer []byte) error
	AGWriteAB(start int, size int, buffer []byte) error
	AGReadMB(start int, size int, buffer []byte) error
	AGWriteMB(start int, size int, buffer []byte) error
	AGReadDB(dbNumber int, start int, size int, buffer []byte) error
	AGWriteDB(dbNumber int, start int, size int, buffer []byte) error
}

type option struct {
	port        int
	timeout     time.Duration
	idleTimeout time.Duration
	logger      *zap.Logger
}

type Option func(*option)

func WithPort(port int) Option {
	return func(opts *option) {
		opts.port = port
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *option) {
		opts.timeout = timeout
	}
}

func WithIdleTimeout(timeout time.Duration) Option {
	return func(opts *option) {
		opts.idleTimeout = timeout
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *option) {
		opts.logger = logger
	}
}

// Transport performs area reads and writes through an S7 client.
type Transport struct {
	client Client
	closer io.Closer
	logger *zap.Logger

	mtx    sync.Mutex
	closed bool
}

// Dial connects to the PLC at host, in the given rack and slot.
func Dial(host string, rack, slot int, opts ...Option) (*Transport, error) {
	options := option{
		port:        DefaultPort,
		timeout:     DefaultTimeout,
		idleTimeout: DefaultIdleTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	address := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		address = net.JoinHostPort(host, strconv.Itoa(options.port))
	}

	handler := gos7.NewTCPClientHandler(address, rack, slot)
	handler.Timeout = options.timeout
	handler.IdleTimeout = options.idleTimeout
	handler.Logger = zap.NewStdLog(options.logger.Named("gos7"))

	options.logger.Debug("connecting",
		zap.String("address", address),
		zap.Int("rack", rack),
		zap.Int("slot", slot),
	)
	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %v: %w", address, err)
	}

	return &Transport{
		client: gos7.NewClient(handler),
		closer: handler,
		logger: options.logger,
	}, nil
}

// New wraps an already connected client. closer may be nil.
func New(client Client, closer io.Closer, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{client: client, closer: closer, logger: logger}
}

func (t *Transport) Fetch(ctx context.Context, area transport.Area, offset uint64, length int) ([]byte, error) {
	buf := make([]byte, length)
	err := t.do(ctx, "fetch", area, offset, length, func(start int) error {
		switch area.Kind {
		case transport.Inputs:
			return t.client.AGReadEB(start, length, buf)
		case transport.Outputs:
			return t.client.AGReadAB(start, length, buf)
		case transport.Merkers:
			return t.client.AGReadMB(start, length, buf)
		case transport.DataBlock:
			return t.client.AGReadDB(area.DBNumber, start, length, buf)
		}
		return fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *Transport) Store(ctx context.Context, area transport.Area, offset uint64, data []byte) error {
	length := len(data)
	return t.do(ctx, "store", area, offset, length, func(start int) error {
		switch area.Kind {
		case transport.Inputs:
			return t.client.AGWriteEB(start, length, data)
		case transport.Outputs:
			return t.client.AGWriteAB(start, length, data)
		case transport.Merkers:
			return t.client.AGWriteMB(start, length, data)
		case transport.DataBlock:
			return t.client.AGWriteDB(area.DBNumber, start, length, data)
		}
		return fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	})
}

func (t *Transport) do(ctx context.Context, op string, area transport.Area, offset uint64, length int, f func(start int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !area.Valid() {
		return fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	}
	if length <= 0 || offset > MaxByteAddress || uint64(length-1) > MaxByteAddress-offset {
		return fmt.Errorf("%w: [%d, +%d) exceeds byte address %d", transport.ErrOutOfRange, offset, length, MaxByteAddress)
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.closed {
		return transport.ErrClosed
	}

	start := time.Now()
	if err := f(int(offset)); err != nil {
		t.logger.Debug(op+" failed",
			zap.Stringer("area", area),
			zap.Uint64("offset", offset),
			zap.Int("length", length),
			zap.Error(err),
		)
		return err
	}

	t.logger.Debug(op,
		zap.Stringer("area", area),
		zap.Uint64("offset", offset),
		zap.Int("length", length),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Close closes the connection. Further calls fail with transport.ErrClosed.
func (t *Transport) Close() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
