// Package file provides a Transport backed by one image file per area, e.g.
// area DB1 is stored in <dir>/db1.bin. Images are usually produced by the
// dump command from a live PLC.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/transport"
)

const (
	OwnerReadWrite     = os.FileMode(0o600)
	OwnerReadWriteExec = os.FileMode(0o700)

	fileExt = ".bin"
)

// Filename returns the image file name for area.
func Filename(area transport.Area) string {
	return strings.ToLower(area.String()) + fileExt
}

type option struct {
	create bool
	logger *zap.Logger
}

type Option func(*option)

// WithCreate creates missing image files on store and lets stores extend an
// image past its end.
func WithCreate() Option {
	return func(opts *option) {
		opts.create = true
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *option) {
		opts.logger = logger
	}
}

type Transport struct {
	fs     afero.Fs
	dir    string
	create bool
	logger *zap.Logger

	mtx sync.Mutex
}

func New(fs afero.Fs, dir string, opts ...Option) (*Transport, error) {
	options := option{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	info, err := fs.Stat(dir)
	switch {
	case os.IsNotExist(err) && options.create:
		if err := fs.MkdirAll(dir, OwnerReadWriteExec); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("data directory not found: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("data directory %v is not a directory", dir)
	}

	return &Transport{
		fs:     fs,
		dir:    dir,
		create: options.create,
		logger: options.logger,
	}, nil
}

func (t *Transport) path(area transport.Area) string {
	return filepath.Join(t.dir, Filename(area))
}

func (t *Transport) Fetch(ctx context.Context, area transport.Area, offset uint64, length int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	f, err := t.fs.OpenFile(t.path(area), os.O_RDONLY, OwnerReadWrite)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open image for reading: %w", err)
	}
	defer f.Close()

	b := make([]byte, length)
	n, err := f.ReadAt(b, int64(offset))
	switch {
	case n == length:
	case err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: %v read %d of %d bytes at %d", transport.ErrOutOfRange, area, n, length, offset)
	default:
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	t.logger.Debug("fetched", zap.Stringer("area", area), zap.Uint64("offset", offset), zap.Int("length", length))
	return b, nil
}

func (t *Transport) Store(ctx context.Context, area transport.Area, offset uint64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	flag := os.O_RDWR
	if t.create {
		flag |= os.O_CREATE
	}
	f, err := t.fs.OpenFile(t.path(area), flag, OwnerReadWrite)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	}
	if err != nil {
		return fmt.Errorf("failed to open image for writing: %w", err)
	}
	defer f.Close()

	if !t.create {
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat image: %w", err)
		}
		if offset+uint64(len(data)) > uint64(info.Size()) {
			return fmt.Errorf("%w: %v has %d bytes, requested [%d, +%d)", transport.ErrOutOfRange, area, info.Size(), offset, len(data))
		}
	}

	if _, err := f.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync image: %w", err)
	}

	t.logger.Debug("stored", zap.Stringer("area", area), zap.Uint64("offset", offset), zap.Int("length", len(data)))
	return f.Close()
}
