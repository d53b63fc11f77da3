// Package memory provides a Transport backed by in-memory area images.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/spacemeshos/s7bits/transport"
)

// Call records a single Fetch or Store.
type Call struct {
	Op     string
	Area   transport.Area
	Offset uint64
	Length int
}

type option struct {
	grow bool
}

type Option func(*option)

// WithGrow lets stores past the end of an image (or to a missing area)
// extend it with zero bytes instead of failing.
func WithGrow() Option {
	return func(opts *option) {
		opts.grow = true
	}
}

// Transport keeps one byte image per area.
type Transport struct {
	mtx    sync.Mutex
	images map[transport.Area][]byte
	calls  []Call
	grow   bool

	fetchErr error
	storeErr error
}

func New(opts ...Option) *Transport {
	options := option{}
	for _, opt := range opts {
		opt(&options)
	}

	return &Transport{
		images: make(map[transport.Area][]byte),
		grow:   options.grow,
	}
}

// Set replaces the image of area with a copy of image.
func (t *Transport) Set(area transport.Area, image []byte) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.images[area] = append([]byte(nil), image...)
}

// Image returns a copy of the current image of area.
func (t *Transport) Image(area transport.Area) []byte {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return append([]byte(nil), t.images[area]...)
}

// FailFetch makes every following Fetch fail with err. A nil err clears it.
func (t *Transport) FailFetch(err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.fetchErr = err
}

// FailStore makes every following Store fail with err. A nil err clears it.
func (t *Transport) FailStore(err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.storeErr = err
}

// Calls returns the Fetch and Store calls seen so far, including failed ones.
func (t *Transport) Calls() []Call {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return append([]Call(nil), t.calls...)
}

// Reset forgets recorded calls.
func (t *Transport) Reset() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.calls = nil
}

func (t *Transport) Fetch(ctx context.Context, area transport.Area, offset uint64, length int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.calls = append(t.calls, Call{Op: "fetch", Area: area, Offset: offset, Length: length})
	if t.fetchErr != nil {
		return nil, t.fetchErr
	}

	image, ok := t.images[area]
	if !ok {
		return nil, fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	}
	if length < 0 || offset > uint64(len(image)) || uint64(length) > uint64(len(image))-offset {
		return nil, fmt.Errorf("%w: %v has %d bytes, requested [%d, +%d)", transport.ErrOutOfRange, area, len(image), offset, length)
	}

	return append([]byte(nil), image[offset:offset+uint64(length)]...), nil
}

func (t *Transport) Store(ctx context.Context, area transport.Area, offset uint64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.calls = append(t.calls, Call{Op: "store", Area: area, Offset: offset, Length: len(data)})
	if t.storeErr != nil {
		return t.storeErr
	}

	image, ok := t.images[area]
	if !ok && !t.grow {
		return fmt.Errorf("%w: %v", transport.ErrUnknownArea, area)
	}

	end := offset + uint64(len(data))
	if end > uint64(len(image)) {
		if !t.grow {
			return fmt.Errorf("%w: %v has %d bytes, requested [%d, +%d)", transport.ErrOutOfRange, area, len(image), offset, len(data))
		}
		image = append(image, make([]byte, end-uint64(len(image)))...)
	}

	copy(image[offset:end], data)
	t.images[area] = image
	return nil
}
