package file_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/s7bits/codec"
	"github.com/spacemeshos/s7bits/transport"
	"github.com/spacemeshos/s7bits/transport/file"
)

const dir = "/plc"

func newFs(t *testing.T, images map[transport.Area][]byte) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(dir, file.OwnerReadWriteExec))
	for area, image := range images {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, file.Filename(area)), image, file.OwnerReadWrite))
	}
	return fs
}

func TestFilename(t *testing.T) {
	require.Equal(t, "db1.bin", file.Filename(transport.DB(1)))
	require.Equal(t, "pa.bin", file.Filename(transport.PA))
}

func TestNewMissingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := file.New(fs, dir)
	require.Error(t, err)

	_, err = file.New(fs, dir, file.WithCreate())
	require.NoError(t, err)
	ok, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFetchStore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	fs := newFs(t, map[transport.Area][]byte{transport.DB(1): []byte("Lorem ipsum")})
	tr, err := file.New(fs, dir, file.WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)

	b, err := tr.Fetch(ctx, transport.DB(1), 6, 5)
	req.NoError(err)
	req.Equal([]byte("ipsum"), b)

	req.NoError(tr.Store(ctx, transport.DB(1), 0, []byte("L0")))
	image, err := afero.ReadFile(fs, filepath.Join(dir, "db1.bin"))
	req.NoError(err)
	req.Equal([]byte("L0rem ipsum"), image)
}

func TestOutOfRange(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	fs := newFs(t, map[transport.Area][]byte{transport.PA: make([]byte, 2)})
	tr, err := file.New(fs, dir)
	req.NoError(err)

	_, err = tr.Fetch(ctx, transport.PA, 1, 2)
	req.ErrorIs(err, transport.ErrOutOfRange)
	req.ErrorIs(tr.Store(ctx, transport.PA, 2, []byte{1}), transport.ErrOutOfRange)

	_, err = tr.Fetch(ctx, transport.MK, 0, 1)
	req.ErrorIs(err, transport.ErrUnknownArea)
	req.ErrorIs(tr.Store(ctx, transport.MK, 0, []byte{1}), transport.ErrUnknownArea)
}

func TestCreate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	fs := newFs(t, nil)
	tr, err := file.New(fs, dir, file.WithCreate())
	req.NoError(err)

	req.NoError(tr.Store(ctx, transport.MK, 2, []byte{0xFF}))
	b, err := tr.Fetch(ctx, transport.MK, 0, 3)
	req.NoError(err)
	req.Equal([]byte{0, 0, 0xFF}, b)
}

func TestCodecOverFile(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	fs := newFs(t, map[transport.Area][]byte{transport.DB(1): {0b11110000, 0x00}})
	tr, err := file.New(fs, dir)
	req.NoError(err)

	c, err := codec.New(tr, transport.DB(1))
	req.NoError(err)

	req.NoError(c.WriteBits(ctx, 1, "1"))
	req.NoError(c.WriteBits(ctx, 7, "01"))

	bits, err := c.ReadBits(ctx, 0, 16)
	req.NoError(err)
	req.Equal("0100111010000000", bits.String())
}
