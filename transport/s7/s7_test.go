package s7_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/s7bits/codec"
	"github.com/spacemeshos/s7bits/transport"
	"github.com/spacemeshos/s7bits/transport/s7"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClient keeps one image per area and records which method served a call.
type fakeClient struct {
	images map[transport.Area][]byte
	calls  []string
	err    error
}

var _ s7.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{images: map[transport.Area][]byte{
		transport.PE:    make([]byte, 8),
		transport.PA:    make([]byte, 8),
		transport.MK:    make([]byte, 8),
		transport.DB(1): make([]byte, 8),
	}}
}

func (c *fakeClient) read(name string, area transport.Area, start, size int, buffer []byte) error {
	c.calls = append(c.calls, fmt.Sprintf("%s(%d,%d)", name, start, size))
	if c.err != nil {
		return c.err
	}
	copy(buffer[:size], c.images[area][start:start+size])
	return nil
}

func (c *fakeClient) write(name string, area transport.Area, start, size int, buffer []byte) error {
	c.calls = append(c.calls, fmt.Sprintf("%s(%d,%d)", name, start, size))
	if c.err != nil {
		return c.err
	}
	copy(c.images[area][start:start+size], buffer[:size])
	return nil
}

func (c *fakeClient) AGReadEB(start, size int, buffer []byte) error {
	return c.read("AGReadEB", transport.PE, start, size, buffer)
}

func (c *fakeClient) AGWriteEB(start, size int, buffer []byte) error {
	return c.write("AGWriteEB", transport.PE, start, size, buffer)
}

func (c *fakeClient) AGReadAB(start, size int, buffer []byte) error {
	return c.read("AGReadAB", transport.PA, start, size, buffer)
}

func (c *fakeClient) AGWriteAB(start, size int, buffer []byte) error {
	return c.write("AGWriteAB", transport.PA, start, size, buffer)
}

func (c *fakeClient) AGReadMB(start, size int, buffer []byte) error {
	return c.read("AGReadMB", transport.MK, start, size, buffer)
}

func (c *fakeClient) AGWriteMB(start, size int, buffer []byte) error {
	return c.write("AGWriteMB", transport.MK, start, size, buffer)
}

func (c *fakeClient) AGReadDB(dbNumber, start, size int, buffer []byte) error {
	return c.read(fmt.Sprintf("AGReadDB%d", dbNumber), transport.DB(dbNumber), start, size, buffer)
}

func (c *fakeClient) AGWriteDB(dbNumber, start, size int, buffer []byte) error {
	return c.write(fmt.Sprintf("AGWriteDB%d", dbNumber), transport.DB(dbNumber), start, size, buffer)
}

type closer struct{ closed int }

func (c *closer) Close() error {
	c.closed++
	return nil
}

func TestAreaDispatch(t *testing.T) {
	tt := []struct {
		area  transport.Area
		read  string
		write string
	}{
		{transport.PE, "AGReadEB(2,3)", "AGWriteEB(2,3)"},
		{transport.PA, "AGReadAB(2,3)", "AGWriteAB(2,3)"},
		{transport.MK, "AGReadMB(2,3)", "AGWriteMB(2,3)"},
		{transport.DB(1), "AGReadDB1(2,3)", "AGWriteDB1(2,3)"},
	}
	for _, tc := range tt {
		t.Run(tc.area.String(), func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			client := newFakeClient()
			tr := s7.New(client, nil, zaptest.NewLogger(t))

			req.NoError(tr.Store(ctx, tc.area, 2, []byte{1, 2, 3}))
			b, err := tr.Fetch(ctx, tc.area, 2, 3)
			req.NoError(err)
			req.Equal([]byte{1, 2, 3}, b)
			req.Equal([]string{tc.write, tc.read}, client.calls)
		})
	}
}

func TestAddressLimits(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	client := newFakeClient()
	tr := s7.New(client, nil, nil)

	_, err := tr.Fetch(ctx, transport.PA, s7.MaxByteAddress, 2)
	req.ErrorIs(err, transport.ErrOutOfRange)
	req.ErrorIs(tr.Store(ctx, transport.PA, s7.MaxByteAddress+1, []byte{1}), transport.ErrOutOfRange)
	_, err = tr.Fetch(ctx, transport.Area{}, 0, 1)
	req.ErrorIs(err, transport.ErrUnknownArea)
	req.Empty(client.calls)
}

func TestClientError(t *testing.T) {
	req := require.New(t)
	boom := errors.New("CPU : Item not available")

	client := newFakeClient()
	client.err = boom
	tr := s7.New(client, nil, zaptest.NewLogger(t))

	c, err := codec.New(tr, transport.DB(1))
	req.NoError(err)

	err = c.WriteBits(context.Background(), 0, "1")
	req.ErrorIs(err, boom)
	req.Equal([]string{"AGReadDB1(0,1)"}, client.calls)
}

func TestClose(t *testing.T) {
	req := require.New(t)

	cl := &closer{}
	tr := s7.New(newFakeClient(), cl, nil)
	req.NoError(tr.Close())
	req.NoError(tr.Close())
	req.Equal(1, cl.closed)

	_, err := tr.Fetch(context.Background(), transport.PA, 0, 1)
	req.ErrorIs(err, transport.ErrClosed)
}

func TestCodecOverS7(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	client := newFakeClient()
	client.images[transport.PA][0] = 0b11110000
	tr := s7.New(client, nil, nil)

	c, err := codec.New(tr, transport.PA)
	req.NoError(err)
	req.NoError(c.WriteBits(ctx, 1, "1"))
	req.Equal(byte(0b11110010), client.images[transport.PA][0])
	req.Equal([]string{"AGReadAB(0,1)", "AGWriteAB(0,1)"}, client.calls)
}
