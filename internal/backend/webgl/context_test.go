package webgl

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/glcompute/internal/encoder"
	"github.com/born-ml/glcompute/internal/logging"
)

func init() {
	logging.SetOutput(io.Discard)
}

// newTestContext opens a headless device and a context on it.
func newTestContext(t *testing.T, version int, opts ...Option) *Context {
	t.Helper()
	device, err := OpenHeadless()
	require.NoError(t, err)
	t.Cleanup(device.Close)

	ctx, err := NewContext(device, version, opts...)
	require.NoError(t, err)
	t.Cleanup(ctx.Dispose)
	return ctx
}

func TestOpenHeadless(t *testing.T) {
	device, err := OpenHeadless()
	require.NoError(t, err)
	defer device.Close()

	assert.NotEmpty(t, device.Info().Name)
	assert.Positive(t, device.Limits().MaxTextureDimension2D)

	// Close twice is safe.
	device.Close()
}

func TestNewContextVersion(t *testing.T) {
	device, err := OpenHeadless()
	require.NoError(t, err)
	defer device.Close()

	for _, v := range []int{0, 3, -1} {
		_, err := NewContext(device, v)
		assert.ErrorIs(t, err, ErrInvalidVersion, "version %d", v)
	}

	ctx, err := NewContext(device, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Version())
	assert.Equal(t, int(device.Limits().MaxTextureDimension2D), ctx.MaxTextureSize())

	_, err = NewContext(nil, 2)
	assert.Error(t, err)
}

func TestWithMaxTextureSize(t *testing.T) {
	ctx := newTestContext(t, 2, WithMaxTextureSize(64))
	assert.Equal(t, 64, ctx.MaxTextureSize())

	// The device limit is an upper bound.
	ctx = newTestContext(t, 2, WithMaxTextureSize(1<<30))
	assert.Equal(t, 8192, ctx.MaxTextureSize())
}

func TestGetEncoderVersion2AlwaysRedFloat(t *testing.T) {
	ctx := newTestContext(t, 2)

	for _, dt := range []encoder.DataType{encoder.Float, encoder.Byte, encoder.Int} {
		enc, err := ctx.GetEncoder(dt, 1, encoder.UsageDefault)
		require.NoError(t, err)
		assert.Equal(t, encoder.RedFloat32, enc.Kind(), "data type %s", dt)
	}
}

func TestGetEncoderVersion1(t *testing.T) {
	ctx := newTestContext(t, 1)

	enc, err := ctx.GetEncoder(encoder.Float, 1, encoder.UsageDefault)
	require.NoError(t, err)
	assert.Equal(t, encoder.RGBAFloat, enc.Kind())

	enc, err = ctx.GetEncoder(encoder.Byte, 4, encoder.UsageUploadOnly)
	require.NoError(t, err)
	assert.Equal(t, encoder.Uint8, enc.Kind())
	assert.Equal(t, 4, enc.ChannelSize())

	_, err = ctx.GetEncoder(encoder.Int, 1, encoder.UsageDefault)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestGetEncoderInvalidChannels(t *testing.T) {
	for _, version := range []int{1, 2} {
		ctx := newTestContext(t, version)
		_, err := ctx.GetEncoder(encoder.Float, 3, encoder.UsageDefault)
		assert.ErrorIs(t, err, encoder.ErrInvalidChannels)
	}
}
