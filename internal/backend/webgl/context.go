// Package webgl owns the GPU resources used to run compiled kernels:
// textures holding tensor data, shader modules, programs and the single
// framebuffer target. It also selects the texture codec for a device
// capability version.
//
// Resources are created on a hal.Device, so the same code runs on a real
// adapter or on the no-op backend in tests.
package webgl

import (
	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/encoder"
	"github.com/born-ml/glcompute/internal/logging"
)

var log = logging.For("webgl")

// Stats reports live resource counts.
type Stats struct {
	Textures int
	Shaders  int
	Programs int
}

// Option configures a Context.
type Option func(*Context)

// WithMaxTextureSize caps the texture edge length below the device limit.
func WithMaxTextureSize(n int) Option {
	return func(c *Context) {
		if n > 0 && n < c.maxTextureSize {
			c.maxTextureSize = n
		}
	}
}

// Context is the GPU resource context.
//
// It is not safe for concurrent use: the current binding slot is plain
// mutable state and callers must serialize access.
type Context struct {
	device  *Device
	version int

	maxTextureSize int

	current    Binding
	generation uint64

	framebuffer *framebuffer

	stats Stats
}

// NewContext creates a context for the given capability version (1 or 2).
func NewContext(device *Device, version int, opts ...Option) (*Context, error) {
	if version != 1 && version != 2 {
		return nil, errors.Wrapf(ErrInvalidVersion, "version %d", version)
	}
	if device == nil {
		return nil, errors.New("webgl: nil device")
	}

	c := &Context{
		device:         device,
		version:        version,
		maxTextureSize: int(device.limits.MaxTextureDimension2D),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Version returns the capability version.
func (c *Context) Version() int {
	return c.version
}

// MaxTextureSize returns the largest texture edge length.
func (c *Context) MaxTextureSize() int {
	return c.maxTextureSize
}

// Stats returns the number of live textures, shaders and programs.
func (c *Context) Stats() Stats {
	return c.stats
}

// GetEncoder selects the texture codec.
//
// Version 2 devices sample one-component float textures directly, so they
// always get the single-channel float codec. Version 1 dispatches on the
// element type.
func (c *Context) GetEncoder(dataType encoder.DataType, channels int, usage encoder.Usage) (*encoder.Encoder, error) {
	if c.version == 2 {
		return encoder.New(encoder.RedFloat32, channels)
	}

	switch dataType {
	case encoder.Float:
		return encoder.New(encoder.RGBAFloat, channels)
	case encoder.Byte:
		return encoder.New(encoder.Uint8, channels)
	case encoder.Int:
		return nil, errors.Wrapf(ErrNotImplemented, "%s textures on version 1 (usage %d)", dataType, usage)
	default:
		return nil, errors.Errorf("webgl: invalid data type %s", dataType)
	}
}

// Dispose releases the framebuffer target and clears the binding slot.
// Textures, shaders and programs remain owned by the caller.
func (c *Context) Dispose() {
	c.detachFramebuffer()
	c.ClearActiveTextures()
	if c.stats != (Stats{}) {
		log.WithField("live", c.stats).Warn("context disposed with live resources")
	}
}
