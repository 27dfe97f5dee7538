package webgl

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/glcompute/internal/encoder"
	"github.com/born-ml/glcompute/internal/tensor"
)

// Texture is a 2D texture holding an encoded numeric array.
type Texture struct {
	Width  int
	Height int

	enc    *encoder.Encoder
	data   encoder.Array
	format gputypes.TextureFormat
	handle hal.Texture
}

// Encoder returns the codec the texture was encoded with.
func (t *Texture) Encoder() *encoder.Encoder {
	return t.enc
}

// Data returns the encoded backing array.
func (t *Texture) Data() encoder.Array {
	return t.data
}

// Format returns the device texture format.
func (t *Texture) Format() gputypes.TextureFormat {
	return t.format
}

// Binding is the explicit handle to the context's current texture.
// A binding stays valid until the slot is rebound or cleared.
type Binding struct {
	texture    *Texture
	generation uint64
}

// Texture returns the bound texture, or nil for the zero Binding.
func (b Binding) Texture() *Texture {
	return b.texture
}

type framebuffer struct {
	texture *Texture
	view    hal.TextureView
	width   int
	height  int
}

// textureFormat maps a codec to the device format of its texels.
func textureFormat(enc *encoder.Encoder) gputypes.TextureFormat {
	four := enc.TexelChannels() == 4
	if enc.DataType() == encoder.Byte {
		if four {
			return gputypes.TextureFormatRGBA8Unorm
		}
		return gputypes.TextureFormatR8Unorm
	}
	if four {
		return gputypes.TextureFormatRGBA32Float
	}
	return gputypes.TextureFormatR32Float
}

func elementBytes(enc *encoder.Encoder) int {
	if enc.DataType() == encoder.Byte {
		return 1
	}
	return 4
}

// AllocateTexture creates a width x height texture. When data is non-nil it
// is encoded and uploaded; otherwise the texture starts zeroed.
func (c *Context) AllocateTexture(width, height int, enc *encoder.Encoder, data encoder.Array) (*Texture, error) {
	if enc == nil {
		return nil, errors.New("webgl: nil encoder")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrNullTexture, "%dx%d", width, height)
	}
	if width > c.maxTextureSize || height > c.maxTextureSize {
		return nil, errors.Wrapf(ErrTextureTooLarge, "%dx%d > %d", width, height, c.maxTextureSize)
	}

	buffer, err := c.encodeTexels(width, height, enc, data)
	if err != nil {
		return nil, err
	}

	format := textureFormat(enc)
	handle, err := c.device.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glcompute texture",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, errors.Wrap(err, "webgl: create texture")
	}

	tex := &Texture{
		Width:  width,
		Height: height,
		enc:    enc,
		data:   buffer,
		format: format,
		handle: handle,
	}
	if err := c.upload(tex); err != nil {
		c.device.device.DestroyTexture(handle)
		return nil, err
	}

	c.stats.Textures++
	log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
		"format": format,
	}).Debug("texture allocated")
	return tex, nil
}

// encodeTexels produces the backing array for a width x height texture.
func (c *Context) encodeTexels(width, height int, enc *encoder.Encoder, data encoder.Array) (encoder.Array, error) {
	size := width * height
	if data == nil {
		return enc.Allocate(size), nil
	}
	buffer, err := enc.Encode(data, size)
	if err != nil {
		return nil, err
	}
	if buffer == nil || buffer.Len() == 0 {
		return nil, ErrNullTexture
	}
	return buffer, nil
}

// upload writes the texture's backing array to the device.
func (c *Context) upload(tex *Texture) error {
	rowBytes := tex.Width * tex.enc.TexelChannels() * elementBytes(tex.enc)
	raw := tex.data.Bytes()
	want := rowBytes * tex.Height
	if len(raw) < want {
		return errors.Wrapf(encoder.ErrSizeMismatch, "texture needs %d bytes, have %d", want, len(raw))
	}

	err := c.device.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex.handle, Aspect: gputypes.TextureAspectAll},
		raw[:want],
		&hal.ImageDataLayout{BytesPerRow: uint32(rowBytes), RowsPerImage: uint32(tex.Height)},
		&hal.Extent3D{Width: uint32(tex.Width), Height: uint32(tex.Height), DepthOrArrayLayers: 1},
	)
	return errors.Wrap(err, "webgl: write texture")
}

// UpdateTexture makes tex the current texture and returns its binding.
// When width and height match the texture, data is re-encoded and uploaded;
// a mismatched extent only rebinds.
func (c *Context) UpdateTexture(tex *Texture, width, height int, enc *encoder.Encoder, data encoder.Array) (Binding, error) {
	if tex == nil {
		return Binding{}, ErrNullTexture
	}
	if tex.handle == nil {
		return Binding{}, errors.Wrap(ErrReleased, "update texture")
	}

	if data != nil && width == tex.Width && height == tex.Height {
		if enc == nil {
			enc = tex.enc
		}
		buffer, err := c.encodeTexels(width, height, enc, data)
		if err != nil {
			return Binding{}, err
		}
		prev, prevEnc := tex.data, tex.enc
		tex.data, tex.enc = buffer, enc
		if err := c.upload(tex); err != nil {
			tex.data, tex.enc = prev, prevEnc
			return Binding{}, err
		}
	} else if data != nil {
		log.Debugf("update of %dx%d texture with %dx%d extent only rebinds", tex.Width, tex.Height, width, height)
	}

	return c.BindTexture(tex), nil
}

// BindTexture replaces the current texture and returns the new binding.
func (c *Context) BindTexture(tex *Texture) Binding {
	c.generation++
	c.current = Binding{texture: tex, generation: c.generation}
	return c.current
}

// IsBound reports whether b is still the current binding.
func (c *Context) IsBound(b Binding) bool {
	return b.texture != nil && b == c.current
}

// GetTextureBinding returns the current binding.
func (c *Context) GetTextureBinding() (Binding, error) {
	if c.current.texture == nil {
		return Binding{}, ErrNoTexture
	}
	return c.current, nil
}

// ClearActiveTextures empties the binding slot.
func (c *Context) ClearActiveTextures() {
	c.current = Binding{}
}

// AttachFramebuffer makes tex the render target, replacing any previous one.
func (c *Context) AttachFramebuffer(tex *Texture, width, height int) error {
	if tex == nil {
		return ErrNullTexture
	}
	if tex.handle == nil {
		return errors.Wrap(ErrReleased, "attach framebuffer")
	}
	if c.framebuffer != nil && c.framebuffer.texture == tex &&
		c.framebuffer.width == width && c.framebuffer.height == height {
		return nil
	}

	view, err := c.device.device.CreateTextureView(tex.handle, &hal.TextureViewDescriptor{
		Label:         "glcompute framebuffer",
		Format:        tex.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return errors.Wrap(err, "webgl: create framebuffer view")
	}

	c.detachFramebuffer()
	c.framebuffer = &framebuffer{texture: tex, view: view, width: width, height: height}
	return nil
}

// Framebuffer returns the current render target, or nil.
func (c *Context) Framebuffer() *Texture {
	if c.framebuffer == nil {
		return nil
	}
	return c.framebuffer.texture
}

func (c *Context) detachFramebuffer() {
	if c.framebuffer == nil {
		return
	}
	c.device.device.DestroyTextureView(c.framebuffer.view)
	c.framebuffer = nil
}

// ReadTexture returns the first dataSize elements held by tex, decoded with
// the codec selected for dataType and channels.
func (c *Context) ReadTexture(tex *Texture, width, height, dataSize int, dataType encoder.DataType, channels int) (encoder.Array, error) {
	if tex == nil {
		return nil, ErrNullTexture
	}
	if channels == 0 {
		channels = 1
	}
	if err := c.AttachFramebuffer(tex, width, height); err != nil {
		return nil, err
	}
	enc, err := c.GetEncoder(dataType, channels, encoder.UsageDefault)
	if err != nil {
		return nil, err
	}
	return enc.Decode(tex.data, dataSize)
}

// DeleteTexture releases tex. Deleting a released texture is a no-op.
func (c *Context) DeleteTexture(tex *Texture) {
	if tex == nil || tex.handle == nil {
		return
	}
	if c.framebuffer != nil && c.framebuffer.texture == tex {
		c.detachFramebuffer()
	}
	if c.current.texture == tex {
		c.ClearActiveTextures()
	}
	c.device.device.DestroyTexture(tex.handle)
	tex.handle = nil
	tex.data = nil
	c.stats.Textures--
}

// TextureShape returns the 2D extent used to store a tensor of the given
// shape: the last dimension is the width and the remaining dimensions fold
// into the height. Shapes exceeding the edge limit are refolded row-major.
func (c *Context) TextureShape(shape tensor.Shape) (width, height int, err error) {
	if err := shape.Validate(); err != nil {
		return 0, 0, err
	}
	size := shape.NumElements()
	if size == 0 {
		return 0, 0, errors.Wrapf(ErrNullTexture, "empty shape %s", shape)
	}

	width, height = 1, 1
	if len(shape) > 0 {
		width = shape[len(shape)-1]
		height = size / width
	}
	limit := c.maxTextureSize
	if width <= limit && height <= limit {
		return width, height, nil
	}

	width = size
	if width > limit {
		width = limit
	}
	height = (size + width - 1) / width
	if height > limit {
		return 0, 0, errors.Wrapf(ErrTextureTooLarge, "shape %s (%d elements, limit %dx%d)", shape, size, limit, limit)
	}
	return width, height, nil
}
