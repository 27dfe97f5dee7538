// Package encoder packs flat numeric arrays into GPU texture channel layouts
// and unpacks them again.
//
// Three strategies exist, selected by device capability and value type:
//
//   - RedFloat32: one float per texel (single-component float formats)
//   - RGBAFloat: one float in the first channel of each RGBA texel
//   - Uint8: byte data, zero-copy
//
// Every strategy is built by New and validated before any data flows.
package encoder

import (
	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/logging"
)

var log = logging.For("encoder")

// Errors returned by encoders.
var (
	// ErrInvalidChannels is returned for a channel size other than 1 or 4.
	ErrInvalidChannels = errors.New("encoder: invalid number of channels")
	// ErrInvalidArrayType is returned when a buffer has the wrong element type.
	ErrInvalidArrayType = errors.New("encoder: invalid array type")
	// ErrSizeMismatch is returned when a buffer is too short for the request.
	ErrSizeMismatch = errors.New("encoder: buffer size mismatch")
)

// Kind identifies a packing strategy.
type Kind int

// Packing strategies.
const (
	RedFloat32 Kind = iota
	RGBAFloat
	Uint8
)

// String returns the strategy name.
func (k Kind) String() string {
	switch k {
	case RedFloat32:
		return "RedFloat32"
	case RGBAFloat:
		return "RGBAFloat"
	case Uint8:
		return "Uint8"
	default:
		return "unknown"
	}
}

// Usage hints how a texture will be accessed.
type Usage int

// Texture usages.
const (
	UsageDefault Usage = iota
	UsageUploadOnly
	UsageDownload4BytesAsFloat32
)

// Encoder converts between flat arrays and texture payloads for one strategy.
type Encoder struct {
	kind        Kind
	channelSize int
}

// New creates an encoder for the given strategy and channel count.
func New(kind Kind, channels int) (*Encoder, error) {
	if channels != 1 && channels != 4 {
		return nil, errors.Wrapf(ErrInvalidChannels, "%s: %d", kind, channels)
	}
	switch kind {
	case RedFloat32, RGBAFloat, Uint8:
	default:
		return nil, errors.Errorf("encoder: unknown kind %d", kind)
	}
	return &Encoder{kind: kind, channelSize: channels}, nil
}

// Kind returns the packing strategy.
func (e *Encoder) Kind() Kind {
	return e.kind
}

// ChannelSize returns the number of channels per texel (1 or 4).
func (e *Encoder) ChannelSize() int {
	return e.channelSize
}

// DataType returns the element family the encoder produces.
func (e *Encoder) DataType() DataType {
	if e.kind == Uint8 {
		return Byte
	}
	return Float
}

// TexelChannels returns the number of channels per texel in the backing array.
// The exploded RGBA layout always uses four.
func (e *Encoder) TexelChannels() int {
	if e.kind == RGBAFloat {
		return 4
	}
	return e.channelSize
}

// Allocate returns a zeroed buffer for a texture of size texels.
func (e *Encoder) Allocate(size int) Array {
	switch e.kind {
	case RGBAFloat:
		return make(Float32Array, size*4)
	case Uint8:
		return make(Uint8Array, size*e.channelSize)
	default:
		return make(Float32Array, size*e.channelSize)
	}
}

// Encode converts src into the texture payload for a texture of textureSize texels.
func (e *Encoder) Encode(src Array, textureSize int) (Array, error) {
	if src == nil {
		return nil, errors.Wrapf(ErrInvalidArrayType, "%s encode of nil source", e.kind)
	}
	switch e.kind {
	case RGBAFloat:
		return e.encodeRGBA(src, textureSize)
	case Uint8:
		s, ok := src.(Uint8Array)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArrayType, "uint8 encode of %s data", src.DataType())
		}
		if len(s) > textureSize*e.channelSize {
			return nil, errors.Wrapf(ErrSizeMismatch, "%d bytes do not fit %d texels", len(s), textureSize)
		}
		return s, nil
	default:
		return e.encodeRed(src, textureSize)
	}
}

func (e *Encoder) encodeRed(src Array, textureSize int) (Array, error) {
	source, ok := src.(Float32Array)
	if !ok {
		log.Warnf("data was not of type float32 (%s); creating new float32 array", src.DataType())
		source = toFloat32(src)
		if source == nil {
			return nil, errors.Wrapf(ErrInvalidArrayType, "red float encode of %T", src)
		}
	}
	if textureSize*e.channelSize > len(source) {
		log.Debugf("source data too small (%d < %d); allocating larger array", len(source), textureSize*e.channelSize)
		result := e.Allocate(textureSize).(Float32Array)
		copy(result, source)
		return result, nil
	}
	if len(source) > textureSize*e.channelSize {
		return nil, errors.Wrapf(ErrSizeMismatch, "%d values do not fit %d texels", len(source), textureSize)
	}
	return source, nil
}

func (e *Encoder) encodeRGBA(src Array, textureSize int) (Array, error) {
	source, ok := src.(Float32Array)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArrayType, "rgba float encode of %s data", src.DataType())
	}
	if e.channelSize == 4 {
		return source, nil
	}
	if len(source) > textureSize {
		return nil, errors.Wrapf(ErrSizeMismatch, "%d values do not fit %d texels", len(source), textureSize)
	}
	log.Debug("exploding into a larger array")
	dest := e.Allocate(textureSize).(Float32Array)
	for i, v := range source {
		dest[i*4] = v
	}
	return dest, nil
}

// Decode extracts dataSize elements from a texture payload.
func (e *Encoder) Decode(buffer Array, dataSize int) (Array, error) {
	if buffer == nil {
		return nil, errors.Wrapf(ErrInvalidArrayType, "%s decode of nil buffer", e.kind)
	}
	switch e.kind {
	case Uint8:
		b, ok := buffer.(Uint8Array)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArrayType, "uint8 decode of %T", buffer)
		}
		if dataSize > len(b) {
			return nil, errors.Wrapf(ErrSizeMismatch, "want %d elements, have %d", dataSize, len(b))
		}
		return b[:dataSize], nil
	case RGBAFloat:
		f, ok := buffer.(Float32Array)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArrayType, "rgba float decode of %T", buffer)
		}
		if e.channelSize == 1 {
			return filterFirstChannel(f, dataSize)
		}
		return sliceFloat(f, dataSize)
	default:
		f, ok := buffer.(Float32Array)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArrayType, "red float decode of %T", buffer)
		}
		return sliceFloat(f, dataSize)
	}
}

func sliceFloat(f Float32Array, dataSize int) (Array, error) {
	if dataSize > len(f) {
		return nil, errors.Wrapf(ErrSizeMismatch, "want %d elements, have %d", dataSize, len(f))
	}
	return f[:dataSize], nil
}

// filterFirstChannel keeps every element whose index is a multiple of 4.
func filterFirstChannel(f Float32Array, dataSize int) (Array, error) {
	available := (len(f) + 3) / 4
	if dataSize > available {
		return nil, errors.Wrapf(ErrSizeMismatch, "want %d elements, have %d texels", dataSize, available)
	}
	out := make(Float32Array, dataSize)
	for i := range out {
		out[i] = f[i*4]
	}
	return out, nil
}
