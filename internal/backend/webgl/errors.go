package webgl

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// Errors returned by the resource context.
var (
	// ErrInvalidVersion is returned for a capability version other than 1 or 2.
	ErrInvalidVersion = errors.New("webgl: invalid context version")
	// ErrNotImplemented is returned for element types the context cannot encode.
	ErrNotImplemented = errors.New("webgl: not implemented")
	// ErrNoTexture is returned when no texture is bound.
	ErrNoTexture = errors.New("webgl: no texture")
	// ErrNullTexture is returned when encoding yields no usable buffer.
	ErrNullTexture = errors.New("webgl: null texture")
	// ErrTextureTooLarge is returned when a shape does not fit the device texture limits.
	ErrTextureTooLarge = errors.New("webgl: texture exceeds device limits")
	// ErrNoAdapter is returned when a backend exposes no adapters.
	ErrNoAdapter = errors.New("webgl: no adapter available")
	// ErrReleased is returned when a resource is used after it was deleted.
	ErrReleased = errors.New("webgl: resource already released")
)

// ShaderCompileError carries the compiler log of a failed shader.
type ShaderCompileError struct {
	Stage gputypes.ShaderStage
	Log   string
}

// Error implements the error interface.
func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("webgl: %s shader failed to compile: %s", strings.ToLower(e.Stage.String()), e.Log)
}
