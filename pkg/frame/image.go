package frame

import (
	"errors"
	"fmt"
)

// Validation errors. These indicate caller bugs: an image that fails
// validation must never reach the encoder, which trusts the declared
// geometry and would read out of bounds.
var (
	ErrUnknownFormat = errors.New("unknown pixel format")
	ErrPlaneCount    = errors.New("wrong number of planes")
	ErrBadGeometry   = errors.New("width or height not divisible for format")
	ErrShortStride   = errors.New("plane stride too small")
	ErrShortPlane    = errors.New("plane has too few rows")
)

// Plane is one component's pixel buffer: caller-owned bytes plus the
// stride (bytes per row). The encoder reads it in place; nothing is
// copied before the engine consumes it.
type Plane struct {
	// Stride is the number of bytes for each row.
	Stride int

	// Data is the plane's pixel data.
	Data []byte
}

// Image is a validated view over caller-owned pixel planes. Build one
// per frame and submit it to exactly one encode call. The image borrows
// the plane buffers; the caller must keep them unchanged until the
// encode call that consumes the image returns.
type Image struct {
	width     int
	height    int
	format    PixelFormat
	frameType FrameType
	planes    []Plane
}

// NewImage builds a validated image over the given planes.
//
// Validation checks, per the format's plane layout: the plane count,
// width/height divisibility, each plane's minimum stride, and that each
// plane holds enough rows at its declared stride. Any failure returns an
// error and the image must not be used.
func NewImage(format PixelFormat, width, height int, planes []Plane) (*Image, error) {
	layout, ok := Layout(format)
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownFormat, int(format))
	}

	if len(planes) != layout.PlaneCount {
		return nil, fmt.Errorf("%w: got %d, %s needs %d", ErrPlaneCount, len(planes), format, layout.PlaneCount)
	}
	if width%layout.WidthDivisor != 0 || height%layout.HeightDivisor != 0 {
		return nil, fmt.Errorf("%w: %dx%d, %s needs multiples of %dx%d",
			ErrBadGeometry, width, height, format, layout.WidthDivisor, layout.HeightDivisor)
	}

	depth := format.Depth()
	wq := width / layout.WidthDivisor
	hq := height / layout.HeightDivisor

	for i, plane := range planes {
		minStride := depth * wq * layout.SampleWidth[i]
		if plane.Stride < minStride {
			return nil, fmt.Errorf("%w: plane %d stride %d, need at least %d",
				ErrShortStride, i, plane.Stride, minStride)
		}
		needRows := hq * layout.PlaneRows[i]
		if plane.Stride <= 0 || len(plane.Data)/plane.Stride < needRows {
			return nil, fmt.Errorf("%w: plane %d has %d bytes at stride %d, need %d rows",
				ErrShortPlane, i, len(plane.Data), plane.Stride, needRows)
		}
	}

	return NewImageUnchecked(format, width, height, FrameTypeAuto, planes), nil
}

// NewImageUnchecked builds an image without validating plane geometry.
// The caller must guarantee the planes satisfy the format's layout; the
// engine reads whatever geometry the image declares.
func NewImageUnchecked(format PixelFormat, width, height int, frameType FrameType, planes []Plane) *Image {
	img := &Image{
		width:     width,
		height:    height,
		format:    format,
		frameType: frameType,
		planes:    make([]Plane, len(planes)),
	}
	copy(img.planes, planes)
	return img
}

// NewBGR builds a packed BGR image, deriving the stride from the buffer
// length and height. Validation still applies.
func NewBGR(width, height int, data []byte) (*Image, error) {
	return newPacked(PixelFormatBGR, width, height, data)
}

// NewRGB builds a packed RGB image, deriving the stride from the buffer
// length and height. Validation still applies.
func NewRGB(width, height int, data []byte) (*Image, error) {
	return newPacked(PixelFormatRGB, width, height, data)
}

// NewBGRA builds a packed BGRA image, deriving the stride from the
// buffer length and height. Validation still applies.
func NewBGRA(width, height int, data []byte) (*Image, error) {
	return newPacked(PixelFormatBGRA, width, height, data)
}

func newPacked(format PixelFormat, width, height int, data []byte) (*Image, error) {
	if height <= 0 {
		return nil, fmt.Errorf("%w: height %d", ErrBadGeometry, height)
	}
	plane := Plane{
		Stride: len(data) / height,
		Data:   data,
	}
	return NewImage(format, width, height, []Plane{plane})
}

// Width returns the image width in pixels.
func (img *Image) Width() int {
	return img.width
}

// Height returns the image height in pixels.
func (img *Image) Height() int {
	return img.height
}

// Format returns the image's pixel format.
func (img *Image) Format() PixelFormat {
	return img.format
}

// FrameType returns the frame type requested for this image.
func (img *Image) FrameType() FrameType {
	return img.frameType
}

// SetFrameType overrides the encoder's frame structure decision for this
// image only. Set FrameTypeIDR for a GOP refresh.
func (img *Image) SetFrameType(t FrameType) {
	img.frameType = t
}

// Planes returns the image's planes in format order.
func (img *Image) Planes() []Plane {
	return img.planes
}
