// Package frame provides pixel formats and validated image views for
// feeding the encoder.
package frame

// PixelFormat identifies the colorspace of an image. Values are the
// engine's colorspace codes, so modifier bits compose with the base
// format the same way they do on the engine side.
type PixelFormat int

const (
	// PixelFormatI420 is YUV 4:2:0 planar (Y, U, V).
	PixelFormatI420 PixelFormat = 0x0001

	// PixelFormatYV12 is YVU 4:2:0 planar (Y, V, U).
	PixelFormatYV12 PixelFormat = 0x0002

	// PixelFormatNV12 is YUV 4:2:0 semi-planar: Y plane plus an
	// interleaved UV plane. Common on hardware pipelines.
	PixelFormatNV12 PixelFormat = 0x0003

	// PixelFormatNV21 is YUV 4:2:0 semi-planar with VU ordering.
	// Common on Android cameras.
	PixelFormatNV21 PixelFormat = 0x0004

	// PixelFormatI422 is YUV 4:2:2 planar.
	PixelFormatI422 PixelFormat = 0x0005

	// PixelFormatYV16 is YVU 4:2:2 planar.
	PixelFormatYV16 PixelFormat = 0x0006

	// PixelFormatNV16 is YUV 4:2:2 semi-planar.
	PixelFormatNV16 PixelFormat = 0x0007

	// PixelFormatYUYV is YUYV 4:2:2 packed.
	PixelFormatYUYV PixelFormat = 0x0008

	// PixelFormatUYVY is UYVY 4:2:2 packed.
	PixelFormatUYVY PixelFormat = 0x0009

	// PixelFormatV210 is 10-bit YUV 4:2:2 packed in 32-bit words.
	PixelFormatV210 PixelFormat = 0x000a

	// PixelFormatI444 is YUV 4:4:4 planar.
	PixelFormatI444 PixelFormat = 0x000b

	// PixelFormatYV24 is YVU 4:4:4 planar.
	PixelFormatYV24 PixelFormat = 0x000c

	// PixelFormatBGR is packed BGR, 24 bits per pixel.
	PixelFormatBGR PixelFormat = 0x000d

	// PixelFormatBGRA is packed BGRA, 32 bits per pixel.
	PixelFormatBGRA PixelFormat = 0x000e

	// PixelFormatRGB is packed RGB, 24 bits per pixel.
	PixelFormatRGB PixelFormat = 0x000f
)

const (
	cspMask = 0x00ff

	// highDepth doubles the per-sample byte width (for 10-bit content).
	highDepth = 0x2000
)

// WithHighDepth returns the format with the high-depth modifier set.
// Samples are stored as two bytes each.
func (f PixelFormat) WithHighDepth() PixelFormat {
	return f | highDepth
}

// HighDepth reports whether the high-depth modifier is set.
func (f PixelFormat) HighDepth() bool {
	return f&highDepth != 0
}

// Base returns the format with all modifier bits cleared.
func (f PixelFormat) Base() PixelFormat {
	return f & cspMask
}

// CSP returns the engine colorspace code for this format, including
// modifier bits.
func (f PixelFormat) CSP() int32 {
	return int32(f)
}

// Depth returns the per-sample byte width: 2 under the high-depth
// modifier, 1 otherwise.
func (f PixelFormat) Depth() int {
	if f.HighDepth() {
		return 2
	}
	return 1
}

// String returns the string representation of the pixel format.
func (f PixelFormat) String() string {
	var name string
	switch f.Base() {
	case PixelFormatI420:
		name = "I420"
	case PixelFormatYV12:
		name = "YV12"
	case PixelFormatNV12:
		name = "NV12"
	case PixelFormatNV21:
		name = "NV21"
	case PixelFormatI422:
		name = "I422"
	case PixelFormatYV16:
		name = "YV16"
	case PixelFormatNV16:
		name = "NV16"
	case PixelFormatYUYV:
		name = "YUYV"
	case PixelFormatUYVY:
		name = "UYVY"
	case PixelFormatV210:
		name = "V210"
	case PixelFormatI444:
		name = "I444"
	case PixelFormatYV24:
		name = "YV24"
	case PixelFormatBGR:
		name = "BGR"
	case PixelFormatBGRA:
		name = "BGRA"
	case PixelFormatRGB:
		name = "RGB"
	default:
		return "Unknown"
	}
	if f.HighDepth() {
		return name + "10"
	}
	return name
}

// MaxPlanes is the largest plane count any supported format uses.
const MaxPlanes = 3

// PlaneLayout describes the plane geometry of a pixel format.
//
// For plane i of an image with the given width and height:
//
//	minimum stride   = depth * (width / WidthDivisor) * SampleWidth[i]
//	required rows    = (height / HeightDivisor) * PlaneRows[i]
//
// where depth is the per-sample byte width. Width and height must be
// exact multiples of their divisors.
type PlaneLayout struct {
	PlaneCount    int
	WidthDivisor  int
	HeightDivisor int
	SampleWidth   [MaxPlanes]int
	PlaneRows     [MaxPlanes]int
}

// layouts is the static catalog, keyed by base format.
var layouts = map[PixelFormat]PlaneLayout{
	PixelFormatI420: {3, 2, 2, [MaxPlanes]int{2, 1, 1}, [MaxPlanes]int{2, 1, 1}},
	PixelFormatYV12: {3, 2, 2, [MaxPlanes]int{2, 1, 1}, [MaxPlanes]int{2, 1, 1}},
	PixelFormatNV12: {2, 2, 2, [MaxPlanes]int{2, 2}, [MaxPlanes]int{2, 1}},
	PixelFormatNV21: {2, 2, 2, [MaxPlanes]int{2, 2}, [MaxPlanes]int{2, 1}},
	PixelFormatI422: {3, 2, 1, [MaxPlanes]int{2, 1, 1}, [MaxPlanes]int{1, 1, 1}},
	PixelFormatYV16: {3, 2, 1, [MaxPlanes]int{2, 1, 1}, [MaxPlanes]int{1, 1, 1}},
	PixelFormatNV16: {2, 2, 1, [MaxPlanes]int{2, 2}, [MaxPlanes]int{1, 1}},
	PixelFormatYUYV: {1, 1, 1, [MaxPlanes]int{2}, [MaxPlanes]int{1}},
	PixelFormatUYVY: {1, 1, 1, [MaxPlanes]int{2}, [MaxPlanes]int{1}},
	PixelFormatV210: {1, 1, 1, [MaxPlanes]int{4}, [MaxPlanes]int{1}},
	PixelFormatI444: {3, 1, 1, [MaxPlanes]int{1, 1, 1}, [MaxPlanes]int{1, 1, 1}},
	PixelFormatYV24: {3, 1, 1, [MaxPlanes]int{1, 1, 1}, [MaxPlanes]int{1, 1, 1}},
	PixelFormatBGR:  {1, 1, 1, [MaxPlanes]int{3}, [MaxPlanes]int{1}},
	PixelFormatBGRA: {1, 1, 1, [MaxPlanes]int{4}, [MaxPlanes]int{1}},
	PixelFormatRGB:  {1, 1, 1, [MaxPlanes]int{3}, [MaxPlanes]int{1}},
}

// Layout returns the plane layout for a format. ok is false for
// unrecognized formats.
func Layout(f PixelFormat) (layout PlaneLayout, ok bool) {
	layout, ok = layouts[f.Base()]
	return layout, ok
}

// Formats returns every supported base pixel format, for iteration in
// tests and tooling.
func Formats() []PixelFormat {
	fs := make([]PixelFormat, 0, len(layouts))
	for f := range layouts {
		fs = append(fs, f)
	}
	return fs
}
