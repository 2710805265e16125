// Package testutil provides shared test utilities for libgox264 tests.
package testutil

import (
	"testing"

	"github.com/thesyncim/libgox264/internal/ffi"
	"github.com/thesyncim/libgox264/pkg/frame"
)

// RequireEngine skips the test when the engine shim library is not
// available. Protocol tests need a real engine; geometry and builder
// tests do not and should not call this.
func RequireEngine(tb testing.TB) {
	tb.Helper()
	if err := ffi.LoadLibrary(); err != nil {
		tb.Skipf("engine shim required: %v", err)
	}
}

// I420Planes allocates tightly packed I420 planes for the given
// geometry: full-resolution Y, quarter-resolution U and V.
func I420Planes(width, height int) []frame.Plane {
	uvWidth := width / 2
	uvHeight := height / 2
	return []frame.Plane{
		{Stride: width, Data: make([]byte, width*height)},
		{Stride: uvWidth, Data: make([]byte, uvWidth*uvHeight)},
		{Stride: uvWidth, Data: make([]byte, uvWidth*uvHeight)},
	}
}

// GradientI420Image builds an I420 image with a diagonal gradient on
// the luma plane and neutral chroma. The pattern compresses predictably
// and is recognizable when decoded.
func GradientI420Image(tb testing.TB, width, height int) *frame.Image {
	tb.Helper()

	planes := I420Planes(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			planes[0].Data[y*width+x] = byte((x + y) % 256)
		}
	}
	for i := range planes[1].Data {
		planes[1].Data[i] = 128
	}
	for i := range planes[2].Data {
		planes[2].Data[i] = 128
	}

	img, err := frame.NewImage(frame.PixelFormatI420, width, height, planes)
	if err != nil {
		tb.Fatalf("build I420 image: %v", err)
	}
	return img
}

// GrayI420Image builds a uniform mid-gray I420 image. Gray frames
// compress very efficiently, which keeps protocol tests fast.
func GrayI420Image(tb testing.TB, width, height int) *frame.Image {
	tb.Helper()

	planes := I420Planes(width, height)
	for p := range planes {
		for i := range planes[p].Data {
			planes[p].Data[i] = 128
		}
	}

	img, err := frame.NewImage(frame.PixelFormatI420, width, height, planes)
	if err != nil {
		tb.Fatalf("build I420 image: %v", err)
	}
	return img
}
