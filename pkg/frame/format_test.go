package frame

import "testing"

func TestLayoutCatalog(t *testing.T) {
	tests := []struct {
		format     PixelFormat
		planeCount int
		widthDiv   int
		heightDiv  int
	}{
		{PixelFormatI420, 3, 2, 2},
		{PixelFormatYV12, 3, 2, 2},
		{PixelFormatNV12, 2, 2, 2},
		{PixelFormatNV21, 2, 2, 2},
		{PixelFormatI422, 3, 2, 1},
		{PixelFormatYV16, 3, 2, 1},
		{PixelFormatNV16, 2, 2, 1},
		{PixelFormatYUYV, 1, 1, 1},
		{PixelFormatUYVY, 1, 1, 1},
		{PixelFormatV210, 1, 1, 1},
		{PixelFormatI444, 3, 1, 1},
		{PixelFormatYV24, 3, 1, 1},
		{PixelFormatBGR, 1, 1, 1},
		{PixelFormatBGRA, 1, 1, 1},
		{PixelFormatRGB, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			layout, ok := Layout(tt.format)
			if !ok {
				t.Fatalf("Layout(%v) not found", tt.format)
			}
			if layout.PlaneCount != tt.planeCount {
				t.Errorf("PlaneCount = %v, want %v", layout.PlaneCount, tt.planeCount)
			}
			if layout.WidthDivisor != tt.widthDiv {
				t.Errorf("WidthDivisor = %v, want %v", layout.WidthDivisor, tt.widthDiv)
			}
			if layout.HeightDivisor != tt.heightDiv {
				t.Errorf("HeightDivisor = %v, want %v", layout.HeightDivisor, tt.heightDiv)
			}
		})
	}

	if len(Formats()) != len(tests) {
		t.Errorf("Formats() returned %d formats, want %d", len(Formats()), len(tests))
	}
}

func TestLayoutUnknownFormat(t *testing.T) {
	if _, ok := Layout(PixelFormat(0xff)); ok {
		t.Error("Layout should not resolve an unknown format")
	}
}

func TestHighDepthModifier(t *testing.T) {
	f := PixelFormatI420.WithHighDepth()

	if !f.HighDepth() {
		t.Error("HighDepth should be set")
	}
	if f.Depth() != 2 {
		t.Errorf("Depth = %v, want 2", f.Depth())
	}
	if f.Base() != PixelFormatI420 {
		t.Errorf("Base = %v, want I420", f.Base())
	}
	if _, ok := Layout(f); !ok {
		t.Error("Layout should resolve through the modifier")
	}
	if f.String() != "I42010" {
		t.Errorf("String = %q, want I42010", f.String())
	}

	if PixelFormatI420.Depth() != 1 {
		t.Errorf("Depth without modifier = %v, want 1", PixelFormatI420.Depth())
	}
}

func TestPixelFormatString(t *testing.T) {
	if got := PixelFormatNV12.String(); got != "NV12" {
		t.Errorf("String = %q, want NV12", got)
	}
	if got := PixelFormat(0).String(); got != "Unknown" {
		t.Errorf("String = %q, want Unknown", got)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		ft   FrameType
		want string
	}{
		{FrameTypeAuto, "Auto"},
		{FrameTypeIDR, "IDR"},
		{FrameTypeI, "I"},
		{FrameTypeP, "P"},
		{FrameTypeBRef, "BRef"},
		{FrameTypeB, "B"},
		{FrameTypeKeyframe, "Keyframe"},
		{FrameType(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", int(tt.ft), got, tt.want)
		}
	}
}
