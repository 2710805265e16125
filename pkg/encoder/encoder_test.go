package encoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/thesyncim/libgox264/internal/ffi"
	"github.com/thesyncim/libgox264/internal/testutil"
	"github.com/thesyncim/libgox264/pkg/codec"
	"github.com/thesyncim/libgox264/pkg/frame"
)

// Protocol-error checks run before anything reaches the engine, so they
// work on hand-built sessions without a loaded library.

func TestEncodeGeometryMismatch(t *testing.T) {
	enc := &Encoder{params: ffi.X264Params{
		Csp:    frame.PixelFormatI420.CSP(),
		Width:  640,
		Height: 360,
	}}

	cases := []struct {
		name          string
		width, height int
		format        frame.PixelFormat
	}{
		{"wrong width", 320, 360, frame.PixelFormatI420},
		{"wrong height", 640, 180, frame.PixelFormatI420},
		{"wrong format", 640, 360, frame.PixelFormatNV12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img, err := frame.NewImage(c.format, c.width, c.height, planesFor(c.format, c.width, c.height))
			if err != nil {
				t.Fatalf("build image: %v", err)
			}
			if _, _, err := enc.Encode(0, img); !errors.Is(err, ErrFrameMismatch) {
				t.Errorf("err = %v, want ErrFrameMismatch", err)
			}
		})
	}
}

func TestConsumedSession(t *testing.T) {
	enc := &Encoder{params: ffi.X264Params{
		Csp:    frame.PixelFormatI420.CSP(),
		Width:  64,
		Height: 64,
	}}
	enc.consumed.Store(true)

	img := testutil.GrayI420Image(t, 64, 64)
	if _, _, err := enc.Encode(0, img); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("Encode: err = %v, want ErrSessionConsumed", err)
	}
	if _, err := enc.Headers(); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("Headers: err = %v, want ErrSessionConsumed", err)
	}
	if _, err := enc.Flush(); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("Flush: err = %v, want ErrSessionConsumed", err)
	}
	if n := enc.DelayedFrames(); n != 0 {
		t.Errorf("DelayedFrames = %d, want 0", n)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestBitstreamClone(t *testing.T) {
	b := Bitstream{data: []byte{0, 0, 0, 1, 0x67}}
	out := b.Clone()
	if !bytes.Equal(out, b.Bytes()) {
		t.Fatalf("Clone = %x, want %x", out, b.Bytes())
	}
	out[0] = 0xff
	if b.Bytes()[0] == 0xff {
		t.Error("Clone aliases the original buffer")
	}
	if (Bitstream{}).Clone() != nil {
		t.Error("empty Clone should be nil")
	}
}

func TestBuildReportsNormalizedGeometry(t *testing.T) {
	testutil.RequireEngine(t)

	enc, err := DefaultSetup().CRF(23, 51).Build(frame.PixelFormatI420, 1920, 1080)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer enc.Close()

	if enc.Width() != 1920 || enc.Height() != 1080 {
		t.Errorf("geometry = %dx%d, want 1920x1080", enc.Width(), enc.Height())
	}
	if enc.Format() != frame.PixelFormatI420 {
		t.Errorf("format = %v, want I420", enc.Format())
	}
}

func TestHeaders(t *testing.T) {
	testutil.RequireEngine(t)

	enc, err := DefaultSetup().CRF(23, 51).Build(frame.PixelFormatI420, 320, 240)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer enc.Close()

	hdr, err := enc.Headers()
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	if hdr.Len() == 0 {
		t.Fatal("headers are empty")
	}
	// Repeated calls return the same headers.
	again, err := enc.Headers()
	if err != nil {
		t.Fatalf("second Headers: %v", err)
	}
	if !bytes.Equal(hdr.Clone(), again.Clone()) {
		t.Error("second Headers call returned different bytes")
	}
}

// Every submitted frame comes back out exactly once, either from an
// Encode call or from the flush drain.
func TestFlushConservation(t *testing.T) {
	testutil.RequireEngine(t)

	enc, err := DefaultSetup().CRF(30, 0).Build(frame.PixelFormatI420, 128, 96)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const frames = 20
	emitted := 0
	for i := 0; i < frames; i++ {
		data, _, err := enc.Encode(int64(i), testutil.GradientI420Image(t, 128, 96))
		if err != nil {
			t.Fatalf("Encode frame %d: %v", i, err)
		}
		if data.Len() > 0 {
			emitted++
		}
	}

	flush, err := enc.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	defer flush.Close()
	for flush.Next() {
		if flush.Bitstream().Len() == 0 {
			t.Error("flush step emitted an empty bitstream")
		}
		emitted++
	}
	if err := flush.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if emitted != frames {
		t.Errorf("emitted %d frames, submitted %d", emitted, frames)
	}

	// Exhaustion is permanent.
	for i := 0; i < 3; i++ {
		if flush.Next() {
			t.Fatal("Next returned true after exhaustion")
		}
	}
	if err := flush.Err(); err != nil {
		t.Errorf("Err after exhaustion: %v", err)
	}
}

func TestFlushConsumesSession(t *testing.T) {
	testutil.RequireEngine(t)

	enc, err := DefaultSetup().CRF(30, 0).Build(frame.PixelFormatI420, 64, 64)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	flush, err := enc.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	defer flush.Close()

	if _, _, err := enc.Encode(0, testutil.GrayI420Image(t, 64, 64)); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("Encode after Flush: err = %v, want ErrSessionConsumed", err)
	}
	if _, err := enc.Headers(); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("Headers after Flush: err = %v, want ErrSessionConsumed", err)
	}
	if _, err := enc.Flush(); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("second Flush: err = %v, want ErrSessionConsumed", err)
	}
	// Close after Flush must not touch the handle the flush owns.
	if err := enc.Close(); err != nil {
		t.Errorf("Close after Flush: %v", err)
	}
	for flush.Next() {
	}
	if err := flush.Err(); err != nil {
		t.Errorf("flush after encoder Close: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	testutil.RequireEngine(t)

	enc, err := DefaultSetup().CRF(30, 0).Build(frame.PixelFormatI420, 64, 64)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := enc.Close(); err != nil {
			t.Fatalf("Close %d: %v", i, err)
		}
	}
}

// With zero-latency tuning the engine runs without lookahead, so every
// Encode call emits output immediately and flush has nothing to drain.
func TestZeroLatencyEmitsPerCall(t *testing.T) {
	testutil.RequireEngine(t)

	enc, err := NewSetup(codec.PresetUltrafast, codec.TuneNone, false, true).
		CRF(30, 0).
		Build(frame.PixelFormatI420, 128, 96)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer enc.Close()

	for i := 0; i < 5; i++ {
		data, pic, err := enc.Encode(int64(i), testutil.GradientI420Image(t, 128, 96))
		if err != nil {
			t.Fatalf("Encode frame %d: %v", i, err)
		}
		if data.Len() == 0 {
			t.Fatalf("frame %d: no output despite zero latency", i)
		}
		if pic.PTS != int64(i) {
			t.Errorf("frame %d: PTS = %d", i, pic.PTS)
		}
	}
	if n := enc.DelayedFrames(); n != 0 {
		t.Errorf("DelayedFrames = %d, want 0", n)
	}
}

func planesFor(format frame.PixelFormat, width, height int) []frame.Plane {
	layout, _ := frame.Layout(format)
	planes := make([]frame.Plane, layout.PlaneCount)
	for i := range planes {
		stride := format.Depth() * (width / layout.WidthDivisor) * layout.SampleWidth[i]
		rows := (height / layout.HeightDivisor) * layout.PlaneRows[i]
		planes[i] = frame.Plane{Stride: stride, Data: make([]byte, stride*rows)}
	}
	return planes
}
