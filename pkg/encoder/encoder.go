package encoder

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"

	"github.com/thesyncim/libgox264/internal/ffi"
	"github.com/thesyncim/libgox264/pkg/frame"
)

// Common errors
var (
	// ErrEncoderOpenFailed means the engine rejected the finalized
	// parameters. The engine gives no further detail and no guidance on
	// retryability.
	ErrEncoderOpenFailed = errors.New("encoder open failed")

	// ErrEncodeFailed means the engine signaled an error mid-stream.
	// Callers may only abort the session, not retry.
	ErrEncodeFailed = errors.New("encode failed")

	// ErrFrameMismatch means an image's width, height or pixel format
	// does not match the encoder's. This is a caller bug: fix the
	// submission path rather than handling it at runtime.
	ErrFrameMismatch = errors.New("image does not match encoder geometry")

	// ErrSessionConsumed means the session was already flushed or
	// closed; its handle is no longer owned by the encoder.
	ErrSessionConsumed = errors.New("encoder session consumed")

	// ErrInvalidConfig means Build was handed unusable geometry.
	ErrInvalidConfig = errors.New("invalid encoder configuration")
)

// Bitstream is a view over encoded output. The bytes alias engine-owned
// memory and stay valid only until the next call on the same session
// (Encode, Headers or a flush step); copy with Clone before issuing the
// next call if the data must be retained.
type Bitstream struct {
	data []byte
}

// Bytes returns the encoded bytes without copying. See the type comment
// for the validity window.
func (b Bitstream) Bytes() []byte {
	return b.data
}

// Len returns the number of encoded bytes.
func (b Bitstream) Len() int {
	return len(b.data)
}

// Clone copies the encoded bytes into caller-owned memory.
func (b Bitstream) Clone() []byte {
	if len(b.data) == 0 {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Picture carries the metadata of one emitted frame. Because the engine
// buffers and reorders frames, it describes whatever frame the engine
// chose to emit, not necessarily the one just submitted.
type Picture struct {
	// PTS is the presentation timestamp of the emitted frame.
	PTS int64

	// DTS is the decode timestamp of the emitted frame.
	DTS int64

	// FrameType is the frame type the engine actually chose.
	FrameType frame.FrameType

	// Keyframe indicates the emitted frame starts a decodable point.
	Keyframe bool
}

// Encoder is an open encode session owning the engine handle. Sessions
// are single-threaded: no two calls on the same session may run
// concurrently. Flush consumes the session; Close releases a session
// that is abandoned without flushing.
type Encoder struct {
	handle uintptr
	params ffi.X264Params
	log    logging.LeveledLogger

	// consumed flips exactly once, when Flush or Close takes the
	// handle. Every entry point checks it, which is what makes reuse
	// after flush a detectable error instead of undefined behavior.
	consumed atomic.Bool
	mu       sync.Mutex
}

// Width returns the frame width the engine normalized to. Every image
// submitted to Encode must match it.
func (e *Encoder) Width() int {
	return int(e.params.Width)
}

// Height returns the frame height the engine normalized to.
func (e *Encoder) Height() int {
	return int(e.params.Height)
}

// Format returns the pixel format the engine normalized to.
func (e *Encoder) Format() frame.PixelFormat {
	return frame.PixelFormat(e.params.Csp)
}

// DelayedFrames returns the number of frames buffered in the engine's
// lookahead and not yet emitted.
func (e *Encoder) DelayedFrames() int {
	if e.consumed.Load() {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return 0
	}
	return ffi.X264EncoderDelayedFrames(e.handle)
}

// Encode submits an image and its presentation timestamp.
//
// A zero-length bitstream with a nil error is normal: the engine
// buffered the frame in its lookahead and will emit it on a later call
// or during flush. When output is produced it belongs to whatever frame
// the engine chose to emit, identified by the returned Picture.
//
// The image must match the session's Width, Height and Format;
// a mismatch returns ErrFrameMismatch and nothing reaches the engine.
func (e *Encoder) Encode(pts int64, img *frame.Image) (Bitstream, Picture, error) {
	if img.Width() != e.Width() || img.Height() != e.Height() || img.Format().CSP() != e.params.Csp {
		return Bitstream{}, Picture{}, fmt.Errorf("%w: image %dx%d %s, encoder %dx%d %s",
			ErrFrameMismatch,
			img.Width(), img.Height(), img.Format(),
			e.Width(), e.Height(), e.Format())
	}
	return e.EncodeUnchecked(pts, img)
}

// EncodeUnchecked is Encode without the geometry precondition check, for
// callers that have already guaranteed the image matches the session.
// The engine trusts the declared geometry and reads out of bounds on a
// mismatch.
func (e *Encoder) EncodeUnchecked(pts int64, img *frame.Image) (Bitstream, Picture, error) {
	if e.consumed.Load() {
		return Bitstream{}, Picture{}, ErrSessionConsumed
	}

	pic := pictureIn(pts, img)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return Bitstream{}, Picture{}, ErrSessionConsumed
	}

	payload, picOut, err := ffi.X264EncoderEncode(e.handle, &pic)
	runtime.KeepAlive(img)
	if err != nil {
		return Bitstream{}, Picture{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	return Bitstream{data: payload}, pictureOut(picOut), nil
}

// Headers returns the out-of-band stream headers (SPS/PPS/SEI). Deliver
// them downstream before any encode output is interpreted. Callable at
// any point while the session is open; repeated calls return the same
// headers.
//
// The returned bitstream aliases engine memory like encode output does.
func (e *Encoder) Headers() (Bitstream, error) {
	if e.consumed.Load() {
		return Bitstream{}, ErrSessionConsumed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return Bitstream{}, ErrSessionConsumed
	}

	payload, err := ffi.X264EncoderHeaders(e.handle)
	if err != nil {
		return Bitstream{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return Bitstream{data: payload}, nil
}

// Flush consumes the session and returns the sequence that drains the
// engine's delayed frames. After Flush the encoder is unusable: every
// method returns ErrSessionConsumed. The returned Flush owns the handle
// and releases it exactly once, on exhaustion or on Close.
func (e *Encoder) Flush() (*Flush, error) {
	if !e.consumed.CompareAndSwap(false, true) {
		return nil, ErrSessionConsumed
	}

	e.mu.Lock()
	handle := e.handle
	e.handle = 0
	e.mu.Unlock()

	return &Flush{handle: handle}, nil
}

// Close releases a session that is abandoned without flushing, dropping
// any frames still buffered in the engine. Safe to call more than once;
// only the first call releases the handle. After a Flush, Close is a
// no-op because the flush sequence owns the handle.
func (e *Encoder) Close() error {
	if !e.consumed.CompareAndSwap(false, true) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle != 0 {
		if n := ffi.X264EncoderDelayedFrames(e.handle); n > 0 {
			e.log.Warnf("closing with %d delayed frames dropped; flush instead to drain them", n)
		}
		ffi.X264EncoderClose(e.handle)
		e.handle = 0
	}
	return nil
}

func pictureIn(pts int64, img *frame.Image) ffi.PictureIn {
	pic := ffi.PictureIn{
		PTS:       pts,
		Csp:       img.Format().CSP(),
		FrameType: int32(img.FrameType()),
	}
	planes := img.Planes()
	pic.PlaneNum = int32(len(planes))
	for i, plane := range planes {
		pic.Stride[i] = int32(plane.Stride)
		pic.Plane[i] = ffi.ByteSlicePtr(plane.Data)
	}
	return pic
}

func pictureOut(p ffi.PictureOut) Picture {
	return Picture{
		PTS:       p.PTS,
		DTS:       p.DTS,
		FrameType: frame.FrameType(p.FrameType),
		Keyframe:  p.Keyframe != 0,
	}
}
