package ffi

import "unsafe"

// Rate control methods, matching X264_RC_* in x264.h.
const (
	RCMethodCQP int32 = 0
	RCMethodCRF int32 = 1
	RCMethodABR int32 = 2
)

// X264Params matches ShimX264Params in shim.h. The shim converts it to
// and from x264_param_t on its side of the boundary, so only the fields
// this wrapper exposes appear here. Primitive fields only - the struct
// is passed by pointer across the FFI boundary.
type X264Params struct {
	Csp    int32 // colorspace code, including modifier bits
	Width  int32
	Height int32

	FPSNum      uint32
	FPSDen      uint32
	TimebaseNum uint32
	TimebaseDen uint32

	AnnexB int32 // bool as int

	RCMethod      int32
	BitrateKbps   int32
	RFConstant    float32
	RFConstantMax float32

	BFrames           int32
	SyncLookahead     int32
	OpenGOP           int32 // bool as int
	KeyintMax         int32
	KeyintMin         int32
	ScenecutThreshold int32
}

// PictureIn matches ShimPictureIn in shim.h. Plane pointers reference
// caller-owned memory; the shim copies nothing before x264 consumes the
// picture inside the encode call.
type PictureIn struct {
	PTS       int64
	Plane     [4]uintptr
	Stride    [4]int32
	Csp       int32
	PlaneNum  int32
	FrameType int32
	_         [4]byte // padding
}

// PictureOut matches ShimPictureOut in shim.h.
type PictureOut struct {
	PTS       int64
	DTS       int64
	FrameType int32
	Keyframe  int32 // bool as int
}

// Ptr returns a pointer to the params as uintptr for FFI calls.
func (p *X264Params) Ptr() uintptr {
	return uintptr(unsafe.Pointer(p))
}

// Ptr returns a pointer to the picture as uintptr for FFI calls.
func (p *PictureIn) Ptr() uintptr {
	return uintptr(unsafe.Pointer(p))
}

// Ptr returns a pointer to the picture as uintptr for FFI calls.
func (p *PictureOut) Ptr() uintptr {
	return uintptr(unsafe.Pointer(p))
}

// ShimErrorBuffer receives a human-readable message from shim calls that
// can fail with more detail than a status code.
type ShimErrorBuffer [256]byte

// Ptr returns a pointer to the buffer as uintptr for FFI calls.
func (b *ShimErrorBuffer) Ptr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

// String returns the NUL-terminated message in the buffer.
func (b *ShimErrorBuffer) String() string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b[:])
}

// ToError converts a shim status code to an error, preferring the
// message in the buffer when one was written.
func (b *ShimErrorBuffer) ToError(code int32) error {
	err := ShimError(code)
	if err == nil {
		return nil
	}
	if msg := b.String(); msg != "" {
		return &ShimErrorWithMessage{Code: code, Message: msg}
	}
	return err
}

// ShimErrorWithMessage is a shim error carrying the shim's own message.
type ShimErrorWithMessage struct {
	Code    int32
	Message string
}

func (e *ShimErrorWithMessage) Error() string {
	return e.Message
}

// Unwrap maps the code back to its sentinel so errors.Is keeps working.
func (e *ShimErrorWithMessage) Unwrap() error {
	return ShimError(e.Code)
}
