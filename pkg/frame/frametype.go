package frame

// FrameType requests a frame structure decision from the encoder for a
// single image. Values are the engine's frame type codes.
type FrameType int

const (
	// FrameTypeAuto lets the encoder choose the best frame type.
	FrameTypeAuto FrameType = 0

	// FrameTypeIDR forces an Instantaneous Decoding Refresh picture.
	// Everything after an IDR in decode order can be decoded without
	// referencing anything before it; use it for a GOP "refresh".
	FrameTypeIDR FrameType = 1

	// FrameTypeI forces an intra frame.
	FrameTypeI FrameType = 2

	// FrameTypeP forces a predicted frame.
	FrameTypeP FrameType = 3

	// FrameTypeBRef forces a B-frame usable as a reference.
	FrameTypeBRef FrameType = 4

	// FrameTypeB forces a bi-directional frame.
	FrameTypeB FrameType = 5

	// FrameTypeKeyframe forces a keyframe: IDR, or I when open GOP is
	// enabled.
	FrameTypeKeyframe FrameType = 6
)

// String returns the string representation of the frame type.
func (t FrameType) String() string {
	switch t {
	case FrameTypeAuto:
		return "Auto"
	case FrameTypeIDR:
		return "IDR"
	case FrameTypeI:
		return "I"
	case FrameTypeP:
		return "P"
	case FrameTypeBRef:
		return "BRef"
	case FrameTypeB:
		return "B"
	case FrameTypeKeyframe:
		return "Keyframe"
	default:
		return "Unknown"
	}
}
