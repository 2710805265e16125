package ffi

// X264ParamDefault fills params with the engine defaults.
func X264ParamDefault(params *X264Params) error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	shimParamDefault(params.Ptr())
	return nil
}

// X264ParamDefaultPreset fills params with the defaults for a named
// preset/tune combination. An empty tune selects the preset defaults.
func X264ParamDefaultPreset(params *X264Params, preset, tune string) error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	presetStr := CString(preset)
	var tunePtr uintptr
	var tuneStr []byte
	if tune != "" {
		tuneStr = CString(tune)
		tunePtr = ByteSlicePtr(tuneStr)
	}
	result := shimParamDefaultPreset(params.Ptr(), ByteSlicePtr(presetStr), tunePtr)
	return ShimError(result)
}

// X264ParamApplyProfile restricts params to a named H.264 profile.
func X264ParamApplyProfile(params *X264Params, profile string) error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	profileStr := CString(profile)
	result := shimParamApplyProfile(params.Ptr(), ByteSlicePtr(profileStr))
	return ShimError(result)
}

// X264ParamApplyFastFirstPass tunes params for a faster first pass.
func X264ParamApplyFastFirstPass(params *X264Params) error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	shimParamApplyFastFirstPass(params.Ptr())
	return nil
}

// X264EncoderOpen opens an encoder with the finalized params.
// Returns the opaque engine handle.
func X264EncoderOpen(params *X264Params) (uintptr, error) {
	if !libLoaded.Load() {
		return 0, ErrLibraryNotLoaded
	}
	var errBuf ShimErrorBuffer
	encoder := shimEncoderOpen(params.Ptr(), errBuf.Ptr())
	if encoder == 0 {
		msg := errBuf.String()
		if msg != "" {
			return 0, &ShimErrorWithMessage{Code: ShimErrOpenFailed, Message: msg}
		}
		return 0, ErrOpenFailed
	}
	return encoder, nil
}

// X264EncoderParams reads back the parameters the engine actually uses.
// The engine may have adjusted values set before open.
func X264EncoderParams(encoder uintptr) (X264Params, error) {
	if !libLoaded.Load() {
		return X264Params{}, ErrLibraryNotLoaded
	}
	var params X264Params
	shimEncoderParams(encoder, params.Ptr())
	return params, nil
}

// X264EncoderEncode submits a picture (or drains one buffered frame when
// pic is nil) and returns the emitted payload plus output metadata.
//
// The returned byte slice aliases engine-owned memory and is valid only
// until the next call on the same handle. A nil, zero-length payload with
// a nil error means the engine buffered the frame (lookahead) - that is
// normal, not a failure.
func X264EncoderEncode(encoder uintptr, pic *PictureIn) ([]byte, PictureOut, error) {
	if !libLoaded.Load() {
		return nil, PictureOut{}, ErrLibraryNotLoaded
	}

	var picPtr uintptr
	if pic != nil {
		picPtr = pic.Ptr()
	}

	var payload uintptr
	var size int32
	var picOut PictureOut

	result := shimEncoderEncode(encoder, picPtr, UintptrPtr(&payload), Int32Ptr(&size), picOut.Ptr())
	if result < 0 {
		return nil, PictureOut{}, ShimError(result)
	}

	return BytesView(payload, int(size)), picOut, nil
}

// X264EncoderHeaders returns the out-of-band stream headers (SPS/PPS/SEI).
// The returned byte slice aliases engine-owned memory, like encode output.
func X264EncoderHeaders(encoder uintptr) ([]byte, error) {
	if !libLoaded.Load() {
		return nil, ErrLibraryNotLoaded
	}

	var payload uintptr
	var size int32

	result := shimEncoderHeaders(encoder, UintptrPtr(&payload), Int32Ptr(&size))
	if result < 0 {
		return nil, ShimError(result)
	}

	return BytesView(payload, int(size)), nil
}

// X264EncoderDelayedFrames returns the number of frames buffered inside
// the engine and not yet emitted.
func X264EncoderDelayedFrames(encoder uintptr) int {
	if !libLoaded.Load() {
		return 0
	}
	return int(shimEncoderDelayedFrames(encoder))
}

// X264EncoderClose releases the encoder handle. Must be called exactly
// once per opened handle; the handle is invalid afterwards.
func X264EncoderClose(encoder uintptr) {
	if !libLoaded.Load() {
		return
	}
	shimEncoderClose(encoder)
}
