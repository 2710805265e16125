package ffi

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Shim function pointers. Populated by registerFunctions after the
// library is loaded; calling any of them before that is a bug.
var (
	shimVersion                 func() uintptr
	shimX264Build               func() int32
	shimParamDefault            func(params uintptr)
	shimParamDefaultPreset      func(params, preset, tune uintptr) int32
	shimParamApplyProfile       func(params, profile uintptr) int32
	shimParamApplyFastFirstPass func(params uintptr)
	shimEncoderOpen             func(params, errBuf uintptr) uintptr
	shimEncoderParams           func(encoder, params uintptr)
	shimEncoderEncode           func(encoder, picIn, outPayload, outSize, picOut uintptr) int32
	shimEncoderHeaders          func(encoder, outPayload, outSize uintptr) int32
	shimEncoderDelayedFrames    func(encoder uintptr) int32
	shimEncoderClose            func(encoder uintptr)
)

// shimSymbols maps exported shim symbol names to their Go function pointers.
// Must match the exports of shim/x264_shim.c.
var shimSymbols = []struct {
	fn   any
	name string
}{
	{&shimVersion, "shim_version"},
	{&shimX264Build, "shim_x264_build"},
	{&shimParamDefault, "shim_x264_param_default"},
	{&shimParamDefaultPreset, "shim_x264_param_default_preset"},
	{&shimParamApplyProfile, "shim_x264_param_apply_profile"},
	{&shimParamApplyFastFirstPass, "shim_x264_param_apply_fastfirstpass"},
	{&shimEncoderOpen, "shim_x264_encoder_open"},
	{&shimEncoderParams, "shim_x264_encoder_params"},
	{&shimEncoderEncode, "shim_x264_encoder_encode"},
	{&shimEncoderHeaders, "shim_x264_encoder_headers"},
	{&shimEncoderDelayedFrames, "shim_x264_encoder_delayed_frames"},
	{&shimEncoderClose, "shim_x264_encoder_close"},
}

// registerFunctions resolves every shim symbol and binds it to its Go
// function pointer. Called by LoadLibrary while holding libMu.
func registerFunctions() error {
	for _, sym := range shimSymbols {
		if _, err := dlsymLibrary(libHandle, sym.name); err != nil {
			return fmt.Errorf("shim symbol %s: %w", sym.name, err)
		}
		purego.RegisterLibFunc(sym.fn, libHandle, sym.name)
	}
	return nil
}
