// Package encoder provides the encode session layer over the x264
// engine: a chained setup builder, the handle-owning encoder, and the
// flush sequence that drains delayed frames at end of stream.
package encoder

import (
	"errors"
	"fmt"

	"github.com/pion/logging"

	"github.com/thesyncim/libgox264/internal/ffi"
	"github.com/thesyncim/libgox264/pkg/codec"
	"github.com/thesyncim/libgox264/pkg/frame"
)

// Setup accumulates encoder configuration and builds an opened encoder.
// Setters use value semantics and chain:
//
//	enc, err := encoder.DefaultSetup().
//		CRF(23, 51).
//		FPS(30, 1).
//		Build(frame.PixelFormatI420, 1920, 1080)
//
// The only setters that touch the engine are the profile setters and
// FastFirstPass, which run the engine's parameter-normalization routines
// immediately; everything else is a plain field write. Build performs
// the open.
type Setup struct {
	params ffi.X264Params
	log    logging.LeveledLogger
	err    error
}

// NewSetup creates a builder seeded with the engine defaults for the
// given preset and tune. fastDecode and zeroLatency stack goal tunings
// on top of the content tune.
func NewSetup(preset codec.Preset, tune codec.Tune, fastDecode, zeroLatency bool) Setup {
	s := newSetup()
	if s.err != nil {
		return s
	}
	// Preset and tune names come from the codec package enums, so the
	// engine only ever sees names it defined itself.
	if err := ffi.X264ParamDefaultPreset(&s.params, preset.String(), tune.Name(fastDecode, zeroLatency)); err != nil {
		s.log.Errorf("preset %q tune %q rejected: %v", preset, tune, err)
		s.err = fmt.Errorf("preset %q: %w", preset, err)
	}
	return s
}

// DefaultSetup creates a builder seeded with the engine defaults.
func DefaultSetup() Setup {
	s := newSetup()
	if s.err != nil {
		return s
	}
	if err := ffi.X264ParamDefault(&s.params); err != nil {
		s.err = err
	}
	return s
}

func newSetup() Setup {
	s := Setup{
		log: logging.NewDefaultLoggerFactory().NewLogger("x264"),
	}
	if err := ffi.LoadLibrary(); err != nil {
		// Field writes still accumulate; the error surfaces at Build.
		s.err = err
	}
	return s
}

// Logger replaces the builder's logger. The logger carries over to the
// encoder the builder opens.
func (s Setup) Logger(factory logging.LoggerFactory) Setup {
	s.log = factory.NewLogger("x264")
	return s
}

// FastFirstPass makes the first pass of a two-pass encode faster.
func (s Setup) FastFirstPass() Setup {
	if s.err == nil {
		if err := ffi.X264ParamApplyFastFirstPass(&s.params); err != nil {
			s.log.Errorf("apply fastfirstpass: %v", err)
		}
	}
	return s
}

// FPS sets the video's framerate as a rational number, in frames per
// second.
func (s Setup) FPS(num, den uint32) Setup {
	s.params.FPSNum = num
	s.params.FPSDen = den
	return s
}

// Timebase sets the encoder's timebase, used in rate control with
// timestamps. The value is in seconds per tick.
func (s Setup) Timebase(num, den uint32) Setup {
	s.params.TimebaseNum = num
	s.params.TimebaseDen = den
	return s
}

// AnnexB enables or disables Annex B start codes. Defaults to true.
//
// Annex B start codes are not used by containers based on the ISO BMFF
// (Base Media File Format), such as MP4 and MOV.
func (s Setup) AnnexB(annexb bool) Setup {
	s.params.AnnexB = boolToInt32(annexb)
	return s
}

// Bitrate approximately restricts the bitrate, in metric kilobits per
// second, and selects average-bitrate rate control.
//
// Bitrate and CRF are mutually exclusive: whichever is set last wins,
// and its rate-control mode is the one in effect at Build.
func (s Setup) Bitrate(kbps int) Setup {
	s.params.RCMethod = ffi.RCMethodABR
	s.params.BitrateKbps = int32(kbps)
	return s
}

// CRF targets a constant rate factor, which gives the best quality per
// bit. Values go from -12 to 51; lower means higher bitrate/quality and
// the default is 23. max caps the factor under VBV pressure.
//
// CRF and Bitrate are mutually exclusive: whichever is set last wins,
// and its rate-control mode is the one in effect at Build.
func (s Setup) CRF(target, max float32) Setup {
	s.params.RCMethod = ffi.RCMethodCRF
	s.params.RFConstant = target
	s.params.RFConstantMax = max
	return s
}

// BFrames restricts the maximum number of consecutive B-frames.
// Zero disables B-frames entirely.
func (s Setup) BFrames(max int) Setup {
	s.params.BFrames = int32(max)
	return s
}

// Lookahead sets the number of frames buffered for threaded lookahead.
// Zero disables threaded lookahead, trading efficiency for latency.
func (s Setup) Lookahead(frames int) Setup {
	s.params.SyncLookahead = int32(frames)
	return s
}

// OpenGOP allows a group of pictures to reference frames in other
// groups of pictures.
func (s Setup) OpenGOP(enabled bool) Setup {
	s.params.OpenGOP = boolToInt32(enabled)
	return s
}

// MaxKeyframeInterval sets the maximum number of frames between
// keyframes.
func (s Setup) MaxKeyframeInterval(interval int) Setup {
	s.params.KeyintMax = int32(interval)
	return s
}

// MinKeyframeInterval sets the minimum number of frames between
// keyframes.
func (s Setup) MinKeyframeInterval(interval int) Setup {
	s.params.KeyintMin = int32(interval)
	return s
}

// ScenecutThreshold sets the scenecut threshold. Zero guarantees a
// keyframe exactly every MaxKeyframeInterval frames.
func (s Setup) ScenecutThreshold(threshold int) Setup {
	s.params.ScenecutThreshold = int32(threshold)
	return s
}

// Baseline restricts the stream to the baseline profile, the lowest
// profile with guaranteed compatibility with all decoders.
func (s Setup) Baseline() Setup {
	return s.applyProfile(codec.ProfileBaseline)
}

// Main restricts the stream to the main profile.
func (s Setup) Main() Setup {
	return s.applyProfile(codec.ProfileMain)
}

// High restricts the stream to the high profile, which almost all
// decoders support.
func (s Setup) High() Setup {
	return s.applyProfile(codec.ProfileHigh)
}

// applyProfile runs the engine's profile-normalization routine on the
// accumulated parameters. The engine only fails here when the current
// parameters cannot satisfy the profile (for example lossless under
// baseline), which indicates a configuration bug; it is logged rather
// than returned so the chain stays non-failing.
func (s Setup) applyProfile(profile codec.Profile) Setup {
	if s.err == nil {
		if err := ffi.X264ParamApplyProfile(&s.params, profile.String()); err != nil {
			s.log.Errorf("apply profile %q: %v", profile, err)
		}
	}
	return s
}

// Build writes the final geometry into the parameters and opens the
// encoder. On success the returned encoder's Width, Height and Format
// report the values the engine actually normalized to, which may differ
// from the requested ones; Encode validates against those.
func (s Setup) Build(format frame.PixelFormat, width, height int) (*Encoder, error) {
	if s.err != nil {
		return nil, s.err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidConfig, width, height)
	}
	if _, ok := frame.Layout(format); !ok {
		return nil, fmt.Errorf("%w: format %#x", ErrInvalidConfig, int(format))
	}

	s.params.Csp = format.CSP()
	s.params.Width = int32(width)
	s.params.Height = int32(height)

	handle, err := ffi.X264EncoderOpen(&s.params)
	if err != nil {
		if errors.Is(err, ffi.ErrLibraryNotLoaded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrEncoderOpenFailed, err)
	}

	// Read back the parameters the engine settled on; the engine may
	// adjust values the caller set.
	params, err := ffi.X264EncoderParams(handle)
	if err != nil {
		ffi.X264EncoderClose(handle)
		return nil, err
	}

	return &Encoder{
		handle: handle,
		params: params,
		log:    s.log,
	}, nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
