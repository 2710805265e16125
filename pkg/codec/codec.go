// Package codec defines the identifier types the encoder setup accepts:
// presets, tunes and H.264 profiles, using the engine's own names.
package codec

// Preset selects a speed/efficiency tradeoff. Slower presets spend more
// cycles per frame for better compression.
type Preset int

const (
	PresetUltrafast Preset = iota
	PresetSuperfast
	PresetVeryfast
	PresetFaster
	PresetFast
	PresetMedium
	PresetSlow
	PresetSlower
	PresetVeryslow
	PresetPlacebo
)

// String returns the engine's name for the preset.
func (p Preset) String() string {
	switch p {
	case PresetUltrafast:
		return "ultrafast"
	case PresetSuperfast:
		return "superfast"
	case PresetVeryfast:
		return "veryfast"
	case PresetFaster:
		return "faster"
	case PresetFast:
		return "fast"
	case PresetMedium:
		return "medium"
	case PresetSlow:
		return "slow"
	case PresetSlower:
		return "slower"
	case PresetVeryslow:
		return "veryslow"
	case PresetPlacebo:
		return "placebo"
	default:
		return "medium"
	}
}

// Tune adjusts the encoder for a class of content. TuneNone applies no
// content tuning.
type Tune int

const (
	TuneNone Tune = iota
	TuneFilm
	TuneAnimation
	TuneGrain
	TuneStillImage
	TunePSNR
	TuneSSIM
)

// String returns the engine's name for the tune, or "" for TuneNone.
func (t Tune) String() string {
	switch t {
	case TuneFilm:
		return "film"
	case TuneAnimation:
		return "animation"
	case TuneGrain:
		return "grain"
	case TuneStillImage:
		return "stillimage"
	case TunePSNR:
		return "psnr"
	case TuneSSIM:
		return "ssim"
	default:
		return ""
	}
}

// Name composes the full tune string handed to the engine, appending the
// fast-decode and zero-latency goal tunings when requested. Goal tunings
// stack with content tunings, comma separated.
func (t Tune) Name(fastDecode, zeroLatency bool) string {
	name := t.String()
	if fastDecode {
		if name != "" {
			name += ","
		}
		name += "fastdecode"
	}
	if zeroLatency {
		if name != "" {
			name += ","
		}
		name += "zerolatency"
	}
	return name
}

// Profile restricts the bitstream to an H.264 profile.
type Profile string

const (
	// ProfileBaseline is the lowest profile, decodable everywhere.
	ProfileBaseline Profile = "baseline"

	// ProfileMain sits between baseline and high.
	ProfileMain Profile = "main"

	// ProfileHigh is the highest profile, supported by almost all
	// decoders.
	ProfileHigh Profile = "high"
)

// String returns the engine's name for the profile.
func (p Profile) String() string {
	return string(p)
}
