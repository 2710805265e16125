// Package packetizer converts encoded Annex-B access units into RTP
// packets for transport.
package packetizer

import (
	"errors"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

// Errors
var (
	ErrInvalidConfig = errors.New("invalid packetizer configuration")
	ErrEmptyData     = errors.New("empty access unit")
)

const (
	defaultMTU     = 1200
	videoClockRate = 90000
	rtpHeaderSize  = 12
	minMTU         = rtpHeaderSize + 1
)

// Config configures an RTP packetizer.
type Config struct {
	SSRC        uint32
	PayloadType uint8
	MTU         uint16 // Maximum transmission unit (default 1200)
	ClockRate   uint32 // RTP clock rate (default 90000)
}

// Packetizer converts H.264 Annex-B access units into RTP packets. It
// splits start-code-delimited NALUs and fragments large ones into FU-A
// units per the MTU. Single-goroutine use.
type Packetizer struct {
	rtp       rtp.Packetizer
	clockRate uint32
}

// New creates an RTP packetizer for the encoder's Annex-B output.
func New(cfg Config) (*Packetizer, error) {
	if cfg.MTU == 0 {
		cfg.MTU = defaultMTU
	}
	if cfg.MTU < minMTU {
		return nil, ErrInvalidConfig
	}
	if cfg.ClockRate == 0 {
		cfg.ClockRate = videoClockRate
	}

	return &Packetizer{
		rtp: rtp.NewPacketizer(
			cfg.MTU,
			cfg.PayloadType,
			cfg.SSRC,
			&codecs.H264Payloader{},
			rtp.NewRandomSequencer(),
			cfg.ClockRate,
		),
		clockRate: cfg.ClockRate,
	}, nil
}

// Packetize splits an access unit into RTP packets. samples is the
// clock-rate tick count this frame advances the RTP timestamp by; use
// Samples to derive it from a frame duration.
//
// The access unit is copied before packetization, so the packets stay
// valid after the bitstream view that produced accessUnit is
// invalidated by the session's next call.
func (p *Packetizer) Packetize(accessUnit []byte, samples uint32) ([]*rtp.Packet, error) {
	if len(accessUnit) == 0 {
		return nil, ErrEmptyData
	}

	buf := make([]byte, len(accessUnit))
	copy(buf, accessUnit)

	return p.rtp.Packetize(buf, samples), nil
}

// Samples converts a frame duration to RTP clock-rate ticks.
func (p *Packetizer) Samples(d time.Duration) uint32 {
	return uint32(d.Seconds() * float64(p.clockRate))
}
