// Package track bridges an encode session to a Pion WebRTC local track.
package track

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/thesyncim/libgox264/pkg/encoder"
	"github.com/thesyncim/libgox264/pkg/frame"
)

// Errors
var (
	ErrTrackClosed   = errors.New("track is closed")
	ErrInvalidConfig = errors.New("invalid track config")
)

// Config configures a video track.
type Config struct {
	ID       string
	StreamID string

	// FrameDuration is the presentation duration of each frame.
	// Defaults to 1/30s.
	FrameDuration time.Duration
}

// VideoTrack feeds an encode session's output into a Pion
// TrackLocalStaticSample. It takes over the session: WriteFrame encodes
// and forwards, Flush drains the engine at end of stream, Close releases
// everything. Single-goroutine use per track.
type VideoTrack struct {
	local *webrtc.TrackLocalStaticSample
	enc   *encoder.Encoder
	dur   time.Duration

	headersSent bool
	mu          sync.Mutex
	closed      atomic.Bool
}

// NewVideoTrack wraps an open encode session in a local H.264 track.
// The track owns the session from here on.
func NewVideoTrack(enc *encoder.Encoder, cfg Config) (*VideoTrack, error) {
	if cfg.ID == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.StreamID == "" {
		cfg.StreamID = cfg.ID
	}
	if cfg.FrameDuration == 0 {
		cfg.FrameDuration = time.Second / 30
	}

	local, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264},
		cfg.ID, cfg.StreamID,
	)
	if err != nil {
		return nil, err
	}

	return &VideoTrack{
		local: local,
		enc:   enc,
		dur:   cfg.FrameDuration,
	}, nil
}

// Track returns the underlying Pion track for PeerConnection.AddTrack.
func (t *VideoTrack) Track() *webrtc.TrackLocalStaticSample {
	return t.local
}

// WriteFrame encodes one image and forwards any emitted access unit.
// The stream headers go out before the first output so the receiver can
// interpret it. Frames the engine buffers in its lookahead produce no
// sample; Flush emits them at end of stream.
func (t *VideoTrack) WriteFrame(pts int64, img *frame.Image) error {
	if t.closed.Load() {
		return ErrTrackClosed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.sendHeadersLocked(); err != nil {
		return err
	}

	data, _, err := t.enc.Encode(pts, img)
	if err != nil {
		return err
	}
	if data.Len() == 0 {
		return nil
	}
	// WriteSample packetizes synchronously, so the bitstream view is
	// still valid while it runs.
	return t.local.WriteSample(media.Sample{Data: data.Bytes(), Duration: t.dur})
}

// Flush drains the engine's delayed frames into the track and closes
// the session. The track accepts no frames afterwards.
func (t *VideoTrack) Flush() error {
	if !t.closed.CompareAndSwap(false, true) {
		return ErrTrackClosed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	flush, err := t.enc.Flush()
	if err != nil {
		return err
	}
	defer flush.Close()

	for flush.Next() {
		data := flush.Bitstream()
		if data.Len() == 0 {
			continue
		}
		if err := t.local.WriteSample(media.Sample{Data: data.Bytes(), Duration: t.dur}); err != nil {
			return err
		}
	}
	return flush.Err()
}

// Close releases the session without draining it. Prefer Flush at a
// clean end of stream. Safe to call after Flush.
func (t *VideoTrack) Close() error {
	t.closed.Store(true)
	return t.enc.Close()
}

func (t *VideoTrack) sendHeadersLocked() error {
	if t.headersSent {
		return nil
	}
	hdr, err := t.enc.Headers()
	if err != nil {
		return err
	}
	if err := t.local.WriteSample(media.Sample{Data: hdr.Bytes()}); err != nil {
		return err
	}
	t.headersSent = true
	return nil
}
