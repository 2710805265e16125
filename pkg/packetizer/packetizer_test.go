package packetizer

import (
	"errors"
	"testing"
	"time"
)

// annexBAccessUnit builds a start-code-delimited access unit with one
// small NALU and one of the given payload size.
func annexBAccessUnit(largeNALU int) []byte {
	au := []byte{0, 0, 0, 1, 0x67, 0x42, 0x00, 0x1e}
	au = append(au, 0, 0, 0, 1, 0x65)
	for i := 0; i < largeNALU; i++ {
		au = append(au, byte(i))
	}
	return au
}

func TestNewDefaults(t *testing.T) {
	p, err := New(Config{SSRC: 0x1234, PayloadType: 96})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.clockRate != videoClockRate {
		t.Errorf("clockRate = %d, want %d", p.clockRate, videoClockRate)
	}
}

func TestNewRejectsTinyMTU(t *testing.T) {
	if _, err := New(Config{MTU: rtpHeaderSize}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestPacketizeRespectsMTU(t *testing.T) {
	const mtu = 200
	p, err := New(Config{SSRC: 1, PayloadType: 96, MTU: mtu})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pkts, err := p.Packetize(annexBAccessUnit(1000), p.Samples(33*time.Millisecond))
	if err != nil {
		t.Fatalf("Packetize: %v", err)
	}
	if len(pkts) < 2 {
		t.Fatalf("got %d packets, want the large NALU fragmented", len(pkts))
	}
	for i, pkt := range pkts {
		if len(pkt.Payload) > mtu-rtpHeaderSize {
			t.Errorf("packet %d payload %d bytes exceeds MTU budget", i, len(pkt.Payload))
		}
		if pkt.SSRC != 1 {
			t.Errorf("packet %d SSRC = %d, want 1", i, pkt.SSRC)
		}
		if pkt.PayloadType != 96 {
			t.Errorf("packet %d payload type = %d, want 96", i, pkt.PayloadType)
		}
	}
	if !pkts[len(pkts)-1].Marker {
		t.Error("last packet of the access unit should set the marker bit")
	}
}

func TestPacketizeCopiesInput(t *testing.T) {
	p, err := New(Config{SSRC: 1, PayloadType: 96})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	au := annexBAccessUnit(16)
	pkts, err := p.Packetize(au, 3000)
	if err != nil {
		t.Fatalf("Packetize: %v", err)
	}
	want := make([][]byte, len(pkts))
	for i, pkt := range pkts {
		want[i] = append([]byte(nil), pkt.Payload...)
	}

	// Clobbering the caller's buffer must not corrupt the packets.
	for i := range au {
		au[i] = 0xff
	}
	for i, pkt := range pkts {
		if string(pkt.Payload) != string(want[i]) {
			t.Fatalf("packet %d payload changed after the input buffer was reused", i)
		}
	}
}

func TestPacketizeEmpty(t *testing.T) {
	p, err := New(Config{SSRC: 1, PayloadType: 96})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Packetize(nil, 3000); !errors.Is(err, ErrEmptyData) {
		t.Errorf("err = %v, want ErrEmptyData", err)
	}
}

func TestSamples(t *testing.T) {
	p, err := New(Config{SSRC: 1, PayloadType: 96})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.Samples(time.Second); got != videoClockRate {
		t.Errorf("Samples(1s) = %d, want %d", got, videoClockRate)
	}
	if got := p.Samples(time.Second / 30); got != videoClockRate/30 {
		t.Errorf("Samples(1/30s) = %d, want %d", got, videoClockRate/30)
	}
}
