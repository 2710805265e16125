package encoder

import (
	"fmt"
	"sync/atomic"

	"github.com/thesyncim/libgox264/internal/ffi"
)

// Flush drains the frames still buffered in the engine after input has
// ended. It owns the engine handle transferred from the encoder and is
// iterated scanner-style:
//
//	flush, err := enc.Flush()
//	if err != nil {
//		return err
//	}
//	defer flush.Close()
//	for flush.Next() {
//		sink.Write(flush.Bitstream().Bytes())
//	}
//	if err := flush.Err(); err != nil {
//		return err
//	}
//
// The sequence is finite and non-restartable: once the engine reports
// zero delayed frames, Next returns false forever and the handle has
// been released. Abandoning the sequence early is safe as long as Close
// runs; the handle is released exactly once either way.
type Flush struct {
	handle uintptr

	data Bitstream
	pic  Picture
	err  error

	released atomic.Bool
}

// Next drains one buffered frame. It returns false when the engine has
// no delayed frames left or a step failed; Err distinguishes the two.
// Exhaustion releases the handle.
func (f *Flush) Next() bool {
	if f.err != nil || f.released.Load() {
		return false
	}

	if ffi.X264EncoderDelayedFrames(f.handle) == 0 {
		f.Close()
		return false
	}

	// A nil input picture asks the engine to emit one buffered frame.
	payload, picOut, err := ffi.X264EncoderEncode(f.handle, nil)
	if err != nil {
		// The engine gives no retry guidance mid-stream, so a failed
		// step ends the sequence and releases the handle.
		f.err = fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		f.Close()
		return false
	}

	f.data = Bitstream{data: payload}
	f.pic = pictureOut(picOut)
	return true
}

// Bitstream returns the output of the last successful Next. The view
// aliases engine memory and is invalidated by the following Next or
// Close; Clone it for retention.
func (f *Flush) Bitstream() Bitstream {
	return f.data
}

// Picture returns the metadata of the last successful Next.
func (f *Flush) Picture() Picture {
	return f.pic
}

// Err returns the error that ended the sequence, or nil after a clean
// drain.
func (f *Flush) Err() error {
	return f.err
}

// Close releases the engine handle. It runs at most once; Next calls it
// on exhaustion, so deferring Close after Flush is always safe and
// covers abandoning the sequence mid-drain.
func (f *Flush) Close() error {
	if !f.released.CompareAndSwap(false, true) {
		return nil
	}
	ffi.X264EncoderClose(f.handle)
	f.handle = 0
	f.data = Bitstream{}
	return nil
}
