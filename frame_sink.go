package rtspjpeg

import (
	"time"
)

// Frame is a JPEG image reassembled from the stream.
type Frame struct {
	// wall-clock time of the frame, computed from the last RTCP sender report.
	NTP time.Time

	// whether NTP is valid, that is, whether a sender report has been received.
	NTPAvailable bool

	// RTP timestamp of the frame.
	RTPTimestamp uint32

	// SSRC of the stream.
	SSRC uint32

	// a standalone JPEG image, starting with SOI.
	Image []byte
}

// FrameSink consumes reassembled frames.
// WriteFrame is called by a dedicated routine, in frame order.
type FrameSink interface {
	WriteFrame(*Frame) error
}

// FrameSinkFunc is a function that implements FrameSink.
type FrameSinkFunc func(*Frame) error

// WriteFrame implements FrameSink.
func (f FrameSinkFunc) WriteFrame(fr *Frame) error {
	return f(fr)
}
