package rtpmjpeg

import (
	"fmt"
	"math/rand/v2"

	"github.com/pion/rtp"
)

// 1500 (UDP MTU) - 20 (IP header) - 8 (UDP header) - 12 (RTP header)
const defaultPayloadMaxSize = 1460

// Encoder is a RTP/M-JPEG encoder.
// It splits frames into fragments, each prefixed by the RFC 2435 headers.
type Encoder struct {
	// SSRC of packets (optional).
	// It defaults to a random value.
	SSRC *uint32

	// initial sequence number of packets (optional).
	// It defaults to a random value.
	InitialSequenceNumber *uint16

	// maximum size of packet payloads (optional).
	// It defaults to 1460.
	PayloadMaxSize int

	sequenceNumber uint16
}

// Init initializes the encoder.
func (e *Encoder) Init() error {
	if e.SSRC == nil {
		v := rand.Uint32()
		e.SSRC = &v
	}
	if e.InitialSequenceNumber == nil {
		v := uint16(rand.Uint32())
		e.InitialSequenceNumber = &v
	}
	if e.PayloadMaxSize == 0 {
		e.PayloadMaxSize = defaultPayloadMaxSize
	}

	e.sequenceNumber = *e.InitialSequenceNumber
	return nil
}

// Encode encodes a baseline JPEG image into RTP/M-JPEG packets.
func (e *Encoder) Encode(image []byte) ([]*rtp.Packet, error) {
	f, err := FrameFromJPEG(image)
	if err != nil {
		return nil, err
	}

	return e.EncodeFrame(f)
}

// EncodeFrame encodes a Frame into RTP/M-JPEG packets.
// The marker bit is set on the last packet. Timestamps are left to the caller.
func (e *Encoder) EncodeFrame(f *Frame) ([]*rtp.Packet, error) {
	if f.Type >= 64 {
		return nil, fmt.Errorf("type %d is not supported", f.Type)
	}

	if f.Width <= 0 || f.Width > maxDimension || (f.Width%8) != 0 ||
		f.Height <= 0 || f.Height > maxDimension || (f.Height%8) != 0 {
		return nil, fmt.Errorf("image size %dx%d can't be sent", f.Width, f.Height)
	}

	if len(f.Scan) == 0 {
		return nil, fmt.Errorf("image data not found")
	}

	jh := headerJPEG{
		Type:         f.Type,
		Quantization: f.Quantization,
		Width:        f.Width,
		Height:       f.Height,
	}

	if f.RestartInterval != 0 {
		jh.Type |= 64
	}

	scan := f.Scan
	var ret []*rtp.Packet

	for len(scan) != 0 {
		buf := jh.marshal(nil)

		if f.RestartInterval != 0 {
			buf = headerRestartMarker{
				Interval: f.RestartInterval,
				Count:    0xFFFF,
			}.marshal(buf)
		}

		if jh.FragmentOffset == 0 && f.Quantization >= 128 {
			buf = headerQuantizationTable{
				Precision: f.Precision,
				Tables:    f.Tables,
			}.marshal(buf)
		}

		n := min(e.PayloadMaxSize-len(buf), len(scan))
		if n <= 0 {
			return nil, fmt.Errorf("payload max size is too small")
		}

		ret = append(ret, &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    PayloadType,
				SequenceNumber: e.sequenceNumber,
				SSRC:           *e.SSRC,
				Marker:         n == len(scan),
			},
			Payload: append(buf, scan[:n]...),
		})

		e.sequenceNumber++
		jh.FragmentOffset += uint32(n)
		scan = scan[n:]
	}

	return ret, nil
}
