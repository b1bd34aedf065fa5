package rtspjpeg

import (
	"github.com/pion/rtp"

	"github.com/bluenviron/rtspjpeg/internal/rtplossdetector"
	"github.com/bluenviron/rtspjpeg/pkg/format/rtpmjpeg"
	"github.com/bluenviron/rtspjpeg/pkg/liberrors"
)

// clientReassembler groups RTP payloads into frames and depayloads them.
// A frame is delimited by the marker bit of its last packet.
type clientReassembler struct {
	onPacketsLost func(uint64)

	decoder      *rtpmjpeg.Decoder
	lossDetector *rtplossdetector.LossDetector

	// nil when there's no frame being reassembled, either because the first
	// frame boundary has not been seen yet or because the frame is broken.
	fragments [][]byte
}

func (r *clientReassembler) initialize() error {
	r.decoder = &rtpmjpeg.Decoder{}
	err := r.decoder.Init()
	if err != nil {
		return err
	}

	r.lossDetector = &rtplossdetector.LossDetector{}
	return nil
}

func (r *clientReassembler) reset() {
	r.lossDetector.Reset()
	r.fragments = nil
}

// resync is called when the stream source changes.
// Sequence numbers restart, while a frame boundary that has already been
// reached is kept, so that a frame starting with the new source is not lost.
func (r *clientReassembler) resync() {
	r.lossDetector.Reset()
	if len(r.fragments) != 0 {
		r.fragments = nil
	}
}

// process processes a RTP packet.
// It returns an image when the packet completes a frame.
func (r *clientReassembler) process(pkt *rtp.Packet) ([]byte, error) {
	lost, reordered := r.lossDetector.Process(pkt.SequenceNumber)
	switch {
	case reordered:
		r.fragments = nil
		return nil, liberrors.ErrClientRTPPacketReordered{SequenceNumber: pkt.SequenceNumber}

	case lost != 0:
		r.fragments = nil
		r.onPacketsLost(lost)
	}

	if r.fragments != nil {
		r.fragments = append(r.fragments, pkt.Payload)
	}

	if !pkt.Marker {
		return nil, nil
	}

	fragments := r.fragments
	r.fragments = [][]byte{}

	if len(fragments) == 0 {
		return nil, nil
	}

	image, err := r.decoder.Decode(fragments)
	if err != nil {
		return nil, liberrors.ErrClientFrameDecode{Err: err}
	}

	return image, nil
}
