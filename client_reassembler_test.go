package rtspjpeg

import (
	"bytes"
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"

	"github.com/bluenviron/rtspjpeg/pkg/liberrors"
)

func mjpegFragment(offset int, first bool, scan []byte) []byte {
	buf := []byte{0x0, byte(offset >> 16), byte(offset >> 8), byte(offset), 0x1, 0xff, 0x8, 0x4}
	if first {
		buf = append(buf, []byte{0x0, 0x0, 0x0, 0x80}...)
		buf = append(buf, bytes.Repeat([]byte{0x01}, 128)...)
	}
	return append(buf, scan...)
}

func mjpegPacket(seq uint16, marker bool, payload []byte) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    26,
			SequenceNumber: seq,
			Marker:         marker,
		},
		Payload: payload,
	}
}

func newTestReassembler(t *testing.T, lost *[]uint64) *clientReassembler {
	r := &clientReassembler{
		onPacketsLost: func(n uint64) {
			*lost = append(*lost, n)
		},
	}
	err := r.initialize()
	require.NoError(t, err)
	return r
}

func TestClientReassemblerFrames(t *testing.T) {
	for _, ca := range []struct {
		name     string
		firstSeq uint16
	}{
		{
			"base",
			100,
		},
		{
			"sequence number overflow",
			65533,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var lost []uint64
			r := newTestReassembler(t, &lost)

			seq := ca.firstSeq

			// the end of a frame whose beginning is unknown
			image, err := r.process(mjpegPacket(seq, true, []byte{0x01, 0x02}))
			require.NoError(t, err)
			require.Nil(t, image)
			seq++

			for i := 0; i < 3; i++ {
				scans := [][]byte{
					{byte(i), 0x10},
					{byte(i), 0x20, 0x21},
					{byte(i), 0x30},
				}

				image, err = r.process(mjpegPacket(seq, false, mjpegFragment(0, true, scans[0])))
				require.NoError(t, err)
				require.Nil(t, image)
				seq++

				image, err = r.process(mjpegPacket(seq, false, mjpegFragment(2, false, scans[1])))
				require.NoError(t, err)
				require.Nil(t, image)
				seq++

				image, err = r.process(mjpegPacket(seq, true, mjpegFragment(5, false, scans[2])))
				require.NoError(t, err)
				seq++

				require.Equal(t, []byte{0xFF, 0xD8}, image[:2])

				var expected []byte
				for _, scan := range scans {
					expected = append(expected, scan...)
				}
				expected = append(expected, 0xFF, 0xD9)
				require.True(t, bytes.HasSuffix(image, expected))
			}

			require.Empty(t, lost)
		})
	}
}

func TestClientReassemblerGap(t *testing.T) {
	var lost []uint64
	r := newTestReassembler(t, &lost)

	image, err := r.process(mjpegPacket(1, true, nil))
	require.NoError(t, err)
	require.Nil(t, image)

	// complete frame
	_, err = r.process(mjpegPacket(2, false, mjpegFragment(0, true, []byte{0xA0})))
	require.NoError(t, err)
	image, err = r.process(mjpegPacket(3, true, mjpegFragment(1, false, []byte{0xA1})))
	require.NoError(t, err)
	require.NotNil(t, image)

	// frame with a missing packet
	_, err = r.process(mjpegPacket(4, false, mjpegFragment(0, true, []byte{0xB0})))
	require.NoError(t, err)
	_, err = r.process(mjpegPacket(6, false, mjpegFragment(2, false, []byte{0xB2})))
	require.NoError(t, err)
	image, err = r.process(mjpegPacket(7, true, mjpegFragment(3, false, []byte{0xB3})))
	require.NoError(t, err)
	require.Nil(t, image)

	require.Equal(t, []uint64{1}, lost)

	// next frame is received again
	_, err = r.process(mjpegPacket(8, false, mjpegFragment(0, true, []byte{0xC0})))
	require.NoError(t, err)
	image, err = r.process(mjpegPacket(9, true, mjpegFragment(1, false, []byte{0xC1})))
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(image, []byte{0xC0, 0xC1, 0xFF, 0xD9}))

	require.Equal(t, []uint64{1}, lost)
}

func TestClientReassemblerReset(t *testing.T) {
	var lost []uint64
	r := newTestReassembler(t, &lost)

	_, err := r.process(mjpegPacket(10, true, nil))
	require.NoError(t, err)
	_, err = r.process(mjpegPacket(11, false, mjpegFragment(0, true, []byte{0xA0})))
	require.NoError(t, err)

	r.reset()

	// after a reset, a frame boundary is needed again and sequence numbers restart
	image, err := r.process(mjpegPacket(500, true, mjpegFragment(1, false, []byte{0xA1})))
	require.NoError(t, err)
	require.Nil(t, image)
	require.Empty(t, lost)
}

func TestClientReassemblerDecodeError(t *testing.T) {
	var lost []uint64
	r := newTestReassembler(t, &lost)

	_, err := r.process(mjpegPacket(1, true, nil))
	require.NoError(t, err)

	_, err = r.process(mjpegPacket(2, false, mjpegFragment(0, true, []byte{0xA0})))
	require.NoError(t, err)

	// wrong fragment offset
	_, err = r.process(mjpegPacket(3, true, mjpegFragment(7, false, []byte{0xA1})))
	require.Error(t, err)

	// the following frame is not affected
	_, err = r.process(mjpegPacket(4, false, mjpegFragment(0, true, []byte{0xB0})))
	require.NoError(t, err)
	image, err := r.process(mjpegPacket(5, true, mjpegFragment(1, false, []byte{0xB1})))
	require.NoError(t, err)
	require.NotNil(t, image)
}

func TestClientReassemblerResync(t *testing.T) {
	t.Run("at frame boundary", func(t *testing.T) {
		var lost []uint64
		r := newTestReassembler(t, &lost)

		_, err := r.process(mjpegPacket(1, true, nil))
		require.NoError(t, err)
		_, err = r.process(mjpegPacket(2, false, mjpegFragment(0, true, []byte{0xA0})))
		require.NoError(t, err)
		image, err := r.process(mjpegPacket(3, true, mjpegFragment(1, false, []byte{0xA1})))
		require.NoError(t, err)
		require.NotNil(t, image)

		r.resync()

		// the first frame of the new source is complete
		_, err = r.process(mjpegPacket(40000, false, mjpegFragment(0, true, []byte{0xB0})))
		require.NoError(t, err)
		image, err = r.process(mjpegPacket(40001, true, mjpegFragment(1, false, []byte{0xB1})))
		require.NoError(t, err)
		require.True(t, bytes.HasSuffix(image, []byte{0xB0, 0xB1, 0xFF, 0xD9}))

		require.Empty(t, lost)
	})

	t.Run("in the middle of a frame", func(t *testing.T) {
		var lost []uint64
		r := newTestReassembler(t, &lost)

		_, err := r.process(mjpegPacket(1, true, nil))
		require.NoError(t, err)
		_, err = r.process(mjpegPacket(2, false, mjpegFragment(0, true, []byte{0xA0})))
		require.NoError(t, err)

		r.resync()

		image, err := r.process(mjpegPacket(40000, true, mjpegFragment(1, false, []byte{0xB1})))
		require.NoError(t, err)
		require.Nil(t, image)

		_, err = r.process(mjpegPacket(40001, false, mjpegFragment(0, true, []byte{0xC0})))
		require.NoError(t, err)
		image, err = r.process(mjpegPacket(40002, true, mjpegFragment(1, false, []byte{0xC1})))
		require.NoError(t, err)
		require.True(t, bytes.HasSuffix(image, []byte{0xC0, 0xC1, 0xFF, 0xD9}))

		require.Empty(t, lost)
	})
}

func TestClientReassemblerDuplicate(t *testing.T) {
	var lost []uint64
	r := newTestReassembler(t, &lost)

	_, err := r.process(mjpegPacket(1, true, nil))
	require.NoError(t, err)
	_, err = r.process(mjpegPacket(2, false, mjpegFragment(0, true, []byte{0xA0})))
	require.NoError(t, err)
	_, err = r.process(mjpegPacket(3, false, mjpegFragment(1, false, []byte{0xA1})))
	require.NoError(t, err)

	_, err = r.process(mjpegPacket(3, false, mjpegFragment(1, false, []byte{0xA1})))
	require.Equal(t, liberrors.ErrClientRTPPacketReordered{SequenceNumber: 3}, err)

	// the frame is discarded
	image, err := r.process(mjpegPacket(4, true, mjpegFragment(2, false, []byte{0xA2})))
	require.NoError(t, err)
	require.Nil(t, image)

	_, err = r.process(mjpegPacket(5, false, mjpegFragment(0, true, []byte{0xB0})))
	require.NoError(t, err)
	image, err = r.process(mjpegPacket(6, true, mjpegFragment(1, false, []byte{0xB1})))
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(image, []byte{0xB0, 0xB1, 0xFF, 0xD9}))

	require.Empty(t, lost)
}
