package rtspjpeg

import (
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/bluenviron/rtspjpeg/pkg/format/rtpmjpeg"
	"github.com/bluenviron/rtspjpeg/pkg/liberrors"
	"github.com/bluenviron/rtspjpeg/pkg/rtcpreceiver"
)

// startReading resets the stream state and starts receiving datagrams.
func (c *Client) startReading() {
	c.connCloserStop()

	c.reassembler.reset()
	c.rtcpReceiver = rtcpreceiver.New(nil, rtpmjpeg.ClockRate)

	c.sinkProcessor.Start()

	c.udpRTPListener.start()
	c.udpRTCPListener.start()

	c.receiverReportTicker.Reset(c.ReceiverReportPeriod)
	c.resetStreamTimer()
}

func (c *Client) stopReading() {
	c.receiverReportTicker.Stop()
	c.streamTimer.Stop()

	c.udpRTPListener.stop()
	c.udpRTCPListener.stop()
}

func (c *Client) resetStreamTimer() {
	if c.StreamTimeout != 0 {
		c.streamTimer.Reset(c.StreamTimeout)
	}
}

func (c *Client) readRTP(buf []byte) {
	pkt := &rtp.Packet{}
	err := pkt.Unmarshal(buf)
	if err != nil {
		c.OnDecodeError(liberrors.ErrClientMalformedPacket{Protocol: "RTP", Err: err})
		return
	}

	if ssrc, ok := c.rtcpReceiver.SenderSSRC(); ok && ssrc != pkt.SSRC {
		c.Log.WithFields(logrus.Fields{
			"ssrc":          pkt.SSRC,
			"previous_ssrc": ssrc,
		}).Info("stream source changed")
		c.reassembler.resync()
	}

	c.rtcpReceiver.ProcessPacketRTP(c.TimeNow(), pkt)

	image, err := c.reassembler.process(pkt)
	if err != nil {
		c.OnDecodeError(err)
		return
	}

	if image == nil {
		return
	}

	ntp, ntpAvailable := c.rtcpReceiver.PacketNTP(pkt.Timestamp)

	c.writeFrame(&Frame{
		NTP:          ntp,
		NTPAvailable: ntpAvailable,
		RTPTimestamp: pkt.Timestamp,
		SSRC:         pkt.SSRC,
		Image:        image,
	})
}

func (c *Client) readRTCP(buf []byte) {
	pkts, err := rtcp.Unmarshal(buf)
	if err != nil {
		c.OnDecodeError(liberrors.ErrClientMalformedPacket{Protocol: "RTCP", Err: err})
		return
	}

	now := c.TimeNow()

	for _, pkt := range pkts {
		if sr, ok := pkt.(*rtcp.SenderReport); ok {
			c.Log.WithField("rtp_time", sr.RTPTime).Debug("sender report received")
		}

		c.rtcpReceiver.ProcessPacketRTCP(now, pkt)
	}
}

func (c *Client) writeFrame(frame *Frame) {
	ok := c.sinkProcessor.Push(func() error {
		return c.Sink.WriteFrame(frame)
	})
	if !ok {
		c.OnDecodeError(liberrors.ErrClientSinkQueueFull{})
	}
}

func (c *Client) writeReceiverReport() {
	report := c.rtcpReceiver.Report(c.TimeNow())
	if report == nil {
		return
	}

	byts, err := report.Marshal()
	if err != nil {
		return
	}

	c.udpRTCPListener.write(byts) //nolint:errcheck
}
