// Package rtcpreceiver contains a utility to synchronize RTP timestamps with
// wall-clock time and to generate RTCP receiver reports.
package rtcpreceiver

import (
	"math/rand/v2"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/bluenviron/rtspjpeg/pkg/ntp"
)

// RTCPReceiver keeps track of the last sender report and of reception statistics.
// It is not safe for concurrent use: all methods must be called by the routine
// that reads the stream.
type RTCPReceiver struct {
	clockRate    float64
	receiverSSRC uint32

	// data from RTP packets
	firstRTPPacketReceived bool
	sequenceNumberCycles   uint16
	lastSequenceNumber     uint16
	senderSSRC             uint32
	lastTimeRTP            uint32
	lastTimeSystem         time.Time
	totalLost              uint32
	totalLostSinceReport   uint32
	totalSinceReport       uint32
	jitter                 float64

	// data from RTCP sender reports
	firstSenderReportReceived  bool
	lastSenderReportSSRC       uint32
	lastSenderReportTimeNTP    uint64
	lastSenderReportTimeRTP    uint32
	lastSenderReportTimeSystem time.Time
}

// New allocates a RTCPReceiver.
// When receiverSSRC is nil, a random one is generated.
func New(receiverSSRC *uint32, clockRate int) *RTCPReceiver {
	rr := &RTCPReceiver{
		clockRate: float64(clockRate),
	}

	if receiverSSRC != nil {
		rr.receiverSSRC = *receiverSSRC
	} else {
		rr.receiverSSRC = rand.Uint32()
	}

	return rr
}

// ProcessPacketRTP extracts the needed data from RTP packets.
// A packet with a new SSRC means that the sender has restarted the stream:
// statistics start over and the last sender report is kept only if it was
// sent by the new source.
func (rr *RTCPReceiver) ProcessPacketRTP(system time.Time, pkt *rtp.Packet) {
	if rr.firstRTPPacketReceived && pkt.SSRC != rr.senderSSRC {
		rr.restart(pkt.SSRC)
	}

	// first packet
	if !rr.firstRTPPacketReceived {
		rr.firstRTPPacketReceived = true
		rr.totalSinceReport = 1
		rr.lastSequenceNumber = pkt.SequenceNumber
		rr.senderSSRC = pkt.SSRC
		rr.lastTimeRTP = pkt.Timestamp
		rr.lastTimeSystem = system
		return
	}

	diff := int32(pkt.SequenceNumber) - int32(rr.lastSequenceNumber)

	// overflow
	if diff < -0x0FFF {
		rr.sequenceNumberCycles++
	} else if diff <= 0 {
		// duplicate or reordered packet: statistics are already accounted for
		return
	}

	// detect lost packets
	if pkt.SequenceNumber != (rr.lastSequenceNumber + 1) {
		lost := uint32(uint16(diff) - 1)
		rr.totalLost += lost
		rr.totalLostSinceReport += lost

		// allow up to 24 bits
		if rr.totalLost > 0xFFFFFF {
			rr.totalLost = 0xFFFFFF
		}
		if rr.totalLostSinceReport > 0xFFFFFF {
			rr.totalLostSinceReport = 0xFFFFFF
		}
	}

	rr.totalSinceReport += uint32(uint16(diff))
	rr.lastSequenceNumber = pkt.SequenceNumber

	// update jitter
	// https://tools.ietf.org/html/rfc3550#page-39
	D := system.Sub(rr.lastTimeSystem).Seconds()*rr.clockRate -
		(float64(pkt.Timestamp) - float64(rr.lastTimeRTP))
	if D < 0 {
		D = -D
	}
	rr.jitter += (D - rr.jitter) / 16

	rr.lastTimeRTP = pkt.Timestamp
	rr.lastTimeSystem = system
}

// ProcessPacketRTCP extracts the needed data from RTCP packets.
// Only sender reports are taken into account.
func (rr *RTCPReceiver) ProcessPacketRTCP(system time.Time, pkt rtcp.Packet) {
	if sr, ok := pkt.(*rtcp.SenderReport); ok {
		rr.ProcessSenderReport(sr, system)
	}
}

func (rr *RTCPReceiver) restart(ssrc uint32) {
	rr.firstRTPPacketReceived = false
	rr.sequenceNumberCycles = 0
	rr.totalLost = 0
	rr.totalLostSinceReport = 0
	rr.totalSinceReport = 0
	rr.jitter = 0

	if rr.firstSenderReportReceived && rr.lastSenderReportSSRC != ssrc {
		rr.firstSenderReportReceived = false
	}
}

// ProcessSenderReport extracts the needed data from RTCP sender reports.
// The newest sender report always replaces the previous one.
func (rr *RTCPReceiver) ProcessSenderReport(sr *rtcp.SenderReport, system time.Time) {
	rr.firstSenderReportReceived = true
	rr.lastSenderReportSSRC = sr.SSRC
	rr.lastSenderReportTimeNTP = sr.NTPTime
	rr.lastSenderReportTimeRTP = sr.RTPTime
	rr.lastSenderReportTimeSystem = system
}

// PacketNTP returns the wall-clock time of a RTP timestamp.
// It returns false until a sender report has been received.
func (rr *RTCPReceiver) PacketNTP(ts uint32) (time.Time, bool) {
	if !rr.firstSenderReportReceived {
		return time.Time{}, false
	}

	timeDiff := int32(ts - rr.lastSenderReportTimeRTP)
	timeDiffGo := (time.Duration(timeDiff) * time.Second) / time.Duration(rr.clockRate)

	return ntp.Decode(rr.lastSenderReportTimeNTP).Add(timeDiffGo), true
}

// SenderSSRC returns the SSRC of incoming RTP packets.
func (rr *RTCPReceiver) SenderSSRC() (uint32, bool) {
	return rr.senderSSRC, rr.firstRTPPacketReceived
}

// Report generates a RTCP receiver report.
// It returns nil when no RTP packets have been received yet.
func (rr *RTCPReceiver) Report(system time.Time) rtcp.Packet {
	if !rr.firstRTPPacketReceived {
		return nil
	}

	report := &rtcp.ReceiverReport{
		SSRC: rr.receiverSSRC,
		Reports: []rtcp.ReceptionReport{
			{
				SSRC:               rr.senderSSRC,
				LastSequenceNumber: uint32(rr.sequenceNumberCycles)<<16 | uint32(rr.lastSequenceNumber),
				TotalLost:          rr.totalLost,
				Jitter:             uint32(rr.jitter),
			},
		},
	}

	if rr.totalSinceReport != 0 {
		// equivalent to taking the integer part after multiplying the
		// loss fraction by 256
		report.Reports[0].FractionLost = uint8(float64(rr.totalLostSinceReport*256) / float64(rr.totalSinceReport))
	}

	if rr.firstSenderReportReceived {
		report.Reports[0].LastSenderReport = ntp.Middle(rr.lastSenderReportTimeNTP)

		// delay, expressed in units of 1/65536 seconds, between
		// receiving the last SR packet from source SSRC_n and sending this
		// reception report block
		report.Reports[0].Delay = uint32(system.Sub(rr.lastSenderReportTimeSystem).Seconds() * 65536)
	}

	rr.totalLostSinceReport = 0
	rr.totalSinceReport = 0

	return report
}
