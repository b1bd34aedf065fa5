// Package rtplossdetector implements an algorithm that detects lost packets.
package rtplossdetector

// LossDetector detects lost packets by comparing sequence numbers modulo 2^16.
type LossDetector struct {
	initialized    bool
	expectedSeqNum uint16
}

// Process processes the sequence number of a RTP packet.
// It returns the number of packets lost between the previous packet and this one,
// and whether the packet is older than the expected one (a duplicate or a reordered packet).
// The expected sequence number is always resynchronized to the current packet.
func (r *LossDetector) Process(seqNum uint16) (uint64, bool) {
	if !r.initialized {
		r.initialized = true
		r.expectedSeqNum = seqNum + 1
		return 0, false
	}

	diff := int16(seqNum - r.expectedSeqNum)
	r.expectedSeqNum = seqNum + 1

	if diff < 0 {
		return 0, true
	}

	return uint64(diff), false
}

// Reset makes the next packet the first one.
func (r *LossDetector) Reset() {
	r.initialized = false
}
