// Package ntp contains functions to encode and decode timestamps to/from NTP format.
package ntp

import (
	"math"
	"time"
)

// seconds between 1st January 1900 and 1st January 1970.
const unixEpochOffset = 2208988800

// Encode encodes a timestamp in NTP format.
// Specification: RFC3550, section 4
func Encode(t time.Time) uint64 {
	ntp := uint64(t.UnixNano()) + unixEpochOffset*1000000000
	secs := ntp / 1000000000
	fractional := uint64(math.Round(float64((ntp%1000000000)*(1<<32)) / 1000000000))
	return secs<<32 | fractional
}

// Decode decodes a timestamp from NTP format.
// The higher 32 bits are seconds since 1900, the lower 32 bits are the fractional part.
// Specification: RFC3550, section 4
func Decode(v uint64) time.Time {
	secs := int64((v >> 32) - unixEpochOffset)
	nanos := int64(math.Round(float64(v&0xFFFFFFFF) * 1000000000 / (1 << 32)))
	return time.Unix(secs, nanos)
}

// Middle returns the middle 32 bits of a NTP timestamp, as used in
// the LSR field of RTCP receiver reports.
func Middle(v uint64) uint32 {
	return uint32(v >> 16)
}
