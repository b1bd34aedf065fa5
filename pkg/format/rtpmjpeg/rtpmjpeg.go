// Package rtpmjpeg contains a RTP/M-JPEG decoder and encoder.
// Specification: https://datatracker.ietf.org/doc/html/rfc2435
package rtpmjpeg

const (
	// ClockRate is the clock rate of RTP/M-JPEG timestamps.
	ClockRate = 90000

	// PayloadType is the static RTP payload type of M-JPEG.
	PayloadType = 26

	maxDimension = 2040
)
