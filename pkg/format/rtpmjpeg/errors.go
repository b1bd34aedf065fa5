package rtpmjpeg

import (
	"fmt"
)

// ErrUnsupportedQuantization is returned when a frame doesn't carry
// in-band quantization tables (Q < 128).
type ErrUnsupportedQuantization struct {
	Quantization uint8
}

// Error implements the error interface.
func (e ErrUnsupportedQuantization) Error() string {
	return fmt.Sprintf("quantization %d is not supported, in-band tables are required", e.Quantization)
}

// ErrUnsupportedType is returned in case of a dynamically-assigned JPEG type.
type ErrUnsupportedType struct {
	Type uint8
}

// Error implements the error interface.
func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("type %d is not supported", e.Type)
}

// ErrFragmentOffset is returned when the offset of a fragment doesn't match
// the amount of data received so far.
type ErrFragmentOffset struct {
	Expected uint32
	Value    uint32
}

// Error implements the error interface.
func (e ErrFragmentOffset) Error() string {
	return fmt.Sprintf("wrong fragment offset %d, expected %d", e.Value, e.Expected)
}

// ErrMalformedHeader is returned when a RTP/M-JPEG header is truncated or invalid.
type ErrMalformedHeader struct {
	Reason string
}

// Error implements the error interface.
func (e ErrMalformedHeader) Error() string {
	return "malformed header: " + e.Reason
}
