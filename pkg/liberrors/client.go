// Package liberrors contains errors returned by the library.
package liberrors

import (
	"fmt"

	"github.com/bluenviron/rtspjpeg/pkg/base"
)

// ErrClientWrongState is returned in case of a wrong client state.
type ErrClientWrongState struct {
	AllowedList []fmt.Stringer
	State       fmt.Stringer
}

// Error implements the error interface.
func (e ErrClientWrongState) Error() string {
	return fmt.Sprintf("must be in state %v, while is in state %v",
		e.AllowedList, e.State)
}

// ErrClientTerminated is returned when the client has been closed.
type ErrClientTerminated struct{}

// Error implements the error interface.
func (e ErrClientTerminated) Error() string {
	return "terminated"
}

// ErrClientProtocol is returned when the server replies with something that
// doesn't allow the session to continue. It is always fatal.
type ErrClientProtocol struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientProtocol) Error() string {
	return fmt.Sprintf("protocol error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientProtocol) Unwrap() error {
	return e.Err
}

// ErrClientWrongStatusCode is returned in case of a wrong status code.
type ErrClientWrongStatusCode struct {
	Code    base.StatusCode
	Message string
}

// Error implements the error interface.
func (e ErrClientWrongStatusCode) Error() string {
	return fmt.Sprintf("wrong status code: %d (%s)", e.Code, e.Message)
}

// ErrClientCSeqMismatch is returned when the CSeq of a response doesn't match the one of the request.
type ErrClientCSeqMismatch struct {
	Expected int
	Value    string
}

// Error implements the error interface.
func (e ErrClientCSeqMismatch) Error() string {
	return fmt.Sprintf("wrong CSeq, expected %d, got '%s'", e.Expected, e.Value)
}

// ErrClientSessionHeaderMissing is returned when the Session header is missing.
type ErrClientSessionHeaderMissing struct{}

// Error implements the error interface.
func (e ErrClientSessionHeaderMissing) Error() string {
	return "Session header is missing"
}

// ErrClientSessionHeaderInvalid is returned in case of an invalid session header.
type ErrClientSessionHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSessionHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid session header: %v", e.Err)
}

// ErrClientTransportHeaderMissing is returned when the Transport header is missing.
type ErrClientTransportHeaderMissing struct{}

// Error implements the error interface.
func (e ErrClientTransportHeaderMissing) Error() string {
	return "Transport header is missing"
}

// ErrClientTransportHeaderInvalid is returned in case the transport header is invalid.
type ErrClientTransportHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientTransportHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid transport header: %v", e.Err)
}

// ErrClientServerPortsNotProvided is returned in case the server ports have not been provided.
type ErrClientServerPortsNotProvided struct{}

// Error implements the error interface.
func (e ErrClientServerPortsNotProvided) Error() string {
	return "server ports have not been provided"
}

// ErrClientServerPortsZero is returned when one of the server ports is zero.
type ErrClientServerPortsZero struct{}

// Error implements the error interface.
func (e ErrClientServerPortsZero) Error() string {
	return "server ports must be both zero or both not zero"
}

// ErrClientRTPPortOdd is returned when the configured RTP port is odd.
type ErrClientRTPPortOdd struct {
	Port int
}

// Error implements the error interface.
func (e ErrClientRTPPortOdd) Error() string {
	return fmt.Sprintf("RTP port must be even, got %d", e.Port)
}

// ErrClientMalformedPacket is returned when a RTP or RTCP datagram cannot be decoded.
// The datagram is skipped and the stream continues.
type ErrClientMalformedPacket struct {
	Protocol string
	Err      error
}

// Error implements the error interface.
func (e ErrClientMalformedPacket) Error() string {
	return fmt.Sprintf("malformed %s packet: %v", e.Protocol, e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientMalformedPacket) Unwrap() error {
	return e.Err
}

// ErrClientFrameDecode is returned when a reassembled frame cannot be depayloaded.
type ErrClientFrameDecode struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientFrameDecode) Error() string {
	return fmt.Sprintf("unable to decode frame: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientFrameDecode) Unwrap() error {
	return e.Err
}

// ErrClientRTPPacketReordered is returned when a RTP packet older than the expected one
// is received. The frame being reassembled is discarded.
type ErrClientRTPPacketReordered struct {
	SequenceNumber uint16
}

// Error implements the error interface.
func (e ErrClientRTPPacketReordered) Error() string {
	return fmt.Sprintf("received duplicate or reordered RTP packet (sequence number %d), frame discarded",
		e.SequenceNumber)
}

// ErrClientUDPTimeout is returned when no UDP datagrams have been received within the stream timeout.
type ErrClientUDPTimeout struct{}

// Error implements the error interface.
func (e ErrClientUDPTimeout) Error() string {
	return "UDP timeout"
}

// ErrClientSinkQueueFull is returned when the frame sink is too slow and a frame has been dropped.
type ErrClientSinkQueueFull struct{}

// Error implements the error interface.
func (e ErrClientSinkQueueFull) Error() string {
	return "frame sink queue is full, frame discarded"
}

// ErrClientSink wraps an error returned by the frame sink.
type ErrClientSink struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSink) Error() string {
	return fmt.Sprintf("frame sink error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientSink) Unwrap() error {
	return e.Err
}
