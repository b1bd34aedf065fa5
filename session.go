package rtspjpeg

import (
	"github.com/bluenviron/rtspjpeg/pkg/base"
)

// Session contains the parameters negotiated with the server.
type Session struct {
	// URL of the stream.
	URL *base.URL

	// host and port of the RTSP server.
	Host     string
	RTSPPort int

	// local UDP ports.
	LocalRTPPort  int
	LocalRTCPPort int

	// UDP ports of the server. They are filled by SETUP.
	RemoteRTPPort  int
	RemoteRTCPPort int

	// session key. It is filled by SETUP.
	Key string

	// CSeq of the last request.
	CSeq int
}
