package base

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var casesResponse = []struct {
	name string
	byts []byte
	res  Response
}{
	{
		"setup",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 1\r\n" +
			"Session: ABC123;timeout=60\r\n" +
			"Transport: RTP/AVP;unicast;client_port=10000-10001;server_port=6970-6971\r\n" +
			"\r\n"),
		Response{
			StatusCode:    StatusOK,
			StatusMessage: "OK",
			Header: Header{
				"CSeq":      HeaderValue{"1"},
				"Session":   HeaderValue{"ABC123;timeout=60"},
				"Transport": HeaderValue{"RTP/AVP;unicast;client_port=10000-10001;server_port=6970-6971"},
			},
		},
	},
	{
		"not found",
		[]byte("RTSP/1.0 404 Not Found\r\n" +
			"CSeq: 2\r\n" +
			"\r\n"),
		Response{
			StatusCode:    StatusNotFound,
			StatusMessage: "Not Found",
			Header: Header{
				"CSeq": HeaderValue{"2"},
			},
		},
	},
	{
		"with body",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 3\r\n" +
			"Content-Length: 5\r\n" +
			"\r\n" +
			"hello"),
		Response{
			StatusCode:    StatusOK,
			StatusMessage: "OK",
			Header: Header{
				"CSeq":           HeaderValue{"3"},
				"Content-Length": HeaderValue{"5"},
			},
			Body: []byte("hello"),
		},
	},
}

func TestResponseUnmarshal(t *testing.T) {
	for _, ca := range casesResponse {
		t.Run(ca.name, func(t *testing.T) {
			var res Response
			err := res.Unmarshal(bufio.NewReader(bytes.NewBuffer(ca.byts)))
			require.NoError(t, err)
			require.Equal(t, ca.res, res)
		})
	}
}

func TestResponseMarshal(t *testing.T) {
	for _, ca := range casesResponse {
		t.Run(ca.name, func(t *testing.T) {
			buf, err := ca.res.Marshal()
			require.NoError(t, err)
			require.Equal(t, ca.byts, buf)
		})
	}
}

func TestResponseMarshalAutoFillStatus(t *testing.T) {
	res := Response{
		StatusCode: StatusSessionNotFound,
		Header: Header{
			"CSeq": HeaderValue{"4"},
		},
	}

	buf, err := res.Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte("RTSP/1.0 454 Session Not Found\r\n"+
		"CSeq: 4\r\n"+
		"\r\n"), buf)
}

func TestResponseUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		err  string
	}{
		{
			"empty",
			[]byte{},
			"EOF",
		},
		{
			"invalid protocol",
			[]byte("HTTP/1.1 200 OK\r\n"),
			"expected 'RTSP/1.0', got 'HTTP/1.1'",
		},
		{
			"invalid code",
			[]byte("RTSP/1.0 abc OK\r\n"),
			"unable to parse status code",
		},
		{
			"empty status message",
			[]byte("RTSP/1.0 200 \r\n"),
			"empty status message",
		},
		{
			"truncated body",
			[]byte("RTSP/1.0 200 OK\r\nContent-Length: 10\r\n\r\nabc"),
			"unexpected EOF",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var res Response
			err := res.Unmarshal(bufio.NewReader(bytes.NewBuffer(ca.byts)))
			require.EqualError(t, err, ca.err)
		})
	}
}

func FuzzResponseUnmarshal(f *testing.F) {
	for _, ca := range casesResponse {
		f.Add(ca.byts)
	}

	f.Fuzz(func(_ *testing.T, b []byte) {
		var res Response
		res.Unmarshal(bufio.NewReader(bytes.NewBuffer(b))) //nolint:errcheck
	})
}
