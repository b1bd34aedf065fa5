package base

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var casesHeader = []struct {
	name   string
	dec    []byte
	enc    []byte
	header Header
}{
	{
		"single",
		[]byte("Range: npt=0-\r\n" +
			"Session: ABC123\r\n" +
			"\r\n"),
		[]byte("Range: npt=0-\r\n" +
			"Session: ABC123\r\n" +
			"\r\n"),
		Header{
			"Session": HeaderValue{"ABC123"},
			"Range":   HeaderValue{"npt=0-"},
		},
	},
	{
		"multiple",
		[]byte("WWW-Authenticate: Digest realm=\"4419b63f5e51\"\r\n" +
			"WWW-Authenticate: Basic realm=\"4419b63f5e51\"\r\n" +
			"\r\n"),
		[]byte("WWW-Authenticate: Digest realm=\"4419b63f5e51\"\r\n" +
			"WWW-Authenticate: Basic realm=\"4419b63f5e51\"\r\n" +
			"\r\n"),
		Header{
			"WWW-Authenticate": HeaderValue{
				`Digest realm="4419b63f5e51"`,
				`Basic realm="4419b63f5e51"`,
			},
		},
	},
	{
		"normalization",
		[]byte(
			"Testing:\r\n" +
				"transport: RTP/AVP;unicast\r\n" +
				"content-length:value\r\n" +
				"cseq:  value\r\n" +
				"rtp-info: value\r\n" +
				"\r\n"),
		[]byte("CSeq: value\r\n" +
			"Content-Length: value\r\n" +
			"RTP-Info: value\r\n" +
			"Testing: \r\n" +
			"Transport: RTP/AVP;unicast\r\n" +
			"\r\n"),
		Header{
			"Content-Length": HeaderValue{"value"},
			"Transport":      HeaderValue{"RTP/AVP;unicast"},
			"CSeq":           HeaderValue{"value"},
			"Testing":        HeaderValue{""},
			"RTP-Info":       HeaderValue{"value"},
		},
	},
}

func TestHeaderUnmarshal(t *testing.T) {
	for _, ca := range casesHeader {
		t.Run(ca.name, func(t *testing.T) {
			var h Header
			err := h.unmarshal(bufio.NewReader(bytes.NewBuffer(ca.dec)))
			require.NoError(t, err)
			require.Equal(t, ca.header, h)
		})
	}
}

func TestHeaderMarshal(t *testing.T) {
	for _, ca := range casesHeader {
		t.Run(ca.name, func(t *testing.T) {
			buf := ca.header.marshal()
			require.Equal(t, ca.enc, buf)
		})
	}
}

func TestHeaderUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		dec  []byte
		err  string
	}{
		{
			"empty",
			[]byte{},
			"EOF",
		},
		{
			"missing value",
			[]byte("Testing\r\n"),
			"value is missing",
		},
		{
			"invalid line ending",
			[]byte("Testing: val\rA"),
			"expected '\n', got 'A'",
		},
		{
			"too many entries",
			func() []byte {
				var ret []byte
				for i := 0; i < 300; i++ {
					ret = append(ret, []byte("Key"+string(rune('a'+i%26))+string(rune('a'+i/26))+": val\r\n")...)
				}
				return append(ret, []byte("\r\n")...)
			}(),
			"headers count exceeds 255",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var h Header
			err := h.unmarshal(bufio.NewReader(bytes.NewBuffer(ca.dec)))
			require.EqualError(t, err, ca.err)
		})
	}
}

func FuzzHeaderUnmarshal(f *testing.F) {
	f.Add([]byte("Key: val\r\n\r\n"))

	f.Fuzz(func(_ *testing.T, b []byte) {
		var h Header
		h.unmarshal(bufio.NewReader(bytes.NewBuffer(b))) //nolint:errcheck
	})
}
