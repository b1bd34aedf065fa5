package rtpmjpeg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func concat(bufs ...[]byte) []byte {
	var ret []byte
	for _, b := range bufs {
		ret = append(ret, b...)
	}
	return ret
}

var casesQuantizationTable = []struct {
	name string
	enc  []byte
	dec  headerQuantizationTable
}{
	{
		"two 8-bit tables",
		concat(
			[]byte{0x0, 0x0, 0x0, 0x80},
			bytes.Repeat([]byte{0x01}, 64),
			bytes.Repeat([]byte{0x02}, 64),
		),
		headerQuantizationTable{
			Tables: [][]byte{
				bytes.Repeat([]byte{0x01}, 64),
				bytes.Repeat([]byte{0x02}, 64),
			},
		},
	},
	{
		"single 8-bit table",
		concat(
			[]byte{0x0, 0x0, 0x0, 0x40},
			bytes.Repeat([]byte{0x03}, 64),
		),
		headerQuantizationTable{
			Tables: [][]byte{
				bytes.Repeat([]byte{0x03}, 64),
			},
		},
	},
	{
		"16-bit luma table",
		concat(
			[]byte{0x0, 0x1, 0x0, 0xc0},
			bytes.Repeat([]byte{0x00, 0x04}, 64),
			bytes.Repeat([]byte{0x05}, 64),
		),
		headerQuantizationTable{
			Precision: 1,
			Tables: [][]byte{
				bytes.Repeat([]byte{0x00, 0x04}, 64),
				bytes.Repeat([]byte{0x05}, 64),
			},
		},
	},
	{
		"16-bit luma and chroma tables",
		concat(
			[]byte{0x0, 0x3, 0x1, 0x0},
			bytes.Repeat([]byte{0x00, 0x06}, 64),
			bytes.Repeat([]byte{0x00, 0x07}, 64),
		),
		headerQuantizationTable{
			Precision: 3,
			Tables: [][]byte{
				bytes.Repeat([]byte{0x00, 0x06}, 64),
				bytes.Repeat([]byte{0x00, 0x07}, 64),
			},
		},
	},
}

func TestHeaderQuantizationTableUnmarshal(t *testing.T) {
	for _, ca := range casesQuantizationTable {
		t.Run(ca.name, func(t *testing.T) {
			var h headerQuantizationTable
			n, err := h.unmarshal(concat(ca.enc, []byte{0xAA, 0xBB}))
			require.NoError(t, err)
			require.Equal(t, len(ca.enc), n)
			require.Equal(t, ca.dec, h)
		})
	}
}

func TestHeaderQuantizationTableMarshal(t *testing.T) {
	for _, ca := range casesQuantizationTable {
		t.Run(ca.name, func(t *testing.T) {
			buf := ca.dec.marshal(nil)
			require.Equal(t, ca.enc, buf)
		})
	}
}

func TestHeaderQuantizationTableUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		err  error
	}{
		{
			"too short",
			[]byte{0x0, 0x0, 0x0},
			ErrMalformedHeader{Reason: "quantization table header is too short"},
		},
		{
			"zero length",
			[]byte{0x0, 0x0, 0x0, 0x0},
			ErrMalformedHeader{Reason: "quantization table length is zero"},
		},
		{
			"truncated",
			concat([]byte{0x0, 0x0, 0x0, 0x80}, bytes.Repeat([]byte{0x01}, 100)),
			ErrMalformedHeader{Reason: "quantization tables are truncated"},
		},
		{
			"length shorter than luma table",
			concat([]byte{0x0, 0x1, 0x0, 0x40}, bytes.Repeat([]byte{0x01}, 64)),
			ErrMalformedHeader{Reason: "quantization table length is too short for the declared tables"},
		},
		{
			"partial chroma table",
			concat([]byte{0x0, 0x0, 0x0, 0x60}, bytes.Repeat([]byte{0x01}, 96)),
			ErrMalformedHeader{Reason: "quantization table length is too short for the declared tables"},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var h headerQuantizationTable
			_, err := h.unmarshal(ca.byts)
			require.Equal(t, ca.err, err)
		})
	}
}
