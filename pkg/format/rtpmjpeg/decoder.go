package rtpmjpeg

import (
	"github.com/bluenviron/rtspjpeg/pkg/codecs/jpeg"
)

// Decoder is a RTP/M-JPEG decoder.
// It rebuilds a standalone JPEG image from the payloads of the RTP packets of a frame,
// by prepending the headers that RFC 2435 strips before transmission.
type Decoder struct {
	huffmanTables []byte
}

// Init initializes the decoder.
func (d *Decoder) Init() error {
	d.huffmanTables = marshalHuffmanTables(nil)
	return nil
}

// Decode decodes an image from the payloads of all RTP packets of a frame,
// in sequence order.
func (d *Decoder) Decode(fragments [][]byte) ([]byte, error) {
	if len(fragments) == 0 {
		return nil, ErrMalformedHeader{Reason: "no fragments"}
	}

	var first headerJPEG
	var restart headerRestartMarker
	var qth headerQuantizationTable
	scans := make([][]byte, len(fragments))
	scanSize := 0

	for i, frag := range fragments {
		var jh headerJPEG
		n, err := jh.unmarshal(frag)
		if err != nil {
			return nil, err
		}
		frag = frag[n:]

		if jh.hasRestartMarker() {
			var rh headerRestartMarker
			n, err = rh.unmarshal(frag)
			if err != nil {
				return nil, err
			}
			frag = frag[n:]

			if i == 0 {
				restart = rh
			}
		}

		if i == 0 {
			if jh.FragmentOffset != 0 {
				return nil, ErrFragmentOffset{Expected: 0, Value: jh.FragmentOffset}
			}

			if jh.Quantization < 128 {
				return nil, ErrUnsupportedQuantization{Quantization: jh.Quantization}
			}

			n, err = qth.unmarshal(frag)
			if err != nil {
				return nil, err
			}
			frag = frag[n:]

			first = jh
		} else if int(jh.FragmentOffset) != scanSize {
			return nil, ErrFragmentOffset{Expected: uint32(scanSize), Value: jh.FragmentOffset}
		}

		scans[i] = frag
		scanSize += len(frag)
	}

	buf := make([]byte, 0, 1024+scanSize)

	buf = jpeg.StartOfImage{}.Marshal(buf)

	for i, t := range qth.Tables {
		buf = jpeg.DefineQuantizationTable{
			Tables: []jpeg.QuantizationTable{{
				ID:        uint8(i),
				Precision: (qth.Precision >> i) & 0x01,
				Data:      t,
			}},
		}.Marshal(buf)
	}

	if restart.Interval != 0 {
		buf = jpeg.DefineRestartInterval{
			Interval: restart.Interval,
		}.Marshal(buf)
	}

	sof := jpeg.StartOfFrame1{
		Type:                   first.Type,
		Width:                  first.Width,
		Height:                 first.Height,
		QuantizationTableCount: uint8(len(qth.Tables)),
	}
	buf = sof.Marshal(buf)

	buf = append(buf, d.huffmanTables...)

	buf = jpeg.StartOfScan{
		ComponentCount: sof.ComponentCount(),
	}.Marshal(buf)

	for _, scan := range scans {
		buf = append(buf, scan...)
	}

	if scanSize < 2 || !jpeg.HasEndOfImage(buf) {
		buf = jpeg.EndOfImage{}.Marshal(buf)
	}

	return buf, nil
}
