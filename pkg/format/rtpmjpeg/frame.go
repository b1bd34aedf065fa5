package rtpmjpeg

import (
	"fmt"

	mcjpeg "github.com/bluenviron/mediacommon/v2/pkg/codecs/jpeg"

	"github.com/bluenviron/rtspjpeg/pkg/codecs/jpeg"
)

// Frame is a JPEG image in the form it takes inside RTP/M-JPEG payloads:
// JPEG headers are replaced by a few parameters and only the scan data is kept.
type Frame struct {
	// image type: 0 for a single component, 1 for YUV 4:2:0.
	// The restart flag (64) is added by the encoder when RestartInterval is not zero.
	Type uint8

	// quantization. Tables are sent in-band only when it's 128 or greater.
	Quantization uint8

	// image size, a multiple of 8.
	Width  int
	Height int

	// bitmask of tables with 16-bit entries (bit 0 luma, bit 1 chroma).
	Precision uint8

	// quantization tables, luma first.
	Tables [][]byte

	// restart interval, zero when restart markers are not used.
	RestartInterval uint16

	// entropy-coded data.
	Scan []byte
}

func nextSegment(buf []byte) (byte, []byte, []byte, error) {
	if len(buf) < 2 || buf[0] != 0xFF {
		return 0, nil, nil, fmt.Errorf("invalid image")
	}

	if len(buf) < 4 {
		return 0, nil, nil, fmt.Errorf("image is too short")
	}

	l := int(buf[2])<<8 | int(buf[3])
	if l < 2 || len(buf) < 2+l {
		return 0, nil, nil, fmt.Errorf("image is too short")
	}

	return buf[1], buf[4 : 2+l], buf[2+l:], nil
}

// FrameFromJPEG extracts a Frame from a baseline JPEG image.
// Quantization tables are always sent in-band (Q = 255).
func FrameFromJPEG(image []byte) (*Frame, error) {
	if len(image) < 2 || image[0] != 0xFF || image[1] != mcjpeg.MarkerStartOfImage {
		return nil, fmt.Errorf("SOI not found")
	}
	buf := image[2:]

	f := &Frame{Quantization: 255}
	var tables [4]*jpeg.QuantizationTable
	sofFound := false

	for len(buf) != 0 && f.Scan == nil {
		marker, payload, rest, err := nextSegment(buf)
		if err != nil {
			return nil, err
		}
		buf = rest

		switch {
		case marker >= 0xE0 && marker <= 0xEF, // APPn
			marker == mcjpeg.MarkerComment,
			marker == mcjpeg.MarkerDefineHuffmanTable: // Annex K tables are assumed

		case marker == mcjpeg.MarkerDefineQuantizationTable:
			var dqt jpeg.DefineQuantizationTable
			err = dqt.Unmarshal(payload)
			if err != nil {
				return nil, err
			}

			for _, t := range dqt.Tables {
				if int(t.ID) >= len(tables) {
					return nil, fmt.Errorf("invalid quantization table ID %d", t.ID)
				}
				tables[t.ID] = &t
			}

		case marker == mcjpeg.MarkerDefineRestartInterval:
			var dri mcjpeg.DefineRestartInterval
			err = dri.Unmarshal(payload)
			if err != nil {
				return nil, err
			}
			f.RestartInterval = dri.Interval

		case marker == mcjpeg.MarkerStartOfFrame1:
			var sof jpeg.StartOfFrame1
			err = sof.Unmarshal(payload)
			if err != nil {
				return nil, err
			}

			f.Type = sof.Type
			f.Width = sof.Width
			f.Height = sof.Height
			sofFound = true

		case marker == mcjpeg.MarkerStartOfScan:
			f.Scan = rest

		default:
			return nil, fmt.Errorf("unknown marker: 0x%.2x", marker)
		}
	}

	if !sofFound {
		return nil, fmt.Errorf("SOF not found")
	}

	if len(f.Scan) == 0 {
		return nil, fmt.Errorf("image data not found")
	}

	for _, t := range tables {
		if t == nil {
			break
		}
		f.Precision |= t.Precision << len(f.Tables)
		f.Tables = append(f.Tables, t.Data)
	}

	if len(f.Tables) == 0 || len(f.Tables) > 2 {
		return nil, fmt.Errorf("%d quantization tables are not supported", len(f.Tables))
	}

	return f, nil
}
