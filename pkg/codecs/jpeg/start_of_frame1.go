package jpeg

import (
	"fmt"
)

// StartOfFrame1 is a SOF0 (baseline DCT) marker.
//
// Type follows RFC 2435 semantics: when (Type & 0x3f) == 0 the frame is
// grayscale with a single component, otherwise it is YUV 4:2:0
// with three components.
type StartOfFrame1 struct {
	Type                   uint8
	Width                  int
	Height                 int
	QuantizationTableCount uint8
}

// ComponentCount returns the number of color components of the frame.
func (m StartOfFrame1) ComponentCount() int {
	if (m.Type & 0x3f) == 0 {
		return 1
	}
	return 3
}

// Unmarshal decodes the marker.
func (m *StartOfFrame1) Unmarshal(buf []byte) error {
	if len(buf) != 9 && len(buf) != 15 {
		return fmt.Errorf("unsupported SOF size of %d", len(buf))
	}

	precision := buf[0]
	if precision != 8 {
		return fmt.Errorf("precision %d is not supported", precision)
	}

	m.Height = int(buf[1])<<8 | int(buf[2])
	m.Width = int(buf[3])<<8 | int(buf[4])

	components := buf[5]

	switch {
	case components == 1 && len(buf) == 9:
		m.Type = 0
		m.QuantizationTableCount = 1

	case components == 3 && len(buf) == 15:
		samp0 := buf[7]
		if samp0 != 0x22 {
			return fmt.Errorf("samp0 %x is not supported", samp0)
		}
		m.Type = 1

		samp1 := buf[10]
		if samp1 != 0x11 {
			return fmt.Errorf("samp1 %x is not supported", samp1)
		}

		samp2 := buf[13]
		if samp2 != 0x11 {
			return fmt.Errorf("samp2 %x is not supported", samp2)
		}

		if buf[11] != 0 || buf[14] != 0 {
			m.QuantizationTableCount = 2
		} else {
			m.QuantizationTableCount = 1
		}

	default:
		return fmt.Errorf("number of components = %d is not supported", components)
	}

	return nil
}

// Marshal encodes the marker.
func (m StartOfFrame1) Marshal(buf []byte) []byte {
	count := m.ComponentCount()

	s := 8 + 3*count
	buf = append(buf, 0xFF, MarkerStartOfFrame1)
	buf = append(buf, byte(s>>8), byte(s))               // length
	buf = append(buf, 8)                                 // precision
	buf = append(buf, byte(m.Height>>8), byte(m.Height)) // height
	buf = append(buf, byte(m.Width>>8), byte(m.Width))   // width
	buf = append(buf, byte(count))                       // components

	if count == 1 {
		return append(buf, 0, 0x11, 0)
	}

	var chromaTable byte
	if m.QuantizationTableCount == 2 {
		chromaTable = 1
	}

	buf = append(buf, 0, 0x22, 0)           // component 0
	buf = append(buf, 1, 0x11, chromaTable) // component 1
	buf = append(buf, 2, 0x11, chromaTable) // component 2
	return buf
}
