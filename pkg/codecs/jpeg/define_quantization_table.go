package jpeg

import (
	"fmt"
)

// QuantizationTable is a DQT quantization table.
type QuantizationTable struct {
	ID uint8

	// 0 for 8-bit entries (64 bytes), 1 for 16-bit entries (128 bytes).
	Precision uint8

	Data []byte
}

func (t QuantizationTable) size() int {
	if t.Precision != 0 {
		return 128
	}
	return 64
}

// DefineQuantizationTable is a DQT marker.
type DefineQuantizationTable struct {
	Tables []QuantizationTable
}

// Unmarshal decodes the marker.
func (m *DefineQuantizationTable) Unmarshal(buf []byte) error {
	m.Tables = nil

	for len(buf) != 0 {
		t := QuantizationTable{
			ID:        buf[0] & 0x0F,
			Precision: buf[0] >> 4,
		}
		buf = buf[1:]

		if t.Precision > 1 {
			return fmt.Errorf("precision %d is not supported", t.Precision)
		}

		size := t.size()
		if len(buf) < size {
			return fmt.Errorf("buffer is too short")
		}

		t.Data = buf[:size]
		buf = buf[size:]

		m.Tables = append(m.Tables, t)
	}

	return nil
}

// Marshal encodes the marker.
func (m DefineQuantizationTable) Marshal(buf []byte) []byte {
	buf = append(buf, 0xFF, MarkerDefineQuantizationTable)

	// length
	s := 2
	for _, t := range m.Tables {
		s += 1 + len(t.Data)
	}
	buf = append(buf, byte(s>>8), byte(s))

	for _, t := range m.Tables {
		buf = append(buf, t.Precision<<4|t.ID)
		buf = append(buf, t.Data...)
	}

	return buf
}
