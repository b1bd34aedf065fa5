package jpeg

import (
	"fmt"
)

// StartOfScan is a SOS marker.
// The luma component uses Huffman tables 0, chroma components use tables 1.
type StartOfScan struct {
	ComponentCount int
}

// Unmarshal decodes the marker.
func (m *StartOfScan) Unmarshal(buf []byte) error {
	if len(buf) < 1 {
		return fmt.Errorf("buffer is too short")
	}

	count := int(buf[0])
	if count != 1 && count != 3 {
		return fmt.Errorf("number of components = %d is not supported", count)
	}

	if len(buf) != 4+2*count {
		return fmt.Errorf("unsupported SOS size of %d", len(buf))
	}

	m.ComponentCount = count
	return nil
}

// Marshal encodes the marker.
func (m StartOfScan) Marshal(buf []byte) []byte {
	s := 6 + 2*m.ComponentCount
	buf = append(buf, 0xFF, MarkerStartOfScan)
	buf = append(buf, byte(s>>8), byte(s)) // length
	buf = append(buf, byte(m.ComponentCount))

	for i := 0; i < m.ComponentCount; i++ {
		if i == 0 {
			buf = append(buf, 0, 0x00)
		} else {
			buf = append(buf, byte(i), 0x11)
		}
	}

	buf = append(buf, 0, 63, 0) // spectral selection, successive approximation
	return buf
}
