package rtpmjpeg

// tableSize returns the size of the i-th table, given the precision bitmask.
func tableSize(precision uint8, i int) int {
	if (precision>>i)&0x01 != 0 {
		return 128
	}
	return 64
}

// headerQuantizationTable contains a luma table and an optional chroma table.
type headerQuantizationTable struct {
	MBZ       uint8
	Precision uint8
	Tables    [][]byte
}

func (h *headerQuantizationTable) unmarshal(byts []byte) (int, error) {
	if len(byts) < 4 {
		return 0, ErrMalformedHeader{Reason: "quantization table header is too short"}
	}

	h.MBZ = byts[0]
	h.Precision = byts[1]

	length := int(byts[2])<<8 | int(byts[3])
	if length == 0 {
		return 0, ErrMalformedHeader{Reason: "quantization table length is zero"}
	}

	if (len(byts) - 4) < length {
		return 0, ErrMalformedHeader{Reason: "quantization tables are truncated"}
	}

	tables := byts[4 : 4+length]
	h.Tables = nil

	for i := 0; i < 2 && len(tables) != 0; i++ {
		size := tableSize(h.Precision, i)
		if len(tables) < size {
			return 0, ErrMalformedHeader{Reason: "quantization table length is too short for the declared tables"}
		}

		h.Tables = append(h.Tables, tables[:size])
		tables = tables[size:]
	}

	return 4 + length, nil
}

func (h headerQuantizationTable) marshal(byts []byte) []byte {
	byts = append(byts, h.MBZ)
	byts = append(byts, h.Precision)

	l := 0
	for _, t := range h.Tables {
		l += len(t)
	}
	byts = append(byts, byte(l>>8), byte(l))

	for _, t := range h.Tables {
		byts = append(byts, t...)
	}

	return byts
}
