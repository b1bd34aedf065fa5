package rtpmjpeg

type headerJPEG struct {
	TypeSpecific   uint8
	FragmentOffset uint32
	Type           uint8
	Quantization   uint8
	Width          int
	Height         int
}

func (h *headerJPEG) unmarshal(byts []byte) (int, error) {
	if len(byts) < 8 {
		return 0, ErrMalformedHeader{Reason: "JPEG header is too short"}
	}

	h.TypeSpecific = byts[0]
	h.FragmentOffset = uint32(byts[1])<<16 | uint32(byts[2])<<8 | uint32(byts[3])

	h.Type = byts[4]
	if h.Type >= 128 {
		return 0, ErrUnsupportedType{Type: h.Type}
	}

	h.Quantization = byts[5]

	h.Width = int(byts[6]) * 8
	h.Height = int(byts[7]) * 8

	if h.Width == 0 || h.Height == 0 {
		return 0, ErrMalformedHeader{Reason: "width and height must not be zero"}
	}

	return 8, nil
}

func (h headerJPEG) marshal(byts []byte) []byte {
	byts = append(byts, h.TypeSpecific)
	byts = append(byts, byte(h.FragmentOffset>>16), byte(h.FragmentOffset>>8), byte(h.FragmentOffset))
	byts = append(byts, h.Type)
	byts = append(byts, h.Quantization)
	byts = append(byts, byte(h.Width/8))
	byts = append(byts, byte(h.Height/8))
	return byts
}

// hasRestartMarker reports whether the restart marker header follows the main header.
func (h headerJPEG) hasRestartMarker() bool {
	return h.Type >= 64 && h.Type <= 127
}
