package jpeg

// StartOfImage is a SOI marker.
type StartOfImage struct{}

// Marshal encodes the marker.
func (StartOfImage) Marshal(buf []byte) []byte {
	return append(buf, 0xFF, MarkerStartOfImage)
}
