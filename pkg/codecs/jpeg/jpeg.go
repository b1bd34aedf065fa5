// Package jpeg contains JPEG/JFIF markers.
package jpeg

// standard JPEG markers.
const (
	MarkerStartOfImage            = 0xD8
	MarkerDefineQuantizationTable = 0xDB
	MarkerDefineHuffmanTable      = 0xC4
	MarkerDefineRestartInterval   = 0xDD
	MarkerStartOfFrame1           = 0xC0
	MarkerStartOfScan             = 0xDA
	MarkerEndOfImage              = 0xD9
)

// EndOfImage is a EOI marker.
type EndOfImage struct{}

// Marshal encodes the marker.
func (EndOfImage) Marshal(buf []byte) []byte {
	return append(buf, 0xFF, MarkerEndOfImage)
}

// HasEndOfImage checks whether a buffer is terminated by a EOI marker.
func HasEndOfImage(buf []byte) bool {
	l := len(buf)
	return l >= 2 && buf[l-2] == 0xFF && buf[l-1] == MarkerEndOfImage
}
