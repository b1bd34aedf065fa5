// Package headers contains various RTSP headers.
package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/rtspjpeg/pkg/base"
)

// Session is a Session header.
type Session struct {
	// session id
	Session string

	// (optional) a timeout
	Timeout *uint
}

// Unmarshal decodes a Session header.
// The session id is the value up to the first ';'.
// Invalid parameters are skipped.
func (h *Session) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	parts := strings.Split(v[0], ";")

	h.Session = strings.TrimSpace(parts[0])
	if h.Session == "" {
		return fmt.Errorf("invalid value (%v)", v)
	}

	h.Timeout = nil

	// parameters are optional: the ones that can't be parsed are ignored
	for _, part := range parts[1:] {
		key, strValue, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key != "timeout" {
			continue
		}

		iv, err := strconv.ParseUint(strValue, 10, 32)
		if err != nil {
			continue
		}
		uiv := uint(iv)

		h.Timeout = &uiv
	}

	return nil
}

// Marshal encodes a Session header.
func (h Session) Marshal() base.HeaderValue {
	val := h.Session

	if h.Timeout != nil {
		val += ";timeout=" + strconv.FormatUint(uint64(*h.Timeout), 10)
	}

	return base.HeaderValue{val}
}
