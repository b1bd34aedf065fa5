package headers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bluenviron/rtspjpeg/pkg/base"
)

// Range is a Range header expressed in Normal Play Time.
type Range struct {
	// start of the range
	Start time.Duration

	// (optional) end of the range
	End *time.Duration
}

func unmarshalNPT(s string) (time.Duration, error) {
	if s == "now" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid NPT time (%v)", s)
	}

	return time.Duration(f * float64(time.Second)), nil
}

func marshalNPT(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Unmarshal decodes a Range header.
func (h *Range) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	// strip a trailing time= parameter
	val, _, _ := strings.Cut(v[0], ";")

	kind, times, ok := strings.Cut(val, "=")
	if !ok || kind != "npt" {
		return fmt.Errorf("unsupported range (%v)", v[0])
	}

	start, end, ok := strings.Cut(times, "-")
	if !ok {
		return fmt.Errorf("invalid value (%v)", v[0])
	}

	var err error
	h.Start, err = unmarshalNPT(start)
	if err != nil {
		return err
	}

	h.End = nil
	if end != "" {
		e, err := unmarshalNPT(end)
		if err != nil {
			return err
		}
		h.End = &e
	}

	return nil
}

// Marshal encodes a Range header.
func (h Range) Marshal() base.HeaderValue {
	v := "npt=" + marshalNPT(h.Start) + "-"
	if h.End != nil {
		v += marshalNPT(*h.End)
	}
	return base.HeaderValue{v}
}
