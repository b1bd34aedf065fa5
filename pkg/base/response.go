package base

import (
	"bufio"
	"fmt"
	"strconv"
)

// StatusCode is the status code of a RTSP response.
type StatusCode int

// status codes.
const (
	StatusOK                        StatusCode = 200
	StatusBadRequest                StatusCode = 400
	StatusUnauthorized              StatusCode = 401
	StatusNotFound                  StatusCode = 404
	StatusSessionNotFound           StatusCode = 454
	StatusMethodNotValidInThisState StatusCode = 455
	StatusUnsupportedTransport      StatusCode = 461
	StatusInternalServerError       StatusCode = 500
	StatusNotImplemented            StatusCode = 501
)

// StatusMessages contains the status messages associated with each status code.
var StatusMessages = map[StatusCode]string{
	StatusOK:                        "OK",
	StatusBadRequest:                "Bad Request",
	StatusUnauthorized:              "Unauthorized",
	StatusNotFound:                  "Not Found",
	StatusSessionNotFound:           "Session Not Found",
	StatusMethodNotValidInThisState: "Method Not Valid In This State",
	StatusUnsupportedTransport:      "Unsupported Transport",
	StatusInternalServerError:       "Internal Server Error",
	StatusNotImplemented:            "Not Implemented",
}

// Response is a RTSP response.
type Response struct {
	// numeric status code
	StatusCode StatusCode

	// status message
	StatusMessage string

	// map of header values
	Header Header

	// optional body
	Body []byte
}

// Unmarshal reads a response.
func (res *Response) Unmarshal(br *bufio.Reader) error {
	byts, err := readBytesLimited(br, ' ', 255)
	if err != nil {
		return err
	}
	proto := string(byts[:len(byts)-1])

	if proto != rtspProtocol10 {
		return fmt.Errorf("expected '%s', got '%s'", rtspProtocol10, proto)
	}

	byts, err = readBytesLimited(br, ' ', 4)
	if err != nil {
		return err
	}
	statusCodeStr := string(byts[:len(byts)-1])

	tmp, err := strconv.ParseUint(statusCodeStr, 10, 31)
	if err != nil {
		return fmt.Errorf("unable to parse status code")
	}
	res.StatusCode = StatusCode(tmp)

	byts, err = readBytesLimited(br, '\r', 255)
	if err != nil {
		return err
	}
	res.StatusMessage = string(byts[:len(byts)-1])

	if len(res.StatusMessage) == 0 {
		return fmt.Errorf("empty status message")
	}

	err = readByteEqual(br, '\n')
	if err != nil {
		return err
	}

	err = res.Header.unmarshal(br)
	if err != nil {
		return err
	}

	res.Body, err = readBody(res.Header, br)
	return err
}

// Marshal encodes a Response.
func (res Response) Marshal() ([]byte, error) {
	if res.StatusMessage == "" {
		if status, ok := StatusMessages[res.StatusCode]; ok {
			res.StatusMessage = status
		}
	}

	buf := []byte(rtspProtocol10 + " " + strconv.FormatInt(int64(res.StatusCode), 10) + " " + res.StatusMessage + "\r\n")

	header := res.Header
	if len(res.Body) != 0 {
		header = make(Header, len(res.Header)+1)
		for k, v := range res.Header {
			header[k] = v
		}
		header["Content-Length"] = HeaderValue{strconv.FormatInt(int64(len(res.Body)), 10)}
	}

	buf = append(buf, header.marshal()...)
	buf = append(buf, res.Body...)

	return buf, nil
}

// String implements fmt.Stringer.
func (res Response) String() string {
	buf, _ := res.Marshal()
	return string(buf)
}
