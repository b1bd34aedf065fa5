package base

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DefaultPort is the port used when a RTSP URL doesn't specify one.
const DefaultPort = 554

// URL is a RTSP URL.
type URL url.URL

// ParseURL parses a RTSP URL.
func ParseURL(s string) (*URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	if u.Scheme != "rtsp" {
		return nil, fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}

	if u.Opaque != "" {
		return nil, fmt.Errorf("URLs with opaque data are not supported")
	}

	if u.Fragment != "" {
		return nil, fmt.Errorf("URLs with fragments are not supported")
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("host is missing")
	}

	return (*URL)(u), nil
}

// MustParseURL is like ParseURL but panics in case of errors.
func MustParseURL(s string) *URL {
	u, err := ParseURL(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String implements fmt.Stringer.
func (u *URL) String() string {
	return (*url.URL)(u).String()
}

// Clone clones a URL.
func (u *URL) Clone() *URL {
	return (*URL)(&url.URL{
		Scheme:     u.Scheme,
		User:       u.User,
		Host:       u.Host,
		Path:       u.Path,
		RawPath:    u.RawPath,
		ForceQuery: u.ForceQuery,
		RawQuery:   u.RawQuery,
	})
}

// CloneWithoutCredentials clones a URL without its credentials.
func (u *URL) CloneWithoutCredentials() *URL {
	return (*URL)(&url.URL{
		Scheme:     u.Scheme,
		Host:       u.Host,
		Path:       u.Path,
		RawPath:    u.RawPath,
		ForceQuery: u.ForceQuery,
		RawQuery:   u.RawQuery,
	})
}

// Hostname returns the host of the URL, without port.
func (u *URL) Hostname() string {
	return (*url.URL)(u).Hostname()
}

// Port returns the port of the URL, or DefaultPort when it's not specified.
func (u *URL) Port() (int, error) {
	ps := (*url.URL)(u).Port()
	if ps == "" {
		return DefaultPort, nil
	}

	tmp, err := strconv.ParseUint(ps, 10, 16)
	if err != nil || tmp == 0 {
		return 0, fmt.Errorf("invalid port '%s'", ps)
	}

	return int(tmp), nil
}

// HostPort returns the address of the RTSP server, always including the port.
func (u *URL) HostPort() (string, error) {
	port, err := u.Port()
	if err != nil {
		return "", err
	}

	return net.JoinHostPort(u.Hostname(), strconv.FormatInt(int64(port), 10)), nil
}
