package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/rtspjpeg/pkg/base"
)

// TransportProtocol is a transport protocol.
type TransportProtocol int

// transport protocols.
const (
	TransportProtocolUDP TransportProtocol = iota
	TransportProtocolTCP
)

// TransportDelivery is a delivery method.
type TransportDelivery int

// transport delivery methods.
const (
	TransportDeliveryUnicast TransportDelivery = iota
	TransportDeliveryMulticast
)

// Transport is a Transport header.
type Transport struct {
	// protocol of the stream
	Protocol TransportProtocol

	// (optional) delivery method of the stream
	Delivery *TransportDelivery

	// (optional) client ports
	ClientPorts *[2]int

	// (optional) server ports
	ServerPorts *[2]int

	// (optional) SSRC of the packets of the stream
	SSRC *uint32
}

func parsePorts(val string) (*[2]int, error) {
	first, second, hasSecond := strings.Cut(val, "-")

	port1, err := strconv.ParseUint(first, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid ports (%v)", val)
	}

	if !hasSecond {
		// single port: RTCP is on the next one
		return &[2]int{int(port1), int(port1 + 1)}, nil
	}

	port2, err := strconv.ParseUint(second, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid ports (%v)", val)
	}

	return &[2]int{int(port1), int(port2)}, nil
}

// Unmarshal decodes a Transport header.
func (h *Transport) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	parts := strings.Split(v[0], ";")

	switch parts[0] {
	case "RTP/AVP", "RTP/AVP/UDP":
		h.Protocol = TransportProtocolUDP

	case "RTP/AVP/TCP":
		h.Protocol = TransportProtocolTCP

	default:
		return fmt.Errorf("invalid protocol (%v)", parts[0])
	}

	h.Delivery = nil
	h.ClientPorts = nil
	h.ServerPorts = nil
	h.SSRC = nil

	for _, part := range parts[1:] {
		if part == "" {
			continue
		}

		key, val, _ := strings.Cut(part, "=")

		switch key {
		case "unicast":
			v := TransportDeliveryUnicast
			h.Delivery = &v

		case "multicast":
			v := TransportDeliveryMulticast
			h.Delivery = &v

		case "client_port":
			ports, err := parsePorts(val)
			if err != nil {
				return err
			}
			h.ClientPorts = ports

		case "server_port":
			ports, err := parsePorts(val)
			if err != nil {
				return err
			}
			h.ServerPorts = ports

		case "ssrc":
			val = strings.TrimLeft(val, " ")

			// some servers send SSRCs shorter than 8 digits
			if len(val) < 8 {
				val = strings.Repeat("0", 8-len(val)) + val
			}

			// the SSRC is informative, an invalid one is skipped
			tmp, err := strconv.ParseUint(val, 16, 32)
			if err != nil {
				continue
			}
			ssrc := uint32(tmp)
			h.SSRC = &ssrc

		default:
			// ignore non-standard keys
		}
	}

	return nil
}

// Marshal encodes a Transport header.
func (h Transport) Marshal() base.HeaderValue {
	var rets []string

	if h.Protocol == TransportProtocolUDP {
		rets = append(rets, "RTP/AVP")
	} else {
		rets = append(rets, "RTP/AVP/TCP")
	}

	if h.Delivery != nil {
		if *h.Delivery == TransportDeliveryUnicast {
			rets = append(rets, "unicast")
		} else {
			rets = append(rets, "multicast")
		}
	}

	if h.ClientPorts != nil {
		ports := *h.ClientPorts
		rets = append(rets, "client_port="+strconv.FormatInt(int64(ports[0]), 10)+
			"-"+strconv.FormatInt(int64(ports[1]), 10))
	}

	if h.ServerPorts != nil {
		ports := *h.ServerPorts
		rets = append(rets, "server_port="+strconv.FormatInt(int64(ports[0]), 10)+
			"-"+strconv.FormatInt(int64(ports[1]), 10))
	}

	if h.SSRC != nil {
		rets = append(rets, "ssrc="+strings.ToUpper(fmt.Sprintf("%08x", *h.SSRC)))
	}

	return base.HeaderValue{strings.Join(rets, ";")}
}
