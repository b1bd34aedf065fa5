package headers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/rtspjpeg/pkg/base"
)

func deliveryPtr(v TransportDelivery) *TransportDelivery {
	return &v
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}

var casesTransport = []struct {
	name string
	vin  base.HeaderValue
	vout base.HeaderValue
	h    Transport
}{
	{
		"udp unicast play request",
		base.HeaderValue{`RTP/AVP;unicast;client_port=10000-10001`},
		base.HeaderValue{`RTP/AVP;unicast;client_port=10000-10001`},
		Transport{
			Protocol:    TransportProtocolUDP,
			Delivery:    deliveryPtr(TransportDeliveryUnicast),
			ClientPorts: &[2]int{10000, 10001},
		},
	},
	{
		"udp unicast play response",
		base.HeaderValue{`RTP/AVP/UDP;unicast;client_port=10000-10001;server_port=6970-6971;ssrc=1A2B3C4D`},
		base.HeaderValue{`RTP/AVP;unicast;client_port=10000-10001;server_port=6970-6971;ssrc=1A2B3C4D`},
		Transport{
			Protocol:    TransportProtocolUDP,
			Delivery:    deliveryPtr(TransportDeliveryUnicast),
			ClientPorts: &[2]int{10000, 10001},
			ServerPorts: &[2]int{6970, 6971},
			SSRC:        uint32Ptr(0x1A2B3C4D),
		},
	},
	{
		"single port",
		base.HeaderValue{`RTP/AVP;unicast;client_port=3456;server_port=8000`},
		base.HeaderValue{`RTP/AVP;unicast;client_port=3456-3457;server_port=8000-8001`},
		Transport{
			Protocol:    TransportProtocolUDP,
			Delivery:    deliveryPtr(TransportDeliveryUnicast),
			ClientPorts: &[2]int{3456, 3457},
			ServerPorts: &[2]int{8000, 8001},
		},
	},
	{
		"short ssrc and unknown keys",
		base.HeaderValue{`RTP/AVP;unicast;source=10.0.0.1;mode=play;ssrc=4D;server_port=6970-6971`},
		base.HeaderValue{`RTP/AVP;unicast;server_port=6970-6971;ssrc=0000004D`},
		Transport{
			Protocol:    TransportProtocolUDP,
			Delivery:    deliveryPtr(TransportDeliveryUnicast),
			ServerPorts: &[2]int{6970, 6971},
			SSRC:        uint32Ptr(0x4D),
		},
	},
	{
		"invalid ssrc",
		base.HeaderValue{`RTP/AVP;unicast;server_port=6970-6971;ssrc=zzz`},
		base.HeaderValue{`RTP/AVP;unicast;server_port=6970-6971`},
		Transport{
			Protocol:    TransportProtocolUDP,
			Delivery:    deliveryPtr(TransportDeliveryUnicast),
			ServerPorts: &[2]int{6970, 6971},
		},
	},
	{
		"tcp",
		base.HeaderValue{`RTP/AVP/TCP;multicast`},
		base.HeaderValue{`RTP/AVP/TCP;multicast`},
		Transport{
			Protocol: TransportProtocolTCP,
			Delivery: deliveryPtr(TransportDeliveryMulticast),
		},
	},
}

func TestTransportUnmarshal(t *testing.T) {
	for _, ca := range casesTransport {
		t.Run(ca.name, func(t *testing.T) {
			var h Transport
			err := h.Unmarshal(ca.vin)
			require.NoError(t, err)
			require.Equal(t, ca.h, h)
		})
	}
}

func TestTransportMarshal(t *testing.T) {
	for _, ca := range casesTransport {
		t.Run(ca.name, func(t *testing.T) {
			req := ca.h.Marshal()
			require.Equal(t, ca.vout, req)
		})
	}
}

func TestTransportUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		hv   base.HeaderValue
		err  string
	}{
		{
			"empty",
			base.HeaderValue{},
			"value not provided",
		},
		{
			"2 values",
			base.HeaderValue{"a", "b"},
			"value provided multiple times ([a b])",
		},
		{
			"invalid protocol",
			base.HeaderValue{`RTP/AVPF;unicast`},
			"invalid protocol (RTP/AVPF)",
		},
		{
			"invalid client ports",
			base.HeaderValue{`RTP/AVP;unicast;client_port=aa-14187`},
			"invalid ports (aa-14187)",
		},
		{
			"invalid server ports",
			base.HeaderValue{`RTP/AVP;unicast;server_port=6970-bb`},
			"invalid ports (6970-bb)",
		},
		{
			"missing server port value",
			base.HeaderValue{`RTP/AVP;unicast;server_port`},
			"invalid ports ()",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var h Transport
			err := h.Unmarshal(ca.hv)
			require.EqualError(t, err, ca.err)
		})
	}
}

func FuzzTransportUnmarshal(f *testing.F) {
	for _, ca := range casesTransport {
		f.Add(ca.vin[0])
	}

	f.Fuzz(func(_ *testing.T, s string) {
		var h Transport
		err := h.Unmarshal(base.HeaderValue{s})
		if err == nil {
			h.Marshal()
		}
	})
}
