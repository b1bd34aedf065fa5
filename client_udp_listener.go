package rtspjpeg

import (
	"crypto/rand"
	"math/big"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/ipv4"
)

const (
	// 1500 (UDP MTU) - 20 (IP header) - 8 (UDP header)
	udpMaxPayloadSize = 1472

	udpReadBatchSize = 16

	// chosen in order to allow bursts of packets to be received.
	udpKernelReadBufferSize = 0x80000
)

func randInRange(maxVal int) (int, error) {
	b := big.NewInt(int64(maxVal + 1))
	n, err := rand.Int(rand.Reader, b)
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

type clientUDPListener struct {
	listenPacket  func(network, address string) (net.PacketConn, error)
	anyPortEnable bool
	writeTimeout  time.Duration
	port          int
	packets       chan<- []byte

	pc        *net.UDPConn
	pconn     *ipv4.PacketConn
	readIP    net.IP
	readPort  int
	writeAddr *net.UDPAddr

	running   bool
	terminate chan struct{}
	done      chan struct{}
}

func newClientUDPListenerPair(
	listenPacket func(network, address string) (net.PacketConn, error),
	anyPortEnable bool,
	writeTimeout time.Duration,
	rtpPackets chan<- []byte,
	rtcpPackets chan<- []byte,
) (*clientUDPListener, *clientUDPListener, error) {
	// choose two consecutive ports in range 65535-10000
	// RTP port must be even and RTCP port odd
	for {
		v, err := randInRange((65535 - 10000) / 2)
		if err != nil {
			return nil, nil, err
		}

		rtpListener, rtcpListener, err := newClientUDPListenerPairAt(
			listenPacket,
			anyPortEnable,
			writeTimeout,
			v*2+10000,
			rtpPackets,
			rtcpPackets)
		if err == nil {
			return rtpListener, rtcpListener, nil
		}
	}
}

func newClientUDPListenerPairAt(
	listenPacket func(network, address string) (net.PacketConn, error),
	anyPortEnable bool,
	writeTimeout time.Duration,
	rtpPort int,
	rtpPackets chan<- []byte,
	rtcpPackets chan<- []byte,
) (*clientUDPListener, *clientUDPListener, error) {
	rtpListener := &clientUDPListener{
		listenPacket:  listenPacket,
		anyPortEnable: anyPortEnable,
		writeTimeout:  writeTimeout,
		port:          rtpPort,
		packets:       rtpPackets,
	}
	err := rtpListener.initialize()
	if err != nil {
		return nil, nil, err
	}

	rtcpListener := &clientUDPListener{
		listenPacket:  listenPacket,
		anyPortEnable: anyPortEnable,
		writeTimeout:  writeTimeout,
		port:          rtpPort + 1,
		packets:       rtcpPackets,
	}
	err = rtcpListener.initialize()
	if err != nil {
		rtpListener.close()
		return nil, nil, err
	}

	return rtpListener, rtcpListener, nil
}

func (u *clientUDPListener) initialize() error {
	tmp, err := u.listenPacket("udp4", ":"+strconv.FormatInt(int64(u.port), 10))
	if err != nil {
		return err
	}

	pc, ok := tmp.(*net.UDPConn)
	if !ok {
		tmp.Close()
		return net.UnknownNetworkError("udp4")
	}

	err = pc.SetReadBuffer(udpKernelReadBufferSize)
	if err != nil {
		pc.Close()
		return err
	}

	u.pc = pc
	u.pconn = ipv4.NewPacketConn(pc)
	return nil
}

func (u *clientUDPListener) close() {
	if u.running {
		u.stop()
	}
	u.pc.Close()
}

// setRemote sets the address packets are read from and written to.
func (u *clientUDPListener) setRemote(ip net.IP, port int) {
	u.readIP = ip
	if !u.anyPortEnable {
		u.readPort = port
	}
	u.writeAddr = &net.UDPAddr{
		IP:   ip,
		Port: port,
	}
}

func (u *clientUDPListener) start() {
	u.running = true
	u.pc.SetReadDeadline(time.Time{}) //nolint:errcheck
	u.terminate = make(chan struct{})
	u.done = make(chan struct{})
	go u.run()
}

func (u *clientUDPListener) stop() {
	close(u.terminate)
	u.pc.SetReadDeadline(time.Now()) //nolint:errcheck
	<-u.done
	u.running = false
}

func (u *clientUDPListener) run() {
	defer close(u.done)

	msgs := make([]ipv4.Message, udpReadBatchSize)
	for i := range msgs {
		msgs[i].Buffers = [][]byte{make([]byte, udpMaxPayloadSize+1)}
	}

	for {
		n, err := u.pconn.ReadBatch(msgs, 0)
		if err != nil {
			return
		}

		for i := range msgs[:n] {
			msg := &msgs[i]

			uaddr, ok := msg.Addr.(*net.UDPAddr)
			if !ok || !u.readIP.Equal(uaddr.IP) {
				continue
			}

			// in case of anyPortEnable, store the port of the first packet we receive.
			// this reduces security issues
			if u.anyPortEnable && u.readPort == 0 {
				u.readPort = uaddr.Port
			} else if u.readPort != uaddr.Port {
				continue
			}

			select {
			case u.packets <- msg.Buffers[0][:msg.N]:
			case <-u.terminate:
				return
			}

			// the buffer is now owned by the reader
			msg.Buffers[0] = make([]byte, udpMaxPayloadSize+1)
		}
	}
}

func (u *clientUDPListener) write(payload []byte) error {
	// no mutex is needed here since Write() has an internal lock.
	// https://github.com/golang/go/issues/27203#issuecomment-534386117
	u.pc.SetWriteDeadline(time.Now().Add(u.writeTimeout)) //nolint:errcheck
	_, err := u.pc.WriteTo(payload, u.writeAddr)
	return err
}
