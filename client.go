/*
Package rtspjpeg is a RTSP client that reads M-JPEG streams (RFC 2435) over UDP
and reassembles them into standalone JPEG images, timestamped with the
wall-clock time provided by RTCP sender reports.
*/
package rtspjpeg

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/bluenviron/rtspjpeg/internal/asyncprocessor"
	"github.com/bluenviron/rtspjpeg/pkg/base"
	"github.com/bluenviron/rtspjpeg/pkg/bytecounter"
	"github.com/bluenviron/rtspjpeg/pkg/conn"
	"github.com/bluenviron/rtspjpeg/pkg/headers"
	"github.com/bluenviron/rtspjpeg/pkg/liberrors"
	"github.com/bluenviron/rtspjpeg/pkg/rtcpreceiver"
)

func emptyTimer() *time.Timer {
	t := time.NewTimer(0)
	<-t.C
	return t
}

type clientState int

const (
	clientStateInitial clientState = iota
	clientStatePrePlay
	clientStatePlay
)

func (s clientState) String() string {
	switch s {
	case clientStateInitial:
		return "initial"
	case clientStatePrePlay:
		return "prePlay"
	case clientStatePlay:
		return "play"
	}
	return "unknown"
}

type setupReq struct {
	res chan clientRes
}

type playReq struct {
	res chan clientRes
}

type clientRes struct {
	res *base.Response
	err error
}

// Client is a RTSP client that reads a M-JPEG stream.
type Client struct {
	//
	// RTSP parameters (all optional)
	//
	// timeout of read operations.
	// It defaults to 10 seconds.
	ReadTimeout time.Duration
	// timeout of write operations.
	// It defaults to 10 seconds.
	WriteTimeout time.Duration
	// if greater than zero, the client is closed with ErrClientUDPTimeout
	// when no datagrams are received within this timeout.
	// It defaults to zero, that is, wait forever.
	StreamTimeout time.Duration
	// local RTP port. It must be even; the RTCP port is the next one.
	// It defaults to a random port.
	RTPPort int
	// accept packets coming from any port of the server,
	// instead of the ones announced in the SETUP response.
	// This can be a security issue.
	// It defaults to false.
	AnyPortEnable bool
	// user agent header.
	// It defaults to "rtspjpeg".
	UserAgent string
	// period of RTCP receiver reports.
	// It defaults to 10 seconds.
	ReceiverReportPeriod time.Duration
	// size of the queue of frames waiting to be consumed by Sink.
	// It must be a power of two.
	// It defaults to 256.
	SinkQueueSize int

	//
	// system functions (all optional)
	//
	// function used to initialize the TCP client.
	// It defaults to (&net.Dialer{}).DialContext.
	DialContext func(ctx context.Context, network, address string) (net.Conn, error)
	// function used to initialize UDP listeners.
	// It defaults to net.ListenPacket.
	ListenPacket func(network, address string) (net.PacketConn, error)
	// function used to obtain the current time.
	// It defaults to time.Now.
	TimeNow func() time.Time
	// logger.
	// It defaults to logrus.StandardLogger().
	Log logrus.FieldLogger

	//
	// frame sink (optional)
	//
	// receives reassembled frames. It is called by a dedicated routine.
	// It defaults to a sink that discards frames.
	Sink FrameSink

	//
	// callbacks (all optional)
	//
	// called before every request.
	OnRequest func(*base.Request)
	// called after every response.
	OnResponse func(*base.Response)
	// called when RTP packets are lost. The frame being reassembled is discarded.
	OnPacketsLost func(lost uint64)
	// called when there's a non-fatal error: a malformed packet, a frame that
	// cannot be decoded, a full sink queue or a sink error.
	// It can be called by multiple routines.
	OnDecodeError func(error)

	//
	// private
	//

	ctx                  context.Context
	ctxCancel            func()
	state                clientState
	propsMutex           sync.RWMutex
	session              Session
	nconn                net.Conn
	conn                 *conn.Conn
	bytesReceived        atomic.Uint64
	bytesSent            atomic.Uint64
	udpRTPListener       *clientUDPListener
	udpRTCPListener      *clientUDPListener
	reassembler          *clientReassembler
	rtcpReceiver         *rtcpreceiver.RTCPReceiver
	sinkProcessor        *asyncprocessor.Processor
	receiverReportTicker *time.Ticker
	streamTimer          *time.Timer
	closeError           error

	// connCloser channels
	connCloserTerminate chan struct{}
	connCloserDone      chan struct{}

	// listener channels
	rtpPackets  chan []byte
	rtcpPackets chan []byte

	// in
	setup chan setupReq
	play  chan playReq

	// out
	done chan struct{}
}

// Start binds the local UDP ports and connects to the server.
// address is a RTSP URL in the format rtsp://host[:port]/path.
func (c *Client) Start(address string) error {
	u, err := base.ParseURL(address)
	if err != nil {
		return err
	}

	host, err := u.HostPort()
	if err != nil {
		return err
	}

	port, err := u.Port()
	if err != nil {
		return err
	}

	// RTSP parameters
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.RTPPort != 0 && (c.RTPPort%2) != 0 {
		return liberrors.ErrClientRTPPortOdd{Port: c.RTPPort}
	}
	if c.UserAgent == "" {
		c.UserAgent = "rtspjpeg"
	}
	if c.ReceiverReportPeriod == 0 {
		c.ReceiverReportPeriod = 10 * time.Second
	}
	if c.SinkQueueSize == 0 {
		c.SinkQueueSize = 256
	}
	if (c.SinkQueueSize & (c.SinkQueueSize - 1)) != 0 {
		return fmt.Errorf("SinkQueueSize must be a power of two")
	}

	// system functions
	if c.DialContext == nil {
		c.DialContext = (&net.Dialer{}).DialContext
	}
	if c.ListenPacket == nil {
		c.ListenPacket = net.ListenPacket
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}

	if c.Sink == nil {
		c.Sink = FrameSinkFunc(func(*Frame) error {
			return nil
		})
	}

	// callbacks
	if c.OnRequest == nil {
		c.OnRequest = func(req *base.Request) {
			c.Log.Debugf("c->s %v", req)
		}
	}
	if c.OnResponse == nil {
		c.OnResponse = func(res *base.Response) {
			c.Log.Debugf("s->c %v", res)
		}
	}
	if c.OnPacketsLost == nil {
		c.OnPacketsLost = func(lost uint64) {
			c.Log.WithField("lost", lost).Warn("RTP packets lost, frame discarded")
		}
	}
	if c.OnDecodeError == nil {
		c.OnDecodeError = func(err error) {
			c.Log.WithError(err).Warn("decode error")
		}
	}

	c.reassembler = &clientReassembler{
		onPacketsLost: c.OnPacketsLost,
	}
	err = c.reassembler.initialize()
	if err != nil {
		return err
	}

	c.sinkProcessor = &asyncprocessor.Processor{
		BufferSize: c.SinkQueueSize,
		OnError: func(err error) {
			c.OnDecodeError(liberrors.ErrClientSink{Err: err})
		},
	}
	err = c.sinkProcessor.Initialize()
	if err != nil {
		return err
	}

	c.rtpPackets = make(chan []byte)
	c.rtcpPackets = make(chan []byte)

	if c.RTPPort != 0 {
		c.udpRTPListener, c.udpRTCPListener, err = newClientUDPListenerPairAt(
			c.ListenPacket,
			c.AnyPortEnable,
			c.WriteTimeout,
			c.RTPPort,
			c.rtpPackets,
			c.rtcpPackets)
	} else {
		c.udpRTPListener, c.udpRTCPListener, err = newClientUDPListenerPair(
			c.ListenPacket,
			c.AnyPortEnable,
			c.WriteTimeout,
			c.rtpPackets,
			c.rtcpPackets)
	}
	if err != nil {
		return err
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	dialCtx, dialCtxCancel := context.WithTimeout(ctx, c.ReadTimeout)
	defer dialCtxCancel()

	nconn, err := c.DialContext(dialCtx, "tcp", host)
	if err != nil {
		ctxCancel()
		c.udpRTPListener.close()
		c.udpRTCPListener.close()
		return err
	}

	c.ctx = ctx
	c.ctxCancel = ctxCancel
	c.state = clientStateInitial
	c.nconn = nconn
	c.conn = conn.NewConn(bytecounter.New(nconn, &c.bytesReceived, &c.bytesSent))
	c.session = Session{
		URL:           u,
		Host:          u.Hostname(),
		RTSPPort:      port,
		LocalRTPPort:  c.udpRTPListener.port,
		LocalRTCPPort: c.udpRTCPListener.port,
	}
	c.receiverReportTicker = time.NewTicker(c.ReceiverReportPeriod)
	c.receiverReportTicker.Stop()
	c.streamTimer = emptyTimer()
	c.setup = make(chan setupReq)
	c.play = make(chan playReq)
	c.done = make(chan struct{})

	c.connCloserStart()

	go c.run()

	return nil
}

// StartPlaying connects to the address, negotiates the session and starts reading.
func (c *Client) StartPlaying(address string) error {
	err := c.Start(address)
	if err != nil {
		return err
	}

	_, err = c.Setup()
	if err != nil {
		c.Close()
		return err
	}

	_, err = c.Play()
	if err != nil {
		c.Close()
		return err
	}

	return nil
}

// Close closes all client resources and waits for them to close.
// When the client is playing, a TEARDOWN request is sent.
func (c *Client) Close() {
	c.ctxCancel()
	<-c.done
}

// Wait waits until all client resources are closed.
// This can happen when a fatal error occurs or when Close() is called.
func (c *Client) Wait() error {
	<-c.done
	return c.closeError
}

// Session returns a copy of the session parameters.
func (c *Client) Session() Session {
	c.propsMutex.RLock()
	defer c.propsMutex.RUnlock()
	return c.session
}

// BytesReceived returns the number of bytes received through the control connection.
func (c *Client) BytesReceived() uint64 {
	return c.bytesReceived.Load()
}

// BytesSent returns the number of bytes sent through the control connection.
func (c *Client) BytesSent() uint64 {
	return c.bytesSent.Load()
}

func (c *Client) run() {
	defer close(c.done)

	c.closeError = c.runInner()

	c.ctxCancel()

	c.doClose()
}

func (c *Client) runInner() error {
	for {
		select {
		case req := <-c.setup:
			res, err := c.doSetup()
			req.res <- clientRes{res: res, err: err}
			if err != nil {
				if _, ok := err.(liberrors.ErrClientWrongState); !ok {
					return err
				}
			}

		case req := <-c.play:
			res, err := c.doPlay()
			req.res <- clientRes{res: res, err: err}
			if err != nil {
				if _, ok := err.(liberrors.ErrClientWrongState); !ok {
					return err
				}
			}

		case buf := <-c.rtpPackets:
			c.resetStreamTimer()
			c.readRTP(buf)

		case buf := <-c.rtcpPackets:
			c.resetStreamTimer()
			c.readRTCP(buf)

		case <-c.receiverReportTicker.C:
			c.writeReceiverReport()

		case <-c.streamTimer.C:
			return liberrors.ErrClientUDPTimeout{}

		case <-c.ctx.Done():
			return liberrors.ErrClientTerminated{}
		}
	}
}

func (c *Client) doClose() {
	if c.state == clientStatePlay {
		c.stopReading()

		c.do(&base.Request{ //nolint:errcheck
			Method: base.Teardown,
			URL:    c.session.URL,
		}, true)

		c.Log.WithField("session", c.session.Key).Info("session closed")
	} else {
		c.connCloserStop()
	}

	c.nconn.Close()
	c.udpRTPListener.close()
	c.udpRTCPListener.close()
	c.sinkProcessor.Close()
}

func (c *Client) checkState(allowed map[clientState]struct{}) error {
	if _, ok := allowed[c.state]; ok {
		return nil
	}

	allowedList := make([]fmt.Stringer, len(allowed))
	i := 0
	for a := range allowed {
		allowedList[i] = a
		i++
	}

	return liberrors.ErrClientWrongState{AllowedList: allowedList, State: c.state}
}

func (c *Client) connCloserStart() {
	c.connCloserTerminate = make(chan struct{})
	c.connCloserDone = make(chan struct{})

	go func() {
		defer close(c.connCloserDone)

		select {
		case <-c.ctx.Done():
			c.nconn.Close()

		case <-c.connCloserTerminate:
		}
	}()
}

func (c *Client) connCloserStop() {
	close(c.connCloserTerminate)
	<-c.connCloserDone
}

// do sends a request and reads its response.
// Requests are written by a single routine, one at a time.
func (c *Client) do(req *base.Request, skipResponse bool) (*base.Response, error) {
	if req.Header == nil {
		req.Header = make(base.Header)
	}

	c.propsMutex.Lock()
	c.session.CSeq++
	cseq := c.session.CSeq
	key := c.session.Key
	c.propsMutex.Unlock()

	if key != "" {
		req.Header["Session"] = base.HeaderValue{key}
	}

	req.Header["CSeq"] = base.HeaderValue{strconv.FormatInt(int64(cseq), 10)}

	req.Header["User-Agent"] = base.HeaderValue{c.UserAgent}

	c.OnRequest(req)

	c.nconn.SetWriteDeadline(time.Now().Add(c.WriteTimeout)) //nolint:errcheck
	err := c.conn.WriteRequest(req)
	if err != nil {
		return nil, err
	}

	if skipResponse {
		return nil, nil
	}

	c.nconn.SetReadDeadline(time.Now().Add(c.ReadTimeout)) //nolint:errcheck
	res, err := c.conn.ReadResponse()
	if err != nil {
		return nil, err
	}

	c.OnResponse(res)

	if v := res.Header["CSeq"]; len(v) != 1 || strings.TrimSpace(v[0]) != req.Header["CSeq"][0] {
		return res, liberrors.ErrClientProtocol{
			Err: liberrors.ErrClientCSeqMismatch{Expected: cseq, Value: strings.Join(v, ", ")},
		}
	}

	if res.StatusCode != base.StatusOK {
		return res, liberrors.ErrClientProtocol{
			Err: liberrors.ErrClientWrongStatusCode{Code: res.StatusCode, Message: res.StatusMessage},
		}
	}

	return res, nil
}

func (c *Client) doSetup() (*base.Response, error) {
	err := c.checkState(map[clientState]struct{}{
		clientStateInitial: {},
	})
	if err != nil {
		return nil, err
	}

	v := headers.TransportDeliveryUnicast
	th := headers.Transport{
		Protocol: headers.TransportProtocolUDP,
		Delivery: &v,
		ClientPorts: &[2]int{
			c.udpRTPListener.port,
			c.udpRTCPListener.port,
		},
	}

	res, err := c.do(&base.Request{
		Method: base.Setup,
		URL:    c.session.URL,
		Header: base.Header{
			"Transport": th.Marshal(),
		},
	}, false)
	if err != nil {
		return res, err
	}

	sv, ok := res.Header["Session"]
	if !ok {
		return res, liberrors.ErrClientProtocol{Err: liberrors.ErrClientSessionHeaderMissing{}}
	}

	var sx headers.Session
	err = sx.Unmarshal(sv)
	if err != nil {
		return res, liberrors.ErrClientProtocol{Err: liberrors.ErrClientSessionHeaderInvalid{Err: err}}
	}

	tv, ok := res.Header["Transport"]
	if !ok {
		return res, liberrors.ErrClientProtocol{Err: liberrors.ErrClientTransportHeaderMissing{}}
	}

	var thRes headers.Transport
	err = thRes.Unmarshal(tv)
	if err != nil {
		return res, liberrors.ErrClientProtocol{Err: liberrors.ErrClientTransportHeaderInvalid{Err: err}}
	}

	if thRes.ServerPorts == nil {
		return res, liberrors.ErrClientProtocol{Err: liberrors.ErrClientServerPortsNotProvided{}}
	}

	if thRes.ServerPorts[0] == 0 || thRes.ServerPorts[1] == 0 {
		return res, liberrors.ErrClientProtocol{Err: liberrors.ErrClientServerPortsZero{}}
	}

	serverIP := c.nconn.RemoteAddr().(*net.TCPAddr).IP
	c.udpRTPListener.setRemote(serverIP, thRes.ServerPorts[0])
	c.udpRTCPListener.setRemote(serverIP, thRes.ServerPorts[1])

	c.propsMutex.Lock()
	c.session.Key = sx.Session
	c.session.RemoteRTPPort = thRes.ServerPorts[0]
	c.session.RemoteRTCPPort = thRes.ServerPorts[1]
	c.propsMutex.Unlock()

	c.state = clientStatePrePlay

	c.Log.WithFields(logrus.Fields{
		"session":          sx.Session,
		"server_rtp_port":  thRes.ServerPorts[0],
		"server_rtcp_port": thRes.ServerPorts[1],
	}).Info("session set up")

	return res, nil
}

// Setup writes a SETUP request and reads a Response.
// The session key and the server ports are stored into the session.
func (c *Client) Setup() (*base.Response, error) {
	cres := make(chan clientRes)
	select {
	case c.setup <- setupReq{res: cres}:
		res := <-cres
		return res.res, res.err

	case <-c.ctx.Done():
		return nil, liberrors.ErrClientTerminated{}
	}
}

func (c *Client) doPlay() (*base.Response, error) {
	err := c.checkState(map[clientState]struct{}{
		clientStatePrePlay: {},
	})
	if err != nil {
		return nil, err
	}

	res, err := c.do(&base.Request{
		Method: base.Play,
		URL:    c.session.URL,
		Header: base.Header{
			"Range": headers.Range{Start: 0}.Marshal(),
		},
	}, false)
	if err != nil {
		return res, err
	}

	// open the firewall by sending empty packets to the counterpart.
	byts, _ := (&rtp.Packet{Header: rtp.Header{Version: 2}}).Marshal()
	c.udpRTPListener.write(byts)  //nolint:errcheck
	c.udpRTCPListener.write(byts) //nolint:errcheck

	c.state = clientStatePlay
	c.startReading()

	c.Log.WithField("session", c.session.Key).Info("playing")

	return res, nil
}

// Play writes a PLAY request and reads a Response.
// This can be called only after Setup().
func (c *Client) Play() (*base.Response, error) {
	cres := make(chan clientRes)
	select {
	case c.play <- playReq{res: cres}:
		res := <-cres
		return res.res, res.err

	case <-c.ctx.Done():
		return nil, liberrors.ErrClientTerminated{}
	}
}
