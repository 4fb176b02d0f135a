// Package client receives NatNet datagrams over UDP and feeds them
// through the protocol decoder. It is the transport collaborator around
// the decoder core: sockets, callbacks and counters live here, byte
// layout knowledge does not.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mocaptools/natnet-go/pkg/protocol"
	"github.com/mocaptools/natnet-go/pkg/version"
)

var ErrProbeFailed = errors.New("no candidate version decoded the ping response")

// Config holds client configuration.
type Config struct {
	// Addr is the data address, typically the NatNet multicast group
	// ("239.255.42.99:1511"). Unicast addresses are accepted too, which
	// is mostly useful in tests.
	Addr string

	// Interface optionally names the network interface to join the
	// multicast group on.
	Interface string

	// Version is the protocol version the server speaks. Use Probe when
	// it is unknown.
	Version version.Version

	// BufferSize is the datagram receive buffer. Defaults to 64 KiB,
	// large enough for any NatNet message.
	BufferSize int
}

// DefaultConfig returns the standard OptiTrack multicast configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:       "239.255.42.99:1511",
		BufferSize: 0xFFFF + 1,
	}
}

// Client listens for NatNet traffic and dispatches decoded messages.
type Client struct {
	dec  *protocol.Decoder
	conn *net.UDPConn

	mu          sync.RWMutex
	lastFrame   *protocol.FrameOfData
	sender      *protocol.Sender
	subscribers map[int]chan *protocol.FrameOfData
	nextSubID   int

	frameCount atomic.Uint64
	started    time.Time
	closed     chan struct{}
	wg         sync.WaitGroup
	bufSize    int

	// Callbacks, invoked from the receive loop. Set them before Start.
	OnFrame    func(*protocol.FrameOfData)
	OnModelDef func(protocol.ModelDefinitions)
	OnMessage  func(string)
	OnError    func(error)
}

// New opens the data socket described by cfg. The receive loop does not
// run until Start is called, so callbacks can be attached in between.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	addr, err := net.ResolveUDPAddr("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", cfg.Addr, err)
	}

	var conn *net.UDPConn
	if addr.IP != nil && addr.IP.IsMulticast() {
		var iface *net.Interface
		if cfg.Interface != "" {
			iface, err = net.InterfaceByName(cfg.Interface)
			if err != nil {
				return nil, fmt.Errorf("interface %q: %w", cfg.Interface, err)
			}
		}
		conn, err = net.ListenMulticastUDP("udp", iface, addr)
	} else {
		conn, err = net.ListenUDP("udp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", cfg.Addr, err)
	}

	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = 0xFFFF + 1
	}
	// Best effort; the OS may clamp it.
	_ = conn.SetReadBuffer(bufSize * 4)

	return &Client{
		dec:         protocol.NewDecoder(cfg.Version),
		conn:        conn,
		subscribers: make(map[int]chan *protocol.FrameOfData),
		closed:      make(chan struct{}),
		bufSize:     bufSize,
	}, nil
}

// Version returns the protocol version the client decodes with.
func (c *Client) Version() version.Version {
	return c.dec.Version()
}

// LocalAddr returns the bound data socket address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Start launches the receive loop.
func (c *Client) Start() {
	c.started = time.Now()
	c.wg.Add(1)
	go c.receiveLoop()
}

// Close stops the receive loop and closes the socket.
func (c *Client) Close() error {
	select {
	case <-c.closed:
		return nil
	default:
	}
	close(c.closed)
	err := c.conn.Close()
	c.wg.Wait()

	c.mu.Lock()
	for id, ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, id)
	}
	c.mu.Unlock()

	return err
}

func (c *Client) receiveLoop() {
	defer c.wg.Done()

	buf := make([]byte, c.bufSize)
	for {
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-c.closed:
				return
			default:
			}
			log.Printf("natnet: read error: %v", err)
			continue
		}

		bytesReceived.Add(float64(n))

		resp, err := c.dec.Unpack(bytes.NewReader(buf[:n]))
		if err != nil {
			decodeErrors.WithLabelValues(errKind(err)).Inc()
			if c.OnError != nil {
				c.OnError(err)
			}
			continue
		}
		c.dispatch(resp)
	}
}

func (c *Client) dispatch(resp protocol.Response) {
	switch v := resp.(type) {
	case *protocol.FrameOfData:
		framesDecoded.Inc()
		c.frameCount.Add(1)

		c.mu.Lock()
		c.lastFrame = v
		for _, ch := range c.subscribers {
			select {
			case ch <- v:
			default: // slow subscriber drops frames, never blocks the loop
			}
		}
		c.mu.Unlock()

		if c.OnFrame != nil {
			c.OnFrame(v)
		}

	case protocol.ModelDefinitions:
		if c.OnModelDef != nil {
			c.OnModelDef(v)
		}

	case protocol.Sender:
		c.mu.Lock()
		c.sender = &v
		c.mu.Unlock()

	case protocol.MessageString:
		if c.OnMessage != nil {
			c.OnMessage(string(v))
		}
	}
}

// LatestFrame returns the most recently decoded frame, or nil before the
// first one arrives.
func (c *Client) LatestFrame() *protocol.FrameOfData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFrame
}

// Sender returns the server descriptor if one has been received.
func (c *Client) Sender() *protocol.Sender {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sender
}

// FrameCount returns the number of frames decoded since Start.
func (c *Client) FrameCount() uint64 {
	return c.frameCount.Load()
}

// Started returns when the receive loop was started.
func (c *Client) Started() time.Time {
	return c.started
}

// Subscribe registers a frame channel with the given buffer size. Slow
// consumers miss frames rather than stalling the receive loop. The
// returned cancel function unregisters the channel.
func (c *Client) Subscribe(buffer int) (<-chan *protocol.FrameOfData, func()) {
	ch := make(chan *protocol.FrameOfData, buffer)

	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Probe negotiates the protocol version over a command connection. It
// sends a ping, reads one response and tries each candidate version until
// the Sender descriptor decodes; the version advertised by the server is
// returned alongside it. The conn should have an appropriate read
// deadline set by the caller.
func Probe(conn io.ReadWriter, appName string, candidates []version.Version) (protocol.Sender, version.Version, error) {
	if _, err := conn.Write(protocol.PingRequest(appName)); err != nil {
		return protocol.Sender{}, version.Version{}, fmt.Errorf("send ping: %w", err)
	}

	buf := make([]byte, 0xFFFF+1)
	n, err := conn.Read(buf)
	if err != nil {
		return protocol.Sender{}, version.Version{}, fmt.Errorf("read ping response: %w", err)
	}

	for _, cand := range candidates {
		resp, ok, err := protocol.UnpackTypeWith(protocol.MsgTypePingResponse, cand, bytes.NewReader(buf[:n]))
		if !ok || err != nil {
			continue
		}
		if sender, isSender := resp.(protocol.Sender); isSender {
			return sender, sender.NatNetVersion, nil
		}
	}

	return protocol.Sender{}, version.Version{}, ErrProbeFailed
}
