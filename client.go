package surgeping

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/pcekm/surgeping/internal/pingsock"
	"github.com/pcekm/surgeping/internal/replymap"
)

// socketConn is the subset of *pingsock.Socket the Client depends on. It
// exists so tests can substitute a mock connection for a real socket.
type socketConn interface {
	SendTo(ctx context.Context, buf []byte, dest net.Addr) error
	RecvFrom(ctx context.Context, buf []byte) (int, net.Addr, error)
	LocalAddr() net.Addr
	Type() pingsock.Type
	IdentifierRewritten() bool
	Close() error
}

// Client owns one ICMP socket and the receiver goroutine that demultiplexes
// replies arriving on it to whichever Pinger is waiting for them. Create one
// Client per process per address family; hand out as many Pingers from it as
// you have destinations to track.
type Client struct {
	kind         ICMPKind
	socket       socketConn
	localAddr    net.IP
	identUnknown bool

	replies *replymap.Map[Reply]

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// openSocket is a var so tests can substitute a mock connection.
var openSocket = func(cfg *Config) (socketConn, error) {
	ipVer := pingsock.IPv4
	if cfg.kind == ICMPv6 {
		ipVer = pingsock.IPv6
	}
	typeHint := pingsock.Datagram
	if cfg.socketTypeHint == SocketRaw {
		typeHint = pingsock.Raw
	}
	return pingsock.Open(ipVer, typeHint, pingsock.Options{
		BindAddr:      cfg.bindAddr,
		Interface:     cfg.iface,
		IfaceIndex:    cfg.ifaceIndex,
		TTL:           cfg.ttl,
		RoutingTable:  cfg.routingTable,
		DontFragment:  cfg.dontFragment,
		SendRateLimit: cfg.sendRateLimit,
	})
}

// NewClient opens a socket per cfg and starts the background goroutine that
// reads replies from it. Call Close when done with the client.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	sock, err := openSocket(cfg)
	if err != nil {
		return nil, err
	}

	localAddr := addrIP(sock.LocalAddr())
	identUnknown := sock.IdentifierRewritten()

	recvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Client{
		kind:         cfg.kind,
		socket:       sock,
		localAddr:    localAddr,
		identUnknown: identUnknown,
		replies:      replymap.New[Reply](),
		cancel:       cancel,
	}

	c.wg.Add(1)
	go c.recvLoop(recvCtx)

	return c, nil
}

// Pinger returns a Pinger that sends echo requests to host. identHint is
// used as the echo identifier unless the underlying socket is a Linux
// unprivileged ICMP datagram socket, in which case the kernel chooses (and
// rewrites on send) its own identifier and replies are matched on sequence
// number and source address alone.
func (c *Client) Pinger(host net.IP, identHint PingIdentifier) *Pinger {
	var ident *PingIdentifier
	if !c.identUnknown {
		h := identHint
		ident = &h
	}
	return &Pinger{
		client:  c,
		host:    host,
		ident:   ident,
		timeout: 2 * time.Second,
	}
}

// Close stops the receiver goroutine, closes the socket, and makes every
// later Pinger.Ping call fail with ErrClientDestroyed. Ping calls already
// waiting on a reply are not woken; they return when their own timeout or
// context ends. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.replies.MarkDestroyed()
		c.cancel()
		// The receiver goroutine is typically blocked in the kernel inside
		// RecvFrom, which does not observe ctx cancellation on its own;
		// closing the socket is what actually unblocks it.
		err = c.socket.Close()
		c.wg.Wait()
	})
	return err
}

func (c *Client) recvLoop(ctx context.Context) {
	defer c.wg.Done()
	buf := make([]byte, 2048)
	sockType := SocketDatagram
	if c.socket.Type() == pingsock.Raw {
		sockType = SocketRaw
	}
	for {
		n, peer, err := c.socket.RecvFrom(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("surgeping: read error: %v", err)
			continue
		}
		now := time.Now()
		peerIP := addrIP(peer)

		var pkt IcmpPacket
		switch c.kind {
		case ICMPv4:
			p, err := DecodeIcmpv4(buf[:n], sockType, peerIP, c.localAddr)
			if err != nil {
				log.Printf("surgeping: dropping unparsable packet from %v: %v", peerIP, err)
				continue
			}
			pkt = p
		case ICMPv6:
			p, err := DecodeIcmpv6(buf[:n], peerIP, c.localAddr)
			if err != nil {
				log.Printf("surgeping: dropping unparsable packet from %v: %v", peerIP, err)
				continue
			}
			pkt = p
		}

		var identPtr *uint16
		if !c.identUnknown {
			id := uint16(pkt.Identifier())
			identPtr = &id
		}
		if !c.replies.Deliver(pkt.Source(), identPtr, uint16(pkt.Sequence()), Reply{Packet: pkt, Timestamp: now}) {
			log.Printf("surgeping: no outstanding request for reply from %v seq %v", peerIP, pkt.Sequence())
		}
	}
}

func addrIP(a net.Addr) net.IP {
	switch a := a.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	case *net.TCPAddr:
		return a.IP
	default:
		return nil
	}
}
