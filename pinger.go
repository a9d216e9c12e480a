package surgeping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pcekm/surgeping/internal/replymap"
)

// Pinger sends echo requests to a single host and correlates each one with
// its reply via the owning Client's receiver goroutine. A Pinger is cheap to
// create; make one per destination you want to track.
type Pinger struct {
	client *Client
	host   net.IP
	ident  *PingIdentifier

	mu      sync.Mutex
	timeout time.Duration
	scopeID uint32
	lastSeq *PingSequence
	closed  bool
}

// WithTimeout sets how long Ping waits for a reply before returning a
// TimeoutError. The default is two seconds.
func (p *Pinger) WithTimeout(d time.Duration) *Pinger {
	p.mu.Lock()
	p.timeout = d
	p.mu.Unlock()
	return p
}

// WithScopeID sets the IPv6 zone/scope (interface index) used when sending
// to a link-local address. It has no effect for IPv4.
func (p *Pinger) WithScopeID(id uint32) *Pinger {
	p.mu.Lock()
	p.scopeID = id
	p.mu.Unlock()
	return p
}

// Ping sends a single echo request carrying payload and waits for its
// reply, an ICMP error message correlated to it, a network error, or the
// configured timeout, whichever comes first.
func (p *Pinger) Ping(ctx context.Context, seq PingSequence, payload []byte) (IcmpPacket, time.Duration, error) {
	p.mu.Lock()
	timeout := p.timeout
	p.mu.Unlock()

	identForWaiter := p.waiterIdent()
	waiter, err := p.client.replies.NewWaiter(p.host, identForWaiter, uint16(seq))
	if err != nil {
		return nil, 0, translateReplyMapErr(err)
	}

	encoded, err := p.encode(seq, payload)
	if err != nil {
		p.client.replies.Remove(p.host, identForWaiter, uint16(seq))
		return nil, 0, err
	}

	if err := p.client.socket.SendTo(ctx, encoded, p.dest()); err != nil {
		p.client.replies.Remove(p.host, identForWaiter, uint16(seq))
		return nil, 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	sendTime := time.Now()

	p.mu.Lock()
	s := seq
	p.lastSeq = &s
	p.mu.Unlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case reply := <-waiter:
		return reply.Packet, reply.Timestamp.Sub(sendTime), nil
	case <-timeoutCtx.Done():
		p.client.replies.Remove(p.host, identForWaiter, uint16(seq))
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &TimeoutError{Seq: seq}
	}
}

// SendPing sends a single echo request without waiting for, or registering
// any interest in, its reply.
func (p *Pinger) SendPing(ctx context.Context, seq PingSequence, payload []byte) error {
	encoded, err := p.encode(seq, payload)
	if err != nil {
		return err
	}
	if err := p.client.socket.SendTo(ctx, encoded, p.dest()); err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	return nil
}

// Close releases the waiter for the most recently sent, still-outstanding
// request, if any. Safe to call more than once; safe to omit if the owning
// Client is closed first.
func (p *Pinger) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.lastSeq != nil {
		p.client.replies.Remove(p.host, p.waiterIdent(), uint16(*p.lastSeq))
		p.lastSeq = nil
	}
	return nil
}

func (p *Pinger) waiterIdent() *uint16 {
	if p.ident == nil {
		return nil
	}
	v := uint16(*p.ident)
	return &v
}

func (p *Pinger) encode(seq PingSequence, payload []byte) ([]byte, error) {
	ident := PingIdentifier(0)
	if p.ident != nil {
		ident = *p.ident
	}
	switch p.client.kind {
	case ICMPv6:
		return EncodeEchoRequestV6(ident, seq, payload)
	default:
		return EncodeEchoRequestV4(ident, seq, payload, p.ident == nil)
	}
}

func (p *Pinger) dest() net.Addr {
	addr := &net.UDPAddr{IP: p.host}
	if p.client.kind == ICMPv6 && p.scopeID != 0 {
		if iface, err := net.InterfaceByIndex(int(p.scopeID)); err == nil {
			addr.Zone = iface.Name
		}
	}
	return addr
}

func translateReplyMapErr(err error) error {
	var ire *replymap.IdenticalRequestError
	if errors.As(err, &ire) {
		return &IdenticalRequestError{
			Host:  ire.Host,
			Ident: (*PingIdentifier)(ire.Ident),
			Seq:   PingSequence(ire.Seq),
		}
	}
	if errors.Is(err, replymap.ErrClientDestroyed) {
		return ErrClientDestroyed
	}
	return err
}
