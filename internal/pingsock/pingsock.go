// Package pingsock opens and wraps the low-level sockets ICMP echo traffic
// is sent and received on, hiding the raw-vs-datagram and platform-specific
// socket option differences behind a single type.
package pingsock

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

// IPVersion selects the address family a Socket speaks.
type IPVersion int

// Values for IPVersion.
const (
	IPv4 IPVersion = iota
	IPv6
)

func (v IPVersion) addressFamily() int {
	if v == IPv4 {
		return unix.AF_INET
	}
	return unix.AF_INET6
}

func (v IPVersion) icmpProto() int {
	if v == IPv4 {
		return unix.IPPROTO_ICMP
	}
	return unix.IPPROTO_ICMPV6
}

func (v IPVersion) ipProto() int {
	if v == IPv4 {
		return unix.IPPROTO_IP
	}
	return unix.IPPROTO_IPV6
}

func (v IPVersion) String() string {
	if v == IPv4 {
		return "ipv4"
	}
	return "ipv6"
}

// Type is the kind of socket a Socket wraps.
type Type int

// Values for Type.
const (
	Datagram Type = iota
	Raw
)

func (t Type) sysType() int {
	if t == Datagram {
		return unix.SOCK_DGRAM
	}
	return unix.SOCK_RAW
}

func (t Type) String() string {
	if t == Datagram {
		return "datagram"
	}
	return "raw"
}

// Options configures Open.
type Options struct {
	// TypeHint is not read by Open; the socket type attempted first is
	// Open's hint argument.
	TypeHint IPVersion

	BindAddr     string
	Interface    string
	IfaceIndex   uint32
	TTL          int
	RoutingTable uint32
	DontFragment bool

	// SendRateLimit caps outbound packets per second. Zero disables the
	// limiter.
	SendRateLimit float64
}

// Socket wraps a non-blocking ICMP socket. It is safe for concurrent use by
// multiple goroutines. SendTo has no per-call TTL; the TTL is the one set
// from Options when the socket is opened.
type Socket struct {
	ipVer   IPVersion
	typ     Type
	conn    net.PacketConn
	file    *os.File
	limiter *rate.Limiter
}

var openGroup singleflight.Group

var errUnsupportedRoutingTable = fmt.Errorf("pingsock: routing table selection is not supported on this platform")

// Open opens a socket for the given IP version, trying the requested type
// hint and falling back to the other type exactly once if the kernel
// refuses it with a permission error. Concurrent Open calls for the same
// ipVer share a single capability probe via singleflight so that many
// simultaneous Client creations don't each pay for a failed
// privileged-socket attempt; each caller still gets its own connection.
func Open(ipVer IPVersion, hint Type, opts Options) (*Socket, error) {
	resolved, err := resolveType(ipVer, hint)
	if err != nil {
		return nil, err
	}
	return newSocket(ipVer, resolved, opts)
}

func resolveType(ipVer IPVersion, hint Type) (Type, error) {
	key := fmt.Sprintf("%v:%v", ipVer, hint)
	v, err, _ := openGroup.Do(key, func() (any, error) {
		probe, err := newSocket(ipVer, hint, Options{})
		if err == nil {
			probe.Close()
			return hint, nil
		}
		if !os.IsPermission(err) {
			return nil, err
		}
		other := Datagram
		if hint == Datagram {
			other = Raw
		}
		probe2, err2 := newSocket(ipVer, other, Options{})
		if err2 != nil {
			return nil, err2
		}
		probe2.Close()
		return other, nil
	})
	if err != nil {
		return hint, err
	}
	return v.(Type), nil
}

func newSocket(ipVer IPVersion, typ Type, opts Options) (*Socket, error) {
	fd, err := unix.Socket(ipVer.addressFamily(), typ.sysType(), ipVer.icmpProto())
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := applyPlatformOptions(fd, ipVer, typ, opts); err != nil {
		unix.Close(fd)
		return nil, err
	}

	f := os.NewFile(uintptr(fd), fmt.Sprintf("icmp:%v:%v", ipVer, typ))
	conn, err := net.FilePacketConn(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	var limiter *rate.Limiter
	if opts.SendRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SendRateLimit), 1)
	}

	return &Socket{ipVer: ipVer, typ: typ, conn: conn, file: f, limiter: limiter}, nil
}

// Type reports whether the socket ended up raw or datagram after the
// capability fallback in Open.
func (s *Socket) Type() Type { return s.typ }

// IPVersion reports the address family the socket was opened for.
func (s *Socket) IPVersion() IPVersion { return s.ipVer }

// IdentifierRewritten reports whether the kernel overwrites the ICMP
// identifier (and checksum) field of outgoing packets on this socket,
// which is true only for Linux's unprivileged ICMP datagram sockets.
func (s *Socket) IdentifierRewritten() bool {
	return runtime.GOOS == "linux" && s.typ == Datagram
}

// LocalAddr returns the socket's local address.
func (s *Socket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Close closes the underlying file descriptor. Safe to call more than once.
func (s *Socket) Close() error {
	err := s.conn.Close()
	// net.FilePacketConn works on a duplicate of the descriptor, so the
	// original held by s.file has to be closed separately.
	if ferr := s.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// SendTo writes buf to dest, blocking until the context is done, the rate
// limiter (if any) releases a token, and the kernel accepts the write.
func (s *Socket) SendTo(ctx context.Context, buf []byte, dest net.Addr) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if dl, ok := ctx.Deadline(); ok {
		s.conn.SetWriteDeadline(dl)
	} else {
		s.conn.SetWriteDeadline(time.Time{})
	}
	_, err := s.conn.WriteTo(buf, dest)
	return err
}

// RecvFrom reads the next available packet, blocking until a packet arrives,
// the context's deadline (if any) passes, or the socket is closed.
// Cancelling a context that has no deadline does not interrupt the read.
func (s *Socket) RecvFrom(ctx context.Context, buf []byte) (n int, peer net.Addr, err error) {
	if dl, ok := ctx.Deadline(); ok {
		s.conn.SetReadDeadline(dl)
	} else {
		s.conn.SetReadDeadline(time.Time{})
	}
	return s.conn.ReadFrom(buf)
}
