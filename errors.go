package surgeping

import (
	"errors"
	"fmt"
	"net"
)

// Sentinel errors returned by Client and Pinger operations. Use errors.Is to
// test for these; use errors.As for the richer *TimeoutError and
// *IdenticalRequestError values.
var (
	// ErrIncorrectBufferSize reports a buffer too small to hold the packet
	// being encoded. The encoders in this package allocate their own
	// buffers and do not return it.
	ErrIncorrectBufferSize = errors.New("buffer size was too small")

	// ErrEchoRequestPacket is returned when a socket read produces an echo
	// request rather than a reply or error message.
	ErrEchoRequestPacket = errors.New("echo request packet")

	// ErrNetworkError is wrapped by the error Ping and SendPing return when
	// the socket write fails; the message includes the lower-level error.
	// Ping does not return it while waiting for a reply: the wait ends with
	// a reply, a *TimeoutError, or the context's error.
	ErrNetworkError = errors.New("network error")

	// ErrClientDestroyed is returned by Pinger.Ping once the owning Client
	// has been closed.
	ErrClientDestroyed = errors.New("client has been destroyed, ping operations are no longer available")
)

// MalformedPacketError reports why a received buffer could not be decoded as
// an ICMP packet.
type MalformedPacketError struct {
	// Reason is one of the Not*/PayloadTooShort sentinels below, or wraps one
	// via errors.Is.
	Reason error
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("malformed packet: %v", e.Reason)
}

func (e *MalformedPacketError) Unwrap() error { return e.Reason }

// Reasons a MalformedPacketError may report.
var (
	ErrNotIPv4Packet   = errors.New("expected an IPv4 packet")
	ErrNotIPv6Packet   = errors.New("expected an IPv6 packet")
	ErrNotICMPv4Packet = errors.New("expected an ICMPv4 packet payload")
	ErrNotICMPv6Packet = errors.New("expected an ICMPv6 packet")
)

// PayloadTooShortError is a MalformedPacketError reason reporting that a
// buffer did not contain enough bytes to decode.
type PayloadTooShortError struct {
	Got, Want int
}

func (e *PayloadTooShortError) Error() string {
	return fmt.Sprintf("payload too short, got %d, want %d", e.Got, e.Want)
}

// TimeoutError is returned by Pinger.Ping when no reply arrives before the
// configured timeout expires.
type TimeoutError struct {
	Seq PingSequence
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout for icmp_seq %v", e.Seq)
}

// IdenticalRequestError is returned by Pinger.Ping when a request
// with the same host, identifier and sequence is already outstanding.
type IdenticalRequestError struct {
	Host  net.IP
	Ident *PingIdentifier
	Seq   PingSequence
}

func (e *IdenticalRequestError) Error() string {
	return "multiple identical request"
}

func malformedf(reason error) error {
	return &MalformedPacketError{Reason: reason}
}
