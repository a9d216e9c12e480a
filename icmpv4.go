package surgeping

import (
	"fmt"
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// EncodeEchoRequestV4 builds the wire bytes of an ICMPv4 echo request. The
// caller is responsible for passing PingIdentifier(0) instead of a real
// identifier when writing to a Linux unprivileged ICMP datagram socket,
// since the kernel overwrites the identifier of such packets on send
// regardless of what is encoded here. zeroChecksum must be set for that same
// case: the kernel also recomputes the checksum on send, so the checksum
// this function would otherwise compute is meaningless and is zeroed
// instead of left to disagree with what actually goes on the wire.
func EncodeEchoRequestV4(ident PingIdentifier, seq PingSequence, payload []byte, zeroChecksum bool) ([]byte, error) {
	wm := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(ident),
			Seq:  int(seq),
			Data: payload,
		},
	}
	b, err := wm.Marshal(nil)
	if err != nil {
		return nil, fmt.Errorf("encoding icmpv4 echo request: %w", err)
	}
	if zeroChecksum && len(b) >= 4 {
		b[2], b[3] = 0, 0
	}
	return b, nil
}

// DecodeIcmpv4 decodes an ICMPv4 message read from a socket of the given
// shape. For a raw socket, buf is expected to contain a leading IPv4 header
// exactly as the kernel delivers it on this platform; for a datagram socket
// it is expected to contain only the ICMP message, and local is used as the
// packet's destination since the kernel gives us no other way to recover it.
func DecodeIcmpv4(buf []byte, shape SocketType, peer, local net.IP) (*Icmpv4Packet, error) {
	var destination net.IP
	var ttl uint8
	var ttlOK bool
	icmpBuf := buf

	if shape == SocketRaw {
		hdr, err := ipv4.ParseHeader(buf)
		if err != nil {
			return nil, malformedf(ErrNotIPv4Packet)
		}
		destination = hdr.Dst
		ttl = uint8(hdr.TTL)
		ttlOK = true
		icmpBuf = buf[hdr.Len:]
	} else {
		destination = local
	}

	if len(icmpBuf) < 4 {
		return nil, malformedf(ErrNotICMPv4Packet)
	}
	icmpType := icmpBuf[0]
	icmpCode := icmpBuf[1]

	switch icmpType {
	case uint8(ipv4.ICMPTypeEchoReply):
		if len(icmpBuf) < 8 {
			return nil, malformedf(ErrNotICMPv4Packet)
		}
		return &Icmpv4Packet{
			source:      peer,
			destination: destination,
			ttl:         ttl,
			ttlOK:       ttlOK,
			realDest:    peer,
			realDestOK:  true,
			icmpType:    icmpType,
			icmpCode:    icmpCode,
			size:        len(icmpBuf),
			identifier:  PingIdentifier(be16(icmpBuf[4:6])),
			sequence:    PingSequence(be16(icmpBuf[6:8])),
		}, nil

	case uint8(ipv4.ICMPTypeEcho):
		return nil, ErrEchoRequestPacket

	default:
		// Error-class messages (time exceeded, destination unreachable,
		// etc.) embed an unused 4-byte field followed by the offending
		// packet: its IPv4 header, then the first 8 bytes of its ICMP
		// message (which, for an echo request, hold the identifier and
		// sequence we used to send it).
		payload := icmpBuf[4:]
		if len(payload) < 32 {
			return nil, malformedf(&PayloadTooShortError{Got: len(payload), Want: 32})
		}
		embeddedHdr, err := ipv4.ParseHeader(payload[4:24])
		if err != nil {
			return nil, malformedf(ErrNotIPv4Packet)
		}
		return &Icmpv4Packet{
			source:      peer,
			destination: destination,
			ttl:         ttl,
			ttlOK:       ttlOK,
			realDest:    embeddedHdr.Dst,
			realDestOK:  true,
			icmpType:    icmpType,
			icmpCode:    icmpCode,
			size:        len(icmpBuf),
			identifier:  PingIdentifier(be16(payload[28:30])),
			sequence:    PingSequence(be16(payload[30:32])),
		}, nil
	}
}
