package surgeping

import (
	"encoding/hex"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var (
	peerV4  = net.ParseIP("192.0.2.1")
	localV4 = net.ParseIP("192.0.2.254")
)

func TestEncodeEchoRequestV4(t *testing.T) {
	b, err := EncodeEchoRequestV4(42, 7, []byte("the payload"), false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), 8)
	assert.Equal(t, uint8(ipv4.ICMPTypeEcho), b[0])
	assert.Equal(t, uint8(0), b[1])
	assert.Equal(t, uint16(42), be16(b[4:6]))
	assert.Equal(t, uint16(7), be16(b[6:8]))
}

func TestEncodeEchoRequestV4ZeroChecksum(t *testing.T) {
	b, err := EncodeEchoRequestV4(42, 7, []byte("the payload"), true)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), 4)
	assert.Equal(t, uint16(0), be16(b[2:4]))
}

func TestDecodeIcmpv4EchoReplyDatagram(t *testing.T) {
	b, err := EncodeEchoRequestV4(42, 7, []byte("payload"), false)
	require.NoError(t, err)
	// An echo reply has the same wire shape as a request but with type 0.
	b[0] = uint8(ipv4.ICMPTypeEchoReply)

	pkt, err := DecodeIcmpv4(b, SocketDatagram, peerV4, localV4)
	require.NoError(t, err)
	assert.True(t, peerV4.Equal(pkt.Source()))
	assert.True(t, localV4.Equal(pkt.Destination()))
	assert.Equal(t, PingIdentifier(42), pkt.Identifier())
	assert.Equal(t, PingSequence(7), pkt.Sequence())
	ttl, ttlOK := pkt.TTL()
	assert.False(t, ttlOK)
	assert.Equal(t, uint8(0), ttl)
	real, realOK := pkt.RealDest()
	assert.True(t, realOK)
	assert.True(t, peerV4.Equal(real))
}

func TestDecodeIcmpv4EchoRequestRejected(t *testing.T) {
	b, err := EncodeEchoRequestV4(1, 1, nil, false)
	require.NoError(t, err)
	_, err = DecodeIcmpv4(b, SocketDatagram, peerV4, localV4)
	assert.ErrorIs(t, err, ErrEchoRequestPacket)
}

func TestDecodeIcmpv4ErrorMessage(t *testing.T) {
	embeddedHdr := ipv4.Header{
		Version:  4,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + 8,
		TTL:      64,
		Protocol: 1,
		Src:      localV4.To4(),
		Dst:      net.ParseIP("203.0.113.9").To4(),
	}
	embeddedHdrBytes, err := embeddedHdr.Marshal()
	require.NoError(t, err)

	embeddedICMP := make([]byte, 8)
	embeddedICMP[0] = uint8(ipv4.ICMPTypeEcho)
	putBe16(embeddedICMP[4:6], 99)
	putBe16(embeddedICMP[6:8], 3)

	msg := icmp.Message{
		Type: ipv4.ICMPTypeTimeExceeded,
		Code: 0,
		Body: &icmp.TimeExceeded{
			Data: append(embeddedHdrBytes, embeddedICMP...),
		},
	}
	b, err := msg.Marshal(nil)
	require.NoError(t, err)

	pkt, err := DecodeIcmpv4(b, SocketDatagram, peerV4, localV4)
	require.NoError(t, err)
	assert.Equal(t, PingIdentifier(99), pkt.Identifier())
	assert.Equal(t, PingSequence(3), pkt.Sequence())
	real, ok := pkt.RealDest()
	require.True(t, ok)
	assert.True(t, net.ParseIP("203.0.113.9").Equal(real))
}

func TestDecodeIcmpv4PayloadTooShort(t *testing.T) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeDestinationUnreachable,
		Code: 0,
		Body: &icmp.DstUnreach{
			Data: make([]byte, 10),
		},
	}
	b, err := msg.Marshal(nil)
	require.NoError(t, err)

	_, err = DecodeIcmpv4(b, SocketDatagram, peerV4, localV4)
	require.Error(t, err)
	var mpe *MalformedPacketError
	require.True(t, errors.As(err, &mpe))
	var short *PayloadTooShortError
	require.True(t, errors.As(mpe.Reason, &short))
	assert.Equal(t, 32, short.Want)
}

// These hex strings are deliberately truncated or otherwise invalid ICMP
// messages; decoding must fail rather than panic or misreport a packet.
func TestDecodeIcmpv4RejectsMalformedInput(t *testing.T) {
	cases := []string{
		"4500001d0000000079018a76acd90e6e0a00f22203006c3293cc",
		"4500001d0000000079018a76acd90e6e0a00f22203006c3293cc000100",
	}
	for _, h := range cases {
		b, err := hex.DecodeString(h)
		require.NoError(t, err)
		if _, err := DecodeIcmpv4(b, SocketRaw, peerV4, localV4); err == nil {
			t.Errorf("decode of %q: want error, got nil", h)
		}
	}
}
