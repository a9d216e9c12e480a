package surgeping

import "time"

// Config controls how a Client opens and configures its socket.
type Config struct {
	kind            ICMPKind
	socketTypeHint  SocketType
	bindAddr        string
	iface           string
	ifaceIndex      uint32
	ttl             int
	routingTable    uint32
	dontFragment    bool
	sendRateLimit   float64
	connectTimeout  time.Duration
}

// ConfigOption configures a Config. Apply one or more with NewConfig.
type ConfigOption func(*Config)

// NewConfig builds a Config with the given options applied over sane
// defaults: ICMPv4, a datagram socket attempted before falling back to raw,
// no TTL/binding/routing-table overrides, and a 100 packet/sec default send
// rate limit.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		kind:           ICMPv4,
		socketTypeHint: SocketDatagram,
		sendRateLimit:  100,
		connectTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithKind selects ICMPv4 or ICMPv6.
func WithKind(kind ICMPKind) ConfigOption {
	return func(c *Config) { c.kind = kind }
}

// WithSocketTypeHint selects which socket type to try first; the other type
// is tried once if the first attempt is refused by the kernel.
func WithSocketTypeHint(t SocketType) ConfigOption {
	return func(c *Config) { c.socketTypeHint = t }
}

// WithBindAddr binds the socket to a specific local address.
func WithBindAddr(addr string) ConfigOption {
	return func(c *Config) { c.bindAddr = addr }
}

// WithInterface binds the socket to a named network interface
// (SO_BINDTODEVICE on Linux).
func WithInterface(name string) ConfigOption {
	return func(c *Config) { c.iface = name }
}

// WithInterfaceIndex binds the socket to a network interface by index.
func WithInterfaceIndex(index uint32) ConfigOption {
	return func(c *Config) { c.ifaceIndex = index }
}

// WithTTL sets the outgoing IP_TTL/IPV6_UNICAST_HOPS value.
func WithTTL(ttl int) ConfigOption {
	return func(c *Config) { c.ttl = ttl }
}

// WithRoutingTable sets the routing table/fwmark the socket's outgoing
// packets are tagged with (SO_MARK on Linux, SO_SETFIB on FreeBSD).
func WithRoutingTable(id uint32) ConfigOption {
	return func(c *Config) { c.routingTable = id }
}

// WithDontFragment sets the don't-fragment bit on outgoing packets.
func WithDontFragment(v bool) ConfigOption {
	return func(c *Config) { c.dontFragment = v }
}

// WithSendRateLimit caps outbound echo requests to r packets per second.
// A value of 0 disables rate limiting.
func WithSendRateLimit(r float64) ConfigOption {
	return func(c *Config) { c.sendRateLimit = r }
}

// Kind reports the configured ICMP family.
func (c *Config) Kind() ICMPKind { return c.kind }
