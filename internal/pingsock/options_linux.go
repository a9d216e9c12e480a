//go:build linux

package pingsock

import (
	"log"
	"net"

	"golang.org/x/sys/unix"
)

func applyPlatformOptions(fd int, ipVer IPVersion, typ Type, opts Options) error {
	if typ == Datagram || opts.BindAddr != "" {
		sa, err := sockaddr(ipVer, opts.BindAddr)
		if err != nil {
			return err
		}
		if err := unix.Bind(fd, sa); err != nil {
			return err
		}
	}

	if opts.Interface != "" {
		if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, opts.Interface); err != nil {
			return err
		}
	} else if opts.IfaceIndex != 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BINDTOIFINDEX, int(opts.IfaceIndex)); err != nil {
			return err
		}
	}

	if opts.RoutingTable != 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_MARK, int(opts.RoutingTable)); err != nil {
			return err
		}
	}

	if opts.TTL != 0 {
		if err := unix.SetsockoptInt(fd, ipVer.ipProto(), ttlSockopt(ipVer), opts.TTL); err != nil {
			return err
		}
	}

	if opts.DontFragment {
		if err := setDontFragment(fd, ipVer); err != nil {
			// Best effort: not every kernel/interface combination supports
			// this, and failing the whole socket over it would be worse
			// than just sending fragmentable packets.
			log.Printf("pingsock: unable to set don't-fragment: %v", err)
		}
	}

	return nil
}

func sockaddr(ipVer IPVersion, bindAddr string) (unix.Sockaddr, error) {
	var ip net.IP
	if bindAddr != "" {
		ip = net.ParseIP(bindAddr)
		if ip == nil {
			return nil, &net.AddrError{Err: "invalid bind address", Addr: bindAddr}
		}
	}
	if ipVer == IPv4 {
		sa := &unix.SockaddrInet4{}
		if ip4 := ip.To4(); ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return sa, nil
	}
	sa := &unix.SockaddrInet6{}
	if ip16 := ip.To16(); ip16 != nil {
		copy(sa.Addr[:], ip16)
	}
	return sa, nil
}

func ttlSockopt(ipVer IPVersion) int {
	if ipVer == IPv4 {
		return unix.IP_TTL
	}
	return unix.IPV6_UNICAST_HOPS
}

func setDontFragment(fd int, ipVer IPVersion) error {
	if ipVer == IPv4 {
		return unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MTU_DISCOVER, unix.IP_PMTUDISC_DO)
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_DONTFRAG, 1)
}
