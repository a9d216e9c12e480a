//go:build !linux

package pingsock

import (
	"errors"
	"log"

	"golang.org/x/sys/unix"
)

func applyPlatformOptions(fd int, ipVer IPVersion, typ Type, opts Options) error {
	if opts.Interface != "" {
		return errors.ErrUnsupported
	}
	if opts.IfaceIndex != 0 {
		if err := bindToIfaceIndex(fd, ipVer, opts.IfaceIndex); err != nil {
			return err
		}
	}

	if opts.RoutingTable != 0 {
		if err := setRoutingTable(fd, opts.RoutingTable); err != nil {
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
			log.Printf("pingsock: unable to set don't-fragment: %v", err)
		}
	}

	return nil
}

func ttlSockopt(ipVer IPVersion) int {
	if ipVer == IPv4 {
		return unix.IP_TTL
	}
	return unix.IPV6_UNICAST_HOPS
}

func setDontFragment(fd int, ipVer IPVersion) error {
	if ipVer == IPv4 {
		return unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_DONTFRAG, 1)
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_DONTFRAG, 1)
}
