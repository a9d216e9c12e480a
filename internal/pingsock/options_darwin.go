//go:build darwin

package pingsock

import "golang.org/x/sys/unix"

func bindToIfaceIndex(fd int, ipVer IPVersion, index uint32) error {
	if ipVer == IPv4 {
		return unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_BOUND_IF, int(index))
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_BOUND_IF, int(index))
}

func setRoutingTable(fd int, table uint32) error {
	return errUnsupportedRoutingTable
}
