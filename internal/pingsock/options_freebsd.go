//go:build freebsd

package pingsock

import (
	"errors"

	"golang.org/x/sys/unix"
)

func bindToIfaceIndex(fd int, ipVer IPVersion, index uint32) error {
	return errors.ErrUnsupported
}

func setRoutingTable(fd int, table uint32) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SETFIB, int(table))
}
