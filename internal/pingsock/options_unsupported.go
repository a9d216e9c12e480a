//go:build !linux && !darwin && !freebsd

package pingsock

import "errors"

func bindToIfaceIndex(fd int, ipVer IPVersion, index uint32) error {
	return errors.ErrUnsupported
}

func setRoutingTable(fd int, table uint32) error {
	return errors.ErrUnsupported
}
