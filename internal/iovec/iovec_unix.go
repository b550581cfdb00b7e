//go:build unix

package iovec

import (
	"net"

	"golang.org/x/sys/unix"
)

func (c *Conn) connectUDP(remote *net.UDPAddr) error {
	sa, err := udpAddrToSockaddr(remote)
	if err != nil {
		return err
	}
	raw, err := c.udp.SyscallConn()
	if err != nil {
		return err
	}
	var connectErr error
	if err := raw.Control(func(fd uintptr) {
		connectErr = unix.Connect(int(fd), sa)
	}); err != nil {
		return err
	}
	return connectErr
}

func (c *Conn) writeV(hdr, payload []byte) (int, error) {
	iovs := [][]byte{hdr, payload}
	var n int
	raw, err := c.udp.SyscallConn()
	if err != nil {
		return 0, err
	}
	var writeErr error
	if err := raw.Write(func(fd uintptr) bool {
		r, e := unix.Writev(int(fd), iovs)
		if e == unix.EAGAIN {
			return false
		}
		n, writeErr = r, e
		return true
	}); err != nil {
		return 0, err
	}
	return n, writeErr
}

func (c *Conn) readV(hdr, payload []byte) (int, error) {
	iovs := [][]byte{hdr, payload}
	var n int
	raw, err := c.udp.SyscallConn()
	if err != nil {
		return 0, err
	}
	var readErr error
	if err := raw.Read(func(fd uintptr) bool {
		r, e := unix.Readv(int(fd), iovs)
		if e == unix.EAGAIN {
			return false
		}
		n, readErr = r, e
		return true
	}); err != nil {
		return 0, err
	}
	return n, readErr
}

func udpAddrToSockaddr(addr *net.UDPAddr) (unix.Sockaddr, error) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		var sa unix.SockaddrInet4
		copy(sa.Addr[:], ip4)
		sa.Port = addr.Port
		return &sa, nil
	}
	ip16 := addr.IP.To16()
	var sa unix.SockaddrInet6
	copy(sa.Addr[:], ip16)
	sa.Port = addr.Port
	return &sa, nil
}
