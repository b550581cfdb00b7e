//go:build !unix

package iovec

import "net"

// connectUDP on non-unix platforms re-dials rather than calling connect(2)
// directly on the existing descriptor; the local port may change if it
// was ephemeral. Acceptable here since ConnectUDP is always called before
// any datagram has been sent or received.
func (c *Conn) connectUDP(remote *net.UDPAddr) error {
	local := c.udp.LocalAddr().(*net.UDPAddr)
	if err := c.udp.Close(); err != nil {
		return err
	}
	udp, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return err
	}
	c.udp = udp
	return nil
}

// writeV falls back to concatenating into a scratch buffer and issuing a
// single Write, since the vectored primitive is unavailable. Semantics
// match the scatter send exactly: one datagram containing hdr followed
// by payload.
func (c *Conn) writeV(hdr, payload []byte) (int, error) {
	buf := make([]byte, 0, len(hdr)+len(payload))
	buf = append(buf, hdr...)
	buf = append(buf, payload...)
	return c.udp.Write(buf)
}

// readV receives one datagram into a scratch buffer sized for both
// destinations, then splits it the same way the vectored primitive would
// have delivered it.
func (c *Conn) readV(hdr, payload []byte) (int, error) {
	buf := make([]byte, len(hdr)+len(payload))
	n, err := c.udp.Read(buf)
	if err != nil {
		return n, err
	}
	hn := copy(hdr, buf[:n])
	var pn int
	if n > hn {
		pn = copy(payload, buf[hn:n])
	}
	return hn + pn, nil
}
