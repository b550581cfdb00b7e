package socks

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// udpHeaderScratchLen is the scratch buffer size the receive path reserves
// for the RSV+FRAG+ATYP+ADDR+PORT header: 3 fixed bytes plus the largest
// possible address field. Sized independently of addr.go's maxAddrLen
// because callers may size their own read buffer tight to the payload
// they expect; rounding the header scratch up to comfortably exceed any
// legal header keeps the overflow-shift below from ever losing data.
const udpHeaderScratchLen = 3 + socks5MaxAddrLen

// DatagramRelay is a UDP session established through a SOCKS5 UDP
// ASSOCIATE request. The TCP control connection returned by the ASSOCIATE
// handshake must stay open for the lifetime of the relay — most server
// implementations tear down the UDP association the moment it closes —
// so DatagramRelay keeps it alive internally and closes it alongside the
// datagram socket.
type DatagramRelay struct {
	socket    PacketSocket
	stream    net.Conn
	proxyAddr TargetAddress
}

// AssociateUDP performs the UDP ASSOCIATE handshake over a fresh TCP
// control connection, then connects socket to the relay endpoint the
// proxy reported so that subsequent datagrams are restricted to that
// peer. socket is typically an *internal/iovec.Conn bound to an ephemeral
// local port.
func AssociateUDP(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, creds PasswordCredentials, socket PacketSocket, timeout time.Duration) (*DatagramRelay, error) {
	stream, proxyAddr, err := socks5AssociateRaw(ctx, dialer, proxyEndpoints, creds, timeout)
	if err != nil {
		return nil, err
	}

	if proxyAddr.IsDomain() {
		stream.Close()
		return nil, newError(ErrInvalidSocksAddress, "proxy reported a domain UDP relay address; DNS resolution is out of scope")
	}

	if err := socket.ConnectUDP(&net.UDPAddr{IP: proxyAddr.IP, Port: int(proxyAddr.Port)}); err != nil {
		stream.Close()
		return nil, err
	}

	return &DatagramRelay{socket: socket, stream: stream, proxyAddr: proxyAddr}, nil
}

// ProxyAddress returns the proxy-side UDP endpoint all datagrams are
// routed through.
func (d *DatagramRelay) ProxyAddress() TargetAddress {
	return d.proxyAddr
}

// Close tears down both the datagram socket and the control connection
// that keeps the association alive.
func (d *DatagramRelay) Close() error {
	sockErr := d.socket.Close()
	streamErr := d.stream.Close()
	if sockErr != nil {
		return sockErr
	}
	return streamErr
}

// SendTo frames payload behind a SOCKS5 UDP header addressed to target
// and sends it as a single datagram via the underlying scatter/gather
// send. The relay never fragments: payload plus the framed header must
// fit in one datagram, and this call performs no retransmission.
func (d *DatagramRelay) SendTo(payload []byte, target ToTargetAddresser) (int, error) {
	addr, err := target.ToTargetAddress()
	if err != nil {
		return 0, err
	}

	header := make([]byte, udpHeaderScratchLen)
	header[0], header[1], header[2] = 0, 0, 0 // RSV(2)=0, FRAG=0
	n, err := encodeAddr(header[3:], addr)
	if err != nil {
		return 0, err
	}
	header = header[:3+n]

	return d.socket.WriteV(header, payload)
}

// ReceiveFrom reads one datagram into buf via the underlying scatter/gather
// receive, strips and validates the SOCKS5 UDP header, and returns the
// payload length actually placed at the front of buf together with the
// sender's address.
//
// The header is received into a fixed scratch buffer sized for the
// worst-case header, so on the common case where the real header is
// shorter than that scratch buffer, part of the payload spills into the
// unused header capacity instead of buf. That spillover is shifted back
// to the front of buf, in front of whatever the scatter/gather read
// already placed there directly (§4.5 overflow-shift invariant; total
// length is the combined length read across both buffers).
func (d *DatagramRelay) ReceiveFrom(buf []byte) (int, TargetAddress, error) {
	header := make([]byte, udpHeaderScratchLen)
	n, err := d.socket.ReadV(header, buf)
	if err != nil {
		return 0, TargetAddress{}, err
	}

	headerLen := min(udpHeaderScratchLen, n)
	overflow := n - headerLen // bytes of the datagram already sitting at buf[:overflow]

	hdr := header[:headerLen]
	if len(hdr) < 3 {
		return 0, TargetAddress{}, io.ErrUnexpectedEOF
	}

	if rsv := binary.BigEndian.Uint16(hdr[0:2]); rsv != 0 {
		return 0, TargetAddress{}, newError(ErrInvalidReservedBytes, fmt.Sprintf("bytes=0x%04x", rsv))
	}
	if frag := hdr[2]; frag != 0 {
		return 0, TargetAddress{}, newCodeError(ErrInvalidFragmentID, frag, "")
	}

	br := bytes.NewReader(hdr[3:])
	addr, err := decodeAddr(br)
	if err != nil {
		return 0, TargetAddress{}, err
	}
	consumed := len(hdr) - br.Len()
	leftover := hdr[consumed:]

	copy(buf[len(leftover):len(leftover)+overflow], buf[:overflow])
	copy(buf[:len(leftover)], leftover)

	return len(leftover) + overflow, addr, nil
}
