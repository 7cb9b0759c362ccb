// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// maxNetAddressPayload is the max payload size for a NetAddress.
const maxNetAddressPayload = 30

// NetAddress defines information about a peer on the network, including the
// time it was last seen, the services it supports, its IP address, and its
// port. IP addresses are always stored as 16 bytes, with IPv4 addresses
// represented as IPv4-mapped IPv6 addresses.
type NetAddress struct {
	// Timestamp is the last time the address was seen; it is omitted from
	// the wire encoding inside a Version message.
	Timestamp time.Time

	// Services the peer supports.
	Services ServiceFlag

	// IP the peer's address, always stored as a 16-byte slice.
	IP net.IP

	// Port the peer is listening on, encoded big-endian on the wire
	// (unlike every other integer field in the protocol).
	Port uint16
}

// NewNetAddressIPPort returns a new NetAddress using the provided IP,
// port, and supported service flags, with the timestamp set to now.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Timestamp: time.Now(),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

// AddService adds the provided service to the set of services that the
// NetAddress supports.
func (na *NetAddress) AddService(service ServiceFlag) {
	na.Services |= service
}

// HasService returns whether the NetAddress supports the given service.
func (na *NetAddress) HasService(service ServiceFlag) bool {
	return na.Services&service == service
}

func readNetAddress(r io.Reader, na *NetAddress, ts bool) error {
	var ip [16]byte

	if ts {
		var timestamp uint32
		if err := readElement(r, &timestamp); err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(timestamp), 0)
	}

	services, err := readUint64(r)
	if err != nil {
		return err
	}

	if err := readElement(r, &ip); err != nil {
		return err
	}

	var port uint16
	if err := readElementBigEndian(r, &port); err != nil {
		return err
	}

	*na = NetAddress{
		Timestamp: na.Timestamp,
		Services:  ServiceFlag(services),
		IP:        net.IP(ip[:]),
		Port:      port,
	}
	return nil
}

// BtcEncode writes na to w, including its timestamp. Used by callers (such
// as the address manager's persistence file) that need a standalone
// encoding rather than the embedded, sometimes-timestamp-less form used
// inside addr/version messages.
func (na *NetAddress) BtcEncode(w io.Writer) error {
	return writeNetAddress(w, na, true)
}

// BtcDecode reads a NetAddress previously written by BtcEncode.
func (na *NetAddress) BtcDecode(r io.Reader) error {
	return readNetAddress(r, na, true)
}

func writeNetAddress(w io.Writer, na *NetAddress, ts bool) error {
	if ts {
		if err := writeElement(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	if err := writeElement(w, uint64(na.Services)); err != nil {
		return err
	}

	var ip [16]byte
	if v4 := na.IP.To4(); v4 != nil {
		copy(ip[:12], []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff})
		copy(ip[12:16], v4)
	} else if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if err := writeElement(w, ip); err != nil {
		return err
	}

	return writeElementBigEndian(w, na.Port)
}

// readUint64 reads a little-endian uint64, used for the Services bitfield.
func readUint64(r io.Reader) (uint64, error) {
	var v uint64
	err := readElement(r, &v)
	return v, err
}

// readElementBigEndian and writeElementBigEndian handle the Port field,
// which is the single big-endian integer in the wire format.
func readElementBigEndian(r io.Reader, port *uint16) error {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	*port = uint16(buf[0])<<8 | uint16(buf[1])
	return nil
}

func writeElementBigEndian(w io.Writer, port uint16) error {
	buf := [2]byte{byte(port >> 8), byte(port)}
	_, err := w.Write(buf[:])
	return err
}
