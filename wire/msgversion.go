// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message (MsgVersion).
const MaxUserAgentLen = 256

// DefaultUserAgent is the user agent string this package would advertise,
// matching the reference implementation's Node::USER_AGENT format.
const DefaultUserAgent = "/TKeyCoin:8.0.0/"

// MsgVersion implements the Message interface and represents the version
// message sent and received by every peer: a node must exchange
// version/verack before any other command is accepted (spec §4.4 step 3).
type MsgVersion struct {
	// ProtocolVersion is the version of the protocol the transmitting node
	// supports.
	ProtocolVersion int32

	// Services the node supports.
	Services ServiceFlag

	// Timestamp the message was generated.
	Timestamp time.Time

	// AddrYou is the address of the receiving node.
	AddrYou NetAddress

	// AddrMe is the address of the transmitting node.
	AddrMe NetAddress

	// Nonce used to detect self-connections.
	Nonce uint64

	// UserAgent advertises the software and version of the transmitting
	// node.
	UserAgent string

	// LastBlock is the last block height the transmitting node has seen.
	LastBlock int32

	// DisableRelayTx indicates whether the remote peer should announce
	// relayed transactions.
	DisableRelayTx bool
}

// HasService returns whether the peer advertised the given service.
func (msg *MsgVersion) HasService(service ServiceFlag) bool {
	return msg.Services&service == service
}

// AddService adds service as a supported service by the peer generating the
// message.
func (msg *MsgVersion) AddService(service ServiceFlag) {
	msg.Services |= service
}

// NewMsgVersion returns a new version message that conforms to the Message
// interface using the passed parameters and defaults for the remaining
// fields.
func NewMsgVersion(me *NetAddress, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Unix(time.Now().Unix(), 0),
		AddrYou:         *you,
		AddrMe:          *me,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		LastBlock:       lastBlock,
		DisableRelayTx:  false,
	}
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	var pv uint32
	if err := readElement(r, &pv); err != nil {
		return err
	}
	msg.ProtocolVersion = int32(pv)

	var services uint64
	if err := readElement(r, &services); err != nil {
		return err
	}
	msg.Services = ServiceFlag(services)

	var sec int64
	if err := readElement(r, &sec); err != nil {
		return err
	}
	msg.Timestamp = time.Unix(sec, 0)

	if err := readNetAddress(r, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := readNetAddress(r, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := readElement(r, &msg.Nonce); err != nil {
		return err
	}

	userAgent, err := ReadVarString(r, MaxUserAgentLen, "user agent")
	if err != nil {
		return err
	}
	msg.UserAgent = userAgent

	var lastBlock uint32
	if err := readElement(r, &lastBlock); err != nil {
		return err
	}
	msg.LastBlock = int32(lastBlock)

	if err := readElement(r, &msg.DisableRelayTx); err != nil {
		// DisableRelayTx is an optional trailer; older peers omit it.
		if err != io.EOF {
			return err
		}
		msg.DisableRelayTx = false
	}

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.UserAgent) > MaxUserAgentLen {
		return messageError("MsgVersion.BtcEncode", "user agent too long")
	}

	if err := writeElement(w, uint32(msg.ProtocolVersion)); err != nil {
		return err
	}
	if err := writeElement(w, uint64(msg.Services)); err != nil {
		return err
	}
	if err := writeElement(w, msg.Timestamp.Unix()); err != nil {
		return err
	}
	if err := writeNetAddress(w, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := writeElement(w, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, msg.UserAgent); err != nil {
		return err
	}
	if err := writeElement(w, uint32(msg.LastBlock)); err != nil {
		return err
	}
	return writeElement(w, msg.DisableRelayTx)
}

// Command returns the protocol command string for the message.
func (msg *MsgVersion) Command() string { return CmdVersion }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 33 + (maxNetAddressPayload * 2) + MaxUserAgentLen + 9
}
