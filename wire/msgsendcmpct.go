// Copyright (c) 2018 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgSendCmpct implements the Message interface and represents the
// sendcmpct message, used during the handshake preamble to announce
// compact-block support and the negotiated compact-block version
// (spec §4.5: sent as sendcmpct(false, 1)).
type MsgSendCmpct struct {
	Announce bool
	Version  uint64
}

// NewMsgSendCmpct returns a new sendcmpct message that conforms to the
// Message interface.
func NewMsgSendCmpct(announce bool, version uint64) *MsgSendCmpct {
	return &MsgSendCmpct{Announce: announce, Version: version}
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgSendCmpct) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.Announce); err != nil {
		return err
	}
	return readElement(r, &msg.Version)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgSendCmpct) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, msg.Announce); err != nil {
		return err
	}
	return writeElement(w, msg.Version)
}

// Command returns the protocol command string for the message.
func (msg *MsgSendCmpct) Command() string { return CmdSendCmpct }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgSendCmpct) MaxPayloadLength(pver uint32) uint32 { return 9 }
