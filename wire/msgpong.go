// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPong implements the Message interface and represents a pong message,
// sent in reply to a ping with the same nonce (spec §4.5).
type MsgPong struct {
	Nonce uint64
}

// NewMsgPong returns a new pong message that conforms to the Message
// interface.
func NewMsgPong(nonce uint64) *MsgPong { return &MsgPong{Nonce: nonce} }

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.Nonce)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.Nonce)
}

// Command returns the protocol command string for the message.
func (msg *MsgPong) Command() string { return CmdPong }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgPong) MaxPayloadLength(pver uint32) uint32 { return 8 }
