// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPing implements the Message interface and represents a ping message,
// sent every 300 seconds to check liveness (spec §4.5). Nonce is echoed
// back unchanged in the peer's pong.
type MsgPing struct {
	Nonce uint64
}

// NewMsgPing returns a new ping message that conforms to the Message
// interface.
func NewMsgPing(nonce uint64) *MsgPing { return &MsgPing{Nonce: nonce} }

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.Nonce)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.Nonce)
}

// Command returns the protocol command string for the message.
func (msg *MsgPing) Command() string { return CmdPing }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgPing) MaxPayloadLength(pver uint32) uint32 { return 8 }
