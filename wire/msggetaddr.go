// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetAddr implements the Message interface and represents a getaddr
// message. It is used to request a list of known active peers on the
// network from a peer (spec §4.5 preamble). It has no payload.
type MsgGetAddr struct{}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error { return nil }

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error { return nil }

// Command returns the protocol command string for the message.
func (msg *MsgGetAddr) Command() string { return CmdGetAddr }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgGetAddr) MaxPayloadLength(pver uint32) uint32 { return 0 }

// NewMsgGetAddr returns a new getaddr message that conforms to the Message
// interface.
func NewMsgGetAddr() *MsgGetAddr { return &MsgGetAddr{} }
