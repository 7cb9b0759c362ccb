// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgSendHeaders implements the Message interface and represents the
// sendheaders message, which requests that new blocks be announced via a
// headers message rather than an inv message. It has no payload.
type MsgSendHeaders struct{}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgSendHeaders) BtcDecode(r io.Reader, pver uint32) error { return nil }

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgSendHeaders) BtcEncode(w io.Writer, pver uint32) error { return nil }

// Command returns the protocol command string for the message.
func (msg *MsgSendHeaders) Command() string { return CmdSendHeaders }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgSendHeaders) MaxPayloadLength(pver uint32) uint32 { return 0 }

// NewMsgSendHeaders returns a new sendheaders message that conforms to the
// Message interface.
func NewMsgSendHeaders() *MsgSendHeaders { return &MsgSendHeaders{} }
