// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgInv implements the Message interface and represents an inv message,
// used to advertise a peer's knowledge of transactions or blocks (spec
// §4.5 AskInventory / SendInventory, batched on a 5s timer per peer).
type MsgInv struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgInv) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > maxInvPerMsg {
		return messageError("MsgInv.AddInvVect", "too many inv vectors for message")
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, "MsgInv.BtcDecode")
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, "MsgInv.BtcEncode", msg.InvList)
}

// Command returns the protocol command string for the message.
func (msg *MsgInv) Command() string { return CmdInv }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgInv) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(maxInvPerMsg)) + (maxInvPerMsg * maxInvVectPayload)
}

// NewMsgInv returns a new inv message that conforms to the Message
// interface.
func NewMsgInv() *MsgInv {
	return &MsgInv{InvList: make([]*InvVect, 0, defaultInvListAlloc)}
}
