// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgNotFound implements the Message interface and represents a notfound
// message, sent in response to a getdata request for an item that the
// peer does not have.
type MsgNotFound struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgNotFound) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > maxInvPerMsg {
		return messageError("MsgNotFound.AddInvVect", "too many inv vectors for message")
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, "MsgNotFound.BtcDecode")
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, "MsgNotFound.BtcEncode", msg.InvList)
}

// Command returns the protocol command string for the message.
func (msg *MsgNotFound) Command() string { return CmdNotFound }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgNotFound) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(maxInvPerMsg)) + (maxInvPerMsg * maxInvVectPayload)
}

// NewMsgNotFound returns a new notfound message that conforms to the
// Message interface.
func NewMsgNotFound() *MsgNotFound {
	return &MsgNotFound{InvList: make([]*InvVect, 0, defaultInvListAlloc)}
}
