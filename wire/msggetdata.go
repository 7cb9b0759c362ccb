// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetData implements the Message interface and represents a getdata
// message, used to request one or more data objects (transactions or
// blocks) previously advertised in an inv message.
type MsgGetData struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > maxInvPerMsg {
		return messageError("MsgGetData.AddInvVect", "too many inv vectors for message")
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, "MsgGetData.BtcDecode")
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, "MsgGetData.BtcEncode", msg.InvList)
}

// Command returns the protocol command string for the message.
func (msg *MsgGetData) Command() string { return CmdGetData }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgGetData) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(maxInvPerMsg)) + (maxInvPerMsg * maxInvVectPayload)
}

// NewMsgGetData returns a new getdata message that conforms to the
// Message interface.
func NewMsgGetData() *MsgGetData {
	return &MsgGetData{InvList: make([]*InvVect, 0, defaultInvListAlloc)}
}
