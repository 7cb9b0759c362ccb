// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxAddrPerMsg is the maximum number of addresses in a single addr
// message.
const MaxAddrPerMsg = 1000

// MsgAddr implements the Message interface and represents a TKEY addr
// message, used to answer a getaddr request with a list of known peer
// addresses. Unlike a Version message's embedded NetAddress, each entry
// here carries its own Timestamp.
type MsgAddr struct {
	AddrList []*NetAddress
}

// AddAddress adds a known active peer address to the message.
func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return messageError("MsgAddr.AddAddress", "too many addresses for message")
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

// AddAddresses adds multiple known active peer addresses to the message.
func (msg *MsgAddr) AddAddresses(netAddrs ...*NetAddress) error {
	for _, na := range netAddrs {
		if err := msg.AddAddress(na); err != nil {
			return err
		}
	}
	return nil
}

// ClearAddresses removes all addresses from the message.
func (msg *MsgAddr) ClearAddresses() {
	msg.AddrList = []*NetAddress{}
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcDecode", fmt.Sprintf(
			"too many addresses for message [count %d, max %d]", count, MaxAddrPerMsg))
	}

	addrList := make([]NetAddress, count)
	msg.AddrList = make([]*NetAddress, count)
	for i := uint64(0); i < count; i++ {
		na := &addrList[i]
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		msg.AddrList[i] = na
	}
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.AddrList)
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcEncode", "too many addresses for message")
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for the message.
func (msg *MsgAddr) Command() string { return CmdAddr }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxAddrPerMsg)) + MaxAddrPerMsg*(maxNetAddressPayload+4)
}

// NewMsgAddr returns a new addr message that conforms to the Message
// interface.
func NewMsgAddr() *MsgAddr { return &MsgAddr{AddrList: []*NetAddress{}} }
