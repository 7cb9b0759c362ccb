// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgFeeFilter implements the Message interface and represents a feefilter
// message, used to request the minimum fee rate (satoshi-equivalent per
// kilobyte) a peer should relay transactions at (spec §4.5).
type MsgFeeFilter struct {
	MinFee int64
}

// NewMsgFeeFilter returns a new feefilter message that conforms to the
// Message interface.
func NewMsgFeeFilter(minFee int64) *MsgFeeFilter { return &MsgFeeFilter{MinFee: minFee} }

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgFeeFilter) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.MinFee)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgFeeFilter) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.MinFee)
}

// Command returns the protocol command string for the message.
func (msg *MsgFeeFilter) Command() string { return CmdFeeFilter }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgFeeFilter) MaxPayloadLength(pver uint32) uint32 { return 8 }
