// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// MessageHeaderSize is the number of bytes in a TKEY message header:
// 4 byte magic, 12 byte command, 4 byte payload length, 4 byte checksum.
const MessageHeaderSize = 24

// CommandSize is the fixed size of the NUL-padded command field.
const CommandSize = 12

// MaxMessagePayload is the maximum bytes a message payload can be, a
// generous bound to guard the length-prefixed read loop against a hostile
// peer claiming an enormous payload.
const MaxMessagePayload = 32 * 1024 * 1024

// Commands used in the message registry (spec §6).
const (
	CmdVersion      = "version"
	CmdVerAck       = "verack"
	CmdPing         = "ping"
	CmdPong         = "pong"
	CmdSendHeaders  = "sendheaders"
	CmdSendCmpct    = "sendcmpct"
	CmdGetHeaders   = "getheaders"
	CmdHeaders      = "headers"
	CmdGetBlocks    = "getblocks"
	CmdBlock        = "block"
	CmdGetData      = "getdata"
	CmdInv          = "inv"
	CmdNotFound     = "notfound"
	CmdTx           = "tx"
	CmdFeeFilter    = "feefilter"
	CmdGetAddr      = "getaddr"
	CmdAddr         = "addr"
	CmdGetBlockTxn  = "getblocktxn"
	CmdCmpctBlock   = "cmpctblock"
	CmdMerkleBlock  = "merkleblock"
)

// Message is the interface that every wire message payload implements: the
// command string it is framed under, its decode/encode pair, and a maximum
// payload size used to bound the read.
type Message interface {
	BtcDecode(r io.Reader, pver uint32) error
	BtcEncode(w io.Writer, pver uint32) error
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

// makeEmptyMessage is the message factory (component G): given a command
// string it allocates a zero-value message of the matching type, or an
// error if the command is unknown. This corresponds to a build-time
// registry keyed on the command string, replacing the source's
// self-registering file-scope constructors (see DESIGN.md).
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdSendHeaders:
		return &MsgSendHeaders{}, nil
	case CmdSendCmpct:
		return &MsgSendCmpct{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdFeeFilter:
		return &MsgFeeFilter{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdGetBlockTxn:
		return &MsgGetBlockTxn{}, nil
	case CmdCmpctBlock:
		return &MsgCmpctBlock{}, nil
	case CmdMerkleBlock:
		return &MsgMerkleBlock{}, nil
	}
	return nil, fmt.Errorf("unhandled command [%s]", command)
}

// messageHeader is the 24-byte frame prefix described in spec §6.
type messageHeader struct {
	magic    CurrencyNet
	command  string
	length   uint32
	checksum [4]byte
}

func readMessageHeader(r io.Reader) (int, *messageHeader, error) {
	var headerBytes [MessageHeaderSize]byte
	n, err := io.ReadFull(r, headerBytes[:])
	if err != nil {
		return n, nil, err
	}
	hr := bytes.NewReader(headerBytes[:])

	var magic uint32
	if err := readElement(hr, &magic); err != nil {
		return n, nil, err
	}

	var command [CommandSize]byte
	if _, err := io.ReadFull(hr, command[:]); err != nil {
		return n, nil, err
	}
	cmdEnd := CommandSize
	for i, b := range command {
		if b == 0 {
			cmdEnd = i
			break
		}
	}

	var length uint32
	if err := readElement(hr, &length); err != nil {
		return n, nil, err
	}

	var checksum [4]byte
	if _, err := io.ReadFull(hr, checksum[:]); err != nil {
		return n, nil, err
	}

	return n, &messageHeader{
		magic:    CurrencyNet(magic),
		command:  string(command[:cmdEnd]),
		length:   length,
		checksum: checksum,
	}, nil
}

// commandBytes NUL-pads a command string to the fixed 12-byte wire field.
func commandBytes(command string) ([CommandSize]byte, error) {
	var buf [CommandSize]byte
	if len(command) > CommandSize {
		return buf, messageError("commandBytes", fmt.Sprintf(
			"command %q is too long", command))
	}
	copy(buf[:], command)
	return buf, nil
}

// WriteMessageN writes a TKEY message to w, framed in a MessageHeader, and
// returns the number of bytes written. The checksum is the first four bytes
// of the double-SHA-256 of the payload, and the header's length field is
// the number of payload bytes — matching scenario 2 in spec §8 exactly.
func WriteMessageN(w io.Writer, msg Message, pver uint32, net CurrencyNet) (int, error) {
	cmdBytes, err := commandBytes(msg.Command())
	if err != nil {
		return 0, err
	}

	var payload bytes.Buffer
	if err := msg.BtcEncode(&payload, pver); err != nil {
		return 0, err
	}
	payloadBytes := payload.Bytes()
	lenp := len(payloadBytes)

	mpl := msg.MaxPayloadLength(pver)
	if uint32(lenp) > mpl {
		return 0, messageError("WriteMessage", fmt.Sprintf(
			"message payload is too large - encoded %d bytes, but maximum "+
				"message payload is %d bytes", lenp, mpl))
	}

	checksum := chainhash.HashFuncB(payloadBytes)[:4]

	var header bytes.Buffer
	if err := writeElement(&header, uint32(net)); err != nil {
		return 0, err
	}
	if _, err := header.Write(cmdBytes[:]); err != nil {
		return 0, err
	}
	if err := writeElement(&header, uint32(lenp)); err != nil {
		return 0, err
	}
	if _, err := header.Write(checksum); err != nil {
		return 0, err
	}

	n1, err := w.Write(header.Bytes())
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(payloadBytes)
	return n1 + n2, err
}

// WriteMessage is the convenience form of WriteMessageN that discards the
// byte count.
func WriteMessage(w io.Writer, msg Message, pver uint32, net CurrencyNet) error {
	_, err := WriteMessageN(w, msg, pver, net)
	return err
}

// ReadMessageN reads, validates, and parses the next Message from r,
// implementing the decode side of component F/G (spec §4.4 steps 1-7). It
// returns the raw byte count consumed, the command string, and the decoded
// Message.
func ReadMessageN(r io.Reader, pver uint32, net CurrencyNet) (int, string, Message, error) {
	totalBytes := 0
	n, hdr, err := readMessageHeader(r)
	totalBytes += n
	if err != nil {
		return totalBytes, "", nil, err
	}

	if hdr.magic != net {
		return totalBytes, "", nil, messageError("ReadMessage", fmt.Sprintf(
			"message from network %s does not match expected network %s",
			hdr.magic, net))
	}

	if hdr.length > MaxMessagePayload {
		return totalBytes, hdr.command, nil, messageError("ReadMessage", fmt.Sprintf(
			"payload length %d exceeds max length %d", hdr.length, MaxMessagePayload))
	}

	msg, err := makeEmptyMessage(hdr.command)
	if err != nil {
		return totalBytes, hdr.command, nil, messageError("ReadMessage", err.Error())
	}

	if hdr.length > msg.MaxPayloadLength(pver) {
		return totalBytes, hdr.command, nil, messageError("ReadMessage", fmt.Sprintf(
			"payload length %d exceeds max for command %q", hdr.length, hdr.command))
	}

	payload := make([]byte, hdr.length)
	n, err = io.ReadFull(r, payload)
	totalBytes += n
	if err != nil {
		return totalBytes, hdr.command, nil, err
	}

	checksum := chainhash.HashFuncB(payload)[:4]
	if !bytes.Equal(checksum, hdr.checksum[:]) {
		return totalBytes, hdr.command, nil, messageError("ReadMessage", fmt.Sprintf(
			"payload checksum does not match: %x != %x", checksum, hdr.checksum))
	}

	if err := msg.BtcDecode(bytes.NewReader(payload), pver); err != nil {
		return totalBytes, hdr.command, nil, err
	}

	return totalBytes, hdr.command, msg, nil
}

// ReadMessage is the convenience form of ReadMessageN that discards the
// byte count.
func ReadMessage(r io.Reader, pver uint32, net CurrencyNet) (string, Message, error) {
	_, cmd, msg, err := ReadMessageN(r, pver, net)
	return cmd, msg, err
}
