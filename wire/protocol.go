// Copyright (c) 2013-2024 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// ProtocolVersion is the latest protocol version this package supports, and
// corresponds to Node::VERSION in the reference implementation.
const ProtocolVersion uint32 = 80000

// MinAcceptableProtocolVersion is the lowest version number accepted from a
// peer's version message during the handshake, corresponding to
// Node::MIN_VERSION.
const MinAcceptableProtocolVersion uint32 = 80000

// ServiceFlag identifies services supported by a TKEY peer, advertised in
// the Version message's Services field.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates the peer is a full node able to serve the
	// complete block chain.
	SFNodeNetwork ServiceFlag = 1 << iota

	// SFNodeGetUTXO indicates the peer supports the getutxos protocol.
	SFNodeGetUTXO

	// SFNodeBloom indicates the peer supports bloom filtering.
	SFNodeBloom
)

// serviceFlagStrings maps service flags to human-readable names for
// diagnostic logging.
var serviceFlagStrings = map[ServiceFlag]string{
	SFNodeNetwork: "SFNodeNetwork",
	SFNodeGetUTXO: "SFNodeGetUTXO",
	SFNodeBloom:   "SFNodeBloom",
}

// String returns the ServiceFlag in human-readable form.
func (f ServiceFlag) String() string {
	if s, ok := serviceFlagStrings[f]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ServiceFlag (%d)", uint64(f))
}

// CurrencyNet represents which TKEY network a message belongs to, encoded
// as the 4-byte magic at the start of every MessageHeader.
type CurrencyNet uint32

const (
	// MainNet represents the main TKEY network.
	MainNet CurrencyNet = 0xd1b2a3c4

	// TestNet represents the test network.
	TestNet CurrencyNet = 0xb3a2c1d0

	// SimNet is used to locally simulate a network between peers under
	// test, without the overhead of the actual proof-of-work or consensus
	// rules.
	SimNet CurrencyNet = 0x01020304
)

// netNames maps TKEY networks to their human-readable names.
var netNames = map[CurrencyNet]string{
	MainNet: "MainNet",
	TestNet: "TestNet",
	SimNet:  "SimNet",
}

// String returns the CurrencyNet in human-readable form.
func (n CurrencyNet) String() string {
	if s, ok := netNames[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown CurrencyNet (%d)", uint32(n))
}

// InvType represents the type of an inventory vector.
type InvType uint32

const (
	// InvTypeError is an invalid inventory type used as a zero-value
	// sentinel; filterKnownInventory always drops these.
	InvTypeError InvType = 0

	// InvTypeTx indicates the inventory vector names a transaction.
	InvTypeTx InvType = 1

	// InvTypeBlock indicates the inventory vector names a block.
	InvTypeBlock InvType = 2

	// InvTypeFilteredBlock indicates the inventory vector names a block
	// but requests a merkleblock response instead of a full block.
	InvTypeFilteredBlock InvType = 3

	// InvTypeCmpctBlock indicates the inventory vector names a block but
	// requests a compact block response.
	InvTypeCmpctBlock InvType = 4
)

var ivStrings = map[InvType]string{
	InvTypeError:         "ERROR",
	InvTypeTx:            "MSG_TX",
	InvTypeBlock:         "MSG_BLOCK",
	InvTypeFilteredBlock: "MSG_FILTERED_BLOCK",
	InvTypeCmpctBlock:    "MSG_CMPCT_BLOCK",
}

// String returns the InvType in human-readable form.
func (t InvType) String() string {
	if s, ok := ivStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown InvType (%d)", uint32(t))
}
