// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a kind of error the blockchain store can report.
type ErrorCode int

const (
	// ErrMerkleRootMismatch indicates the merkle root computed from a
	// block's transactions does not match the root carried in its header.
	ErrMerkleRootMismatch ErrorCode = iota

	// ErrMissingParent indicates a block or header was declared as an
	// orphan because its referenced parent is not yet known.
	ErrMissingParent

	// ErrDuplicateBlock indicates a block or header with the same hash has
	// already been recorded.
	ErrDuplicateBlock

	// ErrNotGenesis indicates the first block added to an empty chain does
	// not match the network's declared genesis block.
	ErrNotGenesis

	// ErrUnknownBlock indicates a lookup was attempted for a hash the
	// store has no record of.
	ErrUnknownBlock

	// ErrEmptyTransaction indicates a standalone transaction offered to
	// AddTx carries no inputs or no outputs.
	ErrEmptyTransaction
)

var errorCodeStrings = map[ErrorCode]string{
	ErrMerkleRootMismatch: "ErrMerkleRootMismatch",
	ErrMissingParent:      "ErrMissingParent",
	ErrDuplicateBlock:     "ErrDuplicateBlock",
	ErrNotGenesis:         "ErrNotGenesis",
	ErrUnknownBlock:       "ErrUnknownBlock",
	ErrEmptyTransaction:   "ErrEmptyTransaction",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation in a block or header that is the
// fault of whoever produced it — the caller should treat the peer that
// relayed it as misbehaving.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// AssertError identifies an invariant violation in the store's own
// bookkeeping, as opposed to bad input — it indicates a bug in this
// package rather than in a peer.
type AssertError string

// Error satisfies the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}
