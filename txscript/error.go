// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// ErrorCode identifies a kind of script error, mirroring the ScriptError
// enum in original_source's ScriptError.hpp.
type ErrorCode int

const (
	// ErrOK indicates successful script execution.
	ErrOK ErrorCode = iota

	// Normal failure.
	ErrEvalFalse
	ErrEarlyReturn

	// Limits of sizes/counts.
	ErrScriptTooBig
	ErrElementTooBig
	ErrTooManyOperations
	ErrStackOverflow
	ErrInvalidSigCount
	ErrInvalidPubKeyCount

	// Failed conversions.
	ErrNumberTooBig
	ErrNotAByteArray

	// Failed verify operations.
	ErrVerify
	ErrEqualVerify
	ErrCheckMultiSigVerify
	ErrCheckSigVerify
	ErrNumEqualVerify

	// Logical/format/canonical errors.
	ErrBadOpcode
	ErrDisabledOpcode
	ErrInvalidStackOperation
	ErrInvalidAltStackOperation
	ErrUnbalancedConditional

	// CHECKLOCKTIMEVERIFY and CHECKSEQUENCEVERIFY.
	ErrNegativeLockTime
	ErrUnsatisfiedLockTime

	// Malleability.
	ErrSigHashType
	ErrSigDER
	ErrMinimalData
	ErrSigPushOnly
	ErrSigHighS
	ErrSigNullDummy
	ErrPubKeyType
	ErrCleanStack
	ErrMinimalIf
	ErrSigNullFail
	ErrNumericOverflow

	// Soft-fork safeness.
	ErrDiscourageUpgradableNOPs
	ErrDiscourageUpgradableWitnessProgram

	// Segregated witness.
	ErrWitnessProgramWrongLength
	ErrWitnessProgramEmpty
	ErrWitnessProgramMismatch
	ErrWitnessMalleated
	ErrWitnessMalleatedP2SH
	ErrWitnessUnexpected
	ErrWitnessPubKeyType

	// Constant scriptCode.
	ErrOpcodeCodeSeparator
	ErrSigFindAndDelete

	// Execution bookkeeping, never surfaced to a caller as a failure by
	// itself.
	ErrNotExecuted
	ErrUnknownError
)

var errorCodeStrings = map[ErrorCode]string{
	ErrOK:                                  "ErrOK",
	ErrEvalFalse:                           "ErrEvalFalse",
	ErrEarlyReturn:                         "ErrEarlyReturn",
	ErrScriptTooBig:                        "ErrScriptTooBig",
	ErrElementTooBig:                       "ErrElementTooBig",
	ErrTooManyOperations:                   "ErrTooManyOperations",
	ErrStackOverflow:                       "ErrStackOverflow",
	ErrInvalidSigCount:                     "ErrInvalidSigCount",
	ErrInvalidPubKeyCount:                  "ErrInvalidPubKeyCount",
	ErrNumberTooBig:                        "ErrNumberTooBig",
	ErrNotAByteArray:                       "ErrNotAByteArray",
	ErrVerify:                              "ErrVerify",
	ErrEqualVerify:                         "ErrEqualVerify",
	ErrCheckMultiSigVerify:                 "ErrCheckMultiSigVerify",
	ErrCheckSigVerify:                      "ErrCheckSigVerify",
	ErrNumEqualVerify:                      "ErrNumEqualVerify",
	ErrBadOpcode:                           "ErrBadOpcode",
	ErrDisabledOpcode:                      "ErrDisabledOpcode",
	ErrInvalidStackOperation:               "ErrInvalidStackOperation",
	ErrInvalidAltStackOperation:            "ErrInvalidAltStackOperation",
	ErrUnbalancedConditional:               "ErrUnbalancedConditional",
	ErrNegativeLockTime:                    "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:                 "ErrUnsatisfiedLockTime",
	ErrSigHashType:                         "ErrSigHashType",
	ErrSigDER:                              "ErrSigDER",
	ErrMinimalData:                         "ErrMinimalData",
	ErrSigPushOnly:                         "ErrSigPushOnly",
	ErrSigHighS:                            "ErrSigHighS",
	ErrSigNullDummy:                        "ErrSigNullDummy",
	ErrPubKeyType:                          "ErrPubKeyType",
	ErrCleanStack:                          "ErrCleanStack",
	ErrMinimalIf:                           "ErrMinimalIf",
	ErrSigNullFail:                         "ErrSigNullFail",
	ErrNumericOverflow:                     "ErrNumericOverflow",
	ErrDiscourageUpgradableNOPs:            "ErrDiscourageUpgradableNOPs",
	ErrDiscourageUpgradableWitnessProgram:  "ErrDiscourageUpgradableWitnessProgram",
	ErrWitnessProgramWrongLength:           "ErrWitnessProgramWrongLength",
	ErrWitnessProgramEmpty:                 "ErrWitnessProgramEmpty",
	ErrWitnessProgramMismatch:              "ErrWitnessProgramMismatch",
	ErrWitnessMalleated:                    "ErrWitnessMalleated",
	ErrWitnessMalleatedP2SH:                "ErrWitnessMalleatedP2SH",
	ErrWitnessUnexpected:                   "ErrWitnessUnexpected",
	ErrWitnessPubKeyType:                   "ErrWitnessPubKeyType",
	ErrOpcodeCodeSeparator:                 "ErrOpcodeCodeSeparator",
	ErrSigFindAndDelete:                    "ErrSigFindAndDelete",
	ErrNotExecuted:                         "ErrNotExecuted",
	ErrUnknownError:                        "ErrUnknownError",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// Error identifies a script-evaluation failure, carrying both a typed
// code callers can branch on and a human-readable description.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	return e.Description
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	var e Error
	if se, ok := err.(Error); ok {
		e = se
	} else {
		return false
	}
	return e.ErrorCode == c
}
