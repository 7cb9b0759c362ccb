// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha256"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/tkeycoin/tkeyd/wire"
)

// ScriptFlags is a bitmask of individual flags that control the rules used
// when executing a script, generalizing original_source's
// ScriptVerifyFlags enum.
type ScriptFlags uint32

const (
	ScriptBip16 ScriptFlags = 1 << iota
	ScriptVerifyStrictEncoding
	ScriptVerifyDERSignatures
	ScriptVerifyLowS
	ScriptVerifyNullDummy
	ScriptVerifySigPushOnly
	ScriptVerifyMinimalData
	ScriptDiscourageUpgradableNops
	ScriptVerifyCleanStack
	ScriptVerifyCheckLockTimeVerify
	ScriptVerifyCheckSequenceVerify
	ScriptVerifyMinimalIf
	ScriptVerifyNullFail
)

// StandardVerifyFlags is the set of flags used to verify scripts for
// acceptance into the mempool and relay, matching the usual combination
// Bitcoin-derived nodes enforce outside of consensus.
const StandardVerifyFlags = ScriptBip16 |
	ScriptVerifyStrictEncoding |
	ScriptVerifyDERSignatures |
	ScriptVerifyLowS |
	ScriptVerifyNullDummy |
	ScriptVerifySigPushOnly |
	ScriptVerifyMinimalData |
	ScriptDiscourageUpgradableNops |
	ScriptVerifyCleanStack |
	ScriptVerifyCheckLockTimeVerify |
	ScriptVerifyCheckSequenceVerify |
	ScriptVerifyMinimalIf |
	ScriptVerifyNullFail

// parsedOpcode is a single decoded instruction within a script: an opcode
// plus any data it pushes.
type parsedOpcode struct {
	opcode *opcode
	data   []byte
}

// disabled reports whether execution of this opcode is always forbidden.
func (po *parsedOpcode) disabled() bool {
	return disabledOpcodes[po.opcode.value]
}

// parseScript tokenizes a raw script into its instruction sequence,
// mirroring the original's per-opcode iteration in Interpreter::execute.
func parseScript(script []byte) ([]parsedOpcode, error) {
	var parsed []parsedOpcode
	for i := 0; i < len(script); {
		op := &opcodeArray[script[i]]
		pop := parsedOpcode{opcode: op}

		switch {
		case op.value >= OP_DATA_1 && op.value <= OP_DATA_75:
			if i+1+int(op.value) > len(script) {
				return nil, scriptError(ErrElementTooBig, "push data past end of script")
			}
			pop.data = script[i+1 : i+1+int(op.value)]
			i += 1 + int(op.value)

		case op.value == OP_PUSHDATA1:
			if i+2 > len(script) {
				return nil, scriptError(ErrElementTooBig, "OP_PUSHDATA1 past end of script")
			}
			n := int(script[i+1])
			if i+2+n > len(script) {
				return nil, scriptError(ErrElementTooBig, "OP_PUSHDATA1 data past end of script")
			}
			pop.data = script[i+2 : i+2+n]
			i += 2 + n

		case op.value == OP_PUSHDATA2:
			if i+3 > len(script) {
				return nil, scriptError(ErrElementTooBig, "OP_PUSHDATA2 past end of script")
			}
			n := int(script[i+1]) | int(script[i+2])<<8
			if i+3+n > len(script) {
				return nil, scriptError(ErrElementTooBig, "OP_PUSHDATA2 data past end of script")
			}
			pop.data = script[i+3 : i+3+n]
			i += 3 + n

		case op.value == OP_PUSHDATA4:
			if i+5 > len(script) {
				return nil, scriptError(ErrElementTooBig, "OP_PUSHDATA4 past end of script")
			}
			n := int(script[i+1]) | int(script[i+2])<<8 | int(script[i+3])<<16 | int(script[i+4])<<24
			if i+5+n > len(script) || n < 0 {
				return nil, scriptError(ErrElementTooBig, "OP_PUSHDATA4 data past end of script")
			}
			pop.data = script[i+5 : i+5+n]
			i += 5 + n

		default:
			i++
		}

		if len(pop.data) > maxScriptElementSize {
			return nil, scriptError(ErrElementTooBig, "element size exceeds limit")
		}
		parsed = append(parsed, pop)
	}
	return parsed, nil
}

// Conditional execution states, mirroring Interpreter's
// _conditionalExecutionFlags vector<bool> generalized to a 3-state stack so
// an untaken IF's ELSE branch can still be recognized.
const (
	condTrue = 1 + iota
	condFalse
	condSkip
)

// Engine is the virtual machine that executes a pair of locking and
// unlocking scripts, grounded on original_source's Interpreter class.
type Engine struct {
	scripts       [][]parsedOpcode
	scriptIdx     int
	scriptOff     int
	lastCodeSep   int
	dstack        stack
	astack        stack
	condStack     []int
	numOps        int
	flags         ScriptFlags
	checker       SigChecker
	hashCache     *TxSigHashes
	bip16         bool
	savedFirstStack [][]byte
	boundTx       *wire.MsgTx
	boundIdx      int
	err           error
}

const maxOpsPerScript = 201

// VerifyScript is a convenience wrapper that builds an Engine for the given
// scripts and runs it to completion, for callers that don't need to
// inspect intermediate state.
func VerifyScript(pkScript, sigScript []byte, tx *wire.MsgTx, idx int, flags ScriptFlags, checker SigChecker, hashCache *TxSigHashes) error {
	vm, err := NewEngine(pkScript, sigScript, tx, idx, flags, checker, hashCache)
	if err != nil {
		return err
	}
	return vm.Execute()
}

// NewEngine returns a new script engine ready to verify sigScript spending
// an output locked by pkScript, for input idx of tx.
func NewEngine(pkScript, sigScript []byte, tx *wire.MsgTx, idx int, flags ScriptFlags, checker SigChecker, hashCache *TxSigHashes) (*Engine, error) {
	uscript, err := parseScript(sigScript)
	if err != nil {
		return nil, err
	}
	pscript, err := parseScript(pkScript)
	if err != nil {
		return nil, err
	}

	if flags&ScriptVerifySigPushOnly != 0 {
		for _, pop := range uscript {
			if pop.opcode.value > OP_16 {
				return nil, scriptError(ErrSigPushOnly, "signature script contains non-push opcode")
			}
		}
	}

	vm := &Engine{
		scripts:   [][]parsedOpcode{uscript, pscript},
		flags:     flags,
		checker:   checker,
		hashCache: hashCache,
		boundTx:   tx,
		boundIdx:  idx,
	}

	if flags&ScriptBip16 != 0 && isScriptHash(pscript) {
		if !isPushOnly(uscript) {
			return nil, scriptError(ErrSigPushOnly, "signature script for p2sh output is not push-only")
		}
		vm.bip16 = true
	}

	return vm, nil
}

// isPushOnly reports whether script consists solely of push opcodes.
func isPushOnly(pops []parsedOpcode) bool {
	for _, pop := range pops {
		if pop.opcode.value > OP_16 {
			return false
		}
	}
	return true
}

// isScriptHash reports whether script is a standard P2SH pattern:
// OP_HASH160 <20-byte-hash> OP_EQUAL.
func isScriptHash(pops []parsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].opcode.value == OP_HASH160 &&
		pops[1].opcode.value == OP_DATA_20 &&
		pops[2].opcode.value == OP_EQUAL
}

// executing reports whether the engine is inside a conditional branch that
// should actually run.
func (vm *Engine) executing() bool {
	for _, c := range vm.condStack {
		if c != condTrue {
			return false
		}
	}
	return true
}

// Execute runs both the signature and public key scripts in sequence and
// reports whether the combination is valid, mirroring
// Interpreter::VerifyScript.
func (vm *Engine) Execute() error {
	for si, script := range vm.scripts {
		vm.scriptIdx = si
		vm.lastCodeSep = 0
		if err := vm.executeScript(script); err != nil {
			return err
		}
		if si == 0 {
			vm.savedFirstStack = append([][]byte(nil), vm.dstack.stk...)
		}
	}

	if vm.bip16 {
		if len(vm.savedFirstStack) == 0 {
			return scriptError(ErrEvalFalse, "p2sh signature script left no redeem script")
		}
		redeemScript := vm.savedFirstStack[len(vm.savedFirstStack)-1]
		pops, err := parseScript(redeemScript)
		if err != nil {
			return err
		}

		vm.dstack.stk = append([][]byte(nil), vm.savedFirstStack[:len(vm.savedFirstStack)-1]...)
		vm.scriptIdx = 2
		vm.lastCodeSep = 0
		if err := vm.executeScript(pops); err != nil {
			return err
		}
	}

	if len(vm.condStack) != 0 {
		return scriptError(ErrUnbalancedConditional, "unbalanced if/else/endif")
	}

	v, err := vm.dstack.PeekBool(0)
	if err != nil {
		return err
	}
	if !v {
		return scriptError(ErrEvalFalse, "false stack entry at end of script execution")
	}

	if vm.flags&ScriptVerifyCleanStack != 0 && vm.dstack.Depth() != 1 {
		return scriptError(ErrCleanStack, "stack contains additional elements after execution")
	}
	return nil
}

func (vm *Engine) executeScript(pops []parsedOpcode) error {
	vm.condStack = vm.condStack[:0]
	for vm.scriptOff = 0; vm.scriptOff < len(pops); vm.scriptOff++ {
		pop := pops[vm.scriptOff]

		if pop.disabled() {
			return scriptError(ErrDisabledOpcode, "attempt to execute disabled opcode")
		}

		if pop.opcode.value > OP_16 {
			vm.numOps++
			if vm.numOps > maxOpsPerScript {
				return scriptError(ErrTooManyOperations, "exceeded max operation limit")
			}
		}
		if len(pop.data) > maxScriptElementSize {
			return scriptError(ErrElementTooBig, "element size exceeds limit")
		}

		exec := vm.executing()
		if !exec && !isBranchingOpcode(pop.opcode.value) {
			continue
		}

		if err := vm.step(pops, pop, exec); err != nil {
			return err
		}

		if vm.dstack.Depth()+vm.astack.Depth() > 1000 {
			return scriptError(ErrStackOverflow, "combined stack size exceeds limit")
		}
	}
	return nil
}

func isBranchingOpcode(op byte) bool {
	switch op {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	}
	return false
}

// step dispatches a single parsed opcode, mirroring the per-opcode handler
// methods declared on Interpreter (op_PushData, op_N, op_Verify, ...).
func (vm *Engine) step(pops []parsedOpcode, pop parsedOpcode, exec bool) error {
	op := pop.opcode.value

	switch {
	case op == OP_IF || op == OP_NOTIF:
		cond := condFalse
		if exec {
			v := true
			if vm.flags&ScriptVerifyMinimalIf != 0 {
				data, err := vm.dstack.PopByteArray()
				if err != nil {
					return err
				}
				if len(data) > 1 || (len(data) == 1 && data[0] != 1) {
					return scriptError(ErrMinimalIf, "conditional stack element is not minimally encoded")
				}
				v = len(data) == 1
			} else {
				var err error
				v, err = vm.dstack.PopBool()
				if err != nil {
					return err
				}
			}
			if op == OP_NOTIF {
				v = !v
			}
			if v {
				cond = condTrue
			}
		} else {
			cond = condSkip
		}
		vm.condStack = append(vm.condStack, cond)
		return nil

	case op == OP_ELSE:
		if len(vm.condStack) == 0 {
			return scriptError(ErrUnbalancedConditional, "else without matching if")
		}
		idx := len(vm.condStack) - 1
		switch vm.condStack[idx] {
		case condTrue:
			vm.condStack[idx] = condFalse
		case condFalse:
			vm.condStack[idx] = condTrue
		}
		return nil

	case op == OP_ENDIF:
		if len(vm.condStack) == 0 {
			return scriptError(ErrUnbalancedConditional, "endif without matching if")
		}
		vm.condStack = vm.condStack[:len(vm.condStack)-1]
		return nil
	}

	if !exec {
		return nil
	}

	switch {
	case op == OP_0:
		vm.dstack.PushByteArray(nil)
	case op >= OP_DATA_1 && op <= OP_DATA_75, op == OP_PUSHDATA1, op == OP_PUSHDATA2, op == OP_PUSHDATA4:
		if vm.flags&ScriptVerifyMinimalData != 0 {
			if !isMinimalPush(pop) {
				return scriptError(ErrMinimalData, "push encoding is not minimal")
			}
		}
		vm.dstack.PushByteArray(pop.data)
	case op == OP_1NEGATE:
		vm.dstack.PushInt(scriptNum(-1))
	case op >= OP_1 && op <= OP_16:
		vm.dstack.PushInt(scriptNum(op - (OP_1 - 1)))

	case op == OP_NOP:
	case op == OP_VERIFY:
		v, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !v {
			return scriptError(ErrVerify, "OP_VERIFY failed")
		}
	case op == OP_RETURN:
		return scriptError(ErrEarlyReturn, "script returned early")

	case op == OP_TOALTSTACK:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.astack.PushByteArray(so)
	case op == OP_FROMALTSTACK:
		so, err := vm.astack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(so)
	case op == OP_IFDUP:
		v, err := vm.dstack.PeekBool(0)
		if err != nil {
			return err
		}
		if v {
			so, err := vm.dstack.PeekByteArray(0)
			if err != nil {
				return err
			}
			vm.dstack.PushByteArray(so)
		}
	case op == OP_DEPTH:
		vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
	case op == OP_DROP:
		return vm.dstack.DropN(1)
	case op == OP_DUP:
		return vm.dstack.DupN(1)
	case op == OP_NIP:
		return vm.dstack.NipN(1)
	case op == OP_OVER:
		return vm.dstack.OverN(1)
	case op == OP_PICK, op == OP_ROLL:
		n, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		if op == OP_PICK {
			return vm.dstack.PickN(int32(n))
		}
		return vm.dstack.RollN(int32(n))
	case op == OP_ROT:
		return vm.dstack.RotN(1)
	case op == OP_SWAP:
		return vm.dstack.SwapN(1)
	case op == OP_TUCK:
		return vm.dstack.Tuck()
	case op == OP_2DROP:
		return vm.dstack.DropN(2)
	case op == OP_2DUP:
		return vm.dstack.DupN(2)
	case op == OP_3DUP:
		return vm.dstack.DupN(3)
	case op == OP_2OVER:
		return vm.dstack.OverN(2)
	case op == OP_2ROT:
		return vm.dstack.RotN(2)
	case op == OP_2SWAP:
		return vm.dstack.SwapN(2)

	case op == OP_SIZE:
		so, err := vm.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
		vm.dstack.PushInt(scriptNum(len(so)))

	case op == OP_EQUAL, op == OP_EQUALVERIFY:
		a, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		b, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		equal := bytes.Equal(a, b)
		if op == OP_EQUALVERIFY {
			if !equal {
				return scriptError(ErrEqualVerify, "OP_EQUALVERIFY failed")
			}
			return nil
		}
		vm.dstack.PushBool(equal)

	case op == OP_1ADD, op == OP_1SUB, op == OP_NEGATE, op == OP_ABS, op == OP_NOT, op == OP_0NOTEQUAL:
		n, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		var res scriptNum
		switch op {
		case OP_1ADD:
			res = n + 1
		case OP_1SUB:
			res = n - 1
		case OP_NEGATE:
			res = -n
		case OP_ABS:
			if n < 0 {
				res = -n
			} else {
				res = n
			}
		case OP_NOT:
			if n == 0 {
				res = 1
			}
		case OP_0NOTEQUAL:
			if n != 0 {
				res = 1
			}
		}
		vm.dstack.PushInt(res)

	case op == OP_ADD, op == OP_SUB, op == OP_BOOLAND, op == OP_BOOLOR,
		op == OP_NUMEQUAL, op == OP_NUMEQUALVERIFY, op == OP_NUMNOTEQUAL,
		op == OP_LESSTHAN, op == OP_GREATERTHAN, op == OP_LESSTHANOREQUAL,
		op == OP_GREATERTHANOREQUAL, op == OP_MIN, op == OP_MAX:
		b, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		a, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		var res scriptNum
		var bres bool
		switch op {
		case OP_ADD:
			res = a + b
		case OP_SUB:
			res = a - b
		case OP_BOOLAND:
			bres = a != 0 && b != 0
		case OP_BOOLOR:
			bres = a != 0 || b != 0
		case OP_NUMEQUAL, OP_NUMEQUALVERIFY:
			bres = a == b
		case OP_NUMNOTEQUAL:
			bres = a != b
		case OP_LESSTHAN:
			bres = a < b
		case OP_GREATERTHAN:
			bres = a > b
		case OP_LESSTHANOREQUAL:
			bres = a <= b
		case OP_GREATERTHANOREQUAL:
			bres = a >= b
		case OP_MIN:
			if a < b {
				res = a
			} else {
				res = b
			}
		case OP_MAX:
			if a > b {
				res = a
			} else {
				res = b
			}
		}
		switch op {
		case OP_BOOLAND, OP_BOOLOR, OP_NUMEQUAL, OP_NUMNOTEQUAL, OP_LESSTHAN,
			OP_GREATERTHAN, OP_LESSTHANOREQUAL, OP_GREATERTHANOREQUAL:
			vm.dstack.PushBool(bres)
		case OP_NUMEQUALVERIFY:
			if !bres {
				return scriptError(ErrNumEqualVerify, "OP_NUMEQUALVERIFY failed")
			}
		default:
			vm.dstack.PushInt(res)
		}

	case op == OP_WITHIN:
		max, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		min, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		x, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		vm.dstack.PushBool(x >= min && x < max)

	case op == OP_RIPEMD160:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(Ripemd160(so))
	case op == OP_SHA1:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(Sha1(so))
	case op == OP_SHA256:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(Sha256(so))
	case op == OP_HASH160:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(Hash160(so))
	case op == OP_HASH256:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(Hash256(so))

	case op == OP_CODESEPARATOR:
		vm.lastCodeSep = vm.scriptOff + 1

	case op == OP_CHECKSIG, op == OP_CHECKSIGVERIFY:
		return vm.opCheckSig(pops, op == OP_CHECKSIGVERIFY)

	case op == OP_CHECKMULTISIG, op == OP_CHECKMULTISIGVERIFY:
		return vm.opCheckMultiSig(pops, op == OP_CHECKMULTISIGVERIFY)

	case op == OP_CHECKLOCKTIMEVERIFY:
		return vm.opCheckLockTimeVerify()
	case op == OP_CHECKSEQUENCEVERIFY:
		return vm.opCheckSequenceVerify()

	case op == OP_NOP4, op == OP_NOP5, op == OP_NOP6, op == OP_NOP7,
		op == OP_NOP8, op == OP_NOP9, op == OP_NOP10:
		if vm.flags&ScriptDiscourageUpgradableNops != 0 {
			return scriptError(ErrDiscourageUpgradableNOPs, "encountered upgradable NOP in discouraged mode")
		}

	case op == OP_RESERVED, op == OP_VER, op == OP_VERIF, op == OP_VERNOTIF,
		op == OP_RESERVED1, op == OP_RESERVED2:
		return scriptError(ErrBadOpcode, "attempt to execute reserved opcode")

	default:
		return scriptError(ErrBadOpcode, "attempt to execute unknown opcode")
	}

	return nil
}

// isMinimalPush reports whether a data-push opcode used the shortest
// possible encoding for its data, per original_source's MINIMALDATA check.
func isMinimalPush(pop parsedOpcode) bool {
	data := pop.data
	op := pop.opcode.value
	switch {
	case len(data) == 0:
		return op == OP_0
	case len(data) == 1 && data[0] >= 1 && data[0] <= 16:
		return op == OP_1+byte(data[0]-1)
	case len(data) == 1 && data[0] == 0x81:
		return op == OP_1NEGATE
	case len(data) <= 75:
		return int(op) == len(data)
	case len(data) <= 255:
		return op == OP_PUSHDATA1
	case len(data) <= 65535:
		return op == OP_PUSHDATA2
	}
	return op == OP_PUSHDATA4
}

// opCheckLockTimeVerify implements OP_CHECKLOCKTIMEVERIFY (BIP65),
// mirroring Interpreter::op_CheckLockTimeVerify.
func (vm *Engine) opCheckLockTimeVerify() error {
	if vm.flags&ScriptVerifyCheckLockTimeVerify == 0 {
		if vm.flags&ScriptDiscourageUpgradableNops != 0 {
			return scriptError(ErrDiscourageUpgradableNOPs, "OP_NOP2 used as OP_CHECKLOCKTIMEVERIFY without the flag enabled")
		}
		return nil
	}

	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	lockTime, err := makeScriptNum(so, vm.flags&ScriptVerifyMinimalData != 0, 5)
	if err != nil {
		return err
	}
	if lockTime < 0 {
		return scriptError(ErrNegativeLockTime, "negative lock time")
	}
	if !vm.checker.CheckLockTime(lockTime) {
		return scriptError(ErrUnsatisfiedLockTime, "unsatisfied lock time")
	}
	return nil
}

// opCheckSequenceVerify implements OP_CHECKSEQUENCEVERIFY (BIP112),
// mirroring Interpreter::op_CheckSequenceVerify.
func (vm *Engine) opCheckSequenceVerify() error {
	if vm.flags&ScriptVerifyCheckSequenceVerify == 0 {
		if vm.flags&ScriptDiscourageUpgradableNops != 0 {
			return scriptError(ErrDiscourageUpgradableNOPs, "OP_NOP3 used as OP_CHECKSEQUENCEVERIFY without the flag enabled")
		}
		return nil
	}

	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	sequence, err := makeScriptNum(so, vm.flags&ScriptVerifyMinimalData != 0, 5)
	if err != nil {
		return err
	}
	if sequence < 0 {
		return scriptError(ErrNegativeLockTime, "negative sequence")
	}
	if !vm.checker.CheckSequence(sequence) {
		return scriptError(ErrUnsatisfiedLockTime, "unsatisfied sequence lock")
	}
	return nil
}

// subScript returns the portion of the currently executing script following
// the most recent OP_CODESEPARATOR, matching original_source's
// SerializeScriptCode.
func (vm *Engine) subScript() []byte {
	pops := vm.scripts[vm.scriptIdx]
	var buf bytes.Buffer
	for _, pop := range pops[vm.lastCodeSep:] {
		buf.Write(serializeOpcode(pop))
	}
	return buf.Bytes()
}

func serializeOpcode(pop parsedOpcode) []byte {
	if pop.data == nil {
		return []byte{pop.opcode.value}
	}
	var buf bytes.Buffer
	buf.WriteByte(pop.opcode.value)
	switch {
	case pop.opcode.value == OP_PUSHDATA1:
		buf.WriteByte(byte(len(pop.data)))
	case pop.opcode.value == OP_PUSHDATA2:
		buf.WriteByte(byte(len(pop.data)))
		buf.WriteByte(byte(len(pop.data) >> 8))
	case pop.opcode.value == OP_PUSHDATA4:
		n := len(pop.data)
		buf.WriteByte(byte(n))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 24))
	}
	buf.Write(pop.data)
	return buf.Bytes()
}

// opCheckSig implements OP_CHECKSIG and OP_CHECKSIGVERIFY, mirroring
// Interpreter's op_CheckSig/op_CheckSigVerify pair.
func (vm *Engine) opCheckSig(pops []parsedOpcode, verify bool) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	valid, err := vm.verifySig(sigBytes, pkBytes)
	if err != nil {
		return err
	}
	if verify {
		if !valid {
			return scriptError(ErrCheckSigVerify, "OP_CHECKSIGVERIFY failed")
		}
		return nil
	}
	vm.dstack.PushBool(valid)
	return nil
}

// verifySig validates a single signature/pubkey pair against the current
// subscript, honoring NULLFAIL on a failed verification.
func (vm *Engine) verifySig(sigBytes, pkBytes []byte) (bool, error) {
	if len(sigBytes) == 0 {
		return false, nil
	}

	hashType := uint32(sigBytes[len(sigBytes)-1])
	rawSig := sigBytes[:len(sigBytes)-1]

	if vm.flags&(ScriptVerifyDERSignatures|ScriptVerifyLowS|ScriptVerifyStrictEncoding) != 0 {
		if err := checkSignatureEncoding(rawSig, vm.flags); err != nil {
			return false, err
		}
	}
	if vm.flags&ScriptVerifyStrictEncoding != 0 {
		if !isDefinedHashType(hashType) {
			return false, scriptError(ErrSigHashType, "invalid hash type")
		}
		if err := checkPubKeyEncoding(pkBytes); err != nil {
			return false, err
		}
	}

	pubKey, err := secp256k1.ParsePubKey(pkBytes)
	if err != nil {
		if vm.flags&ScriptVerifyNullFail != 0 && len(rawSig) != 0 {
			return false, scriptError(ErrSigNullFail, "signature not empty on failed checksig")
		}
		return false, nil
	}
	sig, err := ecdsa.ParseDERSignature(rawSig)
	if err != nil {
		if vm.flags&ScriptVerifyNullFail != 0 && len(rawSig) != 0 {
			return false, scriptError(ErrSigNullFail, "signature not empty on failed checksig")
		}
		return false, nil
	}

	subScript := removeSigFromScript(vm.subScript(), sigBytes)
	sigHash, err := CalcSignatureHash(subScript, hashType, vm.boundTx, vm.boundIdx)
	if err != nil {
		return false, err
	}

	valid := vm.checker.CheckSig(sigHash, sig, pubKey)
	if !valid && vm.flags&ScriptVerifyNullFail != 0 && len(rawSig) != 0 {
		return false, scriptError(ErrSigNullFail, "signature not empty on failed checksig")
	}
	return valid, nil
}

// removeSigFromScript strips every literal occurrence of sig from script,
// matching original_source's FindAndDelete used before hashing.
func removeSigFromScript(script, sig []byte) []byte {
	pops, err := parseScript(script)
	if err != nil {
		return script
	}
	var buf bytes.Buffer
	for _, pop := range pops {
		if pop.data != nil && bytes.Equal(pop.data, sig) {
			continue
		}
		buf.Write(serializeOpcode(pop))
	}
	return buf.Bytes()
}

// opCheckMultiSig implements OP_CHECKMULTISIG and OP_CHECKMULTISIGVERIFY,
// mirroring Interpreter's op_CheckMultiSig/op_CheckMultiSigVerify pair.
func (vm *Engine) opCheckMultiSig(pops []parsedOpcode, verify bool) error {
	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numPubKeys := int(numKeys)
	if numPubKeys < 0 || numPubKeys > 20 {
		return scriptError(ErrInvalidPubKeyCount, "number of pubkeys out of range")
	}
	vm.numOps += numPubKeys
	if vm.numOps > maxOpsPerScript {
		return scriptError(ErrTooManyOperations, "exceeded max operation limit")
	}

	pubKeys := make([][]byte, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pk, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys[i] = pk
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numSignatures := int(numSigs)
	if numSignatures < 0 || numSignatures > numPubKeys {
		return scriptError(ErrInvalidSigCount, "number of signatures out of range")
	}

	signatures := make([][]byte, numSignatures)
	for i := 0; i < numSignatures; i++ {
		sig, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures[i] = sig
	}

	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if vm.flags&ScriptVerifyNullDummy != 0 && len(dummy) != 0 {
		return scriptError(ErrSigNullDummy, "multisig dummy value is not an OP_0")
	}

	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < numSignatures {
		if keyIdx >= numPubKeys {
			success = false
			break
		}
		valid, err := vm.verifySig(signatures[sigIdx], pubKeys[keyIdx])
		if err != nil {
			return err
		}
		if valid {
			sigIdx++
		}
		keyIdx++
	}
	if sigIdx < numSignatures {
		success = false
	}

	if !success && vm.flags&ScriptVerifyNullFail != 0 {
		for _, sig := range signatures {
			if len(sig) != 0 {
				return scriptError(ErrSigNullFail, "not all signatures empty on failed checkmultisig")
			}
		}
	}

	if verify {
		if !success {
			return scriptError(ErrCheckMultiSigVerify, "OP_CHECKMULTISIGVERIFY failed")
		}
		return nil
	}
	vm.dstack.PushBool(success)
	return nil
}

// secp256k1Order is the order of the secp256k1 group. halfOrder is half
// of it, used by the low-S check below: a canonical signature's S value
// never exceeds it.
var secp256k1Order, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
var halfOrder = new(big.Int).Rsh(secp256k1Order, 1)

// checkSignatureEncoding validates the DER encoding and S-value of a raw
// signature (without its trailing hashtype byte), matching
// Interpreter::CheckSignatureEncoding.
func checkSignatureEncoding(sig []byte, flags ScriptFlags) error {
	if len(sig) == 0 {
		return nil
	}
	if flags&(ScriptVerifyDERSignatures|ScriptVerifyLowS|ScriptVerifyStrictEncoding) != 0 {
		if _, err := ecdsa.ParseDERSignature(sig); err != nil {
			return scriptError(ErrSigDER, "invalid signature DER encoding")
		}
	}
	if flags&ScriptVerifyLowS != 0 {
		s, err := derSignatureS(sig)
		if err != nil {
			return scriptError(ErrSigDER, "invalid signature DER encoding")
		}
		if s.Cmp(halfOrder) > 0 {
			return scriptError(ErrSigHighS, "signature S value is higher than the half order")
		}
	}
	return nil
}

// derSignatureS extracts the raw S integer from a DER-encoded
// ECDSA signature (0x30 len 0x02 rlen r.. 0x02 slen s..), without
// relying on any library accessor for the parsed components.
func derSignatureS(sig []byte) (*big.Int, error) {
	if len(sig) < 8 || sig[0] != 0x30 {
		return nil, scriptError(ErrSigDER, "malformed signature")
	}
	rLen := int(sig[3])
	sOff := 4 + rLen
	if sOff+2 > len(sig) || sig[sOff] != 0x02 {
		return nil, scriptError(ErrSigDER, "malformed signature")
	}
	sLen := int(sig[sOff+1])
	sStart := sOff + 2
	if sStart+sLen > len(sig) {
		return nil, scriptError(ErrSigDER, "malformed signature")
	}
	return new(big.Int).SetBytes(sig[sStart : sStart+sLen]), nil
}

// isDefinedHashType reports whether hashType is one of the base types
// (All, None, Single), optionally combined with AnyOneCanPay, matching
// Interpreter::GetHashType's validity check under STRICTENC.
func isDefinedHashType(hashType uint32) bool {
	base := hashType &^ uint32(SigHashAnyOneCanPay)
	return base == uint32(SigHashAll) || base == uint32(SigHashNone) || base == uint32(SigHashSingle)
}

// checkPubKeyEncoding validates that pk is a compressed or uncompressed
// secp256k1 public key, matching Interpreter::CheckPubKeyEncoding.
func checkPubKeyEncoding(pk []byte) error {
	switch {
	case len(pk) == 33 && (pk[0] == 0x02 || pk[0] == 0x03):
		return nil
	case len(pk) == 65 && pk[0] == 0x04:
		return nil
	}
	return scriptError(ErrPubKeyType, "unsupported public key type")
}

// CastToBool mirrors Interpreter::CastToBool for callers that need the
// stack's boolean interpretation without going through the stack type.
func CastToBool(t []byte) bool {
	return asBool(t)
}

// sha256Sum is a convenience wrapper used by callers that need a plain
// SHA-256 digest outside the stack-driven hash opcodes.
func sha256Sum(b []byte) [32]byte {
	return sha256.Sum256(b)
}
