// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// defaultScriptNumLen is the default number of bytes data being interpreted
// as an integer may be, matching the original's ScriptNum::nDefaultMaxNumSize.
const defaultScriptNumLen = 4

// scriptNum represents a numeric value used in the scripting engine with
// special handling to deal with the subtle semantics required by
// consensus. All numeric opcodes such as OP_ADD, OP_SUB, and OP_MUL
// limit their operands to 4-byte integers, but the results of these
// operations may overflow and remain valid so long as they are not used
// as operands to other numeric opcodes or otherwise interpreted as an
// integer (grounded on original_source's ScriptNum.hpp/.cpp).
type scriptNum int64

// checkMinimalDataEncoding returns whether or not the passed byte array
// adheres to the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// Check that the number is encoded with the minimum possible number
	// of bytes.
	//
	// If the most-significant-byte - excluding the sign bit - is zero
	// then we're not minimal. Note how this test also rejects the
	// negative-zero encoding, 0x80.
	if v[len(v)-1]&0x7f == 0 {
		// One exception: if there's more than one byte and the most
		// significant bit of the second-most-significant-byte is set
		// it would conflict with the sign bit.
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			return scriptError(ErrMinimalData, "numeric value encoded as non-minimally encoded script number")
		}
	}

	return nil
}

// makeScriptNum interprets the passed serialized bytes as an encoded
// integer and returns the result as a scriptNum.
//
// Since the consensus rules dictate that serialized bytes interpreted as
// an integer must be of a certain size and byte-encoded in a particular
// fashion, this function will return an error when those conditions are
// not met. The requireMinimal flag causes an error to be returned if the
// number is not minimally encoded.
func makeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if len(v) > scriptNumLen {
		return 0, scriptError(ErrNumberTooBig, fmt.Sprintf(
			"numeric value encoded as %d-byte value is too long for %d-byte requirement",
			len(v), scriptNumLen))
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}

	// If the input vector's most significant byte is 0x80, remove it
	// from the result and return a negative number.
	if v[len(v)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return scriptNum(-result), nil
	}

	return scriptNum(result), nil
}

// Bytes returns the number serialized as a little-endian signed-magnitude
// byte slice.
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	absoluteValue := n
	if isNegative {
		absoluteValue = -n
	}

	result := make([]byte, 0, 9)
	for absoluteValue > 0 {
		result = append(result, byte(absoluteValue&0xff))
		absoluteValue >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 returns the scriptNum clamped to a valid int32. That is to say
// when the script number is higher than the max allowed int32, the
// number is truncated to that amount and vice versa for the minimum
// allowed value.
func (n scriptNum) Int32() int32 {
	if n > int32Max {
		return int32Max
	}
	if n < int32Min {
		return int32Min
	}
	return int32(n)
}

const (
	int32Max = 1<<31 - 1
	int32Min = -1 << 31
)
