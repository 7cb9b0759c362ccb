// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tkeycoin/tkeyd/chainhash"
)

// MaxVarIntPayload is the maximum payload size, in bytes, of a variable
// length integer.
const MaxVarIntPayload = 9

// scratchBuf eliminates a per-call allocation of the scratch buffer
// used by the read/write helpers below.
type scratchBuf [8]byte

// littleEndian is used throughout the wire encodings; every integer field
// in the protocol is little-endian.
var littleEndian = binary.LittleEndian

// readElement reads the next sizeof(element) bytes from r and stores them
// in element, which must be a pointer to a fixed-size value.
func readElement(r io.Reader, element interface{}) error {
	var buf scratchBuf
	switch e := element.(type) {
	case *int32:
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return err
		}
		*e = int32(littleEndian.Uint32(buf[:4]))
		return nil
	case *uint32:
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(buf[:4])
		return nil
	case *int64:
		if _, err := io.ReadFull(r, buf[:8]); err != nil {
			return err
		}
		*e = int64(littleEndian.Uint64(buf[:8]))
		return nil
	case *uint64:
		if _, err := io.ReadFull(r, buf[:8]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(buf[:8])
		return nil
	case *uint16:
		if _, err := io.ReadFull(r, buf[:2]); err != nil {
			return err
		}
		*e = littleEndian.Uint16(buf[:2])
		return nil
	case *uint8:
		if _, err := io.ReadFull(r, buf[:1]); err != nil {
			return err
		}
		*e = buf[0]
		return nil
	case *bool:
		if _, err := io.ReadFull(r, buf[:1]); err != nil {
			return err
		}
		*e = buf[0] != 0
		return nil
	case *chainhash.Hash:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
		return nil
	case *[4]byte:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
		return nil
	case *[16]byte:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
		return nil
	}

	return binary.Read(r, littleEndian, element)
}

// writeElement writes element to w encoded as little-endian.
func writeElement(w io.Writer, element interface{}) error {
	var buf scratchBuf
	switch e := element.(type) {
	case int32:
		littleEndian.PutUint32(buf[:4], uint32(e))
		_, err := w.Write(buf[:4])
		return err
	case uint32:
		littleEndian.PutUint32(buf[:4], e)
		_, err := w.Write(buf[:4])
		return err
	case int64:
		littleEndian.PutUint64(buf[:8], uint64(e))
		_, err := w.Write(buf[:8])
		return err
	case uint64:
		littleEndian.PutUint64(buf[:8], e)
		_, err := w.Write(buf[:8])
		return err
	case uint16:
		littleEndian.PutUint16(buf[:2], e)
		_, err := w.Write(buf[:2])
		return err
	case uint8:
		buf[0] = e
		_, err := w.Write(buf[:1])
		return err
	case bool:
		if e {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
		_, err := w.Write(buf[:1])
		return err
	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	case [4]byte:
		_, err := w.Write(e[:])
		return err
	case [16]byte:
		_, err := w.Write(e[:])
		return err
	}

	return binary.Write(w, littleEndian, element)
}

// ReadVarInt reads a variable length integer (VarInt) from r and returns it
// as a uint64. VarInt is encoded: n<253 as one byte; n<=0xFFFF as 0xFD plus
// a uint16LE; n<=0xFFFFFFFF as 0xFE plus a uint32LE; else 0xFF plus a
// uint64LE. Non-canonical encodings (using a longer-than-necessary form)
// are rejected.
func ReadVarInt(r io.Reader) (uint64, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	discriminant := b[0]

	var rv uint64
	switch discriminant {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = littleEndian.Uint64(buf[:])

		const min = 1 << 32
		if rv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"non-canonical varint %x - discriminant %x must "+
					"encode a value greater than %x", rv, discriminant, min-1))
		}

	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint32(buf[:]))

		const min = 1 << 16
		if rv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"non-canonical varint %x - discriminant %x must "+
					"encode a value greater than %x", rv, discriminant, min-1))
		}

	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint16(buf[:]))

		const min = 253
		if rv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"non-canonical varint %x - discriminant %x must "+
					"encode a value greater than %x", rv, discriminant, min-1))
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using the canonical VarInt encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 253 {
		return writeElement(w, uint8(val))
	}

	if val <= 0xFFFF {
		if err := writeElement(w, uint8(0xfd)); err != nil {
			return err
		}
		return writeElement(w, uint16(val))
	}

	if val <= 0xFFFFFFFF {
		if err := writeElement(w, uint8(0xfe)); err != nil {
			return err
		}
		return writeElement(w, uint32(val))
	}

	if err := writeElement(w, uint8(0xff)); err != nil {
		return err
	}
	return writeElement(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to
// serialize val as a VarInt.
func VarIntSerializeSize(val uint64) int {
	if val < 253 {
		return 1
	}
	if val <= 0xFFFF {
		return 3
	}
	if val <= 0xFFFFFFFF {
		return 5
	}
	return 9
}

// ReadVarString reads a VarString (a VarInt length followed by that many
// raw bytes) from r and interprets the bytes as UTF-8. maxAllowed bounds
// the accepted length to guard against a maliciously large length prefix.
func ReadVarString(r io.Reader, maxAllowed uint32, fieldName string) (string, error) {
	b, err := ReadVarBytes(r, maxAllowed, fieldName)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString serializes s to w as a VarString.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

// ReadVarBytes reads a VarInt length prefix followed by that many raw
// bytes, with the length bounded by maxAllowed.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > uint64(maxAllowed) {
		return nil, messageError("ReadVarBytes", fmt.Sprintf(
			"%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed))
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes b to w as a VarInt length prefix followed by the
// raw bytes.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// messageError creates a MessageError given a function name and an error
// description.
func messageError(f string, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}

// MessageError describes an issue with a message. It implements the error
// interface and contains the function name that generated the error and a
// human readable description.
type MessageError struct {
	Func        string
	Description string
}

func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}
