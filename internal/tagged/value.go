// Package tagged defines the 64-bit tagged word shared by compiled programs
// and the runtime.
//
// The low bit of a word is the tag bit. A clear tag bit selects a Number
// stored in the upper 63 bits. A set tag bit selects a Boolean, but only the
// two reserved words True and False are Booleans; every other odd word is
// unrecognized and is still rendered rather than rejected.
//
// The constants in this file must match the code generator bit for bit.
package tagged

import (
	"errors"
	"fmt"
	"strconv"
)

// Value is a tagged runtime word.
type Value uint64

const (
	// Tag is the mask of the tag bit.
	Tag Value = 0x0000000000000001

	// True is the only encoding of the boolean true.
	True Value = 0xFFFFFFFFFFFFFFFF
	// False is the only encoding of the boolean false.
	False Value = 0x7FFFFFFFFFFFFFFF
)

const (
	// MaxNumber is the largest integer representable in a Number.
	MaxNumber int64 = 1<<62 - 1
	// MinNumber is the smallest integer representable in a Number.
	MinNumber int64 = -1 << 62
)

var ErrOutOfRange = errors.New("integer out of tagged number range")

// Kind classifies a Value by its tag.
type Kind uint8

const (
	KindNumber Kind = iota
	KindBoolean
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Number encodes n. Integers outside [MinNumber, MaxNumber] lose their top
// bit, the same as the shift the code generator performs.
func Number(n int64) Value {
	return Value(uint64(n) << 1)
}

// NumberChecked encodes n, rejecting integers that would not round trip.
func NumberChecked(n int64) (Value, error) {
	if n < MinNumber || n > MaxNumber {
		return 0, fmt.Errorf("encode %d: %w", n, ErrOutOfRange)
	}
	return Number(n), nil
}

// Bool encodes b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func (v Value) Kind() Kind {
	switch {
	case v&Tag == 0:
		return KindNumber
	case v == True || v == False:
		return KindBoolean
	default:
		return KindUnrecognized
	}
}

func (v Value) IsNumber() bool { return v&Tag == 0 }

// Int returns the integer held by a Number. The tag is stripped with an
// arithmetic shift; only even words reach it, and for even words the shift
// and a truncating division by two agree.
func (v Value) Int() (int64, bool) {
	if !v.IsNumber() {
		return 0, false
	}
	return int64(v) >> 1, true
}

// Boolean returns the boolean held by v, if v is one of the two reserved words.
func (v Value) Boolean() (bool, bool) {
	switch v {
	case True:
		return true, true
	case False:
		return false, true
	}
	return false, false
}

// Hex renders the raw word as 0x followed by 16 hex digits.
func (v Value) Hex() string {
	return string(v.appendHex(nil))
}

func (v Value) appendHex(dst []byte) []byte {
	const digits = "0123456789abcdef"
	dst = append(dst, '0', 'x')
	for shift := 60; shift >= 0; shift -= 4 {
		dst = append(dst, digits[(uint64(v)>>uint(shift))&0xF])
	}
	return dst
}

// AppendText appends the human readable form of v to dst. It is defined for
// every 64-bit word.
func (v Value) AppendText(dst []byte) []byte {
	if n, ok := v.Int(); ok {
		return strconv.AppendInt(dst, n, 10)
	}
	switch v {
	case True:
		return append(dst, "true"...)
	case False:
		return append(dst, "false"...)
	}
	dst = append(dst, "Unknown value: "...)
	return v.appendHex(dst)
}

func (v Value) String() string {
	return string(v.AppendText(nil))
}
