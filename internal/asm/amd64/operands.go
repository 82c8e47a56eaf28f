package amd64

import (
	"fmt"

	"github.com/humberto-ortiz/compilers-2023/internal/asm"
)

// Register ids. The order is not the hardware encoding; see regInfo.
type RegID int

const (
	RAX RegID = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RSP
	RBP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// Reg is a 64-bit general purpose register operand. Tagged words are always
// full width, so narrower operand sizes are not modelled.
type Reg struct {
	id RegID
}

// Reg64 constructs a 64-bit register operand.
func Reg64(id RegID) Reg { return Reg{id: id} }

type registerCode struct {
	code byte
	high bool
}

func regInfo(r Reg) (registerCode, error) {
	switch r.id {
	case RAX:
		return registerCode{code: 0}, nil
	case RCX:
		return registerCode{code: 1}, nil
	case RDX:
		return registerCode{code: 2}, nil
	case RBX:
		return registerCode{code: 3}, nil
	case RSP:
		return registerCode{code: 4}, nil
	case RBP:
		return registerCode{code: 5}, nil
	case RSI:
		return registerCode{code: 6}, nil
	case RDI:
		return registerCode{code: 7}, nil
	case R8, R9, R10, R11, R12, R13, R14, R15:
		return registerCode{code: byte(r.id - R8), high: true}, nil
	default:
		return registerCode{}, fmt.Errorf("unsupported register %d", r.id)
	}
}

type fragmentFunc func(asm.Context) error

func (f fragmentFunc) Emit(ctx asm.Context) error { return f(ctx) }

// emitEncoded wraps an encoder as a fragment.
func emitEncoded(encode func() ([]byte, error)) asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		bytes, err := encode()
		if err != nil {
			return err
		}
		ctx.EmitBytes(bytes)
		return nil
	})
}
