package amd64

import (
	"encoding/binary"
	"fmt"

	"github.com/humberto-ortiz/compilers-2023/internal/asm"
)

func MovImmediate(dst Reg, value int64) asm.Fragment {
	return emitEncoded(func() ([]byte, error) {
		bytes, _, err := encodeMovRegImm64(dst, uint64(value))
		return bytes, err
	})
}

func MovReg(dst, src Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeMovRegReg(dst, src) })
}

// MovFromMemory loads the 8 bytes at [base] into dst.
func MovFromMemory(dst, base Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeMovRegMem(dst, base) })
}

func AddRegImm(reg Reg, value int32) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegImm(aluAdd, reg, value) })
}

func SubRegImm(reg Reg, value int32) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegImm(aluSub, reg, value) })
}

func AndRegImm(reg Reg, value int32) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegImm(aluAnd, reg, value) })
}

func OrRegImm(reg Reg, value int32) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegImm(aluOr, reg, value) })
}

func CmpRegImm(reg Reg, value int32) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegImm(aluCmp, reg, value) })
}

func AddRegReg(dst, src Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegReg(0x01, dst, src) })
}

func SubRegReg(dst, src Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegReg(0x29, dst, src) })
}

func AndRegReg(dst, src Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegReg(0x21, dst, src) })
}

func XorRegReg(dst, src Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegReg(0x31, dst, src) })
}

func CmpRegReg(dst, src Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegReg(0x39, dst, src) })
}

func XorRegImm(reg Reg, value int32) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeALURegImm(aluXor, reg, value) })
}

func ShlRegImm(reg Reg, count uint8) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeShiftRegImm(reg, count, shiftShl) })
}

func ShrRegImm(reg Reg, count uint8) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeShiftRegImm(reg, count, shiftShr) })
}

func SarRegImm(reg Reg, count uint8) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeShiftRegImm(reg, count, shiftSar) })
}

func CallReg(target Reg) asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeCallReg(target) })
}

func Ret() asm.Fragment {
	return emitEncoded(func() ([]byte, error) { return encodeRet(), nil })
}

// LoadImport loads the address of an external symbol into dst. The address
// is filled in when the program is bound.
func LoadImport(dst Reg, symbol string) asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		if symbol == "" {
			return fmt.Errorf("import requires a symbol name")
		}
		bytes, immPos, err := encodeMovRegImm64(dst, 0)
		if err != nil {
			return err
		}
		ctx.AddImport(symbol, ctx.Len()+immPos)
		ctx.EmitBytes(bytes)
		return nil
	})
}

// CallImport calls an external symbol through R11. It expects the stack to be
// as it was on entry to the function (8 bytes off 16-byte alignment) and
// realigns it around the call.
func CallImport(symbol string) asm.Fragment {
	return asm.Group{
		SubRegImm(Reg64(RSP), 8),
		LoadImport(Reg64(R11), symbol),
		CallReg(Reg64(R11)),
		AddRegImm(Reg64(RSP), 8),
	}
}

// LoadAddress loads the absolute address of a label or reserved slot into dst.
func LoadAddress(dst Reg, label asm.Label) asm.Fragment {
	return fragmentFunc(func(_ctx asm.Context) error {
		ctx, ok := _ctx.(*Context)
		if !ok {
			return fmt.Errorf("amd64: unexpected context %T", _ctx)
		}
		bytes, immPos, err := encodeMovRegImm64(dst, 0)
		if err != nil {
			return err
		}
		ctx.addrs = append(ctx.addrs, labelPatch{label: label, pos: ctx.Len() + immPos})
		ctx.EmitBytes(bytes)
		return nil
	})
}

// Reserve allocates size zeroed bytes outside the code, addressable through
// LoadAddress.
func Reserve(label asm.Label, size int) asm.Fragment {
	return fragmentFunc(func(_ctx asm.Context) error {
		ctx, ok := _ctx.(*Context)
		if !ok {
			return fmt.Errorf("amd64: unexpected context %T", _ctx)
		}
		if size <= 0 {
			return fmt.Errorf("reserve %q: size must be positive", label)
		}
		return ctx.reserve(label, size)
	})
}

// Words places 8-byte aligned constant data at label.
func Words(label asm.Label, words ...uint64) asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		if pad := alignTo(ctx.Len(), 8) - ctx.Len(); pad > 0 {
			fill := make([]byte, pad)
			for i := range fill {
				fill[i] = 0xCC // int3
			}
			ctx.EmitBytes(fill)
		}
		if err := asm.MarkLabel(label).Emit(ctx); err != nil {
			return err
		}
		data := make([]byte, 0, 8*len(words))
		for _, w := range words {
			data = binary.LittleEndian.AppendUint64(data, w)
		}
		ctx.EmitBytes(data)
		return nil
	})
}

type jumpKind int

const (
	jumpAlways jumpKind = iota
	jumpEqual
	jumpNotEqual
	jumpCall
)

type jump struct {
	label asm.Label
	kind  jumpKind
}

func (j *jump) Emit(_ctx asm.Context) error {
	ctx, ok := _ctx.(*Context)
	if !ok {
		return fmt.Errorf("amd64: unexpected context %T", _ctx)
	}
	switch j.kind {
	case jumpAlways:
		ctx.EmitBytes([]byte{0xE9})
	case jumpCall:
		ctx.EmitBytes([]byte{0xE8})
	case jumpEqual:
		ctx.EmitBytes([]byte{0x0F, 0x84})
	case jumpNotEqual:
		ctx.EmitBytes([]byte{0x0F, 0x85})
	default:
		return fmt.Errorf("unsupported jump kind %d", j.kind)
	}
	ctx.jumps = append(ctx.jumps, labelPatch{label: j.label, pos: ctx.Len()})
	ctx.EmitBytes([]byte{0, 0, 0, 0})
	return nil
}

func Jump(label asm.Label) asm.Fragment {
	return &jump{label: label, kind: jumpAlways}
}

func JumpIfEqual(label asm.Label) asm.Fragment {
	return &jump{label: label, kind: jumpEqual}
}

func JumpIfNotEqual(label asm.Label) asm.Fragment {
	return &jump{label: label, kind: jumpNotEqual}
}

func JumpIfZero(label asm.Label) asm.Fragment {
	return &jump{label: label, kind: jumpEqual}
}

func JumpIfNotZero(label asm.Label) asm.Fragment {
	return &jump{label: label, kind: jumpNotEqual}
}

// Call calls a label within the same program.
func Call(label asm.Label) asm.Fragment {
	return &jump{label: label, kind: jumpCall}
}
