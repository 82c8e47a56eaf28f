package amd64

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ALU group-1 sub opcodes (the reg field of the 0x81/0x83 ModRM byte).
const (
	aluAdd byte = 0
	aluOr  byte = 1
	aluAnd byte = 4
	aluSub byte = 5
	aluXor byte = 6
	aluCmp byte = 7
)

// Shift sub opcodes for 0xC1.
const (
	shiftShl byte = 4
	shiftShr byte = 5
	shiftSar byte = 7
)

func rexPrefix(w, r, x, b bool) byte {
	if !w && !r && !x && !b {
		return 0
	}
	prefix := byte(0x40)
	if w {
		prefix |= 0x08
	}
	if r {
		prefix |= 0x04
	}
	if x {
		prefix |= 0x02
	}
	if b {
		prefix |= 0x01
	}
	return prefix
}

func appendREX(out []byte, w, r, x, b bool) []byte {
	if prefix := rexPrefix(w, r, x, b); prefix != 0 {
		out = append(out, prefix)
	}
	return out
}

// encodeMovRegImm64 encodes movabs reg, imm64 and returns the offset of the
// immediate within the encoding so callers can patch it later.
func encodeMovRegImm64(reg Reg, value uint64) ([]byte, int, error) {
	info, err := regInfo(reg)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, 0, 10)
	out = appendREX(out, true, false, false, info.high)
	out = append(out, 0xB8+info.code)
	immPos := len(out)
	out = binary.LittleEndian.AppendUint64(out, value)
	return out, immPos, nil
}

func encodeMovRegReg(dst, src Reg) ([]byte, error) {
	return encodeALURegReg(0x89, dst, src)
}

// encodeALURegReg encodes "op dst, src" for the r/m64, r64 opcode forms.
func encodeALURegReg(opcode byte, dst, src Reg) ([]byte, error) {
	dstInfo, err := regInfo(dst)
	if err != nil {
		return nil, err
	}
	srcInfo, err := regInfo(src)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 3)
	out = appendREX(out, true, srcInfo.high, false, dstInfo.high)
	modrm := byte(0xC0 | (srcInfo.code << 3) | dstInfo.code)
	out = append(out, opcode, modrm)
	return out, nil
}

func encodeALURegImm(op byte, reg Reg, value int32) ([]byte, error) {
	info, err := regInfo(reg)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 7)
	out = appendREX(out, true, false, false, info.high)

	modrm := byte(0xC0 | (op << 3) | info.code)
	if value >= math.MinInt8 && value <= math.MaxInt8 {
		out = append(out, 0x83, modrm, byte(int8(value)))
		return out, nil
	}
	out = append(out, 0x81, modrm)
	out = binary.LittleEndian.AppendUint32(out, uint32(value))
	return out, nil
}

func encodeShiftRegImm(reg Reg, count uint8, subcode byte) ([]byte, error) {
	if count == 0 || count > 63 {
		return nil, fmt.Errorf("shift count %d out of range", count)
	}
	info, err := regInfo(reg)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 4)
	out = appendREX(out, true, false, false, info.high)
	modrm := byte(0xC0 | (subcode << 3) | info.code)
	out = append(out, 0xC1, modrm, count)
	return out, nil
}

// encodeMovRegMem encodes mov dst, [base].
func encodeMovRegMem(dst, base Reg) ([]byte, error) {
	dstInfo, err := regInfo(dst)
	if err != nil {
		return nil, err
	}
	baseInfo, err := regInfo(base)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 5)
	out = appendREX(out, true, dstInfo.high, false, baseInfo.high)
	out = append(out, 0x8B)

	switch baseInfo.code {
	case 4:
		// rsp/r12 as a base needs a SIB byte.
		out = append(out, 0x04|(dstInfo.code<<3), 0x24)
	case 5:
		// rbp/r13 with mod=00 means rip-relative, so use a zero disp8.
		out = append(out, 0x45|(dstInfo.code<<3), 0x00)
	default:
		out = append(out, (dstInfo.code<<3)|baseInfo.code)
	}
	return out, nil
}

func encodeCallReg(target Reg) ([]byte, error) {
	info, err := regInfo(target)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 3)
	out = appendREX(out, false, false, false, info.high)
	out = append(out, 0xFF, 0xD0|info.code)
	return out, nil
}

func encodeRet() []byte {
	return []byte{0xC3}
}
