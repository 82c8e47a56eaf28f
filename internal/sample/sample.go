// Package sample assembles small compiled programs that follow the runtime's
// calling convention. They stand in for code generator output in the demo
// command and in tests.
package sample

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/humberto-ortiz/compilers-2023/internal/asm"
	"github.com/humberto-ortiz/compilers-2023/internal/asm/amd64"
	"github.com/humberto-ortiz/compilers-2023/internal/image"
	"github.com/humberto-ortiz/compilers-2023/internal/rt"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

var (
	rax = amd64.Reg64(amd64.RAX)
	rcx = amd64.Reg64(amd64.RCX)
	rdx = amd64.Reg64(amd64.RDX)
	rsi = amd64.Reg64(amd64.RSI)
	rdi = amd64.Reg64(amd64.RDI)
)

var labelCounter uint64

func uniqueLabel(prefix string) asm.Label {
	id := atomic.AddUint64(&labelCounter, 1)
	return asm.Label(fmt.Sprintf("__%s_%d", prefix, id))
}

func word(v tagged.Value) int64 { return int64(v) }

// Return returns v.
func Return(v tagged.Value) asm.Fragment {
	return asm.Group{
		amd64.MovImmediate(rax, word(v)),
		amd64.Ret(),
	}
}

// DoubleOf passes v to the runtime's numeric helper and returns its result.
func DoubleOf(v tagged.Value) asm.Fragment {
	return asm.Group{
		amd64.MovImmediate(rdi, word(v)),
		amd64.CallImport(rt.SymbolDouble),
		amd64.Ret(),
	}
}

// PrintThenReturn prints v through the runtime and then returns it.
func PrintThenReturn(v tagged.Value) asm.Fragment {
	return asm.Group{
		amd64.MovImmediate(rdi, word(v)),
		amd64.CallImport(rt.SymbolPrint),
		amd64.Ret(),
	}
}

// Fault reports kind with raw as the offending word. It never returns.
func Fault(kind tagged.FaultKind, raw tagged.Value) asm.Fragment {
	return asm.Group{
		amd64.MovImmediate(rdi, int64(kind)),
		amd64.MovImmediate(rsi, word(raw)),
		amd64.CallImport(rt.SymbolError),
		amd64.Ret(),
	}
}

// checkNumber jumps to fail with the checked word in RSI when reg does not
// hold a Number. RDX is clobbered.
func checkNumber(reg amd64.Reg, fail asm.Label) asm.Fragment {
	return asm.Group{
		amd64.MovReg(rsi, reg),
		amd64.MovReg(rdx, reg),
		amd64.AndRegImm(rdx, int32(tagged.Tag)),
		amd64.JumpIfNotZero(fail),
	}
}

// AddChecked adds two words after checking that both are Numbers. Adding two
// encodings yields the encoding of the sum.
func AddChecked(a, b tagged.Value) asm.Fragment {
	fail := uniqueLabel("add_not_number")
	return asm.Group{
		amd64.MovImmediate(rax, word(a)),
		amd64.MovImmediate(rcx, word(b)),
		checkNumber(rax, fail),
		checkNumber(rcx, fail),
		amd64.AddRegReg(rax, rcx),
		amd64.Ret(),

		asm.MarkLabel(fail),
		amd64.MovImmediate(rdi, int64(tagged.FaultNotNumber)),
		amd64.CallImport(rt.SymbolError),
		amd64.Ret(),
	}
}

// NotChecked negates a Boolean, faulting on anything else. The two boolean
// words differ only in the top bit.
func NotChecked(v tagged.Value) asm.Fragment {
	ok := uniqueLabel("not_ok")
	return asm.Group{
		amd64.MovImmediate(rax, word(v)),
		amd64.MovImmediate(rcx, word(tagged.True)),
		amd64.CmpRegReg(rax, rcx),
		amd64.JumpIfEqual(ok),
		amd64.MovImmediate(rcx, word(tagged.False)),
		amd64.CmpRegReg(rax, rcx),
		amd64.JumpIfEqual(ok),

		amd64.MovReg(rsi, rax),
		amd64.MovImmediate(rdi, int64(tagged.FaultNotBoolean)),
		amd64.CallImport(rt.SymbolError),
		amd64.Ret(),

		asm.MarkLabel(ok),
		amd64.MovImmediate(rcx, math.MinInt64),
		amd64.XorRegReg(rax, rcx),
		amd64.Ret(),
	}
}

// ReturnConstant loads v from the program's data instead of an immediate.
func ReturnConstant(v tagged.Value) asm.Fragment {
	data := uniqueLabel("const")
	return asm.Group{
		amd64.LoadAddress(rax, data),
		amd64.MovFromMemory(rax, rax),
		amd64.Ret(),
		amd64.Words(data, uint64(v)),
	}
}

// AddToGlobal adds v to a zero initialised global and returns the global.
func AddToGlobal(v tagged.Value) asm.Fragment {
	global := uniqueLabel("global")
	return asm.Group{
		amd64.LoadAddress(rcx, global),
		amd64.MovFromMemory(rax, rcx),
		amd64.MovImmediate(rdx, word(v)),
		amd64.AddRegReg(rax, rdx),
		amd64.Ret(),
		amd64.Reserve(global, 8),
	}
}

// Assemble builds an image whose entry point is the start of f.
func Assemble(f asm.Fragment) (image.Image, error) {
	prog, err := amd64.EmitProgram(f)
	if err != nil {
		return image.Image{}, fmt.Errorf("assemble: %w", err)
	}
	return image.FromProgram(prog), nil
}

var programs = map[string]func() asm.Fragment{
	"answer":      func() asm.Fragment { return Return(tagged.Number(21)) },
	"true":        func() asm.Fragment { return Return(tagged.True) },
	"false":       func() asm.Fragment { return Return(tagged.False) },
	"unknown":     func() asm.Fragment { return Return(0x3) },
	"not-four":    func() asm.Fragment { return NotChecked(0x4) },
	"not":         func() asm.Fragment { return NotChecked(tagged.True) },
	"double":      func() asm.Fragment { return DoubleOf(tagged.Number(21)) },
	"double-bool": func() asm.Fragment { return DoubleOf(tagged.True) },
	"add":         func() asm.Fragment { return AddChecked(tagged.Number(20), tagged.Number(22)) },
	"add-bool":    func() asm.Fragment { return AddChecked(tagged.Number(1), tagged.True) },
	"print":       func() asm.Fragment { return PrintThenReturn(tagged.Number(7)) },
	"constant":    func() asm.Fragment { return ReturnConstant(tagged.Number(-5)) },
	"global":      func() asm.Fragment { return AddToGlobal(tagged.Number(5)) },
}

// Names lists the built-in programs.
func Names() []string {
	names := make([]string, 0, len(programs))
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Named(name string) (asm.Fragment, error) {
	build, ok := programs[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample program %q", name)
	}
	return build(), nil
}

// Build assembles the named program.
func Build(name string) (image.Image, error) {
	f, err := Named(name)
	if err != nil {
		return image.Image{}, err
	}
	return Assemble(f)
}
