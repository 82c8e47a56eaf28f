// Package asm holds the architecture independent pieces of the assembler:
// fragments, labels and the assembled Program.
package asm

import "fmt"

// Context is the sink a Fragment emits into.
type Context interface {
	EmitBytes(data []byte)
	Len() int

	// AddImport records that the 8 bytes at offset must be filled with the
	// address of symbol when the program is bound.
	AddImport(symbol string, offset int)

	GetLabel(label Label) (int, bool)
	SetLabel(label Label)
}

type Fragment interface {
	Emit(ctx Context) error
}

type Group []Fragment

var (
	_ Fragment = Group{}
)

func (g Group) Emit(ctx Context) error {
	for _, frag := range g {
		if err := frag.Emit(ctx); err != nil {
			return err
		}
	}
	return nil
}

type Label string

type labelDef struct {
	label Label
}

func MarkLabel(label Label) Fragment {
	return &labelDef{label: label}
}

func (l *labelDef) Emit(ctx Context) error {
	if _, exists := ctx.GetLabel(l.label); exists {
		return fmt.Errorf("label %q already defined", l.label)
	}
	ctx.SetLabel(l.label)
	return nil
}

// Import is an 8-byte slot in the code that receives the address of an
// external symbol.
type Import struct {
	Symbol string
	Offset int
}

// Program is position independent machine code. Relocations are offsets of
// 8-byte slots holding program-relative addresses.
type Program struct {
	code        []byte
	relocations []int
	imports     []Import
	bssSize     int
}

func (p Program) Bytes() []byte {
	return append([]byte(nil), p.code...)
}

func (p Program) Relocations() []int {
	return append([]int(nil), p.relocations...)
}

func (p Program) Imports() []Import {
	return append([]Import(nil), p.imports...)
}

func (p Program) BSSSize() int {
	return p.bssSize
}

func (p Program) Clone() Program {
	return NewProgram(p.code, p.relocations, p.imports, p.bssSize)
}

func NewProgram(code []byte, relocations []int, imports []Import, bss int) Program {
	return Program{
		code:        append([]byte(nil), code...),
		relocations: append([]int(nil), relocations...),
		imports:     append([]Import(nil), imports...),
		bssSize:     bss,
	}
}
