// Package amd64 assembles x86-64 machine code for the System V calling
// convention: arguments in RDI, RSI, ... and the result in RAX.
package amd64

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/humberto-ortiz/compilers-2023/internal/asm"
)

type Context struct {
	text    []byte
	labels  map[asm.Label]int
	jumps   []labelPatch
	addrs   []labelPatch
	imports []asm.Import
	bss     []bssSlot
	bssSize int
}

// labelPatch is a pending reference to a label: a rel32 displacement for
// jumps and calls, or an absolute 8-byte address for addrs.
type labelPatch struct {
	label asm.Label
	pos   int
}

type bssSlot struct {
	label  asm.Label
	offset int
}

var (
	_ asm.Context = (*Context)(nil)
)

func newContext() *Context {
	return &Context{
		labels: make(map[asm.Label]int),
	}
}

func (c *Context) EmitBytes(code []byte) {
	c.text = append(c.text, code...)
}

func (c *Context) Len() int { return len(c.text) }

func (c *Context) AddImport(symbol string, offset int) {
	c.imports = append(c.imports, asm.Import{Symbol: symbol, Offset: offset})
}

func (c *Context) GetLabel(label asm.Label) (int, bool) {
	pos, ok := c.labels[label]
	return pos, ok
}

func (c *Context) SetLabel(label asm.Label) {
	c.labels[label] = len(c.text)
}

func (c *Context) reserve(label asm.Label, size int) error {
	if _, exists := c.labels[label]; exists {
		return fmt.Errorf("label %q already defined", label)
	}
	for _, slot := range c.bss {
		if slot.label == label {
			return fmt.Errorf("label %q already defined", label)
		}
	}
	const bssAlign = 16
	offset := alignTo(c.bssSize, bssAlign)
	c.bss = append(c.bss, bssSlot{label: label, offset: offset})
	c.bssSize = offset + size
	return nil
}

func EmitProgram(fragment asm.Fragment) (asm.Program, error) {
	ctx := newContext()
	if err := fragment.Emit(ctx); err != nil {
		return asm.Program{}, err
	}
	return ctx.finalize()
}

func EmitBytes(fragment asm.Fragment) ([]byte, error) {
	prog, err := EmitProgram(fragment)
	if err != nil {
		return nil, err
	}
	return prog.Bytes(), nil
}

func alignTo(value, boundary int) int {
	if boundary <= 0 {
		return value
	}
	mask := boundary - 1
	return (value + mask) &^ mask
}

func (c *Context) finalize() (asm.Program, error) {
	if len(c.text) == 0 {
		return asm.Program{}, fmt.Errorf("empty program")
	}

	// BSS starts right after the 16-byte aligned text.
	bssBase := alignTo(len(c.text), 16)

	for _, j := range c.jumps {
		target, ok := c.labels[j.label]
		if !ok {
			return asm.Program{}, fmt.Errorf("undefined label %q", j.label)
		}
		rel := target - (j.pos + 4)
		if rel < math.MinInt32 || rel > math.MaxInt32 {
			return asm.Program{}, fmt.Errorf("jump to label %q out of range", j.label)
		}
		binary.LittleEndian.PutUint32(c.text[j.pos:j.pos+4], uint32(int32(rel)))
	}

	relocations := make([]int, 0, len(c.addrs))
	for _, a := range c.addrs {
		target, ok := c.labels[a.label]
		if !ok {
			found := false
			for _, slot := range c.bss {
				if slot.label == a.label {
					target, found = bssBase+slot.offset, true
					break
				}
			}
			if !found {
				return asm.Program{}, fmt.Errorf("undefined label %q", a.label)
			}
		}
		binary.LittleEndian.PutUint64(c.text[a.pos:a.pos+8], uint64(target))
		relocations = append(relocations, a.pos)
	}

	code := c.text
	bss := 0
	if c.bssSize > 0 {
		code = append(code, make([]byte, bssBase-len(c.text))...)
		bss = c.bssSize
	}

	return asm.NewProgram(code, relocations, c.imports, bss), nil
}
