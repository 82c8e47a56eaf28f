// Package image describes compiled programs on disk: raw machine code plus
// the offsets the loader must patch before the code can run.
package image

import (
	"errors"
	"fmt"

	"github.com/humberto-ortiz/compilers-2023/internal/asm"
)

const (
	CurrentVersion = 1

	ArchAMD64 = "amd64"
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrInvalid       = errors.New("invalid image")
)

// Import is an 8-byte slot in Code that receives the address of Symbol.
type Import struct {
	Symbol string `yaml:"symbol" cbor:"1,keyasint"`
	Offset int    `yaml:"offset" cbor:"2,keyasint"`
}

// Image is a compiled program ready to be bound. Relocations are offsets of
// 8-byte slots holding image-relative addresses; the loader adds the load
// base to each. BSSSize bytes of zeroed memory follow the code.
type Image struct {
	Version     int      `cbor:"1,keyasint"`
	Arch        string   `cbor:"2,keyasint"`
	Entry       int      `cbor:"3,keyasint"`
	Code        []byte   `cbor:"4,keyasint"`
	Relocations []int    `cbor:"5,keyasint,omitempty"`
	Imports     []Import `cbor:"6,keyasint,omitempty"`
	BSSSize     int      `cbor:"7,keyasint,omitempty"`
}

// FromProgram wraps an assembled program whose entry point is its first byte.
func FromProgram(prog asm.Program) Image {
	imports := make([]Import, 0, len(prog.Imports()))
	for _, imp := range prog.Imports() {
		imports = append(imports, Import{Symbol: imp.Symbol, Offset: imp.Offset})
	}
	return Image{
		Version:     CurrentVersion,
		Arch:        ArchAMD64,
		Code:        prog.Bytes(),
		Relocations: prog.Relocations(),
		Imports:     imports,
		BSSSize:     prog.BSSSize(),
	}
}

// Symbols lists the distinct imported symbol names in first-use order.
func (img Image) Symbols() []string {
	seen := make(map[string]bool, len(img.Imports))
	var out []string
	for _, imp := range img.Imports {
		if !seen[imp.Symbol] {
			seen[imp.Symbol] = true
			out = append(out, imp.Symbol)
		}
	}
	return out
}

func (img Image) Validate() error {
	if img.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalid, img.Version)
	}
	if img.Arch != ArchAMD64 {
		return fmt.Errorf("%w: unsupported architecture %q", ErrInvalid, img.Arch)
	}
	if len(img.Code) == 0 {
		return fmt.Errorf("%w: empty code", ErrInvalid)
	}
	if img.Entry < 0 || img.Entry >= len(img.Code) {
		return fmt.Errorf("%w: entry offset %d outside code (len %d)", ErrInvalid, img.Entry, len(img.Code))
	}
	if img.BSSSize < 0 {
		return fmt.Errorf("%w: negative bss size %d", ErrInvalid, img.BSSSize)
	}

	slots := make(map[int]string, len(img.Relocations)+len(img.Imports))
	claim := func(offset int, owner string) error {
		if offset < 0 || offset+8 > len(img.Code) {
			return fmt.Errorf("%w: %s slot at %d outside code (len %d)", ErrInvalid, owner, offset, len(img.Code))
		}
		for o := offset - 7; o <= offset+7; o++ {
			if prev, ok := slots[o]; ok {
				return fmt.Errorf("%w: %s slot at %d overlaps %s slot at %d", ErrInvalid, owner, offset, prev, o)
			}
		}
		slots[offset] = owner
		return nil
	}

	for _, off := range img.Relocations {
		if err := claim(off, "relocation"); err != nil {
			return err
		}
	}
	for _, imp := range img.Imports {
		if imp.Symbol == "" {
			return fmt.Errorf("%w: import at %d has no symbol", ErrInvalid, imp.Offset)
		}
		if err := claim(imp.Offset, "import "+imp.Symbol); err != nil {
			return err
		}
	}
	return nil
}
