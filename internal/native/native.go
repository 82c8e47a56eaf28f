// Package native maps compiled program images into executable memory and
// calls their entry point through the platform C calling convention.
package native

import (
	"errors"
	"fmt"

	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

var (
	ErrUnsupported      = errors.New("native execution is not supported on this platform")
	ErrUnresolvedImport = errors.New("unresolved import")
	ErrClosed           = errors.New("program is closed")
)

// Program is an image bound to executable memory.
type Program struct {
	mem   []byte
	entry uintptr
}

// Entry returns the address execution starts at.
func (p *Program) Entry() uintptr { return p.entry }

// Call runs the program's entry point and returns the tagged word it left in
// the integer return register. Calling a closed program panics.
func (p *Program) Call() tagged.Value {
	if p.mem == nil {
		panic(ErrClosed)
	}
	return tagged.Value(callEntry(p.entry))
}

func resolve(symbols map[string]uintptr, name string) (uintptr, error) {
	addr, ok := symbols[name]
	if !ok || addr == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedImport, name)
	}
	return addr, nil
}
