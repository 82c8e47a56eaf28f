//go:build linux && amd64

package native

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/humberto-ortiz/compilers-2023/internal/image"
	"golang.org/x/sys/unix"
)

// Bind copies img into fresh memory, applies its relocations, fills its
// imports from symbols and makes the code executable. The zeroed BSS
// region is placed on its own pages after the code and stays writable.
func Bind(img image.Image, symbols map[string]uintptr) (*Program, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	code := img.Code
	size := len(code)
	pageSize := unix.Getpagesize()

	codeAllocSize := ((size + pageSize - 1) / pageSize) * pageSize
	totalSize := codeAllocSize + img.BSSSize
	allocSize := ((totalSize + pageSize - 1) / pageSize) * pageSize

	mem, err := unix.Mmap(-1, 0, allocSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap program region: %w", err)
	}
	release := true
	defer func() {
		if release {
			_ = unix.Munmap(mem)
		}
	}()

	copy(mem, code)
	base := uintptr(unsafe.Pointer(&mem[0]))

	// Addresses past the code point into BSS, which moved from directly
	// after the code to the next page boundary.
	bssAdjustment := uint64(codeAllocSize - size)
	for _, off := range img.Relocations {
		value := binary.LittleEndian.Uint64(mem[off:])
		if value >= uint64(size) {
			value += bssAdjustment
		}
		binary.LittleEndian.PutUint64(mem[off:], value+uint64(base))
	}

	for _, imp := range img.Imports {
		addr, err := resolve(symbols, imp.Symbol)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(mem[imp.Offset:], uint64(addr))
	}

	if err := unix.Mprotect(mem[:codeAllocSize], unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return nil, fmt.Errorf("mprotect code region: %w", err)
	}

	release = false
	slog.Debug("native: bound program",
		"base", fmt.Sprintf("%#x", base),
		"code", size,
		"bss", img.BSSSize,
		"relocations", len(img.Relocations),
		"imports", len(img.Imports),
	)

	return &Program{mem: mem, entry: base + uintptr(img.Entry)}, nil
}

// Close unmaps the program. The program must not be running.
func (p *Program) Close() error {
	if p.mem == nil {
		return nil
	}
	mem := p.mem
	p.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("munmap program region: %w", err)
	}
	return nil
}

// callEntry goes through purego so that the runtime helpers, which are purego
// callbacks, may be called from the program.
func callEntry(entry uintptr) uintptr {
	r1, _, _ := purego.SyscallN(entry)
	return r1
}
