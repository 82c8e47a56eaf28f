//go:build linux || darwin

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
	"github.com/humberto-ortiz/compilers-2023/internal/rt"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

// Library is a shared object exporting the compiled entry point. Any runtime
// helpers it calls must be resolvable by the dynamic linker; programs that
// import helpers from this runtime should be loaded as images instead.
type Library struct {
	handle uintptr
	entry  uintptr
}

func OpenLibrary(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	entry, err := purego.Dlsym(handle, rt.EntrySymbol)
	if err != nil {
		_ = purego.Dlclose(handle)
		return nil, fmt.Errorf("resolve %s in %s: %w", rt.EntrySymbol, path, err)
	}
	return &Library{handle: handle, entry: entry}, nil
}

func (l *Library) Call() tagged.Value {
	if l.handle == 0 {
		panic(ErrClosed)
	}
	r1, _, _ := purego.SyscallN(l.entry)
	return tagged.Value(r1)
}

func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	handle := l.handle
	l.handle = 0
	if err := purego.Dlclose(handle); err != nil {
		return fmt.Errorf("close library: %w", err)
	}
	return nil
}
