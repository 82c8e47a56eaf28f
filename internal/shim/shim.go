// Package shim is the process level driver: it calls the compiled entry
// point once and displays the word it returns.
package shim

import (
	"log/slog"

	"github.com/humberto-ortiz/compilers-2023/internal/rt"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

// Entry is a compiled program's zero argument entry point.
type Entry interface {
	Call() tagged.Value
}

// EntryFunc adapts a Go function to Entry.
type EntryFunc func() tagged.Value

func (f EntryFunc) Call() tagged.Value { return f() }

// Run calls entry, prints its result through r and returns the exit status
// for a normal return, which is always 0. Faults never come back here; they
// terminate the process from inside the runtime.
func Run(entry Entry, r *rt.Runtime) int {
	result := entry.Call()
	slog.Debug("shim: entry returned", "value", result.Hex(), "kind", result.Kind())
	r.Print(result)
	return 0
}
