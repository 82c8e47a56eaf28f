// Package rt is the runtime linked against compiled programs. It decodes
// tagged words for display, exposes the numeric helper, and owns the fatal
// fault path.
package rt

import (
	"io"
	"log/slog"
	"os"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

// Symbol names under which the helpers are visible to generated code.
const (
	SymbolPrint  = "print"
	SymbolDouble = "doble"
	SymbolError  = "error"

	// EntrySymbol is the zero argument entry point every compiled program exports.
	EntrySymbol = "our_code_starts_here"
)

type Runtime struct {
	stdout io.Writer
	stderr io.Writer
	exit   func(code int)
	log    *slog.Logger
}

type Option func(*Runtime)

func WithStdout(w io.Writer) Option { return func(r *Runtime) { r.stdout = w } }

func WithStderr(w io.Writer) Option { return func(r *Runtime) { r.stderr = w } }

// WithExit replaces the process exit used by Fault.
func WithExit(exit func(code int)) Option { return func(r *Runtime) { r.exit = exit } }

func WithLogger(logger *slog.Logger) Option { return func(r *Runtime) { r.log = logger } }

func New(opts ...Option) *Runtime {
	r := &Runtime{
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Print writes the decoded form of v to stdout as a single token without a
// trailing newline and returns v unchanged.
func (r *Runtime) Print(v tagged.Value) tagged.Value {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(v.String())
	r.write(r.stdout, buf.Bytes())

	r.log.Debug("runtime: print", "value", v.Hex(), "kind", v.Kind())
	return v
}

// Double multiplies an encoded Number by two, which encodes twice the number.
// Any other word is reported on stdout and returned as is; execution continues.
func (r *Runtime) Double(v tagged.Value) tagged.Value {
	if v.IsNumber() {
		return v * 2
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("expected a number, but got ")
	buf.WriteString(v.Hex())
	r.write(r.stdout, buf.Bytes())

	r.log.Debug("runtime: doble on non-number", "value", v.Hex())
	return v
}

func (r *Runtime) write(w io.Writer, p []byte) {
	if _, err := w.Write(p); err != nil {
		r.log.Debug("runtime: write failed", "error", err)
	}
}
