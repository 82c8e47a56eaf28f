package rt

import (
	"fmt"
	"strconv"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

// Trap is raised by Fault when the configured exit function returns, so the
// faulting caller never resumes. Under the default os.Exit it is unreachable.
type Trap struct {
	Kind tagged.FaultKind
	Raw  tagged.Value
}

func (t Trap) Error() string {
	return fmt.Sprintf("runtime trap %d (%s) on %s", int32(t.Kind), t.Kind, t.Raw.Hex())
}

// Code is the exit status the trap carries.
func (t Trap) Code() int { return int(t.Kind) }

// AsTrap reports whether a recovered panic value is a Trap.
func AsTrap(recovered any) (Trap, bool) {
	t, ok := recovered.(Trap)
	return t, ok
}

// Fault reports a tag mismatch detected by compiled code and terminates the
// process with the fault identifier as its exit status. It does not return.
func (r *Runtime) Fault(kind tagged.FaultKind, raw tagged.Value) {
	buf := bytebufferpool.Get()
	if expected := kind.Expected(); expected != "" {
		buf.WriteString("Expected ")
		buf.WriteString(expected)
		buf.WriteString(", but got ")
		buf.WriteString(raw.Hex())
	} else {
		buf.WriteString("unknown error code ")
		buf.WriteString(strconv.FormatInt(int64(kind), 10))
		buf.WriteString(" (value ")
		buf.WriteString(raw.Hex())
		buf.WriteString(")")
	}
	buf.WriteByte('\n')
	r.write(r.stderr, buf.Bytes())
	bytebufferpool.Put(buf)

	r.log.Debug("runtime: fault", "kind", kind, "value", raw.Hex())

	r.exit(int(kind))
	panic(Trap{Kind: kind, Raw: raw})
}
