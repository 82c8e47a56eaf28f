//go:build linux && amd64

package rt

import (
	"maps"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

var (
	callbacksOnce sync.Once
	callbacks     map[string]uintptr
)

// Symbols returns C callable addresses of the runtime helpers keyed by the
// names generated code links against, and makes r the runtime they use.
func Symbols(r *Runtime) (map[string]uintptr, error) {
	bound.Store(r)

	callbacksOnce.Do(func() {
		callbacks = map[string]uintptr{
			SymbolPrint: purego.NewCallback(func(v uintptr) uintptr {
				return uintptr(current().Print(tagged.Value(v)))
			}),
			SymbolDouble: purego.NewCallback(func(v uintptr) uintptr {
				return uintptr(current().Double(tagged.Value(v)))
			}),
			// The error code arrives as a C int, so only the low 32 bits are meaningful.
			SymbolError: purego.NewCallback(func(code uintptr, v uintptr) uintptr {
				current().Fault(tagged.FaultKind(int32(uint32(code))), tagged.Value(v))
				return 0
			}),
		}
	})

	return maps.Clone(callbacks), nil
}
