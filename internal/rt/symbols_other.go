//go:build !(linux && amd64)

package rt

func Symbols(r *Runtime) (map[string]uintptr, error) {
	bound.Store(r)
	return nil, ErrNativeUnsupported
}
