package rt

import (
	"errors"
	"sync/atomic"
)

var ErrNativeUnsupported = errors.New("native helper symbols are not supported on this platform")

// bound is the runtime the native callbacks dispatch to. Callback slots are a
// finite process-wide resource, so they are created once and rebound instead.
var bound atomic.Pointer[Runtime]

func current() *Runtime {
	if r := bound.Load(); r != nil {
		return r
	}
	r := New()
	bound.CompareAndSwap(nil, r)
	return bound.Load()
}
