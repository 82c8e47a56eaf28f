//go:build !(linux || darwin)

package native

import "github.com/humberto-ortiz/compilers-2023/internal/tagged"

type Library struct{}

func OpenLibrary(path string) (*Library, error) {
	return nil, ErrUnsupported
}

func (l *Library) Call() tagged.Value { panic(ErrUnsupported) }

func (l *Library) Close() error { return nil }
