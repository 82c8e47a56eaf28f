//go:build !(linux && amd64)

package native

import "github.com/humberto-ortiz/compilers-2023/internal/image"

func Bind(img image.Image, symbols map[string]uintptr) (*Program, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (p *Program) Close() error {
	p.mem = nil
	return nil
}

func callEntry(entry uintptr) uintptr {
	panic(ErrUnsupported)
}
