package sample

import (
	"reflect"
	"testing"

	"github.com/humberto-ortiz/compilers-2023/internal/asm"
	"github.com/humberto-ortiz/compilers-2023/internal/rt"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

func TestBuildAll(t *testing.T) {
	for _, name := range Names() {
		img, err := Build(name)
		if err != nil {
			t.Fatalf("Build(%q) failed: %v", name, err)
		}
		if err := img.Validate(); err != nil {
			t.Fatalf("Build(%q) produced invalid image: %v", name, err)
		}
	}
}

func TestImportsMatchHelpers(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"answer", nil},
		{"double", []string{rt.SymbolDouble}},
		{"print", []string{rt.SymbolPrint}},
		{"add", []string{rt.SymbolError}},
		{"not-four", []string{rt.SymbolError}},
	}
	for _, tt := range tests {
		img, err := Build(tt.name)
		if err != nil {
			t.Fatalf("Build(%q) failed: %v", tt.name, err)
		}
		if got := img.Symbols(); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: Symbols()=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRelocatingPrograms(t *testing.T) {
	img, err := Build("constant")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(img.Relocations) != 1 {
		t.Fatalf("constant: relocations=%v, want one", img.Relocations)
	}

	img, err = Build("global")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if img.BSSSize != 8 {
		t.Fatalf("global: BSSSize=%d, want 8", img.BSSSize)
	}
}

func TestComposedProgramsGetDistinctLabels(t *testing.T) {
	group := asm.Group{
		AddChecked(tagged.Number(1), tagged.Number(2)),
		AddChecked(tagged.Number(3), tagged.Number(4)),
		NotChecked(tagged.True),
		NotChecked(tagged.False),
	}
	if _, err := Assemble(group); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
}

func TestUnknownProgram(t *testing.T) {
	if _, err := Named("nope"); err == nil {
		t.Fatalf("Named(nope) succeeded")
	}
}
