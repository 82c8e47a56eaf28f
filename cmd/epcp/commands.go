package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/humberto-ortiz/compilers-2023/internal/image"
	"github.com/humberto-ortiz/compilers-2023/internal/native"
	"github.com/humberto-ortiz/compilers-2023/internal/rt"
	"github.com/humberto-ortiz/compilers-2023/internal/sample"
	"github.com/humberto-ortiz/compilers-2023/internal/shim"
	"github.com/humberto-ortiz/compilers-2023/internal/tagged"
)

type runCmd struct {
	Path string `arg:"" help:"Program to run." type:"existingfile"`
}

func (c *runCmd) Run(a *app) error {
	if isSharedObject(c.Path) {
		lib, err := native.OpenLibrary(c.Path)
		if err != nil {
			return err
		}
		defer lib.Close()
		return a.execute(lib)
	}

	img, err := image.Load(c.Path)
	if err != nil {
		return err
	}
	return a.runImage(img)
}

func isSharedObject(path string) bool {
	switch filepath.Ext(path) {
	case ".so", ".dylib":
		return true
	}
	return strings.Contains(filepath.Base(path), ".so.")
}

func (a *app) runImage(img image.Image) error {
	symbols, err := rt.Symbols(a.runtime)
	if err != nil && len(img.Imports) > 0 {
		return fmt.Errorf("bind runtime helpers: %w", err)
	}

	prog, err := native.Bind(img, symbols)
	if err != nil {
		return fmt.Errorf("bind program: %w", err)
	}
	defer prog.Close()

	return a.execute(prog)
}

func (a *app) execute(entry shim.Entry) error {
	slog.Debug("Running program")
	code := shim.Run(entry, a.runtime)
	a.endLine()
	if code != 0 {
		a.exit(code)
	}
	return nil
}

type decodeCmd struct {
	Words []string `arg:"" help:"Raw 64-bit words, decimal or 0x-prefixed hex."`
}

func (c *decodeCmd) Run(a *app) error {
	for _, w := range c.Words {
		raw, err := strconv.ParseUint(strings.ReplaceAll(w, "_", ""), 0, 64)
		if err != nil {
			return fmt.Errorf("parse word %q: %w", w, err)
		}
		a.runtime.Print(tagged.Value(raw))
		fmt.Fprintln(a.stdout)
	}
	return nil
}

type encodeCmd struct {
	Literals []string `arg:"" help:"Integers, true, false, or 0x-prefixed raw words."`
}

func (c *encodeCmd) Run(a *app) error {
	for _, lit := range c.Literals {
		v, err := tagged.Parse(lit)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", v.Hex(), v.Kind(), v)
	}
	return nil
}

type demoCmd struct {
	Name string `arg:"" help:"Sample program name; see the samples command."`
	Emit string `help:"Write the program image to this path (.yaml, .cbor or .bin) instead of running it." type:"path"`
}

func (c *demoCmd) Run(a *app) error {
	img, err := sample.Build(c.Name)
	if err != nil {
		return err
	}

	if c.Emit != "" {
		if err := image.Save(c.Emit, img); err != nil {
			return fmt.Errorf("emit %s: %w", c.Name, err)
		}
		slog.Info("Wrote program image", "program", c.Name, "path", c.Emit, "bytes", len(img.Code))
		return nil
	}

	return a.runImage(img)
}

type samplesCmd struct{}

func (c *samplesCmd) Run(a *app) error {
	return listSamples(a.stdout)
}

func listSamples(w io.Writer) error {
	for _, name := range sample.Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
