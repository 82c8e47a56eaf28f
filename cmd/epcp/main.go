// Command epcp runs natively compiled epcp programs and inspects tagged words.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/humberto-ortiz/compilers-2023/internal/rt"
)

type globals struct {
	Debug   bool   `help:"Enable debug logging."`
	Newline string `help:"Terminate printed values with a newline (${enum})." enum:"auto,always,never" default:"auto"`
}

type cli struct {
	Globals globals `embed:""`

	Run     runCmd     `cmd:"" help:"Run a compiled program image (.yaml, .cbor, .bin) or shared object (.so)."`
	Decode  decodeCmd  `cmd:"" help:"Decode raw tagged words."`
	Encode  encodeCmd  `cmd:"" help:"Encode literals (integers, true, false) as tagged words."`
	Demo    demoCmd    `cmd:"" help:"Assemble a built-in sample program and run or emit it."`
	Samples samplesCmd `cmd:"" help:"List the built-in sample programs."`
}

// app is what every command runs against.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	exit    func(int)
	newline bool
	runtime *rt.Runtime
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "epcp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, exit func(int)) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("epcp"),
		kong.Description("Runtime for natively compiled epcp programs."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		return fmt.Errorf("build command line: %w", err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if c.Globals.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	a := &app{
		stdout:  stdout,
		stderr:  stderr,
		exit:    exit,
		newline: wantNewline(c.Globals.Newline, stdout),
		runtime: rt.New(
			rt.WithStdout(stdout),
			rt.WithStderr(stderr),
			rt.WithExit(exit),
			rt.WithLogger(logger),
		),
	}

	return ctx.Run(a)
}

// wantNewline decides the framing of printed values. The runtime itself never
// adds a newline; auto adds one only for interactive terminals.
func wantNewline(mode string, stdout io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) endLine() {
	if a.newline {
		fmt.Fprintln(a.stdout)
	}
}
