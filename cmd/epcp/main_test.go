package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// TestMain lets end to end tests re-execute the test binary as the epcp
// command itself.
func TestMain(m *testing.M) {
	if os.Getenv("EPCP_RUN_MAIN") == "1" {
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runInProcess(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr, func(code int) {
		t.Fatalf("unexpected exit %d", code)
	})
	return stdout.String(), stderr.String(), err
}

func TestDecode(t *testing.T) {
	stdout, stderr, err := runInProcess(t, "decode", "42", "0xffffffffffffffff", "0x7fffffffffffffff", "3", "0xfffffffffffffffa")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := "21\ntrue\nfalse\nUnknown value: 0x0000000000000003\n-3\n"
	if stdout != want {
		t.Fatalf("stdout=%q, want %q", stdout, want)
	}
	if stderr != "" {
		t.Fatalf("stderr=%q", stderr)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := runInProcess(t, "decode", "twelve"); err == nil {
		t.Fatalf("decode accepted a non-number")
	}
}

func TestEncode(t *testing.T) {
	stdout, _, err := runInProcess(t, "encode", "21", "true", "0x3")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	want := strings.Join([]string{
		"0x000000000000002a\tnumber\t21",
		"0xffffffffffffffff\tboolean\ttrue",
		"0x0000000000000003\tunrecognized\tUnknown value: 0x0000000000000003",
	}, "\n") + "\n"
	if stdout != want {
		t.Fatalf("stdout=%q, want %q", stdout, want)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	if _, _, err := runInProcess(t, "encode", "9223372036854775807"); err == nil {
		t.Fatalf("encode accepted an out of range integer")
	}
}

func TestSamples(t *testing.T) {
	stdout, _, err := runInProcess(t, "samples")
	if err != nil {
		t.Fatalf("samples failed: %v", err)
	}
	for _, name := range []string{"answer", "true", "not-four", "unknown"} {
		if !strings.Contains(stdout, name+"\n") {
			t.Fatalf("samples output %q missing %q", stdout, name)
		}
	}
}

func TestDemoEmit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"answer.yaml", "answer.cbor", "answer.bin"} {
		path := dir + "/" + name
		if _, _, err := runInProcess(t, "demo", "answer", "--emit", path); err != nil {
			t.Fatalf("demo --emit %s failed: %v", name, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("emitted image missing: %v", err)
		}
	}
}

func TestDemoUnknownProgram(t *testing.T) {
	if _, _, err := runInProcess(t, "demo", "nope"); err == nil {
		t.Fatalf("demo accepted an unknown program")
	}
}

func TestWantNewline(t *testing.T) {
	var buf bytes.Buffer
	if wantNewline("auto", &buf) {
		t.Fatalf("auto framing on a buffer")
	}
	if !wantNewline("always", &buf) || wantNewline("never", &buf) {
		t.Fatalf("explicit framing ignored")
	}
}
