//go:build linux && amd64

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// epcp runs the command in a child process and returns its output and exit status.
func epcp(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(os.Args[0], args...)
	cmd.Env = append(os.Environ(), "EPCP_RUN_MAIN=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("epcp %v: %v", args, err)
		}
		code = exitErr.ExitCode()
	}
	return stdout.String(), stderr.String(), code
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{"A number", []string{"demo", "answer"}, "21", "", 0},
		{"B true", []string{"demo", "true"}, "true", "", 0},
		{"C boolean fault", []string{"demo", "not-four"}, "", "Expected boolean, but got 0x0000000000000004\n", 2},
		{"D unrecognized", []string{"demo", "unknown"}, "Unknown value: 0x0000000000000003", "", 0},
		{"number fault", []string{"demo", "add-bool"}, "", "Expected number, but got 0xffffffffffffffff\n", 1},
		{"doubling", []string{"demo", "double"}, "42", "", 0},
		{"soft failure", []string{"demo", "double-bool"}, "expected a number, but got 0xfffffffffffffffftrue", "", 0},
		{"print helper", []string{"demo", "print"}, "77", "", 0},
		{"newline", []string{"--newline=always", "demo", "answer"}, "21\n", "", 0},
	}
	for _, tt := range tests {
		stdout, stderr, code := epcp(t, tt.args...)
		if code != tt.wantCode {
			t.Fatalf("%s: exit=%d, want %d (stderr %q)", tt.name, code, tt.wantCode, stderr)
		}
		if stdout != tt.wantStdout {
			t.Fatalf("%s: stdout=%q, want %q", tt.name, stdout, tt.wantStdout)
		}
		if stderr != tt.wantStderr {
			t.Fatalf("%s: stderr=%q, want %q", tt.name, stderr, tt.wantStderr)
		}
	}
}

func TestRunEmittedImages(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		program string
		file    string
		want    string
	}{
		{"answer", "answer.yaml", "21"},
		{"double", "double.cbor", "42"},
		{"constant", "constant.yaml", "-5"},
		{"global", "global.cbor", "5"},
		{"true", "true.bin", "true"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.file)
		if _, stderr, code := epcp(t, "demo", tt.program, "--emit", path); code != 0 {
			t.Fatalf("emit %s: exit=%d (stderr %q)", tt.file, code, stderr)
		}
		stdout, stderr, code := epcp(t, "run", path)
		if code != 0 {
			t.Fatalf("run %s: exit=%d (stderr %q)", tt.file, code, stderr)
		}
		if stdout != tt.want {
			t.Fatalf("run %s: stdout=%q, want %q", tt.file, stdout, tt.want)
		}
	}
}

func TestRunFaultFromImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-four.cbor")
	if _, stderr, code := epcp(t, "demo", "not-four", "--emit", path); code != 0 {
		t.Fatalf("emit: exit=%d (stderr %q)", code, stderr)
	}
	stdout, stderr, code := epcp(t, "run", path)
	if code != 2 {
		t.Fatalf("exit=%d, want 2", code)
	}
	if stdout != "" {
		t.Fatalf("stdout=%q, want nothing", stdout)
	}
	if want := "Expected boolean, but got 0x0000000000000004\n"; stderr != want {
		t.Fatalf("stderr=%q, want %q", stderr, want)
	}
}

func TestRunMissingFile(t *testing.T) {
	_, stderr, code := epcp(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	if code != 1 || stderr == "" {
		t.Fatalf("exit=%d stderr=%q, want a usage error", code, stderr)
	}
}
