package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const triangle = `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestCompileMissThenHit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tri.wgsl")
	if err := os.WriteFile(src, []byte(triangle), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := filepath.Join(dir, "cache")
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	out, errOut, code := runCLI(t, "--cache-dir", cache, "compile", "-o", outDir, src)
	if code != 0 || !strings.HasPrefix(out, "miss ") {
		t.Fatalf("first run: code=%d out=%q err=%q", code, out, errOut)
	}
	out, errOut, code = runCLI(t, "--cache-dir", cache, "compile", src)
	if code != 0 || !strings.HasPrefix(out, "hit ") {
		t.Fatalf("second run: code=%d out=%q err=%q", code, out, errOut)
	}
	if fi, err := os.Stat(filepath.Join(outDir, "tri.spv")); err != nil || fi.Size() == 0 {
		t.Fatalf("spv not written: %v", err)
	}

	out, _, code = runCLI(t, "--cache-dir", cache, "stats")
	if code != 0 || !strings.Contains(out, "entries  1") {
		t.Fatalf("stats: code=%d out=%q", code, out)
	}
}

func TestKeyIsStable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tri.wgsl")
	os.WriteFile(src, []byte(triangle), 0o644)

	a, _, code := runCLI(t, "--provider", "lru", "key", src)
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	b, _, _ := runCLI(t, "--provider", "lru", "key", src)
	if a != b || !strings.HasSuffix(strings.TrimSpace(a), src) {
		t.Fatalf("keys %q vs %q", a, b)
	}
	c, _, _ := runCLI(t, "--provider", "lru", "--no-validate", "key", src)
	if a == c {
		t.Fatal("--no-validate did not change the key")
	}
}

func TestUsageErrors(t *testing.T) {
	if _, _, code := runCLI(t); code != 2 {
		t.Fatalf("no args: code = %d", code)
	}
	if _, errOut, code := runCLI(t, "--provider", "lru", "frobnicate"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command: code=%d err=%q", code, errOut)
	}
	if _, _, code := runCLI(t, "--provider", "memcached", "key", "x"); code != 1 {
		t.Fatalf("bad provider: code = %d", code)
	}
	if out, _, code := runCLI(t, "--help"); code != 0 || !strings.Contains(out, "compile") {
		t.Fatalf("help: code=%d", code)
	}
	if _, _, code := runCLI(t, "--provider", "lru", "compile"); code != 1 {
		t.Fatalf("compile without files: code = %d", code)
	}
}
