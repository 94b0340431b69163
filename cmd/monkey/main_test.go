package main

import (
	"bytes"
	"context"
	"monkey/internal/util"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.monkey")
	bad := filepath.Join(dir, "bad.monkey")
	os.WriteFile(good, []byte("let add = fn(a, b) { a + b }; add(1, 2)"), 0o644)
	os.WriteFile(bad, []byte("1 / 0"), 0o644)

	config := util.DefaultConfiguration()

	var out bytes.Buffer
	if status := run(context.Background(), config, []string{good}, &out); status != 0 {
		t.Errorf("expected status 0, got %d", status)
	}
	if out.String() != "3\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if status := run(context.Background(), config, []string{good, bad}, &out); status != 1 {
		t.Errorf("expected status 1, got %d", status)
	}
	expected := "==> " + good + "\n3\n==> " + bad + "\nError: division by zero\n"
	if out.String() != expected {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunDebugAST(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.monkey")
	os.WriteFile(path, []byte("let x = 1;"), 0o644)

	config := util.DefaultConfiguration()
	config.DebugAST = "yaml"

	var out bytes.Buffer
	if status := run(context.Background(), config, []string{path}, &out); status != 0 {
		t.Errorf("expected status 0, got %d", status)
	}
	if !strings.Contains(out.String(), "LetStatement") {
		t.Errorf("expected yaml AST, got %q", out.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	var out bytes.Buffer
	status := run(context.Background(), util.DefaultConfiguration(), []string{filepath.Join(t.TempDir(), "nope")}, &out)
	if status != 1 {
		t.Errorf("expected status 1, got %d", status)
	}
}

func TestRunRejectsEvalWithFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.monkey")
	if err := os.WriteFile(path, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}

	evalSource = "2"
	defer func() { evalSource = "" }()

	var out bytes.Buffer
	if status := run(context.Background(), util.DefaultConfiguration(), []string{path}, &out); status != 2 {
		t.Errorf("expected status 2, got %d", status)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing evaluated, got %q", out.String())
	}

	if status := run(context.Background(), util.DefaultConfiguration(), nil, &out); status != 0 {
		t.Errorf("expected status 0 without files, got %d", status)
	}
	if out.String() != "2\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
