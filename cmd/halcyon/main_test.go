package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-v"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "halcyon version") {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Errorf("expected usage text, got %q", stdout.String())
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunMigratesSeededCatalog(t *testing.T) {
	dir := t.TempDir()
	sql := "CREATE TABLE t (a int8)"
	if err := os.WriteFile(filepath.Join(dir, "t.sql"), []byte(sql), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"--storage-dsn", ":memory:",
		"--log-level", "off",
		"-d", dir,
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Items: 1") {
		t.Errorf("expected item count in output, got %q", stdout.String())
	}
}

func TestRunWatchWithoutFixtureDirIsUsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--storage-dsn", ":memory:", "--log-level", "off", "-w"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}
