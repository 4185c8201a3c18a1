package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, want := range []string{"[station]", "[paths]", "[amqp]"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("sample config missing %q", want)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without --overwrite")
	}

	cmd = newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target, "--overwrite"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestStatusPrinterPlain(t *testing.T) {
	var out bytes.Buffer
	p := statusPrinter{out: &out}
	p.header("Aircheck Daemon")
	p.line(statusOK, "Daemon", "ok")

	text := out.String()
	if !strings.Contains(text, "== Aircheck Daemon ==") {
		t.Errorf("missing header: %q", text)
	}
	if !strings.Contains(text, "Daemon:") || !strings.Contains(text, "[OK] ok") {
		t.Errorf("missing status line: %q", text)
	}
	if strings.Contains(text, "\x1b[") {
		t.Errorf("plain output contains escape codes: %q", text)
	}
}

func TestStatusPrinterColorized(t *testing.T) {
	var out bytes.Buffer
	p := statusPrinter{out: &out, colorize: true}
	p.line(statusError, "Daemon", "down")

	text := out.String()
	if !strings.Contains(text, statusError.color()) || !strings.Contains(text, ansiReset) {
		t.Errorf("colorized line = %q", text)
	}
}
