package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{"up": false, "plan": false, "config": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected %s command to be registered", name)
		}
	}
}

func TestPlanUsesBuiltinDefaults(t *testing.T) {
	// Run from a directory without a manifest so the built-in stack applies.
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("chdir back: %v", err)
		}
	})

	stdout, _, err := runCommand(t, "plan")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	for _, want := range []string{
		"1. log-server",
		"2. signaling-server",
		"3. receiver",
		"settle 2s",
		"--signaling ws://localhost:8000 --room testroom",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in plan output:\n%s", want, stdout)
		}
	}
}

func TestPlanReadsManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "castup.yaml")
	contents := `
version: "1"
stack:
  name: demo
settings:
  settleDelay: 3s
  room: lobby
services:
  receiver:
    command: ["/opt/receiver"]
`
	if err := os.WriteFile(manifest, []byte(contents), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	stdout, _, err := runCommand(t, "plan", "-f", manifest)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"Stack demo", "/opt/receiver", "settle 3s", "--room lobby"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in plan output:\n%s", want, stdout)
		}
	}
}

func TestPlanRejectsInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "castup.yaml")
	if err := os.WriteFile(manifest, []byte("version: \"1\"\nservices:\n  sender: {}\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	if _, _, err := runCommand(t, "plan", "-f", manifest); err == nil {
		t.Fatalf("expected error for invalid manifest")
	}
}

func TestExplicitMissingManifestFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := runCommand(t, "plan", "-f", missing); err == nil {
		t.Fatalf("expected error for explicitly missing manifest")
	}
}
