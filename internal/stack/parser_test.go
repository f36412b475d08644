package stack

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	doc, err := Parse(strings.NewReader("version: \"1\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for _, name := range KnownServices() {
		svc, ok := doc.Services[name]
		if !ok || len(svc.Command) == 0 {
			t.Fatalf("expected default command for %s", name)
		}
	}
	if doc.Settings.SettleDelay.Duration != DefaultSettleDelay {
		t.Fatalf("expected default settle delay, got %s", doc.Settings.SettleDelay.Duration)
	}
	if doc.Settings.Signaling != DefaultSignalingURL {
		t.Fatalf("expected default signaling URL, got %q", doc.Settings.Signaling)
	}
	if doc.Settings.Room != DefaultRoom {
		t.Fatalf("expected default room, got %q", doc.Settings.Room)
	}
}

func TestParseOverrides(t *testing.T) {
	manifest := `
version: "1"
stack:
  name: demo
settings:
  settleDelay: 5s
  signaling: ws://10.0.0.9:9001
  room: lobby
services:
  receiver:
    command: ["/opt/receiver", "--verbose"]
    env:
      RECEIVER_DEBUG: "1"
`
	doc, err := Parse(strings.NewReader(manifest))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if doc.Stack.Name != "demo" {
		t.Fatalf("expected stack name demo, got %q", doc.Stack.Name)
	}
	if doc.Settings.SettleDelay.Duration != 5*time.Second {
		t.Fatalf("expected 5s settle delay, got %s", doc.Settings.SettleDelay.Duration)
	}
	recv := doc.Services[ServiceReceiver]
	if got := strings.Join(recv.Command, " "); got != "/opt/receiver --verbose" {
		t.Fatalf("unexpected receiver command %q", got)
	}
	if recv.Env["RECEIVER_DEBUG"] != "1" {
		t.Fatalf("expected receiver env override")
	}
	// Untouched services still get defaults.
	if len(doc.Services[ServiceLogServer].Command) == 0 {
		t.Fatalf("expected default log server command")
	}
}

func TestParseRejectsUnknownService(t *testing.T) {
	manifest := `
version: "1"
services:
  sender:
    command: ["sender"]
`
	if _, err := Parse(strings.NewReader(manifest)); err == nil {
		t.Fatalf("expected error for unknown service")
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	manifest := `
version: "1"
replicas: 3
`
	if _, err := Parse(strings.NewReader(manifest)); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseRejectsMissingVersion(t *testing.T) {
	if _, err := Parse(strings.NewReader("stack:\n  name: demo\n")); err == nil {
		t.Fatalf("expected error for missing version")
	}
}

func TestValidateRejectsNegativeSettleDelay(t *testing.T) {
	doc := Default()
	doc.Settings.SettleDelay.Duration = -time.Second
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for negative settle delay")
	}
}

func TestDefaultIsValid(t *testing.T) {
	doc := Default()
	if err := doc.Validate(); err != nil {
		t.Fatalf("default stack invalid: %v", err)
	}
	if doc.Settings.Signaling != DefaultSignalingURL || doc.Settings.Room != DefaultRoom {
		t.Fatalf("unexpected default settings %+v", doc.Settings)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "castup.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
