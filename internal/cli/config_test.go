package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/castup/castup/internal/logcfg"
)

func TestConfigSetPersistsEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".central_log_config")

	stdout, _, err := runCommand(t, "config", "set", "10.0.0.5", "--log-config", path)
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	if !strings.Contains(stdout, "10.0.0.5") {
		t.Fatalf("expected confirmation in output: %s", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.TrimSpace(string(data)) != "10.0.0.5" {
		t.Fatalf("unexpected persisted value %q", string(data))
	}
}

func TestConfigShowReadsPersistedEndpoint(t *testing.T) {
	t.Setenv(logcfg.EnvVar, "")

	path := filepath.Join(t.TempDir(), ".central_log_config")
	if err := logcfg.Write(path, "10.0.0.5"); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, _, err := runCommand(t, "config", "show", "--log-config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "10.0.0.5 (file)") {
		t.Fatalf("expected persisted endpoint in output: %s", stdout)
	}
}

func TestConfigShowPrefersEnvironment(t *testing.T) {
	t.Setenv(logcfg.EnvVar, "10.1.1.1")

	stdout, _, err := runCommand(t, "config", "show", "--log-config", filepath.Join(t.TempDir(), "cfg"))
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "10.1.1.1 (env)") {
		t.Fatalf("expected env endpoint in output: %s", stdout)
	}
}
