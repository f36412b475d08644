// Package logcfg resolves the address of the central logging endpoint that
// every managed service reads from the environment.
package logcfg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// EnvVar is the environment variable every launched service reads to locate
// the central logging endpoint.
const EnvVar = "CENTRAL_LOG_IP"

// DefaultAddress is the loopback fallback used when no other source yields a
// value.
const DefaultAddress = "127.0.0.1"

const configFileName = ".central_log_config"

// Source identifies which resolution step produced the endpoint.
type Source string

const (
	SourceEnv      Source = "env"
	SourceFile     Source = "file"
	SourcePrompt   Source = "prompt"
	SourceFallback Source = "fallback"
)

// Endpoint is the resolved central logging address. It is established once
// per run and never re-resolved.
type Endpoint struct {
	Address string
	Source  Source
}

// ConfigPath returns the per-user location of the persisted endpoint value.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, configFileName), nil
}

// Write persists the endpoint address as the entire file contents.
func Write(path, address string) error {
	if err := os.WriteFile(path, []byte(address), 0o600); err != nil {
		return fmt.Errorf("write log config: %w", err)
	}
	return nil
}

// Read loads a persisted endpoint value. An empty string with a nil error
// means the file is absent or holds nothing usable.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read log config: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Resolver determines the central logging endpoint. The zero value resolves
// against the real environment, config file, and terminal.
type Resolver struct {
	// Path overrides the persisted config location. Empty means the
	// per-user default.
	Path string
	// Input supplies prompt answers. Nil means os.Stdin.
	Input io.Reader
	// Output receives prompts and warnings. Nil means os.Stderr.
	Output io.Writer

	// interactive overrides terminal detection in tests.
	interactive func() bool
}

// Resolve produces the endpoint address, checking each source only if the
// prior one yielded nothing: environment, persisted file, interactive
// prompt, loopback fallback. The winning value is exported to the
// environment so that every launched service inherits it. Resolve never
// fails; the worst case is the loopback default plus a warning.
func (r *Resolver) Resolve() Endpoint {
	if addr := os.Getenv(EnvVar); addr != "" {
		return Endpoint{Address: addr, Source: SourceEnv}
	}

	path := r.configPath()
	if path != "" {
		addr, err := Read(path)
		if err != nil {
			fmt.Fprintf(r.output(), "Warning: %v\n", err)
		} else if addr != "" {
			os.Setenv(EnvVar, addr)
			return Endpoint{Address: addr, Source: SourceFile}
		}
	}

	if r.isInteractive() {
		if addr, ok := r.prompt(path); ok {
			os.Setenv(EnvVar, addr)
			return Endpoint{Address: addr, Source: SourcePrompt}
		}
	}

	fmt.Fprintf(r.output(), "Warning: %s is not configured; falling back to %s\n", EnvVar, DefaultAddress)
	os.Setenv(EnvVar, DefaultAddress)
	if path != "" {
		if err := Write(path, DefaultAddress); err != nil {
			fmt.Fprintf(r.output(), "Warning: unable to persist central logging address: %v\n", err)
		}
	}
	return Endpoint{Address: DefaultAddress, Source: SourceFallback}
}

func (r *Resolver) prompt(path string) (string, bool) {
	in := bufio.NewReader(r.input())
	out := r.output()

	fmt.Fprintf(out, "%s is not set. Configure centralized logging? [y/N]: ", EnvVar)
	answer, err := in.ReadString('\n')
	if err != nil {
		return "", false
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return "", false
	}

	fmt.Fprintf(out, "Central logging address [%s]: ", DefaultAddress)
	line, err := in.ReadString('\n')
	if err != nil {
		return "", false
	}
	addr := strings.TrimSpace(line)
	if addr == "" {
		addr = DefaultAddress
	}

	if path != "" {
		if err := Write(path, addr); err != nil {
			fmt.Fprintf(out, "Warning: unable to persist central logging address: %v\n", err)
		}
	}
	return addr, true
}

func (r *Resolver) configPath() string {
	if r.Path != "" {
		return r.Path
	}
	path, err := ConfigPath()
	if err != nil {
		fmt.Fprintf(r.output(), "Warning: %v\n", err)
		return ""
	}
	return path
}

func (r *Resolver) isInteractive() bool {
	if r.interactive != nil {
		return r.interactive()
	}
	f, ok := r.input().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (r *Resolver) input() io.Reader {
	if r.Input != nil {
		return r.Input
	}
	return os.Stdin
}

func (r *Resolver) output() io.Writer {
	if r.Output != nil {
		return r.Output
	}
	return os.Stderr
}
