package stack

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var defaultCommands = map[string][]string{
	ServiceLogServer:       {"central-log-server"},
	ServiceSignalingServer: {"signaling-server"},
	ServiceReceiver:        {"receiver"},
}

// Default returns the built-in stack used when no manifest is present.
func Default() *File {
	doc := &File{
		Version: "1",
		Stack:   Meta{Name: "screenshare"},
	}
	_ = doc.ApplyDefaults()
	return doc
}

// Parse reads a stack manifest from YAML.
func Parse(r io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc File
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode stack: %w", err)
	}
	if err := doc.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads a stack manifest from the provided path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stack file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ApplyDefaults fills in any service or setting the manifest omitted.
func (f *File) ApplyDefaults() error {
	if f.Services == nil {
		f.Services = make(map[string]*Service, len(defaultCommands))
	}
	for name, cmd := range defaultCommands {
		svc, ok := f.Services[name]
		if !ok || svc == nil {
			f.Services[name] = &Service{Command: append([]string(nil), cmd...)}
			continue
		}
		if len(svc.Command) == 0 {
			svc.Command = append([]string(nil), cmd...)
		}
	}
	if f.Settings.SettleDelay.Duration == 0 {
		f.Settings.SettleDelay.Duration = DefaultSettleDelay
	}
	if f.Settings.Signaling == "" {
		f.Settings.Signaling = DefaultSignalingURL
	}
	if f.Settings.Room == "" {
		f.Settings.Room = DefaultRoom
	}
	if f.Stack.Name == "" {
		f.Stack.Name = "screenshare"
	}
	return nil
}

// Validate enforces schema invariants.
func (f *File) Validate() error {
	if f.Version == "" {
		return fmt.Errorf("version is required")
	}
	for name, svc := range f.Services {
		if _, ok := defaultCommands[name]; !ok {
			return fmt.Errorf("unknown service %q; supervised services are %v", name, KnownServices())
		}
		if svc == nil {
			return fmt.Errorf("service %q is null", name)
		}
		if len(svc.Command) == 0 {
			return fmt.Errorf("service %s missing command", name)
		}
	}
	if f.Settings.SettleDelay.Duration <= 0 {
		return fmt.Errorf("settle delay must be positive")
	}
	if f.Settings.Signaling == "" {
		return fmt.Errorf("signaling URL must not be empty")
	}
	if f.Settings.Room == "" {
		return fmt.Errorf("room must not be empty")
	}
	return nil
}
