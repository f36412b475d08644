package stack

import (
	"fmt"
	"time"
)

// Logical names of the managed services. The stack is fixed: the supervisor
// understands exactly these three and nothing else.
const (
	ServiceLogServer       = "log-server"
	ServiceSignalingServer = "signaling-server"
	ServiceReceiver        = "receiver"
)

// KnownServices returns the managed service names in launch order: the two
// prerequisites first, then the receiver.
func KnownServices() []string {
	return []string{ServiceLogServer, ServiceSignalingServer, ServiceReceiver}
}

// Defaults applied when a manifest omits a value.
const (
	DefaultSettleDelay  = 2 * time.Second
	DefaultSignalingURL = "ws://localhost:8000"
	DefaultRoom         = "testroom"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// File mirrors the castup.yaml document structure.
type File struct {
	Version  string              `yaml:"version"`
	Stack    Meta                `yaml:"stack"`
	Settings Settings            `yaml:"settings"`
	Services map[string]*Service `yaml:"services"`
}

// Meta contains metadata about the stack document.
type Meta struct {
	Name string `yaml:"name"`
}

// Settings captures run-wide tunables.
type Settings struct {
	SettleDelay Duration `yaml:"settleDelay"`
	Signaling   string   `yaml:"signaling"`
	Room        string   `yaml:"room"`
}

// Service describes how one managed service is launched.
type Service struct {
	Command []string          `yaml:"command"`
	Env     map[string]string `yaml:"env"`
	Workdir string            `yaml:"workdir"`
}

// Clone creates a deep copy of the service definition.
func (s *Service) Clone() *Service {
	if s == nil {
		return nil
	}
	cp := &Service{Workdir: s.Workdir}
	if len(s.Command) > 0 {
		cp.Command = append([]string(nil), s.Command...)
	}
	if len(s.Env) > 0 {
		cp.Env = make(map[string]string, len(s.Env))
		for k, v := range s.Env {
			cp.Env[k] = v
		}
	}
	return cp
}
