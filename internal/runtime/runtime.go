package runtime

import (
	"context"
	"time"
)

// Log sources attached to entries emitted by runtime handles.
const (
	LogSourceStdout = "stdout"
	LogSourceStderr = "stderr"
	LogSourceSystem = "system"
)

// LogEntry is a single line captured from a managed process.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Source    string
	Level     string
}

// StartSpec describes a service to be launched.
type StartSpec struct {
	Name    string
	Command []string
	Env     map[string]string
	Workdir string
}

// Handle represents a single launched service tracked by the supervisor.
type Handle interface {
	// Pid returns the operating system identifier of the launched process.
	Pid() int

	// Stop requests termination of the process. Implementations must be
	// idempotent and must treat an already-exited target as success.
	Stop(ctx context.Context) error

	// Logs returns a channel of captured output lines. The channel is
	// closed once the process has exited and its pipes are drained. A nil
	// channel indicates the runtime does not stream output.
	Logs() <-chan LogEntry
}

// Runtime describes a backend capable of launching services.
type Runtime interface {
	// Start launches the described service in the background and returns a
	// handle to it. Start must not wait for the process to exit.
	Start(ctx context.Context, spec StartSpec) (Handle, error)
}
