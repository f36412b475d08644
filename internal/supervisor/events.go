package supervisor

import (
	"time"

	"github.com/castup/castup/internal/runtime"
)

// EventType captures lifecycle notifications emitted by the supervisor.
type EventType string

const (
	EventTypeStarting EventType = "starting"
	EventTypeStarted  EventType = "started"
	EventTypeStopping EventType = "stopping"
	EventTypeStopped  EventType = "stopped"
	EventTypeLog      EventType = "log"
	EventTypeError    EventType = "error"
)

// Event represents a single lifecycle or log notification.
type Event struct {
	Timestamp time.Time
	Service   string
	Type      EventType
	Message   string
	Level     string
	Source    string
	Err       error
	Reason    string
}

const (
	ReasonInitialStart = "initial_start"
	ReasonStartFailure = "start_failure"
	ReasonProbeTimeout = "probe_timeout"
	ReasonShutdown     = "shutdown"
	ReasonStopFailed   = "stop_failed"
)

func sendEvent(events chan<- Event, service string, t EventType, message string, reason string, err error) {
	if events == nil {
		return
	}
	level := "info"
	if err != nil {
		level = "warn"
	}
	events <- Event{
		Timestamp: time.Now(),
		Service:   service,
		Type:      t,
		Message:   message,
		Level:     level,
		Source:    runtime.LogSourceSystem,
		Err:       err,
		Reason:    reason,
	}
}
