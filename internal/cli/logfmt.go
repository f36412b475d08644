package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/castup/castup/internal/runtime"
	"github.com/castup/castup/internal/supervisor"
)

type logRecord struct {
	Timestamp time.Time `json:"ts"`
	Service   string    `json:"service"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
	Source    string    `json:"source"`
}

func newLogRecord(event supervisor.Event) logRecord {
	level := event.Level
	if level == "" {
		level = "info"
	}
	source := event.Source
	if source == "" {
		source = runtime.LogSourceSystem
	}
	return logRecord{
		Timestamp: event.Timestamp,
		Service:   event.Service,
		Level:     level,
		Message:   event.Message,
		Source:    source,
	}
}

// printEvents renders child log output as JSON records on stdout and
// lifecycle notifications as plain lines, errors going to stderr. It returns
// once the event channel is closed.
func printEvents(stdout, stderr io.Writer, events <-chan supervisor.Event) {
	enc := json.NewEncoder(stdout)
	for event := range events {
		switch event.Type {
		case supervisor.EventTypeLog:
			record := newLogRecord(event)
			if record.Timestamp.IsZero() {
				record.Timestamp = time.Now()
			}
			if err := enc.Encode(&record); err != nil {
				fmt.Fprintf(stderr, "error: encode log: %v\n", err)
			}
		case supervisor.EventTypeError:
			if event.Err != nil {
				fmt.Fprintf(stderr, "%s: %s: %v\n", event.Service, event.Message, event.Err)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", event.Service, event.Message)
			}
		default:
			fmt.Fprintf(stdout, "%s: %s\n", event.Service, event.Message)
		}
	}
}
