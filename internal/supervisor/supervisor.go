// Package supervisor owns the lifecycle of the managed service stack: it
// launches the services in dependency order, tracks their process handles,
// waits for a termination trigger and performs one coordinated shutdown.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/castup/castup/internal/metrics"
	"github.com/castup/castup/internal/probe"
	"github.com/castup/castup/internal/runtime"
	"github.com/castup/castup/internal/stack"
)

const (
	readyProbeInterval = 100 * time.Millisecond
	stragglerStopGrace = 5 * time.Second
)

// Trigger identifies which event source initiated shutdown.
type Trigger string

const (
	TriggerOperator Trigger = "operator"
	TriggerSignal   Trigger = "signal"
)

// Options tune a supervised run.
type Options struct {
	// SettleDelay is the pause between starting the signaling server and
	// starting the receiver. Zero means the manifest value.
	SettleDelay time.Duration
	// Signaling and Room are passed to the receiver. Empty means the
	// manifest value.
	Signaling string
	Room      string

	// WaitReady replaces the fixed settle delay with a TCP probe of
	// ReadyAddr, bounded by ReadyTimeout. On probe timeout the receiver is
	// launched anyway.
	WaitReady    bool
	ReadyAddr    string
	ReadyTimeout time.Duration
}

// ProcInfo describes one tracked process.
type ProcInfo struct {
	Name string
	Pid  int
}

// Supervisor launches and tracks the managed services of a single run.
type Supervisor struct {
	doc    *stack.File
	rt     runtime.Runtime
	events chan<- Event
	opts   Options

	sleep     func(context.Context, time.Duration) error
	waitReady func(context.Context, string) error

	mu       sync.Mutex
	procs    []trackedProc
	stopping bool

	stopOnce sync.Once
	logWG    sync.WaitGroup
}

type trackedProc struct {
	name   string
	handle runtime.Handle
}

// New constructs a supervisor for the provided stack. Zero-valued options
// fall back to the manifest settings.
func New(doc *stack.File, rt runtime.Runtime, events chan<- Event, opts Options) *Supervisor {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = doc.Settings.SettleDelay.Duration
	}
	if opts.Signaling == "" {
		opts.Signaling = doc.Settings.Signaling
	}
	if opts.Room == "" {
		opts.Room = doc.Settings.Room
	}
	sup := &Supervisor{
		doc:    doc,
		rt:     rt,
		events: events,
		opts:   opts,
	}
	sup.sleep = sleepWithContext
	sup.waitReady = func(ctx context.Context, addr string) error {
		return probe.WaitReady(ctx, addr, readyProbeInterval)
	}
	return sup
}

// Launch brings the stack up: the log server and signaling server start
// concurrently, then the receiver after the settle delay. Launch returns an
// error only when the context is cancelled mid-sequence; individual start
// failures are reported as events and do not abort the run.
func (s *Supervisor) Launch(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, name := range []string{stack.ServiceLogServer, stack.ServiceSignalingServer} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			s.launch(ctx, name, nil)
		}(name)
	}
	wg.Wait()

	if err := s.settle(ctx); err != nil {
		return err
	}

	s.launch(ctx, stack.ServiceReceiver, []string{
		"--signaling", s.opts.Signaling,
		"--room", s.opts.Room,
	})
	return ctx.Err()
}

// settle gives the signaling server time to begin accepting connections
// before the receiver dials it. The fixed delay is best-effort and accepts
// a race with an abnormally slow listener; the probing variant trades that
// simplicity for an explicit readiness signal.
func (s *Supervisor) settle(ctx context.Context) error {
	if s.opts.WaitReady && s.opts.ReadyAddr != "" {
		probeCtx := ctx
		if s.opts.ReadyTimeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, s.opts.ReadyTimeout)
			defer cancel()
		}
		if err := s.waitReady(probeCtx, s.opts.ReadyAddr); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			sendEvent(s.events, stack.ServiceSignalingServer, EventTypeError,
				"signaling server not accepting connections; launching receiver anyway",
				ReasonProbeTimeout, err)
		}
		return nil
	}
	return s.sleep(ctx, s.opts.SettleDelay)
}

func (s *Supervisor) launch(ctx context.Context, name string, extraArgs []string) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	svc, ok := s.doc.Services[name]
	if !ok || svc == nil {
		sendEvent(s.events, name, EventTypeError, "service missing from stack", ReasonStartFailure, nil)
		return
	}

	command := append([]string(nil), svc.Command...)
	command = append(command, extraArgs...)
	spec := runtime.StartSpec{
		Name:    name,
		Command: command,
		Env:     svc.Env,
		Workdir: svc.Workdir,
	}

	sendEvent(s.events, name, EventTypeStarting, "starting service", ReasonInitialStart, nil)
	handle, err := s.rt.Start(ctx, spec)
	if err != nil {
		// The original launcher could not observe a failed spawn: a service
		// that never came up was indistinguishable from one that exited
		// immediately. Reporting the spawn error while keeping the run alive
		// is a deliberate change from that behavior.
		sendEvent(s.events, name, EventTypeError, "start failed", ReasonStartFailure, err)
		return
	}

	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		// Shutdown won the race; stop the straggler immediately.
		stopCtx, cancel := context.WithTimeout(context.Background(), stragglerStopGrace)
		defer cancel()
		_ = handle.Stop(stopCtx)
		return
	}
	s.procs = append(s.procs, trackedProc{name: name, handle: handle})
	s.mu.Unlock()

	metrics.AddProcessStart(name)
	sendEvent(s.events, name, EventTypeStarted, fmt.Sprintf("started pid %d", handle.Pid()), ReasonInitialStart, nil)

	if logs := handle.Logs(); logs != nil {
		s.logWG.Add(1)
		go s.streamLogs(name, logs)
	}
}

// Wait blocks until a termination trigger arrives: an operator stop request
// on the provided channel, or cancellation of the context (wired to
// SIGINT/SIGTERM at the entrypoint). There is deliberately no timeout; the
// operator decides when the run ends.
func (s *Supervisor) Wait(ctx context.Context, operator <-chan struct{}) Trigger {
	select {
	case <-ctx.Done():
		return TriggerSignal
	case <-operator:
		return TriggerOperator
	}
}

// Shutdown issues a best-effort stop request to every tracked process, the
// receiver first and its prerequisites after. Already-exited targets are not
// errors. The routine runs at most once; later invocations are no-ops.
func (s *Supervisor) Shutdown(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopping = true
		procs := make([]trackedProc, len(s.procs))
		copy(procs, s.procs)
		s.mu.Unlock()

		for i := len(procs) - 1; i >= 0; i-- {
			p := procs[i]
			sendEvent(s.events, p.name, EventTypeStopping, "stopping service", ReasonShutdown, nil)
			if err := p.handle.Stop(ctx); err != nil {
				sendEvent(s.events, p.name, EventTypeError, "stop failed", ReasonStopFailed, err)
				continue
			}
			sendEvent(s.events, p.name, EventTypeStopped, "service stopped", ReasonShutdown, nil)
		}

		s.mu.Lock()
		s.procs = nil
		s.mu.Unlock()
	})
}

// Procs returns the currently tracked processes in launch order.
func (s *Supervisor) Procs() []ProcInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProcInfo, 0, len(s.procs))
	for _, p := range s.procs {
		out = append(out, ProcInfo{Name: p.name, Pid: p.handle.Pid()})
	}
	return out
}

// Drain blocks until all log-streaming goroutines have finished. Callers
// close the event channel only after Drain returns.
func (s *Supervisor) Drain() {
	s.logWG.Wait()
}

func (s *Supervisor) streamLogs(name string, logs <-chan runtime.LogEntry) {
	defer s.logWG.Done()
	for entry := range logs {
		if entry.Message == "" {
			continue
		}
		s.events <- normalizeLog(name, entry)
	}
}

func normalizeLog(name string, entry runtime.LogEntry) Event {
	level := entry.Level
	source := entry.Source
	if source == "" {
		source = runtime.LogSourceStdout
	}
	if level == "" {
		if source == runtime.LogSourceStderr {
			level = "warn"
		} else {
			level = "info"
		}
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Event{
		Timestamp: ts,
		Service:   name,
		Type:      EventTypeLog,
		Message:   entry.Message,
		Level:     level,
		Source:    source,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
