package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	processStarts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "castup",
		Name:      "process_starts_total",
		Help:      "Total number of managed processes started, by service.",
	}, []string{"service"})

	shutdownTriggers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "castup",
		Name:      "shutdown_triggers_total",
		Help:      "Total number of shutdowns initiated, by trigger source.",
	}, []string{"trigger"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "castup",
		Name:      "build_info",
		Help:      "Build metadata for the running castup binary.",
	}, []string{"go_version", "vcs_revision", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(processStarts, shutdownTriggers, buildInfo)
}

// Registry returns the Prometheus registry containing all castup metrics.
func Registry() *prometheus.Registry {
	return registry
}

// AddProcessStart increments the start counter for a service.
func AddProcessStart(service string) {
	if service == "" {
		return
	}
	processStarts.WithLabelValues(service).Inc()
}

// AddShutdownTrigger records which trigger source initiated shutdown.
func AddShutdownTrigger(trigger string) {
	if trigger == "" {
		trigger = "unknown"
	}
	shutdownTriggers.WithLabelValues(trigger).Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs_revision": "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
