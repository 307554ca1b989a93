// Package metrics provides performance tracking for Lasso using Prometheus
// metrics. It offers collectors for the indicators that matter to connector
// workloads: commands submitted, command latency, rows moved by transfers,
// and live client handles.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("mysql")
//	timer := metrics.NewTimer("run")
//	err := doRun()
//	collector.ObserveCommand("run", timer.Stop(), err)
//
// Metrics are registered automatically via promauto; the host runtime decides
// whether and where to expose them.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal tracks commands submitted through hooks.
	// Labels: hook (connection type), operation, status (success/failure)
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lasso_commands_total",
			Help: "Total number of commands submitted through hooks",
		},
		[]string{"hook", "operation", "status"},
	)

	// CommandLatency tracks the distribution of command latencies in seconds.
	// Labels: hook, operation
	CommandLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lasso_command_latency_seconds",
			Help:    "Command latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"hook", "operation"},
	)

	// ActiveHandles tracks live client handles per hook type.
	ActiveHandles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lasso_active_handles",
			Help: "Number of live client handles",
		},
		[]string{"hook"},
	)

	// RowsMoved tracks rows moved by transfer actions.
	// Labels: source, destination, mode (bulk/rows)
	RowsMoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lasso_rows_moved_total",
			Help: "Total number of rows moved by transfers",
		},
		[]string{"source", "destination", "mode"},
	)
)

// Collector provides a per-component metrics recording interface. Each hook
// owns one collector, labeled with the hook's connection type.
type Collector struct {
	name      string
	startTime time.Time
	commands  int64
	failures  int64
	mu        sync.RWMutex
}

// NewCollector creates a new metrics collector for a component.
func NewCollector(name string) *Collector {
	return &Collector{
		name:      name,
		startTime: time.Now(),
	}
}

// ObserveCommand records one command submission: its latency and outcome.
func (c *Collector) ObserveCommand(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	CommandsTotal.WithLabelValues(c.name, operation, status).Inc()
	CommandLatency.WithLabelValues(c.name, operation).Observe(duration.Seconds())

	c.mu.Lock()
	c.commands++
	if err != nil {
		c.failures++
	}
	c.mu.Unlock()
}

// HandleOpened records a new live client handle.
func (c *Collector) HandleOpened() {
	ActiveHandles.WithLabelValues(c.name).Inc()
}

// HandleClosed records a released client handle.
func (c *Collector) HandleClosed() {
	ActiveHandles.WithLabelValues(c.name).Dec()
}

// GetAll returns all current metric values for the component.
func (c *Collector) GetAll() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"component": c.name,
		"commands":  c.commands,
		"failures":  c.failures,
		"uptime":    time.Since(c.startTime).Seconds(),
	}
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop stops the timer and returns the elapsed duration since creation.
// The timer can be stopped multiple times, each returning the total
// elapsed time since creation.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
