// Package metrics turns run events into Prometheus metrics and writes them
// in the text exposition format once a run is over.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Iron-Ham/eigenbench/internal/event"
)

const namespace = "eigenbench"

// Collector owns a private registry fed from an event.Bus.
type Collector struct {
	registry *prometheus.Registry

	tasks       *prometheus.CounterVec
	chunks      *prometheus.CounterVec
	chunkSize   prometheus.Histogram
	taskSeconds *prometheus.HistogramVec
	failures    prometheus.Counter
	runSeconds  prometheus.Gauge
	workers     prometheus.Gauge
	taskCount   prometheus.Gauge

	mu   sync.Mutex
	bus  *event.Bus
	subs []string
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Tasks completed, by worker.",
		}, []string{"worker"}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_claimed_total",
			Help:      "Chunks claimed from the scheduler, by worker.",
		}, []string{"worker"}),
		chunkSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_size",
			Help:      "Number of task indices per claimed chunk.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		taskSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of a single task, by matrix order.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"order"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_failures_total",
			Help:      "Tasks that returned a fatal error.",
		}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_wall_seconds",
			Help:      "Wall time of the distribution phase.",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Worker count of the run.",
		}),
		taskCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks",
			Help:      "Number of tasks in the run.",
		}),
	}
	c.registry.MustRegister(
		c.tasks, c.chunks, c.chunkSize, c.taskSeconds,
		c.failures, c.runSeconds, c.workers, c.taskCount,
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Attach subscribes the collector to bus. Attaching twice replaces the
// previous subscription.
func (c *Collector) Attach(bus *event.Bus) {
	c.Detach()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = bus
	c.subs = []string{
		bus.Subscribe(event.TypeRunStarted, c.onRunStarted),
		bus.Subscribe(event.TypeChunkClaimed, c.onChunkClaimed),
		bus.Subscribe(event.TypeTaskCompleted, c.onTaskCompleted),
		bus.Subscribe(event.TypeTaskFailed, c.onTaskFailed),
		bus.Subscribe(event.TypeRunCompleted, c.onRunCompleted),
	}
}

// Detach removes the collector's subscriptions.
func (c *Collector) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return
	}
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
	c.bus, c.subs = nil, nil
}

func (c *Collector) onRunStarted(e event.Event) {
	ev, ok := e.(event.RunStartedEvent)
	if !ok {
		return
	}
	c.workers.Set(float64(ev.Workers))
	c.taskCount.Set(float64(ev.Tasks))
}

func (c *Collector) onChunkClaimed(e event.Event) {
	ev, ok := e.(event.ChunkClaimedEvent)
	if !ok {
		return
	}
	c.chunks.WithLabelValues(strconv.Itoa(ev.Worker)).Inc()
	c.chunkSize.Observe(float64(ev.Len()))
}

func (c *Collector) onTaskCompleted(e event.Event) {
	ev, ok := e.(event.TaskCompletedEvent)
	if !ok {
		return
	}
	c.tasks.WithLabelValues(strconv.Itoa(ev.Worker)).Inc()
	c.taskSeconds.WithLabelValues(strconv.Itoa(ev.ProblemSize)).Observe(ev.Duration.Seconds())
}

func (c *Collector) onTaskFailed(event.Event) {
	c.failures.Inc()
}

func (c *Collector) onRunCompleted(e event.Event) {
	ev, ok := e.(event.RunCompletedEvent)
	if !ok {
		return
	}
	c.runSeconds.Set(ev.Elapsed.Seconds())
}

// Write gathers the registry and writes it in the Prometheus text format.
func (c *Collector) Write(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
