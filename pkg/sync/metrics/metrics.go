// Package metrics implements the Prometheus instrumentation surface (C11):
// counters and gauges tracking bytes transferred, files copied/failed,
// active transactions, retries, and run duration. A nil *Collector is legal
// and a no-op, mirroring the nil-safe-logger pattern used throughout the
// module.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector wraps the Prometheus metric instances registered for one
// module-wide synchronization engine.
type Collector struct {
	bytesTransferred prometheus.Counter
	filesCopied      prometheus.Counter
	filesFailed      prometheus.Counter
	activeTransactions prometheus.Gauge
	retries          *prometheus.CounterVec
	duration         prometheus.Histogram
}

// New constructs a Collector and registers its metrics with registerer.
func New(registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		bytesTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lempicka_sync_bytes_transferred_total",
			Help: "Total bytes copied from source to destination across all runs.",
		}),
		filesCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lempicka_sync_files_copied_total",
			Help: "Total files successfully committed to the destination.",
		}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lempicka_sync_files_failed_total",
			Help: "Total plan items that failed permanently.",
		}),
		activeTransactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lempicka_sync_active_transactions",
			Help: "Number of copy transactions currently in flight.",
		}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lempicka_sync_retries_total",
			Help: "Total retry attempts, labeled by error code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lempicka_sync_duration_seconds",
			Help:    "Wall-clock duration of a completed sync run.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{
		c.bytesTransferred, c.filesCopied, c.filesFailed,
		c.activeTransactions, c.retries, c.duration,
	}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// AddBytesTransferred increments the bytes-transferred counter. A nil
// Collector is a no-op.
func (c *Collector) AddBytesTransferred(n int64) {
	if c == nil {
		return
	}
	c.bytesTransferred.Add(float64(n))
}

// IncFilesCopied increments the files-copied counter.
func (c *Collector) IncFilesCopied() {
	if c == nil {
		return
	}
	c.filesCopied.Inc()
}

// IncFilesFailed increments the files-failed counter.
func (c *Collector) IncFilesFailed() {
	if c == nil {
		return
	}
	c.filesFailed.Inc()
}

// SetActiveTransactions sets the active-transactions gauge.
func (c *Collector) SetActiveTransactions(n int) {
	if c == nil {
		return
	}
	c.activeTransactions.Set(float64(n))
}

// IncRetries increments the retries counter for the given error code.
func (c *Collector) IncRetries(code string) {
	if c == nil {
		return
	}
	c.retries.WithLabelValues(code).Inc()
}

// ObserveDuration records one run's wall-clock duration in seconds.
func (c *Collector) ObserveDuration(seconds float64) {
	if c == nil {
		return
	}
	c.duration.Observe(seconds)
}
