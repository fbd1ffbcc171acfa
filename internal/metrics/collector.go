// Package metrics exposes beacon delivery as Prometheus metrics.
//
// A Collector wraps the beacon transport to time every dispatch and count failures, and subscribes to the tracker
// as an Observer to count delivered beacons by event.  Dispatch latencies are also folded into a t-digest so the
// TUI and the /metrics endpoint can show percentiles without keeping every sample.
package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/influxdata/tdigest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PizzaHomicide/kava/internal/analytics"
)

const digestCompression = 100

// Collector records beacon metrics into its own registry
type Collector struct {
	registry *prometheus.Registry

	beaconsSent      *prometheus.CounterVec
	beaconFailures   *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec

	mu      sync.Mutex
	latency *tdigest.TDigest
	samples int
}

// NewCollector creates a collector with a fresh registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		latency:  tdigest.NewWithCompression(digestCompression),

		beaconsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kava_beacons_sent_total",
				Help: "Beacons delivered to the analytics backend",
			},
			[]string{"event"},
		),
		beaconFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kava_beacon_failures_total",
				Help: "Beacons that could not be delivered after retries",
			},
			[]string{"event"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kava_beacon_dispatch_seconds",
				Help:    "Time taken to dispatch a beacon, retries included",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"event"},
		),
	}

	c.registry.MustRegister(
		c.beaconsSent,
		c.beaconFailures,
		c.dispatchDuration,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "kava_beacon_latency_p50_seconds",
				Help: "Median beacon dispatch latency",
			},
			func() float64 { return c.LatencyQuantile(0.50).Seconds() },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "kava_beacon_latency_p95_seconds",
				Help: "95th percentile beacon dispatch latency",
			},
			func() float64 { return c.LatencyQuantile(0.95).Seconds() },
		),
	)
	return c
}

// Registry returns the registry the collector's metrics live in
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// BeaconSent implements analytics.Observer
func (c *Collector) BeaconSent(name string) {
	c.beaconsSent.WithLabelValues(name).Inc()
}

// LatencyQuantile returns the q-quantile of observed dispatch latencies, or zero before the first sample
func (c *Collector) LatencyQuantile(q float64) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.samples == 0 {
		return 0
	}
	return time.Duration(c.latency.Quantile(q) * float64(time.Second))
}

func (c *Collector) observe(ev analytics.EventType, elapsed time.Duration, err error) {
	name := ev.String()
	c.dispatchDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		c.beaconFailures.WithLabelValues(name).Inc()
	}

	c.mu.Lock()
	c.latency.Add(elapsed.Seconds(), 1)
	c.samples++
	c.mu.Unlock()
}

// Instrument wraps next so every dispatch is timed and failures are counted
func (c *Collector) Instrument(next analytics.Transport) analytics.Transport {
	return &instrumentedTransport{next: next, collector: c}
}

type instrumentedTransport struct {
	next      analytics.Transport
	collector *Collector
}

func (t *instrumentedTransport) Dispatch(ctx context.Context, beacon analytics.Beacon) (analytics.Response, error) {
	start := time.Now()
	resp, err := t.next.Dispatch(ctx, beacon)
	t.collector.observe(beacon.Event, time.Since(start), err)
	return resp, err
}
