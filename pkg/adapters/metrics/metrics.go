// Package metrics records pipeline measurements with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/framecast/pkg/ports"
)

// Metrics implements ports.Metrics on a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	framesExtracted prometheus.Counter
	stillBytes      prometheus.Counter
	extractSeconds  prometheus.Histogram
	framesCommitted prometheus.Counter
	mediaSeconds    prometheus.Counter
	clustersWritten prometheus.Counter
	clusterBytes    prometheus.Counter
	runsTotal       *prometheus.CounterVec
	outputBytes     prometheus.Gauge
	runSeconds      prometheus.Gauge
}

// New creates and registers the framecast metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		framesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framecast_frames_extracted_total",
			Help: "Still images turned into keyframes",
		}),
		stillBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framecast_still_bytes_total",
			Help: "Bytes of still image input read",
		}),
		extractSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "framecast_extract_seconds",
			Help:    "Time to load and extract one still image",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		framesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framecast_frames_committed_total",
			Help: "Keyframes accepted by the container writer",
		}),
		mediaSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framecast_media_seconds_total",
			Help: "Summed display duration of committed frames",
		}),
		clustersWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framecast_clusters_written_total",
			Help: "Clusters in finished containers",
		}),
		clusterBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framecast_cluster_bytes_total",
			Help: "Bytes of finished clusters",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "framecast_runs_total",
			Help: "Completed runs by outcome",
		}, []string{"outcome"}),
		outputBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "framecast_output_bytes",
			Help: "Size of the last output file",
		}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "framecast_run_seconds",
			Help: "Wall time of the last run",
		}),
	}

	registry.MustRegister(
		m.framesExtracted,
		m.stillBytes,
		m.extractSeconds,
		m.framesCommitted,
		m.mediaSeconds,
		m.clustersWritten,
		m.clusterBytes,
		m.runsTotal,
		m.outputBytes,
		m.runSeconds,
	)
	return m
}

func (m *Metrics) FrameExtracted(bytes int, elapsed time.Duration) {
	m.framesExtracted.Inc()
	m.stillBytes.Add(float64(bytes))
	m.extractSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) FrameCommitted(durationMs float64) {
	m.framesCommitted.Inc()
	m.mediaSeconds.Add(durationMs / 1000)
}

func (m *Metrics) ClusterWritten(blocks int, bytes int) {
	m.clustersWritten.Inc()
	m.clusterBytes.Add(float64(bytes))
}

func (m *Metrics) RunFinished(outputBytes int, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runSeconds.Set(elapsed.Seconds())
	if err == nil {
		m.outputBytes.Set(float64(outputBytes))
	}
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler returns an http.Handler that serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ ports.Metrics = (*Metrics)(nil)
