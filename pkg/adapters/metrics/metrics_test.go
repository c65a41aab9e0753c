package metrics

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counter(t *testing.T, families map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	f, ok := families[name]
	if !ok {
		t.Fatalf("metric %s not found", name)
	}
	return f.GetMetric()[0].GetCounter().GetValue()
}

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.FrameExtracted(1000, 2*time.Millisecond)
	m.FrameExtracted(500, time.Millisecond)
	m.FrameCommitted(1500)
	m.FrameCommitted(500)
	m.ClusterWritten(2, 1600)
	m.RunFinished(2048, time.Second, nil)

	families := gather(t, m)

	if got := counter(t, families, "framecast_frames_extracted_total"); got != 2 {
		t.Errorf("expected 2 extracted frames, got %v", got)
	}
	if got := counter(t, families, "framecast_still_bytes_total"); got != 1500 {
		t.Errorf("expected 1500 still bytes, got %v", got)
	}
	if got := counter(t, families, "framecast_media_seconds_total"); got != 2 {
		t.Errorf("expected 2 media seconds, got %v", got)
	}
	if got := counter(t, families, "framecast_cluster_bytes_total"); got != 1600 {
		t.Errorf("expected 1600 cluster bytes, got %v", got)
	}

	hist := families["framecast_extract_seconds"].GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 2 {
		t.Errorf("expected 2 histogram samples, got %d", hist.GetSampleCount())
	}

	out := families["framecast_output_bytes"].GetMetric()[0].GetGauge().GetValue()
	if out != 2048 {
		t.Errorf("expected output gauge 2048, got %v", out)
	}
}

func TestMetrics_RunOutcomes(t *testing.T) {
	m := New()

	m.RunFinished(100, time.Second, nil)
	m.RunFinished(0, time.Second, errors.New("boom"))

	outcomes := map[string]float64{}
	for _, metric := range gather(t, m)["framecast_runs_total"].GetMetric() {
		outcomes[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}
	if outcomes["success"] != 1 || outcomes["failure"] != 1 {
		t.Errorf("unexpected outcomes %v", outcomes)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.FrameCommitted(40)

	path := filepath.Join(t.TempDir(), "framecast.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "framecast_frames_committed_total 1") {
		t.Errorf("expected committed counter in textfile, got:\n%s", data)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ClusterWritten(3, 10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "framecast_clusters_written_total 1") {
		t.Errorf("expected clusters counter in response")
	}
}

func TestNoop(t *testing.T) {
	n := NewNoop()
	n.FrameExtracted(1, time.Millisecond)
	n.FrameCommitted(1)
	n.ClusterWritten(1, 1)
	n.RunFinished(1, time.Millisecond, nil)
}
