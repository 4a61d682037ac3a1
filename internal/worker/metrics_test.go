package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findFamily(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	return nil
}

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	fam := findFamily(t, name)
	if fam == nil {
		t.Fatalf("metric family %q not found", name)
	}
	for _, m := range fam.GetMetric() {
		if matchLabels(m, labels) {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, want map[string]string) bool {
	n := 0
	for _, lp := range m.GetLabel() {
		if v, ok := want[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			n++
		}
	}
	return n == len(want)
}

func TestMetricsRegistered(t *testing.T) {
	// Vec families only show up in Gather once a child exists.
	jobsTotal.WithLabelValues("metrics-registered", outcomeExecuted)
	workersAlive.WithLabelValues("metrics-registered")
	workerDeaths.WithLabelValues("metrics-registered")
	queueDepth.WithLabelValues("metrics-registered")
	generateSeconds.WithLabelValues("metrics-registered")

	for _, name := range []string{
		"voxstream_worker_jobs_total",
		"voxstream_worker_alive",
		"voxstream_worker_deaths_total",
		"voxstream_worker_queue_depth",
		"voxstream_worker_generate_seconds",
	} {
		if findFamily(t, name) == nil {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestJobOutcomesCounted(t *testing.T) {
	const pool = "metrics-outcomes"
	p := NewPool[int, int, int](pool, 1, func(int) GenerateFunc[int, int, int] {
		return func(key int, _ int) (int, error) { return key, nil }
	}, nil)
	defer p.Close()

	skipped, skippedTk := NewJob[int, int, int](1, 0)
	skippedTk.Cancel()
	ran, ranTk := NewJob[int, int, int](2, 0)
	for _, j := range []Job[int, int, int]{skipped, ran} {
		if err := p.Dispatch(j); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := ranTk.Poll(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never completed")
		}
		time.Sleep(time.Millisecond)
	}

	if got := counterValue(t, "voxstream_worker_jobs_total", map[string]string{"pool": pool, "outcome": outcomeExecuted}); got != 1 {
		t.Errorf("executed = %v, want 1", got)
	}
	if got := counterValue(t, "voxstream_worker_jobs_total", map[string]string{"pool": pool, "outcome": outcomeSkipped}); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
}
