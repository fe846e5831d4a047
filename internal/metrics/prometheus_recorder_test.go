package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherValue(t *testing.T, reg *prom.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestPrometheusRecorder(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.ObserveStageDuration("load_specs", 150*time.Millisecond)
	pr.ObserveStageDuration("load_specs", 50*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("load_specs", ResultSuccess)
	pr.IncBuildOutcome(OutcomeWarning)
	pr.SetSidebarDocs("apiReferenceSidebar", 7)
	pr.SetSidebarDocs("apiReferenceSidebar", 8)
	pr.AddProblems(ProblemBrokenReference, 3)
	pr.AddProblems(ProblemDuplicateID, 0)

	reg := pr.Registry()
	assert.InDelta(t, 2, gatherValue(t, reg, "sidebargen_stage_duration_seconds", map[string]string{"stage": "load_specs"}), 0)
	assert.InDelta(t, 1, gatherValue(t, reg, "sidebargen_build_duration_seconds", nil), 0)
	assert.InDelta(t, 1, gatherValue(t, reg, "sidebargen_stage_results_total", map[string]string{"stage": "load_specs", "result": "success"}), 0)
	assert.InDelta(t, 1, gatherValue(t, reg, "sidebargen_build_outcomes_total", map[string]string{"outcome": "warning"}), 0)
	assert.InDelta(t, 8, gatherValue(t, reg, "sidebargen_sidebar_documents", map[string]string{"sidebar": "apiReferenceSidebar"}), 0)
	assert.InDelta(t, 3, gatherValue(t, reg, "sidebargen_reference_problems_total", map[string]string{"kind": "broken_reference"}), 0)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(prom.NewRegistry())
	pr.IncBuildOutcome(OutcomeSuccess)

	path := filepath.Join(t.TempDir(), "sidebargen.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sidebargen_build_outcomes_total{outcome="success"} 1`)
}

func TestNoopRecorderSatisfiesRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("x", time.Second)
	r.IncBuildOutcome(OutcomeFailed)
	r.AddProblems(ProblemContentConflict, 1)
}
