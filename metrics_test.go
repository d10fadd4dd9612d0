package osm2street

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/osm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserveWarnings(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	diag := NewDiagnostics(nil)
	seen := make(map[WarningKind]int)
	diag.Report(WARNING_SKIPPED_LOOP, OriginalRoad{WayID: 1, I1: 2, I2: 2}, "loop")
	diag.Report(WARNING_BUILDING_NO_SIDEWALK, OriginalBuilding{WayID: 3}, "far away")
	diag.Report(WARNING_BUILDING_NO_SIDEWALK, OriginalBuilding{WayID: 4}, "far away")
	metrics.observeWarnings(diag, seen)

	// Second call must add only new warnings
	diag.Report(WARNING_GEOMETRY_FAILURE, OriginalRoad{WayID: 5, I1: 6, I2: 7}, "short")
	metrics.observeWarnings(diag, seen)

	cases := []struct {
		vec     *prometheus.CounterVec
		label   string
		correct float64
	}{
		{metrics.RoadsSkipped, "skipped_loop", 1},
		{metrics.BuildingsDropped, "building_no_sidewalk", 2},
		{metrics.IntersectionAnomalies, "geometry_failure", 1},
	}
	for _, tc := range cases {
		if value := testutil.ToFloat64(tc.vec.WithLabelValues(tc.label)); value != tc.correct {
			t.Errorf("Counter '%s' must be %f, but got %f", tc.label, tc.correct, value)
		}
	}

	var buf bytes.Buffer
	if err := metrics.WriteText(&buf); err != nil {
		t.Error(err)
		return
	}
	if !strings.Contains(buf.String(), `osm2street_buildings_dropped_total{reason="building_no_sidewalk"} 2`) {
		t.Errorf("Text dump must contain dropped buildings counter, but got:\n%s", buf.String())
	}
}

func TestMetricsReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Errorf("Registering twice must reuse collectors, but got error: %v", err)
		return
	}
	if first.RoadsSkipped != second.RoadsSkipped || first.MapRoads != second.MapRoads {
		t.Errorf("Collectors must be shared between instances")
	}
}

func TestMetricsIncompatibleCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "osm2street_roads_skipped_total",
		Help: "Number of raw roads skipped during graph construction, labeled by reason.",
	}, []string{"reason"}))
	_, err := NewMetrics(reg)
	if err == nil {
		t.Errorf("Registering over collector of other type must fail")
		return
	}
	if !strings.Contains(err.Error(), "incompatible type") {
		t.Errorf("Error must mention incompatible type, but got: %v", err)
	}
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics
	metrics.observeWarnings(NewDiagnostics(nil), map[WarningKind]int{})
	metrics.observePhase("build", 1)
	metrics.setMapCounts(1, 2, 3)
}

func TestDiagnostics(t *testing.T) {
	diag := NewDiagnostics(nil)
	if summary := diag.Summary(); summary != "No problems found\n" {
		t.Errorf("Empty summary must be %q, but got %q", "No problems found\n", summary)
	}
	diag.Report(WARNING_FALLBACK_TRIM, OriginalIntersection{NodeID: 9}, "parallel")
	diag.Report(WARNING_SKIPPED_LOOP, OriginalRoad{WayID: osm.WayID(2), I1: 5, I2: 5}, "loop")
	diag.Report(WARNING_FALLBACK_TRIM, OriginalIntersection{NodeID: 1}, "parallel")

	warnings := diag.Warnings()
	correct := []string{"r2 (5->5)", "i1", "i9"}
	if len(warnings) != len(correct) {
		t.Errorf("Number of warnings must be %d, but got %d", len(correct), len(warnings))
		return
	}
	for i, w := range warnings {
		if w.Subject != correct[i] {
			t.Errorf("Warning #%d must be about %s, but got %s", i, correct[i], w.Subject)
		}
	}
	summary := diag.Summary()
	for _, line := range []string{"skipped_loop: 1", "fallback_trim: 2", "- [fallback_trim] i9: parallel"} {
		if !strings.Contains(summary, line) {
			t.Errorf("Summary must contain %q, but got:\n%s", line, summary)
		}
	}
}

func TestParallelize(t *testing.T) {
	items := make([]int, 1000)
	for i := range items {
		items[i] = i
	}
	for _, workers := range []int{0, 1, 7, 5000} {
		squares := parallelize(items, workers, func(x int) int { return x * x })
		if len(squares) != len(items) {
			t.Errorf("Number of results must be %d, but got %d", len(items), len(squares))
			continue
		}
		for i, sq := range squares {
			if sq != i*i {
				t.Errorf("Workers %d: result #%d must be %d, but got %d", workers, i, i*i, sq)
				break
			}
		}
	}
	if empty := parallelize([]int{}, 4, func(x int) int { return x }); len(empty) != 0 {
		t.Errorf("Empty input must produce empty output")
	}
}
