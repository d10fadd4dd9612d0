package osm2street

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type WarningKind uint16

const (
	WARNING_SKIPPED_LOOP = WarningKind(iota + 1)
	WARNING_SKIPPED_BROKEN_GEOMETRY
	WARNING_SKIPPED_MISSING_INTERSECTION
	WARNING_FALLBACK_TRIM
	WARNING_GEOMETRY_FAILURE
	WARNING_POLYGON_REPAIRED
	WARNING_BUILDING_ZERO_LENGTH_PATH
	WARNING_BUILDING_NO_SIDEWALK
	WARNING_BROKEN_SHAPE
)

func (iotaIdx WarningKind) String() string {
	return [...]string{
		"skipped_loop",
		"skipped_broken_geometry",
		"skipped_missing_intersection",
		"fallback_trim",
		"geometry_failure",
		"polygon_repaired",
		"building_zero_length_path",
		"building_no_sidewalk",
		"broken_shape",
	}[iotaIdx-1]
}

// Warning is single recoverable problem
type Warning struct {
	Kind    WarningKind
	Subject string
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Subject, w.Reason)
}

// Diagnostics aggregates recoverable problems of the single run.
// It is safe to report into it from several goroutines
type Diagnostics struct {
	mu       sync.Mutex
	logger   *zap.Logger
	warnings []Warning
	counts   map[WarningKind]int
}

// NewDiagnostics returns empty Diagnostics which also logs every report with given logger
func NewDiagnostics(logger *zap.Logger) *Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostics{
		logger: logger,
		counts: make(map[WarningKind]int),
	}
}

// Report registers warning
func (d *Diagnostics) Report(kind WarningKind, subject fmt.Stringer, reason string) {
	d.report(Warning{Kind: kind, Subject: subject.String(), Reason: reason})
}

func (d *Diagnostics) report(w Warning) {
	d.logger.Warn("recoverable problem",
		zap.Stringer("kind", w.Kind),
		zap.String("subject", w.Subject),
		zap.String("reason", w.Reason),
	)
	d.mu.Lock()
	d.warnings = append(d.warnings, w)
	d.counts[w.Kind]++
	d.mu.Unlock()
}

// Count returns number of warnings of given kind
func (d *Diagnostics) Count(kind WarningKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[kind]
}

// Warnings returns all warnings sorted by kind and subject
func (d *Diagnostics) Warnings() []Warning {
	d.mu.Lock()
	result := make([]Warning, len(d.warnings))
	copy(result, d.warnings)
	d.mu.Unlock()
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].Subject < result[j].Subject
	})
	return result
}

// Summary renders counters and warnings as human-readable text
func (d *Diagnostics) Summary() string {
	warnings := d.Warnings()
	if len(warnings) == 0 {
		return "No problems found\n"
	}
	var sb strings.Builder
	d.mu.Lock()
	kinds := make([]WarningKind, 0, len(d.counts))
	for kind := range d.counts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		fmt.Fprintf(&sb, "%s: %d\n", kind, d.counts[kind])
	}
	d.mu.Unlock()
	for _, w := range warnings {
		fmt.Fprintf(&sb, "- %s\n", w)
	}
	return sb.String()
}
