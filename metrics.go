package osm2street

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics bundles Prometheus metrics of the conversion
type Metrics struct {
	gatherer prometheus.Gatherer

	RoadsSkipped          *prometheus.CounterVec
	BuildingsDropped      *prometheus.CounterVec
	IntersectionAnomalies *prometheus.CounterVec
	PhaseDuration         *prometheus.HistogramVec

	MapRoads         prometheus.Gauge
	MapIntersections prometheus.Gauge
	MapBuildings     prometheus.Gauge
}

// NewMetrics registers conversion metrics against the provided registerer, defaulting to the global registry when nil
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	roadsSkipped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "osm2street_roads_skipped_total",
		Help: "Number of raw roads skipped during graph construction, labeled by reason.",
	}, []string{"reason"}), "osm2street_roads_skipped_total")
	if err != nil {
		return nil, err
	}
	buildingsDropped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "osm2street_buildings_dropped_total",
		Help: "Number of buildings not connected to the network, labeled by reason.",
	}, []string{"reason"}), "osm2street_buildings_dropped_total")
	if err != nil {
		return nil, err
	}
	anomalies, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "osm2street_intersection_anomalies_total",
		Help: "Number of degraded geometry results, labeled by kind.",
	}, []string{"kind"}), "osm2street_intersection_anomalies_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "osm2street_phase_duration_seconds",
		Help:    "Duration of conversion phases in seconds.",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"phase"}), "osm2street_phase_duration_seconds")
	if err != nil {
		return nil, err
	}
	roads, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "osm2street_map_roads",
		Help: "Number of roads in the finalized map.",
	}), "osm2street_map_roads")
	if err != nil {
		return nil, err
	}
	intersections, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "osm2street_map_intersections",
		Help: "Number of intersections in the finalized map.",
	}), "osm2street_map_intersections")
	if err != nil {
		return nil, err
	}
	buildings, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "osm2street_map_buildings",
		Help: "Number of buildings connected to the map.",
	}), "osm2street_map_buildings")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:              gatherer,
		RoadsSkipped:          roadsSkipped,
		BuildingsDropped:      buildingsDropped,
		IntersectionAnomalies: anomalies,
		PhaseDuration:         durations,
		MapRoads:              roads,
		MapIntersections:      intersections,
		MapBuildings:          buildings,
	}, nil
}

// observeWarnings adds counts of diagnostics collected since previous call. Nil receiver is allowed
func (mt *Metrics) observeWarnings(diag *Diagnostics, seen map[WarningKind]int) {
	if mt == nil {
		return
	}
	for _, kind := range []WarningKind{
		WARNING_SKIPPED_LOOP, WARNING_SKIPPED_BROKEN_GEOMETRY, WARNING_SKIPPED_MISSING_INTERSECTION,
		WARNING_FALLBACK_TRIM, WARNING_GEOMETRY_FAILURE, WARNING_POLYGON_REPAIRED,
		WARNING_BUILDING_ZERO_LENGTH_PATH, WARNING_BUILDING_NO_SIDEWALK,
	} {
		delta := diag.Count(kind) - seen[kind]
		if delta <= 0 {
			continue
		}
		seen[kind] += delta
		switch kind {
		case WARNING_SKIPPED_LOOP, WARNING_SKIPPED_BROKEN_GEOMETRY, WARNING_SKIPPED_MISSING_INTERSECTION:
			mt.RoadsSkipped.WithLabelValues(kind.String()).Add(float64(delta))
		case WARNING_BUILDING_ZERO_LENGTH_PATH, WARNING_BUILDING_NO_SIDEWALK:
			mt.BuildingsDropped.WithLabelValues(kind.String()).Add(float64(delta))
		default:
			mt.IntersectionAnomalies.WithLabelValues(kind.String()).Add(float64(delta))
		}
	}
}

func (mt *Metrics) observePhase(phase string, seconds float64) {
	if mt == nil {
		return
	}
	mt.PhaseDuration.WithLabelValues(phase).Observe(seconds)
}

func (mt *Metrics) setMapCounts(roads, intersections, buildings int) {
	if mt == nil {
		return
	}
	mt.MapRoads.Set(float64(roads))
	mt.MapIntersections.Set(float64(intersections))
	mt.MapBuildings.Set(float64(buildings))
}

// WriteText dumps gathered metrics in the text exposition format
func (mt *Metrics) WriteText(w io.Writer) error {
	families, err := mt.gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "Can't gather metrics")
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Wrapf(err, "Can't write metric family %s", family.GetName())
		}
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("Collector %s is already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("Collector %s is already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, errors.Errorf("Collector %s is already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
