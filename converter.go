package osm2street

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/LdDl/osm2street"

// Converter runs the whole pipeline: graph construction, intersection synthesis, finalization and buildings matching
type Converter struct {
	drivingSide   DrivingSide
	matchOptions  MatchOptions
	geometryOpts  GeometryOptions
	laneSpecifier LaneSpecifier
	logger        *zap.Logger
	metrics       *Metrics
	tracer        trace.Tracer
}

func (conv *Converter) String() string {
	return fmt.Sprintf(`
Converter parameters:
	driving_side: '%s'
	sidewalk_buffer: %f
	max_search_radius: %f
	sample_spacing: %f
	search_strategy: '%s'
	workers: %d
	parallel_tolerance: %f
	max_trim_factor: %f
	min_road_length: %f
	through_trim: %f
	max_through_bend: %f
	metrics enabled?: %t
	`,
		conv.drivingSide,
		conv.matchOptions.Buffer,
		conv.matchOptions.MaxRadius,
		conv.matchOptions.SampleSpacing,
		conv.matchOptions.Strategy,
		conv.matchOptions.Workers,
		conv.geometryOpts.ParallelTolerance,
		conv.geometryOpts.MaxTrimFactor,
		conv.geometryOpts.MinRoadLength,
		conv.geometryOpts.ThroughTrim,
		conv.geometryOpts.MaxThroughBend,
		conv.metrics != nil,
	)
}

// NewConverter returns converter with default settings modified by options
func NewConverter(options ...func(*Converter)) *Converter {
	conv := &Converter{
		matchOptions:  DefaultMatchOptions(),
		geometryOpts:  DefaultGeometryOptions(),
		laneSpecifier: DefaultLaneSpecs,
		logger:        zap.NewNop(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, option := range options {
		option(conv)
	}
	return conv
}

// WithDrivingSide overrides driving side of the raw map
func WithDrivingSide(side DrivingSide) func(*Converter) {
	return func(conv *Converter) {
		conv.drivingSide = side
	}
}

func WithSidewalkBuffer(buffer float64) func(*Converter) {
	return func(conv *Converter) {
		conv.matchOptions.Buffer = buffer
	}
}

func WithMaxSearchRadius(radius float64) func(*Converter) {
	return func(conv *Converter) {
		conv.matchOptions.MaxRadius = radius
	}
}

func WithWorkers(workers int) func(*Converter) {
	return func(conv *Converter) {
		conv.matchOptions.Workers = workers
	}
}

func WithSearchStrategy(strategy SearchStrategy) func(*Converter) {
	return func(conv *Converter) {
		conv.matchOptions.Strategy = strategy
	}
}

func WithLaneSpecifier(specifier LaneSpecifier) func(*Converter) {
	return func(conv *Converter) {
		if specifier != nil {
			conv.laneSpecifier = specifier
		}
	}
}

func WithLogger(logger *zap.Logger) func(*Converter) {
	return func(conv *Converter) {
		if logger != nil {
			conv.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) func(*Converter) {
	return func(conv *Converter) {
		conv.metrics = metrics
	}
}

func WithTracer(tracer trace.Tracer) func(*Converter) {
	return func(conv *Converter) {
		if tracer != nil {
			conv.tracer = tracer
		}
	}
}

func WithGeometryOptions(opts GeometryOptions) func(*Converter) {
	return func(conv *Converter) {
		conv.geometryOpts = opts
	}
}

// Result is the output of single conversion
type Result struct {
	Map         *Map
	Buildings   []*Building
	Diagnostics *Diagnostics
}

// Convert runs the pipeline. The only error besides I/O-like failures is *OverlapError: nothing is produced in that case
func (conv *Converter) Convert(ctx context.Context, raw *RawMap) (*Result, error) {
	if conv.drivingSide != 0 && raw.Config.DrivingSide != conv.drivingSide {
		// Input is never modified: override goes into shallow copy
		overridden := *raw
		overridden.Config.DrivingSide = conv.drivingSide
		raw = &overridden
	}
	diag := NewDiagnostics(conv.logger)
	seen := make(map[WarningKind]int)
	defer conv.metrics.observeWarnings(diag, seen)

	var initial *InitialMap
	err := conv.phase(ctx, "build", func(ctx context.Context) error {
		var err error
		initial, err = BuildInitialMap(raw, conv.laneSpecifier, diag)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't build road graph")
	}

	_ = conv.phase(ctx, "synthesize", func(ctx context.Context) error {
		initial.SynthesizeIntersections(conv.geometryOpts, diag)
		return nil
	})

	var m *Map
	err = conv.phase(ctx, "finalize", func(ctx context.Context) error {
		var err error
		m, err = initial.Finalize()
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't finalize map")
	}

	var buildings []*Building
	_ = conv.phase(ctx, "buildings", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("input", len(raw.Buildings)))
		buildings = MakeAllBuildings(raw.Buildings, m, conv.matchOptions, diag)
		conv.logger.Info("Buildings have been connected",
			zap.Int("connected", len(buildings)),
			zap.Int("discarded", len(raw.Buildings)-len(buildings)),
		)
		return nil
	})

	conv.metrics.setMapCounts(len(m.roadIDs), len(m.intersectionIDs), len(buildings))
	conv.logger.Info("Conversion is done",
		zap.Int("roads", len(m.roadIDs)),
		zap.Int("intersections", len(m.intersectionIDs)),
		zap.Int("lanes", len(m.lanes)),
		zap.Int("buildings", len(buildings)),
		zap.Int("warnings", len(diag.Warnings())),
	)
	return &Result{
		Map:         m,
		Buildings:   buildings,
		Diagnostics: diag,
	}, nil
}

// ClassifyShapes projects extra shapes onto converted map
func (conv *Converter) ClassifyShapes(ctx context.Context, res *Result, shapes *ExtraShapes, datasetName string) []*ShapeObject {
	var objects []*ShapeObject
	_ = conv.phase(ctx, "shapes", func(ctx context.Context) error {
		objects = ClassifyShapes(shapes, res.Map, res.Buildings, datasetName, conv.matchOptions.Workers, res.Diagnostics)
		conv.logger.Info("Shapes have been classified",
			zap.String("dataset", datasetName),
			zap.Int("input", len(shapes.Shapes)),
			zap.Int("kept", len(objects)),
		)
		return nil
	})
	return objects
}

// phase runs fn inside its own span and records its duration
func (conv *Converter) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := conv.tracer.Start(ctx, name)
	defer span.End()
	st := time.Now()
	err := fn(ctx)
	took := time.Since(st)
	conv.metrics.observePhase(name, took.Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		conv.logger.Error("Phase failed", zap.String("phase", name), zap.Error(err), zap.Duration("took", took))
		return err
	}
	conv.logger.Info("Phase is done", zap.String("phase", name), zap.Duration("took", took))
	return nil
}
