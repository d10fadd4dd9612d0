package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LdDl/osm2street"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	osmFileName   = flag.String("file", "my_graph.osm", "Filename of *.osm or *.osm.pbf file")
	out           = flag.String("out", "my_graph.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file. E.g.: if file name is 'map.csv' then 'map_intersections.csv', 'map_roads.csv', 'map_lanes.csv', 'map_buildings.csv' are produced. GeoJSON output is written when file name ends with '.geojson'")
	geomFormat    = flag.String("geomf", "wkt", "Format of output geometry. Expected values: wkt / geojson")
	drivingSide   = flag.String("driving-side", "right", "Driving side. Expected values: right / left")
	buffer        = flag.Float64("buffer", 7.5, "Minimum distance (meters) between building connection and sidewalk's end")
	radius        = flag.Float64("radius", 1000.0, "Maximum distance (meters) between building and sidewalk")
	strategy      = flag.String("search", "expanding", "Sidewalk search strategy. Expected values: fixed / expanding")
	workers       = flag.Int("workers", 0, "Number of workers for parallel phases. Zero means number of CPUs")
	doContraction = flag.Bool("contract", false, "Prepare contraction hierarchies for intersections graph and export shortcuts?")
	kmlFileName   = flag.String("kml", "", "Filename of *.kml file with extra shapes to match against the map")
	query         = flag.String("query", "", "Query for extra shapes: one of named parcel queries or 'key=value' filter")
	dumpMetrics   = flag.Bool("metrics", false, "Print metrics in Prometheus text format after conversion")
	doTrace       = flag.Bool("trace", false, "Print OpenTelemetry spans of conversion phases to stdout")
	verbose       = flag.Bool("verbose", false, "Development logging")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), logger); err != nil {
		logger.Error("Conversion failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, logger *zap.Logger) error {
	side, ok := osm2street.ParseDrivingSide(*drivingSide)
	if !ok {
		return fmt.Errorf("Unknown driving side '%s'", *drivingSide)
	}
	searchStrategy, ok := osm2street.ParseSearchStrategy(*strategy)
	if !ok {
		return fmt.Errorf("Unknown search strategy '%s'", *strategy)
	}
	format, ok := osm2street.ParseGeomFormat(*geomFormat)
	if !ok {
		return fmt.Errorf("Unknown geometry format '%s'", *geomFormat)
	}

	if *doTrace {
		shutdown, err := initTracing(ctx)
		if err != nil {
			return errors.Wrap(err, "Can't init tracing")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("Tracing shutdown failed", zap.Error(err))
			}
		}()
	}

	registry := prometheus.NewRegistry()
	metrics, err := osm2street.NewMetrics(registry)
	if err != nil {
		return errors.Wrap(err, "Can't register metrics")
	}

	converter := osm2street.NewConverter(
		osm2street.WithDrivingSide(side),
		osm2street.WithSidewalkBuffer(*buffer),
		osm2street.WithMaxSearchRadius(*radius),
		osm2street.WithSearchStrategy(searchStrategy),
		osm2street.WithWorkers(*workers),
		osm2street.WithLogger(logger),
		osm2street.WithMetrics(metrics),
	)
	logger.Debug("Converter is ready", zap.Stringer("converter", converter))

	raw, err := osm2street.ReadOSM(ctx, *osmFileName, osm2street.MapConfig{DrivingSide: side}, logger)
	if err != nil {
		return errors.Wrap(err, "Can't read OSM data")
	}
	result, err := converter.Convert(ctx, raw)
	if err != nil {
		return err
	}
	fmt.Print(result.Diagnostics.Summary())

	if strings.HasSuffix(*out, ".geojson") {
		err = result.ExportToGeoJSON(*out)
	} else {
		err = result.ExportToCSV(*out, format)
	}
	if err != nil {
		return errors.Wrap(err, "Can't export map")
	}

	if *doContraction {
		graph, err := osm2street.NewRoutingGraph(result.Map)
		if err != nil {
			return errors.Wrap(err, "Can't prepare routing graph")
		}
		logger.Info("Starting contraction process")
		st := time.Now()
		graph.Contract()
		logger.Info("Done contraction process", zap.Duration("took", time.Since(st)))
		if err := graph.ExportShortcuts(shortcutsFileName(*out)); err != nil {
			return err
		}
	}

	if *kmlFileName != "" {
		shapes, err := osm2street.LoadKML(*kmlFileName)
		if err != nil {
			return errors.Wrap(err, "Can't load extra shapes")
		}
		dataset := strings.TrimSuffix(filepath.Base(*kmlFileName), ".kml")
		objects := converter.ClassifyShapes(ctx, result, shapes, dataset)
		fmt.Printf("%s: %d objects\n", dataset, len(objects))
		if *query != "" {
			fmt.Printf("Query matches %d objects\n", len(osm2street.QueryShapes(objects, *query)))
		}
	}

	if *dumpMetrics {
		if err := metrics.WriteText(os.Stdout); err != nil {
			return errors.Wrap(err, "Can't dump metrics")
		}
	}
	return nil
}

// shortcutsFileName puts shortcuts next to the main output: 'out/map.csv' gives 'out/map_shortcuts.csv'
func shortcutsFileName(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + "_shortcuts.csv"
}

func initTracing(ctx context.Context) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stdout),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create exporter")
	}
	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", "osm2street")))
	if err != nil {
		return nil, errors.Wrap(err, "Can't create resource")
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
