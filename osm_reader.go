package osm2street

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// OSMScanner is common interface of osmxml and osmpbf scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// borderTolerance is how close (meters) dead end should be to the data bounds to be treated as network border
const borderTolerance = 1.0

type osmWay struct {
	ID    osm.WayID
	Nodes []osm.NodeID
	Tags  osm.Tags
}

type osmNode struct {
	ID       osm.NodeID
	Point    orb.Point
	Tags     osm.Tags
	useCount int
}

func newOSMScanner(ctx context.Context, file *os.File, filename string) (OSMScanner, error) {
	// Guess file extension and prepare correct scanner
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(ctx, file), nil
	case ".pbf":
		return osmpbf.New(ctx, file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// ReadOSM builds RawMap from OSM XML (.osm, .xml) or PBF (.pbf) file.
// Highways are split into roads at shared nodes, closed `building` ways become buildings
func ReadOSM(ctx context.Context, filename string, cfg MapConfig, logger *zap.Logger) (*RawMap, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Opening file", zap.String("file", filename))
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	/* Process ways */
	st := time.Now()
	highways := []*osmWay{}
	buildings := []*osmWay{}
	nodesSeen := make(map[osm.NodeID]struct{})
	var dataBound *orb.Bound
	{
		scannerWays, err := newOSMScanner(ctx, file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if b, ok := obj.(*osm.Bounds); ok {
				bound := orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
				dataBound = &bound
				continue
			}
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			prepared := &osmWay{
				ID:    way.ID,
				Nodes: make([]osm.NodeID, 0, len(way.Nodes)),
				Tags:  make(osm.Tags, len(way.Tags)),
			}
			copy(prepared.Tags, way.Tags)
			for _, node := range way.Nodes {
				prepared.Nodes = append(prepared.Nodes, node.ID)
			}
			switch {
			case isRoadWay(way.Tags):
				highways = append(highways, prepared)
			case way.Tags.Find("building") != "" && len(prepared.Nodes) > 3 && prepared.Nodes[0] == prepared.Nodes[len(prepared.Nodes)-1]:
				buildings = append(buildings, prepared)
			default:
				continue
			}
			for _, nodeID := range prepared.Nodes {
				nodesSeen[nodeID] = struct{}{}
			}
		}
		if err := scannerWays.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on ways")
		}
	}
	logger.Info("Ways have been processed", zap.Int("highways", len(highways)), zap.Int("buildings", len(buildings)), zap.Duration("took", time.Since(st)))

	// Seek file to start
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	st = time.Now()
	nodes := make(map[osm.NodeID]*osmNode, len(nodesSeen))
	{
		scannerNodes, err := newOSMScanner(ctx, file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; !ok {
				continue
			}
			delete(nodesSeen, node.ID)
			nodes[node.ID] = &osmNode{
				ID:    node.ID,
				Point: orb.Point{node.Lon, node.Lat},
				Tags:  node.Tags,
			}
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	logger.Info("Nodes have been processed", zap.Int("nodes", len(nodes)), zap.Int("missing", len(nodesSeen)), zap.Duration("took", time.Since(st)))

	if dataBound == nil {
		if len(nodes) == 0 {
			return nil, fmt.Errorf("File '%s' has no usable nodes", filename)
		}
		var bound orb.Bound
		first := true
		for _, node := range nodes {
			if first {
				bound = node.Point.Bound()
				first = false
				continue
			}
			bound = bound.Extend(node.Point)
		}
		dataBound = &bound
	}

	raw := NewRawMap(cfg)
	raw.Bounds = NewGPSBounds(*dataBound)
	st = time.Now()
	splitHighways(raw, highways, nodes, logger)
	addBuildings(raw, buildings, nodes, logger)
	logger.Info("Raw map has been prepared",
		zap.Int("intersections", len(raw.Intersections)),
		zap.Int("roads", len(raw.Roads)),
		zap.Int("buildings", len(raw.Buildings)),
		zap.Duration("took", time.Since(st)),
	)
	return raw, nil
}

func isRoadWay(tags osm.Tags) bool {
	highway := tags.Find("highway")
	if highway == "" || tags.Find("area") == "yes" {
		return false
	}
	_, negligible := negligibleHighwayTags[highway]
	return !negligible
}

// splitHighways cuts ways into roads at nodes used more than once
func splitHighways(raw *RawMap, highways []*osmWay, nodes map[osm.NodeID]*osmNode, logger *zap.Logger) {
	for _, way := range highways {
		for i, nodeID := range way.Nodes {
			node, ok := nodes[nodeID]
			if !ok {
				continue
			}
			if i == 0 || i == len(way.Nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}

	degree := make(map[osm.NodeID]int)
	for _, way := range highways {
		var source osm.NodeID
		geometry := orb.LineString{}
		for i, nodeID := range way.Nodes {
			node, ok := nodes[nodeID]
			if !ok {
				logger.Warn("Way refers to missing node", zap.Int64("way", int64(way.ID)), zap.Int64("node", int64(nodeID)))
				geometry = nil
				break
			}
			geometry = append(geometry, raw.Bounds.Convert(node.Point))
			if i == 0 {
				source = nodeID
				continue
			}
			if node.useCount <= 1 {
				continue
			}
			id := OriginalRoad{WayID: way.ID, I1: source, I2: nodeID}
			raw.Roads[id] = &RawRoad{
				CenterPoints: geometry,
				Tags:         way.Tags,
			}
			degree[source]++
			degree[nodeID]++
			source = nodeID
			geometry = orb.LineString{geometry[len(geometry)-1]}
		}
	}

	planarBound := raw.Bounds.PlanarBound()
	for nodeID, d := range degree {
		node := nodes[nodeID]
		pt := raw.Bounds.Convert(node.Point)
		intersectionType := INTERSECTION_PLAIN
		switch {
		case node.Tags.Find("highway") == "traffic_signals":
			intersectionType = INTERSECTION_CONTROLLED
		case d == 1 && onBoundEdge(planarBound, pt):
			intersectionType = INTERSECTION_BORDER
		case d == 1:
			intersectionType = INTERSECTION_DEAD_END
		}
		elevation := 0.0
		if ele := node.Tags.Find("ele"); ele != "" {
			if value, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(ele), "m"), 64); err == nil {
				elevation = value
			}
		}
		raw.Intersections[OriginalIntersection{NodeID: nodeID}] = &RawIntersection{
			Point:            pt,
			IntersectionType: intersectionType,
			Elevation:        elevation,
		}
	}
}

func onBoundEdge(bound orb.Bound, pt orb.Point) bool {
	return pt[0]-bound.Min[0] <= borderTolerance || bound.Max[0]-pt[0] <= borderTolerance ||
		pt[1]-bound.Min[1] <= borderTolerance || bound.Max[1]-pt[1] <= borderTolerance
}

func addBuildings(raw *RawMap, buildings []*osmWay, nodes map[osm.NodeID]*osmNode, logger *zap.Logger) {
	for _, way := range buildings {
		ring := make(orb.Ring, 0, len(way.Nodes))
		for _, nodeID := range way.Nodes {
			node, ok := nodes[nodeID]
			if !ok {
				ring = nil
				break
			}
			ring = append(ring, raw.Bounds.Convert(node.Point))
		}
		if ring == nil {
			logger.Warn("Building refers to missing node", zap.Int64("way", int64(way.ID)))
			continue
		}
		b := &RawBuilding{
			Polygon: ring,
			Tags:    way.Tags,
		}
		for _, key := range []string{"amenity", "shop"} {
			if kind := way.Tags.Find(key); kind != "" && kind != "parking" {
				b.Amenities = append(b.Amenities, Amenity{Name: way.Tags.Find("name"), Kind: kind})
			}
		}
		if way.Tags.Find("amenity") == "parking" || way.Tags.Find("parking") == "multi-storey" {
			b.PublicGarageName = way.Tags.Find("name")
			if b.PublicGarageName == "" {
				b.PublicGarageName = fmt.Sprintf("parking %d", way.ID)
			}
		}
		if capacity, err := strconv.Atoi(way.Tags.Find("capacity")); err == nil && capacity > 0 {
			b.NumParkingSpots = capacity
		}
		raw.Buildings[OriginalBuilding{WayID: way.ID}] = b
	}
}
