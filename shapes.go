package osm2street

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

const (
	shapePointRadius   = 5.0
	shapeLineThickness = 2.0
)

type ShapeKind uint16

const (
	SHAPE_POINT = ShapeKind(iota + 1)
	SHAPE_LINE
	SHAPE_POLYGON
)

func (iotaIdx ShapeKind) String() string {
	return [...]string{"point", "line", "polygon"}[iotaIdx-1]
}

// ShapeObject is extra shape projected onto the map
type ShapeObject struct {
	Index int
	Kind  ShapeKind
	// Geometry is orb.Point, orb.LineString or orb.Polygon in planar meters
	Geometry   orb.Geometry
	Attributes map[string]string
	// Building is set for parcels referring to known building through `osm_bldg` attribute
	Building *BuildingID
}

// Contains tells if point hits the object. Points and lines are treated as having some thickness
func (obj *ShapeObject) Contains(pt orb.Point) bool {
	switch g := obj.Geometry.(type) {
	case orb.Point:
		return findDistance(g, pt) <= shapePointRadius
	case orb.LineString:
		_, _, dist := projectOnLine(g, pt)
		return dist <= shapeLineThickness/2.0
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	}
	return false
}

type shapeRef int

func (s shapeRef) String() string {
	return fmt.Sprintf("shape #%d", int(s))
}

// ClassifyShapes converts shapes in parallel and keeps those touching the map
func ClassifyShapes(shapes *ExtraShapes, m *Map, buildings []*Building, datasetName string, workers int, diag *Diagnostics) []*ShapeObject {
	bldgLookup := make(map[string]BuildingID, len(buildings))
	for _, b := range buildings {
		bldgLookup[fmt.Sprintf("%d", b.OriginalID.WayID)] = b.ID
	}
	boundary := m.Boundary()
	bounds := m.Bounds()

	type job struct {
		idx   int
		shape ExtraShape
	}
	jobs := make([]job, len(shapes.Shapes))
	for i, shape := range shapes.Shapes {
		jobs[i] = job{idx: i, shape: shape}
	}
	converted := parallelize(jobs, workers, func(j job) *ShapeObject {
		pts := j.shape.Points
		if bounds != nil {
			pts = bounds.ConvertLine(orb.LineString(pts))
		}
		inside := false
		for _, pt := range pts {
			if boundary.Contains(pt) {
				inside = true
				break
			}
		}
		if !inside {
			return nil
		}
		return makeShapeObject(j.idx, pts, j.shape.Attributes, datasetName, bldgLookup, diag)
	})

	objects := make([]*ShapeObject, 0, len(converted))
	for _, obj := range converted {
		if obj != nil {
			objects = append(objects, obj)
		}
	}
	return objects
}

func makeShapeObject(idx int, pts []orb.Point, attributes map[string]string, datasetName string, bldgLookup map[string]BuildingID, diag *Diagnostics) *ShapeObject {
	obj := &ShapeObject{
		Index:      idx,
		Attributes: attributes,
	}
	distinct := dedupPoints(pts)
	switch {
	case len(distinct) == 1:
		obj.Kind, obj.Geometry = SHAPE_POINT, pts[0]
	case len(pts) > 3 && samePoint(pts[0], pts[len(pts)-1]) && isSimplePolygon(distinct):
		if attributes["spatial_type"] == "Polygon" {
			obj.Kind, obj.Geometry = SHAPE_POLYGON, orb.Polygon{closeRing(distinct)}
		} else {
			obj.Kind, obj.Geometry = SHAPE_LINE, orb.LineString(closeRing(distinct))
		}
	default:
		line, err := newPolyLine(pts)
		if err != nil {
			diag.Report(WARNING_BROKEN_SHAPE, shapeRef(idx), fmt.Sprintf("messed up geometry: %s", err))
			obj.Kind, obj.Geometry = SHAPE_POINT, pts[0]
		} else {
			obj.Kind, obj.Geometry = SHAPE_LINE, line
		}
	}
	if datasetName == "parcels" {
		if id, ok := bldgLookup[attributes["osm_bldg"]]; ok {
			obj.Building = &id
		}
	}
	return obj
}

type shapeEntry struct {
	center orb.Point
	idx    int
}

func (e shapeEntry) Point() orb.Point {
	return e.center
}

// ShapeIndex answers which object lies under given point
type ShapeIndex struct {
	objects []*ShapeObject
	bounds  []orb.Bound
	tree    *quadtree.Quadtree
	// biggest half-extent of any object bound
	reach float64
}

// NewShapeIndex indexes objects by centers of their bounds
func NewShapeIndex(objects []*ShapeObject) *ShapeIndex {
	si := &ShapeIndex{
		objects: objects,
		bounds:  make([]orb.Bound, len(objects)),
	}
	if len(objects) == 0 {
		return si
	}
	var total orb.Bound
	for i, obj := range objects {
		b := obj.Geometry.Bound().Pad(math.Max(shapePointRadius, shapeLineThickness))
		si.bounds[i] = b
		if i == 0 {
			total = b
		} else {
			total = total.Union(b)
		}
		si.reach = math.Max(si.reach, math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])/2.0)
	}
	si.tree = quadtree.New(total)
	for i, b := range si.bounds {
		_ = si.tree.Add(shapeEntry{center: b.Center(), idx: i})
	}
	return si
}

// Lookup returns the first object (by index) containing the point
func (si *ShapeIndex) Lookup(pt orb.Point) (*ShapeObject, bool) {
	if si.tree == nil {
		return nil, false
	}
	query := orb.Bound{Min: orb.Point{pt[0] - si.reach, pt[1] - si.reach}, Max: orb.Point{pt[0] + si.reach, pt[1] + si.reach}}
	candidates := []int{}
	for _, p := range si.tree.InBound(nil, query) {
		idx := p.(shapeEntry).idx
		if si.bounds[idx].Contains(pt) {
			candidates = append(candidates, idx)
		}
	}
	sort.Ints(candidates)
	for _, idx := range candidates {
		if si.objects[idx].Contains(pt) {
			return si.objects[idx], true
		}
	}
	return nil, false
}

// Named parcel queries
const (
	QueryParcelsWithoutBuildings          = "parcels without buildings"
	QueryParcelsWithoutBuildingsWithTrips = "parcels without buildings and trips or parking"
	QueryParcelsWithMultipleBuildings     = "parcels with multiple buildings"
	QueryParcelsWithSeveralHouseholds     = "parcels with >1 households"
	QueryParcelsWithParking               = "parcels with parking"
)

// QueryShapes returns objects matching one of the named queries. Any other query is `key=value` substring filter
func QueryShapes(objects []*ShapeObject, query string) []*ShapeObject {
	result := []*ShapeObject{}
	switch query {
	case "", "None":
	case QueryParcelsWithoutBuildings:
		for _, obj := range objects {
			if obj.Building == nil {
				result = append(result, obj)
			}
		}
	case QueryParcelsWithoutBuildingsWithTrips:
		for _, obj := range objects {
			_, households := obj.Attributes["households"]
			_, parking := obj.Attributes["parking"]
			if obj.Building == nil && (households || parking) {
				result = append(result, obj)
			}
		}
	case QueryParcelsWithMultipleBuildings:
		seen := make(map[BuildingID]struct{})
		for _, obj := range objects {
			if obj.Building == nil {
				continue
			}
			if _, ok := seen[*obj.Building]; ok {
				result = append(result, obj)
			} else {
				seen[*obj.Building] = struct{}{}
			}
		}
	case QueryParcelsWithSeveralHouseholds:
		for _, obj := range objects {
			if hh, ok := obj.Attributes["households"]; ok && hh != "1" {
				result = append(result, obj)
			}
		}
	case QueryParcelsWithParking:
		for _, obj := range objects {
			if _, ok := obj.Attributes["parking"]; ok {
				result = append(result, obj)
			}
		}
	default:
		for _, obj := range objects {
			keys := make([]string, 0, len(obj.Attributes))
			for k := range obj.Attributes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if strings.Contains(fmt.Sprintf("%s=%s", k, obj.Attributes[k]), query) {
					result = append(result, obj)
					break
				}
			}
		}
	}
	return result
}
