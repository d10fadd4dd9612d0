package osm2street

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// LineFeature is anything points could be matched to
type LineFeature interface {
	FeatureID() int
	FeatureLine() orb.LineString
}

type SearchStrategy uint16

const (
	// SEARCH_FIXED queries the whole max radius at once
	SEARCH_FIXED = SearchStrategy(iota + 1)
	// SEARCH_EXPANDING starts with small radius and doubles it until match is found or max radius is reached
	SEARCH_EXPANDING
)

func (iotaIdx SearchStrategy) String() string {
	return [...]string{"fixed", "expanding"}[iotaIdx-1]
}

// ParseSearchStrategy returns strategy by its name
func ParseSearchStrategy(s string) (SearchStrategy, bool) {
	switch s {
	case "fixed":
		return SEARCH_FIXED, true
	case "expanding":
		return SEARCH_EXPANDING, true
	default:
		return 0, false
	}
}

const (
	defaultSidewalkBuffer  = 7.5
	defaultMaxSearchRadius = 1000.0
	defaultSampleSpacing   = 10.0
	initialSearchRadius    = 50.0
)

// MatchOptions configures the matcher
type MatchOptions struct {
	// Buffer is the minimum distance between matched position and either end of the feature
	Buffer float64
	// MaxRadius is the maximum distance between query point and feature
	MaxRadius float64
	// SampleSpacing is the distance between consecutive index entries along a segment
	SampleSpacing float64
	Strategy      SearchStrategy
	// Workers is number of goroutines evaluating queries. Zero means number of CPUs
	Workers int
}

// DefaultMatchOptions returns options used to connect buildings to sidewalks
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Buffer:        defaultSidewalkBuffer,
		MaxRadius:     defaultMaxSearchRadius,
		SampleSpacing: defaultSampleSpacing,
		Strategy:      SEARCH_EXPANDING,
	}
}

func (opts MatchOptions) String() string {
	return fmt.Sprintf("Buffer: %.2f\nMax radius: %.2f\nSample spacing: %.2f\nStrategy: %s\nWorkers: %d",
		opts.Buffer, opts.MaxRadius, opts.SampleSpacing, opts.Strategy, opts.Workers)
}

// Position is the point on some feature
type Position struct {
	// Feature is identifier of the feature (see LineFeature.FeatureID)
	Feature int
	// DistAlong is distance from the start of the feature
	DistAlong float64
	Pt        orb.Point
}

// sampleRef is a quadtree entry. It refers to segment of some feature by indices only
type sampleRef struct {
	pt      orb.Point
	feature int
	segment int
}

func (s sampleRef) Point() orb.Point {
	return s.pt
}

// FeatureMatcher answers nearest feature queries. It is read-only after construction and safe for concurrent use
type FeatureMatcher struct {
	features []LineFeature
	lengths  []float64
	tree     *quadtree.Quadtree
	opts     MatchOptions
}

// NewFeatureMatcher indexes features accepted by eligible predicate (nil means all features)
func NewFeatureMatcher[F LineFeature](features []F, eligible func(F) bool, opts MatchOptions) *FeatureMatcher {
	if opts.SampleSpacing <= 0 {
		opts.SampleSpacing = defaultSampleSpacing
	}
	if opts.Strategy == 0 {
		opts.Strategy = SEARCH_FIXED
	}
	fm := &FeatureMatcher{
		opts: opts,
	}
	samples := []sampleRef{}
	for _, f := range features {
		if eligible != nil && !eligible(f) {
			continue
		}
		line := f.FeatureLine()
		if len(line) < 2 {
			continue
		}
		idx := len(fm.features)
		fm.features = append(fm.features, f)
		fm.lengths = append(fm.lengths, lineLength(line))
		for seg := 1; seg < len(line); seg++ {
			dir, segLen := unitVector(line[seg-1], line[seg])
			for along := 0.0; along < segLen; along += opts.SampleSpacing {
				samples = append(samples, sampleRef{pt: projectAway(line[seg-1], dir, along), feature: idx, segment: seg - 1})
			}
			samples = append(samples, sampleRef{pt: line[seg], feature: idx, segment: seg - 1})
		}
	}
	if len(samples) == 0 {
		return fm
	}
	bound := samples[0].pt.Bound()
	for _, s := range samples[1:] {
		bound = bound.Extend(s.pt)
	}
	fm.tree = quadtree.New(bound.Pad(1.0))
	for _, s := range samples {
		// Bound contains every sample, so error is not possible here
		_ = fm.tree.Add(s)
	}
	return fm
}

// Len returns number of indexed features
func (fm *FeatureMatcher) Len() int {
	return len(fm.features)
}

// Match finds the nearest eligible position for the single point
func (fm *FeatureMatcher) Match(pt orb.Point) (Position, bool) {
	if fm.tree == nil || fm.opts.MaxRadius <= 0 {
		return Position{}, false
	}
	if fm.opts.Strategy == SEARCH_FIXED {
		return fm.matchWithin(pt, fm.opts.MaxRadius)
	}
	for radius := math.Min(initialSearchRadius, fm.opts.MaxRadius); ; radius = math.Min(radius*2, fm.opts.MaxRadius) {
		if pos, ok := fm.matchWithin(pt, radius); ok {
			return pos, true
		}
		if radius >= fm.opts.MaxRadius {
			return Position{}, false
		}
	}
}

// matchWithin returns the closest valid position not farther than radius.
// Ties are resolved by the lowest feature identifier
func (fm *FeatureMatcher) matchWithin(pt orb.Point, radius float64) (Position, bool) {
	pad := radius + fm.opts.SampleSpacing/2.0
	bound := orb.Bound{Min: orb.Point{pt[0] - pad, pt[1] - pad}, Max: orb.Point{pt[0] + pad, pt[1] + pad}}
	candidates := make(map[int]struct{})
	for _, p := range fm.tree.InBound(nil, bound) {
		candidates[p.(sampleRef).feature] = struct{}{}
	}

	found := false
	best := Position{}
	bestDist := math.Inf(1)
	for idx := range candidates {
		f := fm.features[idx]
		closest, along, dist := projectOnLine(f.FeatureLine(), pt)
		if dist > radius {
			continue
		}
		if along < fm.opts.Buffer || along > fm.lengths[idx]-fm.opts.Buffer {
			continue
		}
		id := f.FeatureID()
		if dist < bestDist || (dist == bestDist && id < best.Feature) {
			found = true
			bestDist = dist
			best = Position{Feature: id, DistAlong: along, Pt: closest}
		}
	}
	return best, found
}

// MatchAll matches every distinct point in parallel. Points without match are absent from the result
func (fm *FeatureMatcher) MatchAll(pts []orb.Point) map[orb.Point]Position {
	unique := make([]orb.Point, 0, len(pts))
	seen := make(map[orb.Point]struct{}, len(pts))
	for _, pt := range pts {
		if _, ok := seen[pt]; ok {
			continue
		}
		seen[pt] = struct{}{}
		unique = append(unique, pt)
	}
	type answer struct {
		pos Position
		ok  bool
	}
	answers := parallelize(unique, fm.opts.Workers, func(pt orb.Point) answer {
		pos, ok := fm.Match(pt)
		return answer{pos: pos, ok: ok}
	})
	result := make(map[orb.Point]Position, len(unique))
	for i, a := range answers {
		if a.ok {
			result[unique[i]] = a.pos
		}
	}
	return result
}

// MatchPoints is shortcut for building matcher and matching points in one call
func MatchPoints[F LineFeature](pts []orb.Point, features []F, eligible func(F) bool, opts MatchOptions) map[orb.Point]Position {
	return NewFeatureMatcher(features, eligible, opts).MatchAll(pts)
}
