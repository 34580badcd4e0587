// Package selection implements the two Poisson-disk sample selection
// engines layered on top of an octree and its radius-r neighbor iterator:
// a deterministic greedy scan and a randomized, parallel dart-throwing
// pass.
package selection

import (
	"github.com/pkg/errors"

	"go.viam.com/pointthin/octree"
	"go.viam.com/pointthin/point"
)

// Selection holds the state shared by both engines: the octree being
// selected over, a private iterator carrying the active search radius, and
// the accumulated result. Selection is not safe for concurrent use by
// multiple callers; PerformDartThrowingSelection manages its own internal
// concurrency.
type Selection struct {
	octree   *octree.Octree
	iterator *octree.Iterator

	radius float64
	r2     float64

	selectedSamples []*point.Sample
}

// New returns a Selection over o, ready to run either engine at the given
// radius.
//
// it's active radius is set to radius as a side effect, unless radius is
// not strictly smaller than the octree's bounding-cube side — which can
// only happen for a degenerate octree of depth zero, whose single leaf
// already spans exactly one radius. In that case the iterator keeps the
// depth-derived default it was constructed with, which already agrees
// with radius; this mirrors the reference implementation, which never
// checked the analogous call's success either.
func New(o *octree.Octree, it *octree.Iterator, radius float64) (*Selection, error) {
	if radius <= 0 {
		return nil, errors.Errorf("selection radius must be positive, got %g", radius)
	}
	_ = it.SetR(radius)
	return &Selection{
		octree:   o,
		iterator: it,
		radius:   radius,
		r2:       radius * radius,
	}, nil
}

// Radius returns the selection radius.
func (s *Selection) Radius() float64 { return s.radius }

// SquaredRadius returns the selection radius squared.
func (s *Selection) SquaredRadius() float64 { return s.r2 }

// NSelected returns the number of samples selected so far.
func (s *Selection) NSelected() int { return len(s.selectedSamples) }

// SelectedSamples returns the accumulated selection, in the order each
// engine produced it.
func (s *Selection) SelectedSamples() []*point.Sample { return s.selectedSamples }

// CoverRate returns the sum of every sample's coverage counter divided by
// the total number of points in the octree, per spec.md section 6.
func (s *Selection) CoverRate() float64 {
	if s.octree.NPoints() == 0 {
		return 0
	}
	var total uint64
	var leaves []*octree.Node
	s.octree.GetNodes(0, s.octree.Root(), &leaves)
	for _, leaf := range leaves {
		for _, sample := range leaf.Points() {
			total += uint64(sample.NCovered())
		}
	}
	return float64(total) / float64(s.octree.NPoints())
}
