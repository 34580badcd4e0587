package octree

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/pointthin/point"
)

// Iterator answers radius-r neighborhood queries against an Octree. It
// holds no state of its own beyond the active radius and the depth derived
// from it, so distinct goroutines can safely share one Octree while each
// owning a private Iterator — see selection.PerformDartThrowingSelection.
type Iterator struct {
	octree *Octree

	r  float64
	r2 float64
	// depth is the shallowest level whose cell side is >= 2r: a ball of
	// radius r touches at most one cell per axis on each side of the
	// query cell at this depth, so at most 27 candidate cells ever need
	// visiting.
	depth int
}

// NewIterator returns an Iterator over o with its active depth set to the
// octree's depth D and its active radius to the octree's leaf size.
func NewIterator(o *Octree) *Iterator {
	it := &Iterator{octree: o, depth: o.Depth()}
	it.r = o.Size() / math.Pow(2, float64(it.depth))
	it.r2 = it.r * it.r
	return it
}

// R returns the active radius.
func (it *Iterator) R() float64 { return it.r }

// SquareR returns the active radius squared.
func (it *Iterator) SquareR() float64 { return it.r2 }

// Depth returns the active depth derived from the active radius.
func (it *Iterator) Depth() int { return it.depth }

// SetR sets the active radius and derives the active depth from it. r must
// be strictly between 0 and the octree's bounding-cube side.
func (it *Iterator) SetR(r float64) error {
	if r <= 0 || r >= it.octree.Size() {
		return errors.Errorf("radius %g out of range (0, %g)", r, it.octree.Size())
	}
	it.r = r
	it.r2 = r * r
	it.depth = it.octree.Depth() - int(math.Floor(math.Log2(it.octree.Size()/(2*r))))
	return nil
}

// SetDepth sets the active depth directly and derives the radius from it as
// the octree's side divided by 2^depth.
func (it *Iterator) SetDepth(depth int) error {
	if depth > it.octree.Depth() {
		return errors.Errorf("depth %d exceeds octree depth %d", depth, it.octree.Depth())
	}
	it.depth = depth
	it.r = it.octree.Size() / math.Pow(2, float64(depth))
	it.r2 = it.r * it.r
	return nil
}

func (it *Iterator) computeCode(q point.Point) (codx, cody, codz uint32) {
	v := q.Vector()
	origin := it.octree.Origin()
	multiplier := float64(it.octree.BinSize()) / it.octree.Size()
	codx = uint32(math.Floor((v.X - origin.X) * multiplier))
	cody = uint32(math.Floor((v.Y - origin.Y) * multiplier))
	codz = uint32(math.Floor((v.Z - origin.Z) * multiplier))
	return codx, cody, codz
}

// traverseToLevel follows the path given by the locational codes starting
// at node, stopping as soon as the required child is missing or depth k is
// reached.
func traverseToLevel(node *Node, codx, cody, codz uint32, k int) *Node {
	for node.depth > k {
		l := uint(node.depth - 1)
		x := (codx >> l) & 1
		y := (cody >> l) & 1
		z := (codz >> l) & 1
		childIndex := int((x << 2) | (y << 1) | z)
		child := node.children[childIndex]
		if child == nil {
			break
		}
		node = child
	}
	return node
}

// LocatePointNode returns the cell containing q at the iterator's active
// depth.
func (it *Iterator) LocatePointNode(q point.Point) *Node {
	codx, cody, codz := it.computeCode(q)
	return traverseToLevel(it.octree.root, codx, cody, codz, it.depth)
}

// leftCode/rightCode helpers derive a candidate neighbor's locational code
// from the cell's own code and size; they never dereference a sibling.
func leftCode(loc uint32) uint32  { return loc - 1 }
func rightCode(loc, size uint32) uint32 { return loc + size }

// candidateCodes returns the (<=3) candidate locational codes on one axis
// for a cell of the given origin/size/loc, given the query coordinate,
// active radius and octree bounding-box extent on that axis.
//
// The left check compares against the cell's own origin; the right check
// compares against origin+size. This asymmetry is deliberate (spec.md
// section 9): reproducing it exactly is what keeps border samples from
// being duplicated or dropped across cell joins.
func candidateCodes(loc uint32, cellOrigin, cellSize, octreeOrigin, octreeExtentEnd, q, r float64, cellSizeLoc uint32) []uint32 {
	codes := []uint32{loc}
	if q-r < cellOrigin && q-r > octreeOrigin {
		codes = append(codes, leftCode(loc))
	}
	if q+r > cellOrigin+cellSize && q+r < octreeExtentEnd {
		codes = append(codes, rightCode(loc, cellSizeLoc))
	}
	return codes
}

func (it *Iterator) candidateLocs(q point.Point, node *Node, s int) (xs, ys, zs []uint32) {
	octOrigin := it.octree.Origin()
	octSize := it.octree.Size()
	nodeOrigin := node.Origin()
	nodeSize := node.Size()
	sizeLoc := uint32(1) << uint(s)

	v := q.Vector()
	xs = candidateCodes(node.xloc, nodeOrigin.X, nodeSize, octOrigin.X, octOrigin.X+octSize, v.X, it.r, sizeLoc)
	ys = candidateCodes(node.yloc, nodeOrigin.Y, nodeSize, octOrigin.Y, octOrigin.Y+octSize, v.Y, it.r, sizeLoc)
	zs = candidateCodes(node.zloc, nodeOrigin.Z, nodeSize, octOrigin.Z, octOrigin.Z+octSize, v.Z, it.r, sizeLoc)
	return xs, ys, zs
}

// visitCandidates calls fn once for every live node of depth s reachable
// from the octree root via one of the up to 27 candidate locational-code
// triples around node.
func (it *Iterator) visitCandidates(q point.Point, node *Node, fn func(*Node)) {
	s := node.Depth()
	if it.depth > s {
		s = it.depth
	}
	xs, ys, zs := it.candidateLocs(q, node, s)
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				cand := traverseToLevel(it.octree.root, x, y, z, s)
				if cand != nil && cand.Depth() == s {
					fn(cand)
				}
			}
		}
	}
}

func explore(node *Node, q point.Point, r2 float64, out *[]*point.Sample) {
	if node.depth != 0 {
		for i := 0; i < 8; i++ {
			if node.children[i] != nil {
				explore(node.children[i], q, r2, out)
			}
		}
		return
	}
	for _, s := range node.points {
		if q.SquaredDistance(s.Point) < r2 {
			*out = append(*out, s)
		}
	}
}

func exploreWithDistances(node *Node, q point.Point, r2 float64, out *[]*point.Sample, dists *[]float64) {
	if node.depth != 0 {
		for i := 0; i < 8; i++ {
			if node.children[i] != nil {
				exploreWithDistances(node.children[i], q, r2, out, dists)
			}
		}
		return
	}
	for _, s := range node.points {
		d := q.SquaredDistance(s.Point)
		if d < r2 {
			*out = append(*out, s)
			*dists = append(*dists, d)
		}
	}
}

func exploreExcept(node *Node, q point.Point, r2 float64, exceptions map[*point.Sample]bool, ok *bool) {
	if !*ok {
		return
	}
	if node.depth != 0 {
		for i := 0; i < 8 && *ok; i++ {
			if node.children[i] != nil {
				exploreExcept(node.children[i], q, r2, exceptions, ok)
			}
		}
		return
	}
	for _, s := range node.points {
		if q.SquaredDistance(s.Point) < r2 && !exceptions[s] {
			*ok = false
			return
		}
	}
}

// GetNeighbors returns every stored sample within the active radius of q.
func (it *Iterator) GetNeighbors(q point.Point) []*point.Sample {
	return it.GetNeighborsAt(q, it.LocatePointNode(q))
}

// GetNeighborsAt is GetNeighbors when the cell containing q is already
// known. node may be coarser than the iterator's active depth; the search
// is then conducted at node's own depth, per spec.md section 4.3 step 2.
func (it *Iterator) GetNeighborsAt(q point.Point, node *Node) []*point.Sample {
	var out []*point.Sample
	it.visitCandidates(q, node, func(cand *Node) {
		explore(cand, q, it.r2, &out)
	})
	return out
}

// GetNeighborsWithDistances is GetNeighbors, additionally returning the
// squared distance to each returned sample in the same order.
func (it *Iterator) GetNeighborsWithDistances(q point.Point) ([]*point.Sample, []float64) {
	return it.GetNeighborsWithDistancesAt(q, it.LocatePointNode(q))
}

// GetNeighborsWithDistancesAt is GetNeighborsAt with squared distances.
func (it *Iterator) GetNeighborsWithDistancesAt(q point.Point, node *Node) ([]*point.Sample, []float64) {
	var out []*point.Sample
	var dists []float64
	it.visitCandidates(q, node, func(cand *Node) {
		exploreWithDistances(cand, q, it.r2, &out, &dists)
	})
	return out, dists
}

// SortedNeighbor pairs a sample with its squared distance to a query
// point.
type SortedNeighbor struct {
	Sample     *point.Sample
	SquaredDist float64
}

// GetSortedNeighbors returns every sample within the active radius of q,
// ordered by increasing squared distance. Ties break by octree visitation
// order, which is unspecified by the contract but deterministic for a
// fixed octree.
func (it *Iterator) GetSortedNeighbors(q point.Point) []SortedNeighbor {
	return it.GetSortedNeighborsAt(q, it.LocatePointNode(q))
}

// GetSortedNeighborsAt is GetSortedNeighbors when the cell containing q is
// already known.
func (it *Iterator) GetSortedNeighborsAt(q point.Point, node *Node) []SortedNeighbor {
	samples, dists := it.GetNeighborsWithDistancesAt(q, node)
	neighbors := make([]SortedNeighbor, len(samples))
	for i := range samples {
		neighbors[i] = SortedNeighbor{Sample: samples[i], SquaredDist: dists[i]}
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].SquaredDist < neighbors[j].SquaredDist
	})
	return neighbors
}

// ContainsOnly reports whether every sample within the active radius of q
// is a member of exceptions: as soon as one outsider is found the search
// short-circuits and returns false.
func (it *Iterator) ContainsOnly(q point.Point, exceptions map[*point.Sample]bool) bool {
	return it.ContainsOnlyAt(q, it.LocatePointNode(q), exceptions)
}

// ContainsOnlyAt is ContainsOnly when the cell containing q is already
// known.
func (it *Iterator) ContainsOnlyAt(q point.Point, node *Node, exceptions map[*point.Sample]bool) bool {
	ok := true
	it.visitCandidates(q, node, func(cand *Node) {
		if ok {
			exploreExcept(cand, q, it.r2, exceptions, &ok)
		}
	})
	return ok
}
