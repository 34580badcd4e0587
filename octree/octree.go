package octree

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/pointthin/point"
)

// Octree owns the root of a loose-bounding-box octree and routes samples
// to their leaves. It is built once, in full, before any query or
// selection runs against it; nothing after Initialize/AddPoints mutates
// its structure.
type Octree struct {
	origin r3.Vector
	size   float64
	depth  int
	// binsize is 2^depth: the number of leaf cells along one axis of the
	// root cube, and the divisor used to turn a coordinate into a
	// locational code.
	binsize uint32

	npoints int
	root    *Node

	// nonEmptyCells[k] counts the non-root cells of depth k created so
	// far; NonEmptyCells exposes it.
	nonEmptyCells []int
}

// New returns an Octree configured for the given maximum depth. Initialize
// must still be called before any point is added.
func New(depth int) *Octree {
	return &Octree{
		depth:         depth,
		binsize:       uint32(1) << uint(depth),
		nonEmptyCells: make([]int, depth),
	}
}

// Depth returns the octree's maximum depth D.
func (o *Octree) Depth() int { return o.depth }

// Origin returns the octree's bounding-cube min-corner.
func (o *Octree) Origin() r3.Vector { return o.origin }

// Size returns the octree's bounding-cube side length.
func (o *Octree) Size() float64 { return o.size }

// BinSize returns 2^Depth, the number of leaf cells along one axis.
func (o *Octree) BinSize() uint32 { return o.binsize }

// NPoints returns the total number of samples inserted so far.
func (o *Octree) NPoints() int { return o.npoints }

// Root returns the octree's root node.
func (o *Octree) Root() *Node { return o.root }

// NonEmptyCells returns the number of non-root cells created at depth k,
// for k in [0, Depth).
func (o *Octree) NonEmptyCells(k int) int {
	if k < 0 || k >= len(o.nonEmptyCells) {
		return 0
	}
	return o.nonEmptyCells[k]
}

// Initialize constructs the root cell at the configured depth D, covering
// [origin, origin+size) on every axis. It must be called before AddPoint.
func (o *Octree) Initialize(origin r3.Vector, size float64) {
	o.origin = origin
	o.size = size
	o.root = newNode(origin, size, o.depth)
}

// AddPoint routes s to its leaf, lazily creating any intermediate cells
// along the way, per spec.md section 4.2. Callers must ensure s lies
// strictly inside the bounding cube (BoundingBox guarantees this with a
// margin). Each child index is taken from one bit of the code per axis, so
// a point outside the cube is not detected: it is stored in a leaf that
// does not contain it.
func (o *Octree) AddPoint(s *point.Sample) {
	v := s.Vector()
	codx := uint32(math.Floor((v.X - o.origin.X) / o.size * float64(o.binsize)))
	cody := uint32(math.Floor((v.Y - o.origin.Y) / o.size * float64(o.binsize)))
	codz := uint32(math.Floor((v.Z - o.origin.Z) / o.size * float64(o.binsize)))

	node := o.root
	for l := node.depth - 1; l >= 0; l-- {
		bit := uint(l)
		x := (codx >> bit) & 1
		y := (cody >> bit) & 1
		z := (codz >> bit) & 1
		childIndex := int((x << 2) | (y << 1) | z)

		child := node.children[childIndex]
		if child == nil {
			childDepth := node.depth - 1
			childSize := node.size / 2
			childOrigin := r3.Vector{
				X: node.origin.X + float64(x)*childSize,
				Y: node.origin.Y + float64(y)*childSize,
				Z: node.origin.Z + float64(z)*childSize,
			}
			child = node.InitializeChild(childIndex, childOrigin)
			child.xloc = node.xloc + (x << uint(childDepth))
			child.yloc = node.yloc + (y << uint(childDepth))
			child.zloc = node.zloc + (z << uint(childDepth))
			o.nonEmptyCells[childDepth]++
		}
		node = child
	}

	node.AddPoint(s)
	o.npoints++
}

// AddPoints routes every sample in samples to its leaf.
func (o *Octree) AddPoints(samples []*point.Sample) {
	for _, s := range samples {
		o.AddPoint(s)
	}
}

// GetNodes performs a depth-first traversal from start and appends every
// node whose depth equals depth to out.
func (o *Octree) GetNodes(depth int, start *Node, out *[]*Node) {
	if start == nil {
		return
	}
	if start.depth == depth {
		*out = append(*out, start)
		return
	}
	for i := 0; i < 8; i++ {
		o.GetNodes(depth, start.children[i], out)
	}
}

// GetNodesBucketed collects every node at depth reachable from start, the
// same way GetNodes does, but grouped into 8 buckets keyed by each node's
// ChildIndex. Every node differs from each of its 26 face/edge/corner
// neighbors in at least one parity bit, so no two nodes in a bucket are
// adjacent and a caller can safely process one bucket's cells
// concurrently: see selection.PerformDartThrowingSelection.
func (o *Octree) GetNodesBucketed(depth int, start *Node) [8][]*Node {
	var nodes []*Node
	o.GetNodes(depth, start, &nodes)

	var buckets [8][]*Node
	for _, n := range nodes {
		buckets[n.childIndex] = append(buckets[n.childIndex], n)
	}
	return buckets
}

// BoundingBox computes the origin and side length of a loose bounding cube
// around [lo, hi], per spec.md section 4.5: extent = 1.1*max axis span; if
// minRadius > 0 the cube side is rounded up to a power-of-two multiple of
// minRadius (so the leaf side equals minRadius) and the required octree
// depth is returned; otherwise a flat 5% margin is used and depth is 0
// (the caller is expected to have already chosen a depth in that case).
func BoundingBox(lo, hi r3.Vector, minRadius float64) (origin r3.Vector, size float64, depth int, err error) {
	lx := hi.X - lo.X
	ly := hi.Y - lo.Y
	lz := hi.Z - lo.Z
	if lx < 0 || ly < 0 || lz < 0 {
		return r3.Vector{}, 0, 0, errors.New("bounding box: hi must be >= lo on every axis")
	}

	extent := lx
	if ly > extent {
		extent = ly
	}
	if lz > extent {
		extent = lz
	}
	extent *= 1.1

	var margin, adaptedSize float64
	if minRadius > 0 {
		depth = int(math.Ceil(math.Log2(extent / minRadius)))
		if depth < 0 {
			depth = 0
		}
		adaptedSize = math.Pow(2, float64(depth)) * minRadius
		margin = 0.5 * (adaptedSize - extent)
	} else {
		adaptedSize = extent
		margin = 0.05 * extent
	}

	origin = r3.Vector{X: lo.X - margin, Y: lo.Y - margin, Z: lo.Z - margin}
	return origin, adaptedSize, depth, nil
}
