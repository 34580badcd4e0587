// Package octree implements a loose-bounding-box octree over oriented point
// samples. Cells are addressed by an integer locational code in units of the
// leaf cell size, which lets the iterator (see iterator.go) find a query
// cell's face/edge/corner neighbors by pure arithmetic on that code, without
// ever dereferencing a sibling pointer.
package octree

import (
	"github.com/golang/geo/r3"

	"go.viam.com/pointthin/point"
)

// Node is one cell of the octree: an origin, a side length, a depth (0 at
// the leaves, increasing toward the root), a locational code, up to eight
// children, and — if it is a leaf — the samples that fell inside it.
//
// Depth counts down from the tree's max depth D at the root to 0 at the
// leaves, matching the locational-code arithmetic in Octree.AddPoint: at
// depth k a cell covers the half-open integer range [loc, loc+2^k) on each
// axis.
type Node struct {
	origin r3.Vector
	size   float64
	depth  int

	xloc, yloc, zloc uint32
	childIndex       int

	parent   *Node
	children [8]*Node

	points []*point.Sample
}

func newNode(origin r3.Vector, size float64, depth int) *Node {
	return &Node{origin: origin, size: size, depth: depth}
}

// Origin returns the cell's min-corner.
func (n *Node) Origin() r3.Vector { return n.origin }

// Size returns the cell's side length.
func (n *Node) Size() float64 { return n.size }

// Depth returns the cell's depth (0 at the leaves).
func (n *Node) Depth() int { return n.depth }

// Loc returns the cell's integer locational code, in units of the leaf
// cell's side.
func (n *Node) Loc() (x, y, z uint32) { return n.xloc, n.yloc, n.zloc }

// XLoc returns the x component of the cell's locational code.
func (n *Node) XLoc() uint32 { return n.xloc }

// YLoc returns the y component of the cell's locational code.
func (n *Node) YLoc() uint32 { return n.yloc }

// ZLoc returns the z component of the cell's locational code.
func (n *Node) ZLoc() uint32 { return n.zloc }

// ChildIndex returns the cell's position among its siblings, in [0,8).
func (n *Node) ChildIndex() int { return n.childIndex }

// Parent returns the cell's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Child returns the i'th child of the cell, or nil if it hasn't been
// created yet.
func (n *Node) Child(i int) *Node { return n.children[i&7] }

// Points returns the leaf's stored samples, in insertion order. It is empty
// for internal nodes.
func (n *Node) Points() []*point.Sample { return n.points }

// NPoints returns the number of samples stored directly in this leaf.
func (n *Node) NPoints() int { return len(n.points) }

// AddPoint appends a sample to this node's point list. It is only
// meaningful on leaves (depth 0); callers must have already descended the
// tree to the correct leaf.
func (n *Node) AddPoint(s *point.Sample) {
	n.points = append(n.points, s)
}

// InitializeChild creates, wires up and returns the index'th child of n,
// at depth-1 and half n's size.
func (n *Node) InitializeChild(index int, origin r3.Vector) *Node {
	child := newNode(origin, n.size/2, n.depth-1)
	child.parent = n
	child.childIndex = index
	n.children[index] = child
	return child
}

// IsInside reports whether p lies within the cell, optionally dilated by d
// on every side. The test is half-open on the high side: a point exactly
// on the cell's far face is outside.
func (n *Node) IsInside(p point.Point, d float64) bool {
	v := p.Vector()
	hi := n.size + d
	return v.X >= n.origin.X-d && v.X < n.origin.X+hi &&
		v.Y >= n.origin.Y-d && v.Y < n.origin.Y+hi &&
		v.Z >= n.origin.Z-d && v.Z < n.origin.Z+hi
}
