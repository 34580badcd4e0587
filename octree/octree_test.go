package octree

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/pointthin/point"
)

func TestBoundingBox(t *testing.T) {
	origin, size, depth, err := BoundingBox(r3.Vector{}, r3.Vector{X: 10, Y: 10, Z: 10}, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, depth, test.ShouldBeGreaterThanOrEqualTo, 4)
	test.That(t, size, test.ShouldBeGreaterThanOrEqualTo, 11.0)
	test.That(t, origin.X, test.ShouldBeLessThan, 0.0)

	// The adapted cube must fully contain the margined input box.
	margin := (size - 11.0) / 2
	test.That(t, margin, test.ShouldBeGreaterThanOrEqualTo, 0.0)
}

func TestBoundingBoxInvalid(t *testing.T) {
	_, _, _, err := BoundingBox(r3.Vector{X: 5}, r3.Vector{X: 0}, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOctreeAddPointRoundTrip(t *testing.T) {
	lo := r3.Vector{}
	hi := r3.Vector{X: 10, Y: 10, Z: 10}
	radius := 1.0

	origin, size, depth, err := BoundingBox(lo, hi, radius)
	test.That(t, err, test.ShouldBeNil)

	o := New(depth)
	o.Initialize(origin, size)

	samples := []*point.Sample{
		point.NewSample(1, 1, 1),
		point.NewSample(2, 2, 2),
		point.NewSample(9, 9, 9),
	}
	o.AddPoints(samples)

	test.That(t, o.NPoints(), test.ShouldEqual, len(samples))

	var leaves []*Node
	o.GetNodes(0, o.Root(), &leaves)

	total := 0
	for _, leaf := range leaves {
		total += leaf.NPoints()
	}
	test.That(t, total, test.ShouldEqual, len(samples))
}

func TestOctreeGetNodesBucketed(t *testing.T) {
	o := New(3)
	o.Initialize(r3.Vector{}, 8)

	samples := make([]*point.Sample, 0)
	for x := 0.5; x < 8; x += 1.0 {
		for y := 0.5; y < 8; y += 1.0 {
			samples = append(samples, point.NewSample(x, y, 0.5))
		}
	}
	o.AddPoints(samples)

	buckets := o.GetNodesBucketed(0, o.Root())

	seen := map[*Node]int{}
	for bucketIdx, bucket := range buckets {
		for _, n := range bucket {
			test.That(t, n.ChildIndex(), test.ShouldEqual, bucketIdx)
			seen[n]++
		}
	}
	for _, count := range seen {
		test.That(t, count, test.ShouldEqual, 1)
	}
}
