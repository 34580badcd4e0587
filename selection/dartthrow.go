package selection

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"go.viam.com/pointthin/octree"
	"go.viam.com/pointthin/point"
)

// PerformDartThrowingSelection runs the parallel dart-throwing engine, per
// spec.md section 4.4.2. workers caps the number of cells processed
// concurrently within a bucket pass; a value <= 0 leaves it unbounded.
//
// The octree is partitioned into cells at a dilated depth whose side is at
// least 3.15*radius, then processed in 8 sequential passes bucketed by
// child index. When the octree is too shallow to hold cells of that depth,
// the root is processed as the single cell. Every cell differs from each of
// its neighbors in at least one parity bit, so cells within one pass are
// never adjacent, never read or write the same sample and can run
// concurrently without locking.
func (s *Selection) PerformDartThrowingSelection(ctx context.Context, workers int) error {
	d := 2.1 * s.radius
	dp := s.octree.Depth() - int(math.Floor(math.Log2(s.octree.Size()/(1.5*d))))
	if dp > s.octree.Depth() {
		dp = s.octree.Depth()
	}

	buckets := s.octree.GetNodesBucketed(dp, s.octree.Root())

	// Each cell gets its own RNG, seeded from a shared base plus a
	// distinct sequence number. This avoids reseeding per cell from the
	// wall clock, which would give cells processed in the same instant
	// identical draws; see the RNG decision in SPEC_FULL.md section 5.
	baseSeed := time.Now().UnixNano()
	var workerSeq int64

	for _, bucket := range buckets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(bucket) == 0 {
			continue
		}

		localLists := make([][]*point.Sample, len(bucket))

		g, gctx := errgroup.WithContext(ctx)
		if workers > 0 {
			g.SetLimit(workers)
		}
		for j, cell := range bucket {
			j, cell := j, cell
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				seed := baseSeed + atomic.AddInt64(&workerSeq, 1)
				rng := rand.New(rand.NewSource(seed))
				localLists[j] = s.performDartThrowingCell(cell, rng)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, list := range localLists {
			s.selectedSamples = append(s.selectedSamples, list...)
		}
	}
	return nil
}

// performDartThrowingCell runs the dart-throwing loop over every uncovered
// sample owned by cell, using a private iterator so no state is shared
// with any concurrently running cell.
func (s *Selection) performDartThrowingCell(cell *octree.Node, rng *rand.Rand) []*point.Sample {
	var leaves []*octree.Node
	s.octree.GetNodes(0, cell, &leaves)

	it := octree.NewIterator(s.octree)
	// SetR fails only when the radius is not below the octree's side, which
	// happens for a depth-zero octree; the iterator then keeps NewIterator's
	// defaults, as described on Selection.New.
	_ = it.SetR(s.radius)

	working := make([]*point.Sample, 0)
	index := make(map[*point.Sample]int)
	for _, leaf := range leaves {
		for _, sample := range leaf.Points() {
			if !sample.Covered() {
				index[sample] = len(working)
				working = append(working, sample)
			}
		}
	}

	remove := func(sample *point.Sample) {
		idx, ok := index[sample]
		if !ok {
			return
		}
		last := len(working) - 1
		working[idx] = working[last]
		index[working[idx]] = idx
		working = working[:last]
		delete(index, sample)
	}

	var selected []*point.Sample
	for len(working) > 0 {
		sample := working[rng.Intn(len(working))]
		remove(sample)
		if sample.Covered() {
			continue
		}

		// sample is always among its own neighbors (distance zero); the
		// SetSelected(true) below restores it after this loop demotes it
		// along with the rest.
		neighbors := it.GetNeighbors(sample.Point)
		for _, n := range neighbors {
			remove(n)
			n.SetCovered(true)
			n.SetSelected(false)
			n.IncreaseNCovered()
		}
		sample.SetSelected(true)
		selected = append(selected, sample)
	}
	return selected
}
