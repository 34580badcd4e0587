package selection

import "go.viam.com/pointthin/octree"

// PerformSelection runs the deterministic greedy scan: a single depth-first
// traversal of the octree that visits every leaf sample once, in
// octree-traversal order, per spec.md section 4.4.1.
func (s *Selection) PerformSelection() {
	s.performSelection(s.octree.Root())
}

// performSelection descends from cell to the depth at which the iterator
// searches (par, below), then hands off to performSelectionAt.
func (s *Selection) performSelection(cell *octree.Node) {
	if cell.Depth() > s.iterator.Depth() {
		for i := 0; i < 8; i++ {
			if child := cell.Child(i); child != nil {
				s.performSelection(child)
			}
		}
		return
	}
	s.performSelectionAt(cell, cell)
}

// performSelectionAt descends from cell to its leaves, using par — the
// ancestor cell at the iterator's active depth — as the known cell for
// every neighbor query below it.
func (s *Selection) performSelectionAt(cell, par *octree.Node) {
	if cell.Depth() > 0 {
		for i := 0; i < 8; i++ {
			if child := cell.Child(i); child != nil {
				s.performSelectionAt(child, par)
			}
		}
		return
	}
	if cell.NPoints() == 0 {
		return
	}

	for _, sample := range cell.Points() {
		if sample.Covered() {
			continue
		}

		// sample always appears in its own neighbor list (distance zero to
		// itself); the unconditional SetSelected(true) below restores its
		// flag after the covering loop below sets it back to false along
		// with every other neighbor.
		neighbors := s.iterator.GetNeighborsAt(sample.Point, par)
		if len(neighbors) < 3 {
			// Isolated outlier: too few nearby samples to trust as a seed.
			sample.SetSelected(false)
			continue
		}

		for _, n := range neighbors {
			n.SetCovered(true)
			n.SetSelected(false)
			n.IncreaseNCovered()
		}
		sample.SetSelected(true)
		s.selectedSamples = append(s.selectedSamples, sample)
	}
}
