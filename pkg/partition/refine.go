package partition

// refine runs the bounded local search: first-improvement pair swaps, then
// a tallest-to-shortest move, then (late in the budget, if a Rand is
// configured) a random escape swap. The loop exits on target reached,
// budget exhausted, or a full pass with no productive action.
func (s *state) refine(opts Options) {
	escapeAfter := int(float64(opts.MaxIterations) * escapePhase)

	for s.iterations < opts.MaxIterations {
		s.iterations++

		if s.trySwap() {
			s.maybeSnapshot()
			if s.bestVariation <= opts.TargetVariation {
				return
			}
			continue
		}

		if s.tryMove() {
			s.maybeSnapshot()
			if s.bestVariation <= opts.TargetVariation {
				return
			}
			continue
		}

		// Plateau: no improving swap or move exists. A random exchange can
		// shake the search loose, but only once most of the budget is spent
		// and only when the caller opted into non-determinism.
		if opts.Rand != nil && s.iterations > escapeAfter {
			if s.randomSwap(opts) {
				s.maybeSnapshot()
				continue
			}
		}
		return
	}
}

// trySwap scans unordered pairs of items in different columns and applies
// the first swap that strictly reduces variation. Returns whether a swap
// was applied. First-improvement keeps individual iterations cheap; the
// outer loop re-evaluates the stop condition after every applied action.
func (s *state) trySwap() bool {
	n := len(s.col)
	current := s.variation()

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			ci, cj := s.col[i], s.col[j]
			if ci == cj {
				continue
			}
			if s.swapVariation(i, j) < current {
				s.swap(i, j)
				return true
			}
		}
	}
	return false
}

// swapVariation returns the variation that would result from swapping the
// column assignments of items i and j.
func (s *state) swapVariation(i, j int) float64 {
	ci, cj := s.col[i], s.col[j]
	delta := s.heights[j] - s.heights[i]

	hi := s.colHeights[ci] + delta
	hj := s.colHeights[cj] - delta

	maxH, minH := hi, hi
	if hj > maxH {
		maxH = hj
	}
	if hj < minH {
		minH = hj
	}
	for c, h := range s.colHeights {
		if c == ci || c == cj {
			continue
		}
		if h > maxH {
			maxH = h
		}
		if h < minH {
			minH = h
		}
	}
	if maxH <= 0 {
		return 0
	}
	return (maxH - minH) / maxH * 100
}

// swap exchanges the column assignments of items i and j, each taking the
// other's slot so per-column render order is otherwise preserved.
func (s *state) swap(i, j int) {
	ci, cj := s.col[i], s.col[j]

	s.cols[ci][indexOf(s.cols[ci], i)] = j
	s.cols[cj][indexOf(s.cols[cj], j)] = i

	delta := s.heights[j] - s.heights[i]
	s.colHeights[ci] += delta
	s.colHeights[cj] -= delta
	s.col[i], s.col[j] = cj, ci
}

// tryMove relocates the first item in the tallest column whose move to the
// shortest column strictly reduces variation. Returns whether a move was
// applied.
func (s *state) tryMove() bool {
	tallest, shortest := s.extremes()
	if tallest == shortest {
		return false
	}
	current := s.variation()

	for _, i := range s.cols[tallest] {
		if s.moveVariation(i, tallest, shortest) < current {
			s.move(i, tallest, shortest)
			return true
		}
	}
	return false
}

// moveVariation returns the variation that would result from moving item i
// from column from to column to.
func (s *state) moveVariation(i, from, to int) float64 {
	hf := s.colHeights[from] - s.heights[i]
	ht := s.colHeights[to] + s.heights[i]

	maxH, minH := hf, hf
	if ht > maxH {
		maxH = ht
	}
	if ht < minH {
		minH = ht
	}
	for c, h := range s.colHeights {
		if c == from || c == to {
			continue
		}
		if h > maxH {
			maxH = h
		}
		if h < minH {
			minH = h
		}
	}
	if maxH <= 0 {
		return 0
	}
	return (maxH - minH) / maxH * 100
}

// move removes item i from column from and appends it to column to.
func (s *state) move(i, from, to int) {
	pos := indexOf(s.cols[from], i)
	s.cols[from] = append(s.cols[from][:pos], s.cols[from][pos+1:]...)
	s.cols[to] = append(s.cols[to], i)

	s.colHeights[from] -= s.heights[i]
	s.colHeights[to] += s.heights[i]
	s.col[i] = to
}

// randomSwap exchanges two random items in different columns regardless of
// whether it improves variation. Returns false when no cross-column pair
// exists (fewer than two non-empty columns).
func (s *state) randomSwap(opts Options) bool {
	n := len(s.col)
	if n < 2 {
		return false
	}
	for attempt := 0; attempt < 8; attempt++ {
		i := opts.Rand.Intn(n)
		j := opts.Rand.Intn(n)
		if i != j && s.col[i] != s.col[j] {
			s.swap(i, j)
			return true
		}
	}
	return false
}

// extremes returns the indices of the tallest and shortest columns, ties
// broken by the lowest index.
func (s *state) extremes() (tallest, shortest int) {
	for c := 1; c < len(s.colHeights); c++ {
		if s.colHeights[c] > s.colHeights[tallest] {
			tallest = c
		}
		if s.colHeights[c] < s.colHeights[shortest] {
			shortest = c
		}
	}
	return tallest, shortest
}

func indexOf(col []int, i int) int {
	for pos, v := range col {
		if v == i {
			return pos
		}
	}
	return -1
}
