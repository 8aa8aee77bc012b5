package construct

import "math/rand/v2"

// random implements the random-feasible heuristic: a frontier of ready
// tasks (all predecessors placed) is seeded with the roots, one ready task
// is drawn uniformly at random, and placing it releases any successors
// whose predecessors are now all placed. The frontier refill guarantees
// every task is eventually drawn, including tasks in disconnected sub-DAGs.
func (b *builder) random(rng *rand.Rand) error {
	g := b.plan.Graph()
	succ := g.Flip()

	pending := make(map[int]int, len(g))
	for id, preds := range g {
		pending[id] = len(preds)
	}

	frontier := g.Roots()
	for len(frontier) > 0 {
		i := rng.IntN(len(frontier))
		id := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if err := b.place(b.plan.Task(id)); err != nil {
			return err
		}
		for _, s := range succ[id] {
			pending[s]--
			if pending[s] == 0 {
				frontier = append(frontier, s)
			}
		}
	}
	return nil
}

// breadthFirst places tasks layer by layer in shuffled within-layer order.
// A task opens a new station only when it does not fit the currently open
// one; earlier stations are never revisited.
func (b *builder) breadthFirst(rng *rand.Rand) error {
	layers, err := b.plan.Graph().Layers()
	if err != nil {
		return err
	}

	for _, layer := range layers {
		for _, id := range shuffled(rng, layer) {
			if err := b.place(b.plan.Task(id)); err != nil {
				return err
			}
		}
	}
	return nil
}

// compacting is the compacting breadth-first heuristic: same layer order as
// breadthFirst, but a task that does not fit the open station is tried
// against every station from the layer's floor index forward before a new
// one is opened. After each layer the floor advances to one below the
// stations opened so far, deliberately keeping the previous station
// retryable for one more layer.
func (b *builder) compacting(rng *rand.Rand) error {
	layers, err := b.plan.Graph().Layers()
	if err != nil {
		return err
	}

	floor := 0
	for _, layer := range layers {
		for _, id := range shuffled(rng, layer) {
			t := b.plan.Task(id)

			target := -1
			for s := floor; s <= b.current; s++ {
				if b.fits(s, t) {
					target = s
					break
				}
			}
			if target < 0 {
				if b.loads[b.current] > 0 {
					b.open()
				}
				target = b.current
			}
			if err := b.placeAt(target, t); err != nil {
				return err
			}
		}
		floor = b.opened() - 1
	}
	return nil
}

// depthFirst walks the DAG from shuffled roots toward the leaves, placing
// each task into the last-opened station when it fits. Unplaced
// predecessors are pulled in (recursively, in shuffled order) right before
// the task itself, so the assignment follows root-to-leaf paths rather
// than layers.
func (b *builder) depthFirst(rng *rand.Rand) error {
	g := b.plan.Graph()
	succ := g.Flip()
	seen := make([]bool, len(b.placed))

	// settle places the task after recursively settling any unplaced
	// predecessors, keeping precedence intact along the walk.
	var settle func(id int) error
	settle = func(id int) error {
		if b.placed[id] {
			return nil
		}
		for _, p := range shuffled(rng, g[id]) {
			if err := settle(p); err != nil {
				return err
			}
		}
		return b.place(b.plan.Task(id))
	}

	var visit func(id int) error
	visit = func(id int) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		if err := settle(id); err != nil {
			return err
		}
		for _, s := range shuffled(rng, succ[id]) {
			if err := visit(s); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range shuffled(rng, g.Roots()) {
		if err := visit(root); err != nil {
			return err
		}
	}
	return nil
}
