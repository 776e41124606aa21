package engine

import (
	"fmt"

	"epigrid/internal/sird"
)

// Rule is the capability set the engine drives on every cell: compute a
// candidate next state from an immutable snapshot, and report how long to
// hold it before observers may see it. sird.Model is the stock
// implementation.
type Rule interface {
	NextState(current sird.State, neighbors sird.Neighborhood) sird.State
	OutputDelay(next sird.State) int
}

var _ Rule = sird.Model{}

// publication is a computed state waiting for its output delay to elapse.
type publication struct {
	due   int
	state sird.State
}

// cell is one lattice site. Its observation map is the only thing its rule
// ever reads about other cells, so published states can lag committed ones.
type cell struct {
	id   sird.CellID
	x, y int
	cfg  sird.Config
	rule Rule

	state     sird.State       // committed current state
	published sird.State       // what observers currently see
	watch     sird.Neighborhood // neighbor id -> published state + vicinity
	observers []*cell          // cells that list this cell as a neighbor
	pending   []publication
}

// Grid is a finite rectangular lattice of cells stepped synchronously. All
// computations of a tick read observation maps frozen before the tick, so a
// cell's rule never sees a half-delivered publication.
type Grid struct {
	w, h  int
	cells []*cell
	tick  int
	delay int
}

// CoordID encodes lattice coordinates as an opaque cell identity.
func CoordID(x, y int) sird.CellID {
	return sird.CellID(fmt.Sprintf("%d,%d", x, y))
}

// New constructs a grid from a validated scenario. Neighborhoods do not wrap:
// the lattice models a finite region, so border cells simply have fewer
// neighbors.
func New(sc Scenario) (*Grid, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	w, h := sc.Shape[0], sc.Shape[1]
	g := &Grid{
		w:     w,
		h:     h,
		cells: make([]*cell, 0, w*h),
		delay: 1,
	}
	if sc.Delay > 0 {
		g.delay = sc.Delay
	}

	overrides := make(map[[2]int]CellOverride, len(sc.Cells))
	for _, ov := range sc.Cells {
		overrides[ov.ID] = ov
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			state := sc.DefaultState
			cfg := sc.DefaultConfig
			if ov, ok := overrides[[2]int{x, y}]; ok {
				if ov.State != nil {
					state = *ov.State
				}
				if ov.Config != nil {
					cfg = *ov.Config
				}
			}
			model := sird.NewModel(cfg)
			model.Delay = g.delay
			c := &cell{
				id:        CoordID(x, y),
				x:         x,
				y:         y,
				cfg:       cfg,
				rule:      model,
				state:     state,
				published: state,
			}
			g.cells = append(g.cells, c)
		}
	}

	g.wire(sc, overrides)
	return g, nil
}

// wire builds every cell's observation map and the reverse observer lists.
// The vicinity stored on an edge belongs to the observing cell: a per-cell
// override changes how that cell weighs all of its neighbors.
func (g *Grid) wire(sc Scenario, overrides map[[2]int]CellOverride) {
	offsets := sc.Neighborhood.offsets(sc.SelfLoop)
	for _, c := range g.cells {
		vicinity := sc.DefaultVicinity
		if ov, ok := overrides[[2]int{c.x, c.y}]; ok && ov.Vicinity != nil {
			vicinity = *ov.Vicinity
		}
		c.watch = make(sird.Neighborhood, len(offsets))
		for _, off := range offsets {
			nx, ny := c.x+off[0], c.y+off[1]
			if nx < 0 || nx >= g.w || ny < 0 || ny >= g.h {
				continue
			}
			n := g.cells[ny*g.w+nx]
			c.watch[n.id] = sird.Observation{State: n.published, Vicinity: vicinity}
			n.observers = append(n.observers, c)
		}
	}
}

// Step advances the whole lattice by one tick: every cell computes a
// candidate from its frozen observation map, commits it, and enqueues a
// publication; then all publications that have come due are delivered into
// the observers' maps.
func (g *Grid) Step() {
	for _, c := range g.cells {
		next := c.rule.NextState(c.state, c.watch)
		delay := c.rule.OutputDelay(next)
		c.state = next
		c.pending = append(c.pending, publication{due: g.tick + delay, state: next})
	}
	g.tick++
	for _, c := range g.cells {
		g.deliver(c)
	}
}

// deliver publishes the newest pending state that has come due. Everything
// queued before it describes an older state, so it is dropped even when its
// due tick lies in the future: a rule swap can shorten the delay and let a
// newer publication come due first, and the obsolete one must never surface
// afterwards.
func (g *Grid) deliver(c *cell) {
	due := -1
	for i, p := range c.pending {
		if p.due <= g.tick {
			due = i
		}
	}
	if due < 0 {
		return
	}
	p := c.pending[due]
	c.published = p.state
	for _, o := range c.observers {
		obs := o.watch[c.id]
		obs.State = p.state
		o.watch[c.id] = obs
	}
	c.pending = append(c.pending[:0], c.pending[due+1:]...)
}

// Width reports the lattice width.
func (g *Grid) Width() int { return g.w }

// Height reports the lattice height.
func (g *Grid) Height() int { return g.h }

// Tick reports how many steps have been taken.
func (g *Grid) Tick() int { return g.tick }

// StateAt returns the committed state of the cell at (x, y).
func (g *Grid) StateAt(x, y int) sird.State {
	return g.cells[y*g.w+x].state
}

// PublishedAt returns the state observers of (x, y) currently see.
func (g *Grid) PublishedAt(x, y int) sird.State {
	return g.cells[y*g.w+x].published
}

// SetInitial replaces the state of the cell at (x, y) before the first step,
// updating the snapshot every observer holds. Used for outbreak seeding;
// calling it after stepping has begun would tear the staleness contract, so
// it panics then.
func (g *Grid) SetInitial(x, y int, s sird.State) {
	if g.tick != 0 {
		panic("engine: SetInitial after Step")
	}
	c := g.cells[y*g.w+x]
	c.state = s
	c.published = s
	for _, o := range c.observers {
		obs := o.watch[c.id]
		obs.State = s
		o.watch[c.id] = obs
	}
}

// SetRule swaps the rule of every cell with a single shared one, discarding
// per-cell configurations. Rate changes should go through Tune instead.
func (g *Grid) SetRule(r Rule) {
	for _, c := range g.cells {
		c.rule = r
	}
}

// Tune rebuilds every cell's model from its own configuration after applying
// the mutation, so live rate changes leave per-cell overrides intact on the
// fields the mutation does not touch. Delay values < 1 keep the delay the
// lattice was built with.
func (g *Grid) Tune(delay int, mutate func(sird.Config) sird.Config) {
	if delay > 0 {
		g.delay = delay
	}
	for _, c := range g.cells {
		c.cfg = mutate(c.cfg)
		m := sird.NewModel(c.cfg)
		m.Delay = g.delay
		c.rule = m
	}
}

// Totals aggregates the four compartments across the lattice, weighted by
// cell population.
type Totals struct {
	Susceptible float64
	Infected    float64
	Recovered   float64
	Deceased    float64
	Population  float64
}

// Aggregate sums the committed states of all cells into population-weighted
// compartment fractions.
func (g *Grid) Aggregate() Totals {
	var t Totals
	for _, c := range g.cells {
		p := c.state.Population
		t.Susceptible += c.state.Susceptible * p
		t.Infected += c.state.Infected * p
		t.Recovered += c.state.Recovered * p
		t.Deceased += c.state.Deceased * p
		t.Population += p
	}
	if t.Population > 0 {
		t.Susceptible /= t.Population
		t.Infected /= t.Population
		t.Recovered /= t.Population
		t.Deceased /= t.Population
	}
	return t
}
