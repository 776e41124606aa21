package epidemic

import (
	"epigrid/internal/core"
	"epigrid/internal/engine"
	"epigrid/internal/sird"
)

// World runs a spatial SIRD epidemic on a rectangular lattice. The engine
// owns the cells and the publish-delay machinery; this type adds outbreak
// seeding, per-compartment field buffers for the overlay, and the display
// byte encoding the renderer consumes.
type World struct {
	cfg  Config
	grid *engine.Grid

	// external is set when the world wraps a loaded scenario file; it then
	// takes precedence over the flag-style config and random outbreak
	// seeding is skipped, since the scenario's cell overrides carry the
	// initial infected mass.
	external *engine.Scenario

	susceptible []float32
	infected    []float32
	recovered   []float32
	deceased    []float32
	display     []uint8
}

// New returns an epidemic simulation with the provided dimensions using
// defaults.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns an epidemic world configured from the provided
// options, with the lattice built and the outbreaks seeded from the
// configured seed.
func NewWithConfig(cfg Config) *World {
	total := cfg.Width * cfg.Height
	if total < 0 {
		total = 0
	}
	w := &World{
		cfg:         cfg,
		susceptible: make([]float32, total),
		infected:    make([]float32, total),
		recovered:   make([]float32, total),
		deceased:    make([]float32, total),
		display:     make([]uint8, total),
	}
	w.Reset(cfg.Seed)
	return w
}

// NewFromScenario wraps a declarative scenario, typically loaded from a
// JSON file. Reset rebuilds the lattice from the scenario instead of the
// flag-style configuration.
func NewFromScenario(sc engine.Scenario) (*World, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Width = sc.Shape[0]
	cfg.Height = sc.Shape[1]
	// The HUD snapshot and live tuning read cfg.Params, so the scenario's
	// defaults must land there instead of the flag defaults.
	cfg.Params.Population = sc.DefaultState.Population
	cfg.Params.Virulence = sc.DefaultConfig.Virulence
	cfg.Params.Recovery = sc.DefaultConfig.Recovery
	cfg.Params.Immunity = sc.DefaultConfig.Immunity
	cfg.Params.Fatality = sc.DefaultConfig.Fatality
	cfg.Params.Mobility = sc.DefaultVicinity.Mobility
	cfg.Params.Connectivity = sc.DefaultVicinity.Connectivity
	if sc.Neighborhood == engine.VonNeumann {
		cfg.Params.Neighborhood = "von_neumann"
	}
	if sc.Delay > 0 {
		cfg.Params.Delay = sc.Delay
	}
	total := cfg.Width * cfg.Height
	w := &World{
		cfg:         cfg,
		external:    &sc,
		susceptible: make([]float32, total),
		infected:    make([]float32, total),
		recovered:   make([]float32, total),
		deceased:    make([]float32, total),
		display:     make([]uint8, total),
	}
	w.Reset(cfg.Seed)
	return w, nil
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "epidemic" }

// Size reports the lattice dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.cfg.Width, H: w.cfg.Height} }

// Cells exposes the current display buffer.
func (w *World) Cells() []uint8 { return w.display }

// SusceptibleField exposes the susceptible fractions, row-major.
func (w *World) SusceptibleField() []float32 { return w.susceptible }

// InfectedField exposes the infected fractions, row-major.
func (w *World) InfectedField() []float32 { return w.infected }

// RecoveredField exposes the recovered fractions, row-major.
func (w *World) RecoveredField() []float32 { return w.recovered }

// DeceasedField exposes the deceased fractions, row-major.
func (w *World) DeceasedField() []float32 { return w.deceased }

// Totals aggregates the compartments across the lattice.
func (w *World) Totals() engine.Totals { return w.grid.Aggregate() }

// Tick reports how many steps the current lattice has taken.
func (w *World) Tick() int { return w.grid.Tick() }

// scenario translates the sim config into the engine's declarative form, or
// returns the wrapped external scenario when one was loaded.
func (w *World) scenario() engine.Scenario {
	if w.external != nil {
		return *w.external
	}
	kind := engine.Moore
	if w.cfg.Params.Neighborhood == "von_neumann" {
		kind = engine.VonNeumann
	}
	return engine.Scenario{
		Shape:        [2]int{w.cfg.Width, w.cfg.Height},
		Neighborhood: kind,
		Delay:        w.cfg.Params.Delay,
		DefaultState: sird.State{
			Susceptible: 1,
			Population:  w.cfg.Params.Population,
		},
		DefaultConfig: sird.Config{
			Virulence: w.cfg.Params.Virulence,
			Recovery:  w.cfg.Params.Recovery,
			Immunity:  w.cfg.Params.Immunity,
			Fatality:  w.cfg.Params.Fatality,
		},
		DefaultVicinity: sird.Vicinity{
			Mobility:     w.cfg.Params.Mobility,
			Connectivity: w.cfg.Params.Connectivity,
		},
	}
}

// Reset rebuilds the lattice from the configuration and seeds the outbreaks
// deterministically. Seed 0 falls back to the configured seed.
func (w *World) Reset(seed int64) {
	if w.cfg.Width <= 0 || w.cfg.Height <= 0 {
		return
	}
	grid, err := engine.New(w.scenario())
	if err != nil {
		// FromMap and the setters keep the config inside the scenario's
		// valid range, so this is a programming error.
		panic("epidemic: invalid scenario: " + err.Error())
	}
	w.grid = grid

	if w.external == nil {
		effective := seed
		if effective == 0 {
			effective = w.cfg.Seed
		}
		w.seedOutbreaks(core.NewRNG(effective))
	}
	w.rebuild()
}

// seedOutbreaks places circular patches of initial infected mass at random
// lattice positions.
func (w *World) seedOutbreaks(rng *core.RNG) {
	count := w.cfg.Params.OutbreakCount
	radius := w.cfg.Params.OutbreakRadius
	infected := w.cfg.Params.OutbreakInfected
	if count <= 0 || infected <= 0 {
		return
	}
	r2 := radius * radius
	for o := 0; o < count; o++ {
		cx := rng.IntN(w.cfg.Width)
		cy := rng.IntN(w.cfg.Height)
		for dy := -radius; dy <= radius; dy++ {
			y := cy + dy
			if y < 0 || y >= w.cfg.Height {
				continue
			}
			for dx := -radius; dx <= radius; dx++ {
				x := cx + dx
				if x < 0 || x >= w.cfg.Width {
					continue
				}
				if dx*dx+dy*dy > r2 {
					continue
				}
				w.grid.SetInitial(x, y, sird.State{
					Susceptible: 1 - infected,
					Infected:    infected,
					Population:  w.cfg.Params.Population,
				})
			}
		}
	}
}

// Step advances the epidemic by one tick.
func (w *World) Step() {
	if w.grid == nil {
		return
	}
	w.grid.Step()
	w.rebuild()
}

// rebuild refreshes the field buffers and the display bytes from the
// committed cell states.
func (w *World) rebuild() {
	for y := 0; y < w.cfg.Height; y++ {
		for x := 0; x < w.cfg.Width; x++ {
			i := y*w.cfg.Width + x
			s := w.grid.StateAt(x, y)
			w.susceptible[i] = float32(s.Susceptible)
			w.infected[i] = float32(s.Infected)
			w.recovered[i] = float32(s.Recovered)
			w.deceased[i] = float32(s.Deceased)
			w.display[i] = encodeDisplayValue(s)
		}
	}
}

func init() {
	core.Register("epidemic", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
