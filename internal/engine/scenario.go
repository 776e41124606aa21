package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"epigrid/internal/sird"
)

// fractionTolerance bounds how far a cell's compartments may drift from
// summing to 1 before the scenario is rejected.
const fractionTolerance = 1e-6

// NeighborhoodKind selects the lattice neighborhood shape.
type NeighborhoodKind string

const (
	// Moore is the 8-cell neighborhood including diagonals.
	Moore NeighborhoodKind = "moore"
	// VonNeumann is the 4-cell orthogonal neighborhood.
	VonNeumann NeighborhoodKind = "von_neumann"
)

// offsets lists the relative coordinates of the neighborhood, optionally
// including the cell itself.
func (k NeighborhoodKind) offsets(selfLoop bool) [][2]int {
	var offs [][2]int
	switch k {
	case VonNeumann:
		offs = [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	default:
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				offs = append(offs, [2]int{dx, dy})
			}
		}
	}
	if selfLoop {
		offs = append(offs, [2]int{0, 0})
	}
	return offs
}

// CellOverride customizes a single lattice site. Nil fields fall back to the
// scenario defaults. The vicinity override applies to the edges this cell
// uses to observe its neighbors.
type CellOverride struct {
	ID       [2]int         `json:"id"`
	State    *sird.State    `json:"state,omitempty"`
	Config   *sird.Config   `json:"config,omitempty"`
	Vicinity *sird.Vicinity `json:"vicinity,omitempty"`
}

// Scenario is the declarative description of a simulation run: lattice
// shape, neighborhood, output delay, defaults for state, rates and
// vicinities, and per-cell overrides. It is the only place configuration is
// validated; the transition math assumes well-formed inputs.
type Scenario struct {
	Shape        [2]int           `json:"shape"`
	Neighborhood NeighborhoodKind `json:"neighborhood"`
	SelfLoop     bool             `json:"self_loop"`
	Delay        int              `json:"delay"`

	DefaultState    sird.State    `json:"default_state"`
	DefaultConfig   sird.Config   `json:"default_config"`
	DefaultVicinity sird.Vicinity `json:"default_vicinity"`

	Cells []CellOverride `json:"cells,omitempty"`
}

// LoadScenario decodes and validates a JSON scenario.
func LoadScenario(r io.Reader) (Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("engine: decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate rejects malformed scenarios so the pure core never sees a
// degenerate input such as a zero population.
func (sc Scenario) Validate() error {
	if sc.Shape[0] <= 0 || sc.Shape[1] <= 0 {
		return fmt.Errorf("engine: scenario shape %dx%d must be positive", sc.Shape[0], sc.Shape[1])
	}
	switch sc.Neighborhood {
	case "", Moore, VonNeumann:
	default:
		return fmt.Errorf("engine: unknown neighborhood %q", sc.Neighborhood)
	}
	if sc.Delay < 0 {
		return fmt.Errorf("engine: output delay %d must not be negative", sc.Delay)
	}
	if err := validateState(sc.DefaultState); err != nil {
		return fmt.Errorf("engine: default state: %w", err)
	}
	if err := validateConfig(sc.DefaultConfig); err != nil {
		return fmt.Errorf("engine: default config: %w", err)
	}
	if err := validateVicinity(sc.DefaultVicinity); err != nil {
		return fmt.Errorf("engine: default vicinity: %w", err)
	}

	seen := make(map[[2]int]bool, len(sc.Cells))
	for _, ov := range sc.Cells {
		x, y := ov.ID[0], ov.ID[1]
		if x < 0 || x >= sc.Shape[0] || y < 0 || y >= sc.Shape[1] {
			return fmt.Errorf("engine: cell override (%d,%d) outside %dx%d lattice", x, y, sc.Shape[0], sc.Shape[1])
		}
		if seen[ov.ID] {
			return fmt.Errorf("engine: duplicate cell override (%d,%d)", x, y)
		}
		seen[ov.ID] = true
		if ov.State != nil {
			if err := validateState(*ov.State); err != nil {
				return fmt.Errorf("engine: cell (%d,%d) state: %w", x, y, err)
			}
		}
		if ov.Config != nil {
			if err := validateConfig(*ov.Config); err != nil {
				return fmt.Errorf("engine: cell (%d,%d) config: %w", x, y, err)
			}
		}
		if ov.Vicinity != nil {
			if err := validateVicinity(*ov.Vicinity); err != nil {
				return fmt.Errorf("engine: cell (%d,%d) vicinity: %w", x, y, err)
			}
		}
	}
	return nil
}

func validateState(s sird.State) error {
	if s.Population <= 0 {
		return fmt.Errorf("population %f must be positive", s.Population)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"susceptible", s.Susceptible},
		{"infected", s.Infected},
		{"recovered", s.Recovered},
		{"deceased", s.Deceased},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s fraction %f outside [0,1]", f.name, f.value)
		}
	}
	sum := s.Susceptible + s.Infected + s.Recovered + s.Deceased
	if math.Abs(sum-1) > fractionTolerance {
		return fmt.Errorf("compartments sum to %f, want 1", sum)
	}
	return nil
}

func validateConfig(c sird.Config) error {
	if c.Virulence < 0 {
		return fmt.Errorf("virulence %f must not be negative", c.Virulence)
	}
	if c.Recovery < 0 {
		return fmt.Errorf("recovery %f must not be negative", c.Recovery)
	}
	if c.Immunity < 0 || c.Immunity > 1 {
		return fmt.Errorf("immunity %f outside [0,1]", c.Immunity)
	}
	if c.Fatality < 0 {
		return fmt.Errorf("fatality %f must not be negative", c.Fatality)
	}
	return nil
}

func validateVicinity(v sird.Vicinity) error {
	if v.Mobility < 0 {
		return fmt.Errorf("mobility %f must not be negative", v.Mobility)
	}
	if v.Connectivity < 0 {
		return fmt.Errorf("connectivity %f must not be negative", v.Connectivity)
	}
	return nil
}
