package sird

// CellID identifies a cell to the cells observing it. The value is opaque to
// the epidemic math; the engine layer chooses the encoding.
type CellID string

// State holds one cell's disease compartments as fractions of a closed
// population. The four fractions are non-negative and sum to 1 within
// rounding tolerance. Population is the cell's head count; it is fixed at
// construction and never changes over the cell's lifetime.
type State struct {
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
	Deceased    float64 `json:"deceased"`
	Population  float64 `json:"population"`
}

// Vicinity describes the directional relationship from an observer cell
// toward one neighbor. Mobility scales how much of the neighbor's infected
// mass is exported toward the observer; Connectivity scales the strength of
// contact along the edge. Vicinities are fixed at grid construction and not
// necessarily symmetric.
type Vicinity struct {
	Mobility     float64 `json:"mobility"`
	Connectivity float64 `json:"connectivity"`
}

// Observation pairs a neighbor's last published state with the static
// vicinity toward that neighbor. The published state may lag the neighbor's
// true current state by that neighbor's output delay.
type Observation struct {
	State    State
	Vicinity Vicinity
}

// Neighborhood maps neighbor identities to their observations. A cell may
// list itself as a neighbor; the transition treats the loopback edge like
// any other.
type Neighborhood map[CellID]Observation
