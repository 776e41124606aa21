package sird

import "math"

// Model binds a cell's configuration to the two capabilities the engine
// drives: computing a candidate next state and reporting how long to hold it
// before publication. Model is a value; it carries no mutable state.
type Model struct {
	Config Config
	// Delay is the output delay in ticks. Values below 1 are treated as
	// the default single tick.
	Delay int
}

// NewModel returns a Model with the default one-tick output delay.
func NewModel(cfg Config) Model {
	return Model{Config: cfg, Delay: 1}
}

// NextState computes the candidate state for the next tick from the cell's
// current state and its neighbors' last published states. It commits
// nothing: the engine decides when the candidate becomes the cell's state
// and when observers get to see it. All four flows are computed from the
// same pre-step snapshot before any compartment is written, and none of the
// inputs are mutated.
func (m Model) NextState(current State, neighbors Neighborhood) State {
	newI := m.newInfections(current, neighbors)
	newR := m.newRecoveries(current)
	newS := m.newSusceptibles(current)
	newD := m.newDeceases(current)
	return compose(current, newI, newR, newS, newD)
}

// OutputDelay reports how many ticks the engine should hold a freshly
// computed state before publishing it to observers. The state argument is
// unused by the fixed policy but kept so severity-dependent delays stay
// expressible behind the same contract.
func (m Model) OutputDelay(next State) int {
	if m.Delay < 1 {
		return 1
	}
	return m.Delay
}

// newInfections estimates the susceptible mass converting to infected this
// tick through contact with neighbors. Each neighbor contributes its
// infected head count scaled by the edge's mobility and connectivity; the
// summed exposure is normalized by the cell's own population. New infections
// can never draw more than the available susceptible fraction.
func (m Model) newInfections(c State, neighbors Neighborhood) float64 {
	exposure := 0.0
	for _, n := range neighbors {
		exposure += n.State.Infected * n.State.Population * n.Vicinity.Mobility * n.Vicinity.Connectivity
	}
	return math.Min(c.Susceptible, c.Susceptible*m.Config.Virulence*exposure/c.Population)
}

// newRecoveries is the infected fraction recovering this tick.
func (m Model) newRecoveries(c State) float64 {
	return c.Infected * m.Config.Recovery
}

// newSusceptibles is the recovered fraction whose immunity wanes this tick.
func (m Model) newSusceptibles(c State) float64 {
	return c.Recovered * (1 - m.Config.Immunity)
}

// newDeceases is the infected fraction dying this tick.
func (m Model) newDeceases(c State) float64 {
	return c.Infected * m.Config.Fatality
}

// compose folds the four flows into the next state. Recovery and death are
// not clamped against the infected compartment, so extreme configured rates
// can overdraw it; that matches the reference arithmetic and is left as-is.
// Susceptible is derived rather than accumulated, which makes the four
// fractions sum to exactly 1 after rounding.
func compose(c State, newI, newR, newS, newD float64) State {
	next := c
	next.Deceased = round2(c.Deceased + newD)
	next.Recovered = round2(c.Recovered + newR - newS)
	next.Infected = round2(c.Infected + newI - newR - newD)
	next.Susceptible = 1 - next.Infected - next.Recovered - next.Deceased
	return next
}

// round2 rounds to two decimal places with halves away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
