package core

import "time"

// Pacer decouples the simulation tick rate from the render frame rate using
// a fixed-timestep accumulator.
type Pacer struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewPacer constructs a Pacer targeting the given ticks per second.
func NewPacer(tps int) *Pacer {
	p := &Pacer{}
	p.SetTPS(tps)
	p.accumulator = p.step
	return p
}

// SetTPS changes the tick rate. Safe to call from the main loop.
func (p *Pacer) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	p.step = time.Second / time.Duration(tps)
}

// TPS reports the current tick rate.
func (p *Pacer) TPS() int {
	if p.step <= 0 {
		return 0
	}
	return int(time.Second / p.step)
}

// ShouldStep reports whether the simulation should advance by one tick.
func (p *Pacer) ShouldStep() bool {
	now := time.Now()
	if p.last.IsZero() {
		p.last = now
	}
	p.accumulator += now.Sub(p.last)
	p.last = now
	if p.accumulator >= p.step {
		p.accumulator -= p.step
		return true
	}
	return false
}
