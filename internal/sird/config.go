package sird

// Config carries the epidemic rates for one cell. It is deserialized by the
// scenario layer, attached at construction time and immutable afterwards.
// Different cells may hold different configurations.
type Config struct {
	// Virulence is the transmission probability factor applied to the
	// accumulated neighbor exposure.
	Virulence float64 `json:"virulence"`
	// Recovery is the fraction of the infected compartment recovering per
	// tick.
	Recovery float64 `json:"recovery"`
	// Immunity is the fraction of recovered people whose immunity holds
	// across a tick; the remainder becomes susceptible again.
	Immunity float64 `json:"immunity"`
	// Fatality is the fraction of the infected compartment dying per tick.
	Fatality float64 `json:"fatality"`
}
