package epidemic

import "strconv"

// Params holds the tunable rates and coupling for the epidemic sim. Rates
// feed every cell's transition model; coupling and outbreak values shape the
// lattice built on Reset.
type Params struct {
	Population float64
	Virulence  float64
	Recovery   float64
	Immunity   float64
	Fatality   float64

	Mobility     float64
	Connectivity float64

	Neighborhood string
	Delay        int

	OutbreakCount    int
	OutbreakRadius   int
	OutbreakInfected float64
}

// Config controls the epidemic simulation dimensions and parameters.
type Config struct {
	Width  int
	Height int

	Seed int64

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:  160,
		Height: 160,
		Seed:   1337,
		Params: Params{
			Population:       100,
			Virulence:        0.6,
			Recovery:         0.4,
			Immunity:         0.95,
			Fatality:         0.03,
			Mobility:         1,
			Connectivity:     0.4,
			Neighborhood:     "moore",
			Delay:            1,
			OutbreakCount:    3,
			OutbreakRadius:   2,
			OutbreakInfected: 0.3,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value
// pairs). Unparsable or nonsensical values keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["population"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Params.Population = parsed
		}
	}
	if v, ok := cfg["virulence"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.Virulence = parsed
		}
	}
	if v, ok := cfg["recovery"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.Recovery = parsed
		}
	}
	if v, ok := cfg["immunity"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Params.Immunity = parsed
		}
	}
	if v, ok := cfg["fatality"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.Fatality = parsed
		}
	}
	if v, ok := cfg["mobility"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.Mobility = parsed
		}
	}
	if v, ok := cfg["connectivity"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.Connectivity = parsed
		}
	}
	if v, ok := cfg["neighborhood"]; ok {
		if v == "moore" || v == "von_neumann" {
			c.Params.Neighborhood = v
		}
	}
	if v, ok := cfg["delay"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 {
			c.Params.Delay = parsed
		}
	}
	if v, ok := cfg["outbreak_count"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Params.OutbreakCount = parsed
		}
	}
	if v, ok := cfg["outbreak_radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Params.OutbreakRadius = parsed
		}
	}
	if v, ok := cfg["outbreak_infected"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Params.OutbreakInfected = parsed
		}
	}
	return c
}
