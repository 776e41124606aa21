package epidemic

import (
	"strconv"

	"epigrid/internal/core"
	"epigrid/internal/sird"
)

// Parameters reports the current tunables for the HUD panel.
func (w *World) Parameters() core.ParameterSnapshot {
	params := w.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", w.cfg.Width),
				intParam("h", "Height", w.cfg.Height),
				int64Param("seed", "Seed", w.cfg.Seed),
				floatParam("population", "Cell population", params.Population),
			},
		},
		{
			Name: "Rates",
			Params: []core.Parameter{
				floatParam("virulence", "Virulence", params.Virulence),
				floatParam("recovery", "Recovery", params.Recovery),
				floatParam("immunity", "Immunity", params.Immunity),
				floatParam("fatality", "Fatality", params.Fatality),
			},
		},
		{
			Name: "Coupling",
			Params: []core.Parameter{
				floatParam("mobility", "Mobility", params.Mobility),
				floatParam("connectivity", "Connectivity", params.Connectivity),
				intParam("delay", "Output delay", params.Delay),
				stringParam("neighborhood", "Neighborhood", params.Neighborhood),
			},
		},
		{
			Name: "Outbreaks",
			Params: []core.Parameter{
				intParam("outbreak_count", "Outbreak count", params.OutbreakCount),
				intParam("outbreak_radius", "Outbreak radius", params.OutbreakRadius),
				floatParam("outbreak_infected", "Outbreak infected", params.OutbreakInfected),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the tunables adjustable from the HUD. Rate and
// delay changes apply immediately; coupling and outbreak changes apply on
// the next reset.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "virulence", Label: "Virulence", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, HasMin: true},
		{Key: "recovery", Label: "Recovery", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, HasMin: true},
		{Key: "immunity", Label: "Immunity", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "fatality", Label: "Fatality", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, HasMin: true},
		{Key: "mobility", Label: "Mobility", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, HasMin: true},
		{Key: "connectivity", Label: "Connectivity", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, HasMin: true},
		{Key: "delay", Label: "Output delay", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 10, HasMin: true, HasMax: true},
		{Key: "outbreak_count", Label: "Outbreak count", Type: core.ParamTypeInt, Step: 1, Min: 0, HasMin: true},
	}
}

// SetFloatParameter updates a floating point tunable, clamping to its valid
// range. Returns false for unknown keys.
func (w *World) SetFloatParameter(key string, value float64) bool {
	if value < 0 {
		value = 0
	}
	switch key {
	case "virulence":
		w.cfg.Params.Virulence = value
		w.tune(func(c sird.Config) sird.Config { c.Virulence = value; return c })
	case "recovery":
		w.cfg.Params.Recovery = value
		w.tune(func(c sird.Config) sird.Config { c.Recovery = value; return c })
	case "immunity":
		if value > 1 {
			value = 1
		}
		w.cfg.Params.Immunity = value
		w.tune(func(c sird.Config) sird.Config { c.Immunity = value; return c })
	case "fatality":
		w.cfg.Params.Fatality = value
		w.tune(func(c sird.Config) sird.Config { c.Fatality = value; return c })
	case "mobility":
		w.cfg.Params.Mobility = value
		return true // rewiring happens on the next reset
	case "connectivity":
		w.cfg.Params.Connectivity = value
		return true
	case "outbreak_infected":
		if value > 1 {
			value = 1
		}
		w.cfg.Params.OutbreakInfected = value
		return true
	default:
		return false
	}
	return true
}

// SetIntParameter updates an integer tunable. Returns false for unknown
// keys.
func (w *World) SetIntParameter(key string, value int) bool {
	switch key {
	case "delay":
		if value < 1 {
			value = 1
		}
		if value > 10 {
			value = 10
		}
		w.cfg.Params.Delay = value
		w.tune(func(c sird.Config) sird.Config { return c })
	case "outbreak_count":
		if value < 0 {
			value = 0
		}
		w.cfg.Params.OutbreakCount = value
	case "outbreak_radius":
		if value < 0 {
			value = 0
		}
		w.cfg.Params.OutbreakRadius = value
	default:
		return false
	}
	return true
}

// tune pushes a single rate or delay change onto the live lattice. Each cell
// keeps its own configuration for the fields the mutation does not touch, so
// scenario per-cell overrides survive HUD adjustments.
func (w *World) tune(mutate func(sird.Config) sird.Config) {
	if w.grid == nil {
		return
	}
	w.grid.Tune(w.cfg.Params.Delay, mutate)
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.Itoa(value)}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatInt(value, 10)}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeFloat, Value: strconv.FormatFloat(value, 'g', -1, 64)}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: value}
}
