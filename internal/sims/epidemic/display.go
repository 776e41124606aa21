package epidemic

import (
	"image/color"

	"epigrid/internal/sird"
)

// Display bytes pack the dominant compartment in the high bits and a 4-bit
// intensity of that compartment's fraction in the low bits.
const (
	classSusceptible = 0
	classInfected    = 1
	classRecovered   = 2
	classDeceased    = 3

	displayClassShift    = 4
	displayIntensityMask = 0x0f
	displayLevels        = 16
)

var epidemicPalette = buildEpidemicPalette()

// Palette exposes the color palette used for rendering the epidemic world.
func (w *World) Palette() []color.RGBA {
	return epidemicPalette
}

func encodeDisplayValue(s sird.State) uint8 {
	class := uint8(classSusceptible)
	dominant := s.Susceptible
	if s.Infected > dominant {
		class, dominant = classInfected, s.Infected
	}
	if s.Recovered > dominant {
		class, dominant = classRecovered, s.Recovered
	}
	if s.Deceased > dominant {
		class, dominant = classDeceased, s.Deceased
	}
	if dominant < 0 {
		dominant = 0
	}
	if dominant > 1 {
		dominant = 1
	}
	level := uint8(dominant*(displayLevels-1) + 0.5)
	return class<<displayClassShift | level&displayIntensityMask
}

func buildEpidemicPalette() []color.RGBA {
	palette := make([]color.RGBA, 4*displayLevels)
	for i := range palette {
		class := uint8(i) >> displayClassShift
		level := uint8(i) & displayIntensityMask
		palette[i] = shade(classColor(class), level)
	}
	return palette
}

func classColor(class uint8) color.NRGBA {
	switch class {
	case classInfected:
		return color.NRGBA{R: 220, G: 50, B: 40, A: 255}
	case classRecovered:
		return color.NRGBA{R: 70, G: 160, B: 80, A: 255}
	case classDeceased:
		return color.NRGBA{R: 120, G: 120, B: 130, A: 255}
	default:
		return color.NRGBA{R: 50, G: 90, B: 200, A: 255}
	}
}

// shade dims the base color toward a dark floor as the level drops, so a
// barely dominant compartment reads darker than a saturated one.
func shade(base color.NRGBA, level uint8) color.RGBA {
	floor := color.NRGBA{R: 12, G: 12, B: 16, A: 255}
	w := (float64(level) + 1) / displayLevels
	inv := 1 - w
	return color.RGBA{
		R: uint8(float64(floor.R)*inv + float64(base.R)*w + 0.5),
		G: uint8(float64(floor.G)*inv + float64(base.G)*w + 0.5),
		B: uint8(float64(floor.B)*inv + float64(base.B)*w + 0.5),
		A: 255,
	}
}
