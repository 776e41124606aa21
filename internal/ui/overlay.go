//go:build ebiten

package ui

import (
	"image/color"

	"epigrid/internal/core"
	"epigrid/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// compartmentFieldsProvider is implemented by sims exposing per-compartment
// scalar fields for heatmap overlays.
type compartmentFieldsProvider interface {
	SusceptibleField() []float32
	InfectedField() []float32
	RecoveredField() []float32
	DeceasedField() []float32
}

// Overlay draws per-compartment heatmaps on top of the base simulation
// view. Keys 1-4 toggle susceptible, infected, recovered and deceased.
type Overlay struct {
	sim   core.Sim
	scale int

	showSusceptible bool
	showInfected    bool
	showRecovered   bool
	showDeceased    bool

	painter *render.GridPainter
}

// NewOverlay constructs an overlay for the provided simulation.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{sim: sim, scale: scale}
}

// Update processes the overlay toggle keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showSusceptible = !o.showSusceptible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showInfected = !o.showInfected
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showRecovered = !o.showRecovered
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit4) {
		o.showDeceased = !o.showDeceased
	}
}

// Draw renders the enabled heatmaps onto the screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(compartmentFieldsProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	if o.painter == nil {
		o.painter = render.NewGridPainter(size.W, size.H)
	}

	if o.showSusceptible {
		o.painter.BlitScalar(screen, provider.SusceptibleField(), color.RGBA{R: 64, G: 120, B: 255}, o.scale)
	}
	if o.showInfected {
		o.painter.BlitScalar(screen, provider.InfectedField(), color.RGBA{R: 255, G: 64, B: 48}, o.scale)
	}
	if o.showRecovered {
		o.painter.BlitScalar(screen, provider.RecoveredField(), color.RGBA{R: 64, G: 220, B: 96}, o.scale)
	}
	if o.showDeceased {
		o.painter.BlitScalar(screen, provider.DeceasedField(), color.RGBA{R: 200, G: 200, B: 210}, o.scale)
	}
}
