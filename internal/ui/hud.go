//go:build ebiten

package ui

import (
	"fmt"
	"image/color"
	"strconv"

	"epigrid/internal/core"
	"epigrid/internal/engine"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	colorTitle = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorText  = color.RGBA{R: 180, G: 185, B: 195, A: 255}
)

// totalsProvider is implemented by sims reporting aggregate compartment
// fractions and the current tick.
type totalsProvider interface {
	Totals() engine.Totals
	Tick() int
}

// HUD renders simulation totals and an adjustable parameter list in the
// panel to the right of the lattice view. Up/Down select a control,
// Left/Right adjust it by its step.
type HUD struct {
	sim   core.Sim
	width int

	controls []core.ParameterControl
	selected int

	floatSetter core.FloatParameterSetter
	intSetter   core.IntParameterSetter

	offsetX int
}

// NewHUD constructs a HUD for the provided simulation and panel width. The
// panel starts at offsetX pixels from the left screen edge.
func NewHUD(sim core.Sim, width, offsetX int) *HUD {
	h := &HUD{sim: sim, width: width, offsetX: offsetX}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		h.controls = provider.ParameterControls()
	}
	if setter, ok := sim.(core.FloatParameterSetter); ok {
		h.floatSetter = setter
	}
	if setter, ok := sim.(core.IntParameterSetter); ok {
		h.intSetter = setter
	}
	return h
}

// Width reports the configured panel width.
func (h *HUD) Width() int { return h.width }

// Update processes control selection and adjustment keys.
func (h *HUD) Update() {
	if len(h.controls) == 0 {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		h.selected = (h.selected + 1) % len(h.controls)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		h.selected = (h.selected - 1 + len(h.controls)) % len(h.controls)
	}
	dir := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		dir = 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		dir = -1
	}
	if dir != 0 {
		h.adjust(h.controls[h.selected], dir)
	}
}

// adjust moves a control by one step in the given direction, clamping to
// its bounds.
func (h *HUD) adjust(ctrl core.ParameterControl, dir int) {
	current, ok := h.currentValue(ctrl.Key)
	if !ok {
		return
	}
	next := current + float64(dir)*ctrl.Step
	if ctrl.HasMin && next < ctrl.Min {
		next = ctrl.Min
	}
	if ctrl.HasMax && next > ctrl.Max {
		next = ctrl.Max
	}
	switch ctrl.Type {
	case core.ParamTypeInt:
		if h.intSetter != nil {
			h.intSetter.SetIntParameter(ctrl.Key, int(next))
		}
	case core.ParamTypeFloat:
		if h.floatSetter != nil {
			h.floatSetter.SetFloatParameter(ctrl.Key, next)
		}
	}
}

// currentValue looks the control's value up in the parameter snapshot.
func (h *HUD) currentValue(key string) (float64, bool) {
	provider, ok := h.sim.(core.ParametersProvider)
	if !ok {
		return 0, false
	}
	for _, group := range provider.Parameters().Groups {
		for _, p := range group.Params {
			if p.Key != key {
				continue
			}
			v, err := strconv.ParseFloat(p.Value, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

// Draw renders the panel text.
func (h *HUD) Draw(screen *ebiten.Image) {
	if h.width <= 0 {
		return
	}
	face := basicfont.Face7x13
	x := h.offsetX + 8
	y := 16

	text.Draw(screen, h.sim.Name(), face, x, y, colorTitle)
	y += 20

	if provider, ok := h.sim.(totalsProvider); ok {
		tot := provider.Totals()
		text.Draw(screen, fmt.Sprintf("tick %d", provider.Tick()), face, x, y, colorText)
		y += 16
		text.Draw(screen, fmt.Sprintf("S %5.1f%%", tot.Susceptible*100), face, x, y, colorText)
		y += 14
		text.Draw(screen, fmt.Sprintf("I %5.1f%%", tot.Infected*100), face, x, y, colorText)
		y += 14
		text.Draw(screen, fmt.Sprintf("R %5.1f%%", tot.Recovered*100), face, x, y, colorText)
		y += 14
		text.Draw(screen, fmt.Sprintf("D %5.1f%%", tot.Deceased*100), face, x, y, colorText)
		y += 22
	}

	for i, ctrl := range h.controls {
		marker := "  "
		clr := colorText
		if i == h.selected {
			marker = "> "
			clr = colorTitle
		}
		value := "--"
		if v, ok := h.currentValue(ctrl.Key); ok {
			if ctrl.Type == core.ParamTypeInt {
				value = strconv.Itoa(int(v))
			} else {
				value = strconv.FormatFloat(v, 'f', 2, 64)
			}
		}
		text.Draw(screen, fmt.Sprintf("%s%s %s", marker, ctrl.Label, value), face, x, y, clr)
		y += 14
	}
}
