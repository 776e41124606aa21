//go:build !ebiten

package ui

import "epigrid/internal/core"

// HUD is a placeholder for headless builds.
type HUD struct{}

// NewHUD returns an inert HUD in headless builds.
func NewHUD(core.Sim, int, int) *HUD { return &HUD{} }

// Width reports a zero panel width in headless builds.
func (h *HUD) Width() int { return 0 }

// Update is a no-op placeholder.
func (h *HUD) Update() {}

// Draw is a no-op placeholder to satisfy the interface shape.
func (h *HUD) Draw(any) {}
