//go:build !ebiten

package ui

import "epigrid/internal/core"

// Overlay is a placeholder for headless builds.
type Overlay struct{}

// NewOverlay returns an inert overlay in headless builds.
func NewOverlay(core.Sim, int) *Overlay { return &Overlay{} }

// Update is a no-op placeholder.
func (o *Overlay) Update() {}

// Draw is a no-op placeholder to satisfy the interface shape.
func (o *Overlay) Draw(any) {}
