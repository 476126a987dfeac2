// Package panel draws the window of color pickers which edits the palette.
package panel

import (
	"fmt"

	imgui "github.com/inkyblackness/imgui-go/v4"

	"github.com/Saitsuno03/pixelgenerator/internal/palette"
)

// Title of the panel window
const Title = "Color Palette"

// Panel shows one color picker per swatch, edits apply to Palette immediately
type Panel struct {
	Palette *palette.Palette
	labels  []string
}

func New(p *palette.Palette) *Panel {
	return &Panel{Palette: p, labels: Labels()}
}

// Labels returns the picker labels in swatch order. Every picker reads
// "Color", the suffix after ## keeps their imgui IDs apart.
func Labels() []string {
	labels := make([]string, palette.NumSwatches)
	for i := range labels {
		labels[i] = fmt.Sprintf("Color##%d", i)
	}
	return labels
}

// DrawUI must be called between imgui.NewFrame and imgui.Render
func (p *Panel) DrawUI() {
	imgui.Begin(Title)
	for i, label := range p.labels {
		imgui.ColorEdit4V(label, p.Palette.Swatch(i), imgui.ColorEditFlagsFloat)
	}
	imgui.End()
}
