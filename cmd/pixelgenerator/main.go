// Command pixelgenerator shows the reference texture tinted by a four color
// palette which can be edited live.
package main

import (
	"log"

	"github.com/Saitsuno03/pixelgenerator/internal/app"
	"github.com/Saitsuno03/pixelgenerator/internal/gui"
	"github.com/Saitsuno03/pixelgenerator/internal/palette"
	"github.com/Saitsuno03/pixelgenerator/internal/panel"
	"github.com/Saitsuno03/pixelgenerator/internal/quad"
)

const (
	title        = "Automated Pixel Background Generator"
	screenWidth  = 800
	screenHeight = 600
)

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	pal := palette.Default()

	b, err := app.NewAppBase(title, screenWidth, screenHeight)
	orPanic(err)

	orPanic(b.Init())

	i, err := gui.NewImGUIModule(b, b.Window)
	orPanic(err)

	q, err := quad.NewQuadModule(b, &pal, quad.DefaultOptions())
	orPanic(err)

	// the quad goes first so the panel is drawn over it
	b.AddGraphicsModule(q)
	b.AddGraphicsModule(i)
	b.AddInputModule(i)

	i.AddUI(panel.New(&pal))

	orPanic(b.PrepareToDraw())
	b.ResourceManager.LogDetails()

	for !b.ShouldClose() {
		b.NewFrame()
		orPanic(b.DrawFrameSync())
		b.PostFrame()
	}

	log.Printf("palette: %s", pal.String())
	b.Destroy()
}
