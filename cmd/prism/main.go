// prism - software triangle rasterizer
// Renders meshes on the CPU to BMP/PNG files or straight into the terminal.
//
// Viewer controls:
//
//	M           - Cycle shading mode (observed area, diffuse, specular, combined)
//	Z           - Toggle depth visualization
//	R           - Toggle model rotation
//	N           - Toggle normal mapping
//	T           - Toggle texturing
//	P           - Save the color buffer
//	Arrows/drag - Turn the camera
//	W/S, scroll - Move the camera forward/back
//	0           - Reset the camera
//	?           - Toggle HUD overlay
//	Q/Esc       - Quit
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		stop()
		os.Exit(1)
	}
}
