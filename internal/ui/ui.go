// Package ui is the gio viewer host: it decodes the image, renders it with
// the engine's Transform, routes pointer, wheel and key input into the
// engine and offers the zoom, rotate, reset, download and fullscreen controls.
package ui

import (
	"os"

	"gioui.org/app"
	"gioui.org/unit"
)

// Run launches the viewer window and blocks until it closes. It never
// returns on platforms where app.Main takes over the main goroutine.
func Run(opts Options) error {
	go func() {
		w := new(app.Window)
		w.Option(app.Title(opts.title()), app.Size(unit.Dp(1024), unit.Dp(720)))
		viewer, err := New(w, opts)
		if err != nil {
			opts.logger().Error("viewer setup failed", "error", err)
			os.Exit(1)
		}
		if err := viewer.Run(); err != nil {
			opts.logger().Error("viewer stopped", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
