package ui

import (
	"image"
	"image/color"
	"sync"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/hashicorp/go-hclog"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/ecglearn/internal/ui/canvas"
	"github.com/OpenTraceLab/ecglearn/internal/watch"
	"github.com/OpenTraceLab/ecglearn/pkg/backend"
	"github.com/OpenTraceLab/ecglearn/pkg/viewer"
)

// Options configures a viewer window
type Options struct {
	Title  string
	Config viewer.Config
	Logger hclog.Logger
	// Source is an image file opened at startup
	Source string
	// Watcher, if set, reloads the source whenever it reports a change
	Watcher *watch.Watcher
	// Blobs, if set, enables the upload control
	Blobs backend.BlobStore
	// UploadPrefix is prepended to uploaded object names
	UploadPrefix string
	DarkMode     bool
}

func (o Options) title() string {
	if o.Title == "" {
		return "ECG Viewer"
	}
	return o.Title
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

type toolButton struct {
	click widget.Clickable
	icon  *widget.Icon
	desc  string
}

// App drives the gio viewer window.
type App struct {
	window   *app.Window
	ops      op.Ops
	gvTheme  *theme.Theme
	explorer *explorer.Explorer
	logger   hclog.Logger
	opts     Options

	engine *viewer.Engine
	source *canvas.Source
	imgOp  paint.ImageOp

	// loaded sources arrive from file dialogs and the watcher goroutine
	loaded chan *canvas.Source

	fullscreen  bool
	orientation canvas.Orientation
	canvasTag   int

	openBtn, zoomInBtn, zoomOutBtn    toolButton
	rotLeftBtn, rotRightBtn, resetBtn toolButton
	downloadBtn, uploadBtn, fullBtn   toolButton
	fullExitIcon                      *widget.Icon

	logMu         sync.Mutex
	logs          []string
	logText       string
	logSelectable widget.Selectable
	logList       widget.List
	logPaneHeight float32
	showLog       bool

	statusText string
}

// New creates the viewer for window w
func New(w *app.Window, opts Options) (*App, error) {
	if w == nil {
		w = new(app.Window)
	}
	engine, err := viewer.NewEngine(opts.Config)
	if err != nil {
		return nil, err
	}

	a := &App{
		window:   w,
		gvTheme:  theme.NewTheme("", nil, true),
		explorer: explorer.NewExplorer(w),
		logger:   opts.logger(),
		opts:     opts,
		engine:   engine,
		loaded:   make(chan *canvas.Source, 4),
		showLog:  true,
	}
	a.initButtons()
	a.logSelectable.WrapPolicy = text.WrapGraphemes
	a.logList.Axis = layout.Vertical
	a.logList.ScrollToEnd = true
	a.applyPalette()

	if opts.Source != "" {
		src, err := canvas.Load(opts.Source)
		if err != nil {
			return nil, err
		}
		a.setSource(src)
	}
	if opts.Watcher != nil {
		go a.watch(opts.Watcher)
	}
	a.Logf("[BOOT] Viewer ready (zoom %.2g-%.2g)", opts.Config.MinZoom, opts.Config.MaxZoom)
	return a, nil
}

func (a *App) initButtons() {
	set := func(b *toolButton, data []byte, desc string) {
		b.desc = desc
		if icon, err := widget.NewIcon(data); err == nil {
			b.icon = icon
		}
	}
	set(&a.openBtn, icons.FileFolderOpen, "Open image")
	set(&a.zoomInBtn, icons.ActionZoomIn, "Zoom in")
	set(&a.zoomOutBtn, icons.ActionZoomOut, "Zoom out")
	set(&a.rotLeftBtn, icons.ImageRotateLeft, "Rotate left")
	set(&a.rotRightBtn, icons.ImageRotateRight, "Rotate right")
	set(&a.resetBtn, icons.NavigationRefresh, "Reset view")
	set(&a.downloadBtn, icons.FileFileDownload, "Download")
	set(&a.uploadBtn, icons.FileCloudUpload, "Upload")
	set(&a.fullBtn, icons.NavigationFullscreen, "Fullscreen")
	if icon, err := widget.NewIcon(icons.NavigationFullscreenExit); err == nil {
		a.fullExitIcon = icon
	}
}

// Engine exposes the transform engine driven by this window
func (a *App) Engine() *viewer.Engine {
	return a.engine
}

// Run blocks processing window events until the window closes.
func (a *App) Run() error {
	for {
		e := a.window.Event()
		a.explorer.ListenEvents(e)
		switch ev := e.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.ConfigEvent:
			// The platform may leave fullscreen on its own (e.g. Esc in macOS)
			a.fullscreen = ev.Config.Mode == app.Fullscreen
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, ev)
			a.drainLoaded()
			a.handleInput(gtx)
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (a *App) drainLoaded() {
	for {
		select {
		case src := <-a.loaded:
			a.setSource(src)
		default:
			return
		}
	}
}

// setSource swaps the displayed image. Runs on the UI goroutine only.
func (a *App) setSource(src *canvas.Source) {
	a.source = src
	a.imgOp = paint.NewImageOp(src.Image)
	a.engine.OnSourceChanged()
	size := src.Size()
	a.statusText = src.Name
	a.window.Option(app.Title(a.opts.title() + " - " + src.Name))
	a.Logf("[INFO] Loaded %s (%s, %dx%d)", src.Name, src.Format, size.X, size.Y)
}

func (a *App) setFullscreen(on bool) {
	if a.fullscreen == on {
		return
	}
	a.fullscreen = on
	if on {
		a.window.Option(app.Fullscreen.Option())
		a.Logf("[INFO] Entered fullscreen")
	} else {
		a.window.Option(app.Windowed.Option())
		a.Logf("[INFO] Left fullscreen")
	}
}

func keyPressed(gtx layout.Context, f key.Filter) bool {
	pressed := false
	for {
		ev, ok := gtx.Event(f)
		if !ok {
			break
		}
		if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
			pressed = true
		}
	}
	return pressed
}

func (a *App) handleInput(gtx layout.Context) {
	e := a.engine
	changed := false

	if a.openBtn.click.Clicked(gtx) {
		a.openFilePicker()
	}
	if a.zoomInBtn.click.Clicked(gtx) || keyPressed(gtx, key.Filter{Name: "+", Optional: key.ModShift}) {
		e.ZoomIn()
		changed = true
	}
	if a.zoomOutBtn.click.Clicked(gtx) || keyPressed(gtx, key.Filter{Name: "-"}) {
		e.ZoomOut()
		changed = true
	}
	if a.rotLeftBtn.click.Clicked(gtx) {
		e.RotateBy(-90)
		changed = true
	}
	if a.rotRightBtn.click.Clicked(gtx) || keyPressed(gtx, key.Filter{Name: "R"}) {
		e.RotateBy(90)
		changed = true
	}
	if a.resetBtn.click.Clicked(gtx) || keyPressed(gtx, key.Filter{Name: "0"}) {
		e.Reset()
		changed = true
	}
	if a.downloadBtn.click.Clicked(gtx) {
		a.download()
	}
	if a.uploadBtn.click.Clicked(gtx) {
		a.upload()
	}
	if a.fullBtn.click.Clicked(gtx) || keyPressed(gtx, key.Filter{Name: "F"}) {
		a.setFullscreen(!a.fullscreen)
	}
	if keyPressed(gtx, key.Filter{Name: key.NameEscape}) {
		a.setFullscreen(false)
	}
	if keyPressed(gtx, key.Filter{Name: "L"}) {
		a.showLog = !a.showLog
	}

	if changed {
		a.logger.Debug("transform", "value", e.Transform().String())
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.FillShape(gtx.Ops, a.gvTheme.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())

	if deg, ok := a.orientation.Update(gtx.Constraints.Max, a.fullscreen); ok {
		a.engine.SetRotation(deg)
		a.Logf("[INFO] Orientation changed, rotation set to %d", deg)
	}

	if a.fullscreen {
		return layout.Stack{}.Layout(gtx,
			layout.Expanded(a.layoutViewport),
			layout.Stacked(a.layoutToolbar),
		)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(a.layoutToolbar),
		layout.Flexed(1, a.layoutViewport),
		layout.Rigid(a.layoutLogPane),
		layout.Rigid(a.layoutStatusBar),
	)
}

func (a *App) layoutToolbar(gtx layout.Context) layout.Dimensions {
	buttons := []*toolButton{
		&a.openBtn, &a.zoomInBtn, &a.zoomOutBtn, &a.rotLeftBtn, &a.rotRightBtn,
		&a.resetBtn, &a.downloadBtn,
	}
	if a.opts.Blobs != nil {
		buttons = append(buttons, &a.uploadBtn)
	}
	buttons = append(buttons, &a.fullBtn)

	children := make([]layout.FlexChild, 0, len(buttons))
	for _, b := range buttons {
		b := b
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			icon := b.icon
			if b == &a.fullBtn && a.fullscreen && a.fullExitIcon != nil {
				icon = a.fullExitIcon
			}
			if icon == nil {
				return material.Button(a.gvTheme.Theme, &b.click, b.desc).Layout(gtx)
			}
			btn := material.IconButton(a.gvTheme.Theme, &b.click, icon, b.desc)
			btn.Size = unit.Dp(20)
			btn.Inset = layout.UniformInset(unit.Dp(8))
			return layout.UniformInset(unit.Dp(4)).Layout(gtx, btn.Layout)
		}))
	}
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Top: unit.Dp(4), Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
}

func (a *App) layoutStatusBar(gtx layout.Context) layout.Dimensions {
	inset := layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(6), Bottom: unit.Dp(6)}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				msg := a.statusText
				if msg == "" {
					msg = "No image"
				}
				return material.Body2(a.gvTheme.Theme, msg).Layout(gtx)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions { return layout.Dimensions{} }),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Dp(unit.Dp(320))
				label := material.Body2(a.gvTheme.Theme, a.engine.Transform().String())
				label.Alignment = text.End
				return label.Layout(gtx)
			}),
		)
	})
}

func (a *App) applyPalette() {
	if a.opts.DarkMode {
		a.gvTheme.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 18, G: 20, B: 26, A: 255},
			Fg:         color.NRGBA{R: 233, G: 236, B: 245, A: 255},
			ContrastBg: color.NRGBA{R: 120, G: 150, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 12, G: 16, B: 24, A: 255},
			Bg2:        color.NRGBA{R: 34, G: 40, B: 50, A: 255},
		})
		return
	}
	a.gvTheme.WithPalette(theme.Palette{
		Bg:         color.NRGBA{R: 245, G: 247, B: 253, A: 255},
		Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Bg2:        color.NRGBA{R: 225, G: 230, B: 244, A: 255},
	})
}

func (a *App) invalidate() {
	if a.window != nil {
		a.window.Invalidate()
	}
}

func fillSize(gtx layout.Context) image.Point {
	size := gtx.Constraints.Max
	if size.X <= 0 {
		size.X = 1
	}
	if size.Y <= 0 {
		size.Y = 1
	}
	return size
}
