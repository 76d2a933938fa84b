package ui

import (
	"fmt"
	"image"
	"strings"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/hashicorp/go-hclog"
)

// maxLogLines bounds the in-window log pane
const maxLogLines = 500

// levelOf maps the bracketed tag at the start of a message to a log level
func levelOf(msg string) hclog.Level {
	switch {
	case strings.HasPrefix(msg, "[ERROR]"):
		return hclog.Error
	case strings.HasPrefix(msg, "[WARN]"):
		return hclog.Warn
	case strings.HasPrefix(msg, "[DEBUG]"):
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// Logf appends a line to the log pane and forwards it to the logger. Safe to
// call from any goroutine.
func (a *App) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Log(levelOf(msg), msg)

	entry := fmt.Sprintf("[%s] %s", time.Now().Format(time.Stamp), msg)
	a.logMu.Lock()
	a.logs = append(a.logs, entry)
	if len(a.logs) > maxLogLines {
		a.logs = a.logs[len(a.logs)-maxLogLines:]
	}
	a.logText = strings.Join(a.logs, "\n")
	a.logMu.Unlock()
	a.invalidate()
}

func (a *App) layoutLogPane(gtx layout.Context) layout.Dimensions {
	if !a.showLog {
		return layout.Dimensions{}
	}
	if a.logPaneHeight <= 0 {
		a.logPaneHeight = float32(gtx.Dp(unit.Dp(120)))
	}
	h := int(a.logPaneHeight)
	gtx.Constraints.Min.Y = h
	gtx.Constraints.Max.Y = h

	size := image.Pt(gtx.Constraints.Max.X, h)
	paint.FillShape(gtx.Ops, a.gvTheme.Bg2, clip.Rect{Max: size}.Op())

	a.logMu.Lock()
	logText := a.logText
	a.logMu.Unlock()
	if a.logSelectable.Text() != logText {
		a.logSelectable.SetText(logText)
	}

	return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = gtx.Constraints.Max
		return a.logList.Layout(gtx, 1, func(gtx layout.Context, _ int) layout.Dimensions {
			label := material.Body2(a.gvTheme.Theme, logText)
			label.State = &a.logSelectable
			label.WrapPolicy = text.WrapGraphemes
			label.Alignment = text.Start
			return label.Layout(gtx)
		})
	})
}
