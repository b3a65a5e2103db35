//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"funcplot/internal/export"
	"funcplot/internal/plot"
	"funcplot/internal/textlayout"
	"funcplot/internal/theme"
	"funcplot/internal/undo"
	"funcplot/internal/vector"
)

// wheelStep converts one Fyne scroll unit into a Controller wheel delta.
const wheelStep = 12.0

// PlotCanvas shows the rendered display list of a plot.Controller and feeds
// it pointer and wheel events. Press on the curve drags the probe, press
// elsewhere pans, the wheel zooms. Pans and zooms are recorded for UndoView.
type PlotCanvas struct {
	widget.BaseWidget

	ctrl         *plot.Controller
	theme        theme.Theme
	fonts        textlayout.Provider
	cursorZoom   bool
	scrollFactor float64

	views    *undo.Stack[plot.ViewState]
	gesture  bool
	viewDown plot.ViewState

	// OnChanged runs after every controller change.
	OnChanged func()
}

var (
	_ desktop.Mouseable = (*PlotCanvas)(nil)
	_ fyne.Draggable    = (*PlotCanvas)(nil)
	_ fyne.Scrollable   = (*PlotCanvas)(nil)
)

func NewPlotCanvas(th theme.Theme) *PlotCanvas {
	pc := &PlotCanvas{
		ctrl:         plot.NewController(plot.Viewport{Width: 800, Height: 600}),
		theme:        th,
		scrollFactor: 1,
		views:        undo.New[plot.ViewState](undo.Config{}),
	}
	pc.ctrl.OnChange = pc.changed
	pc.ExtendBaseWidget(pc)
	return pc
}

// Controller exposes the interaction state for the window's buttons and menus.
func (p *PlotCanvas) Controller() *plot.Controller { return p.ctrl }

// SetTheme switches colors and redraws.
func (p *PlotCanvas) SetTheme(th theme.Theme) {
	p.theme = th
	p.Refresh()
}

// Theme returns the active theme.
func (p *PlotCanvas) Theme() theme.Theme { return p.theme }

// SetFonts selects the label fonts; nil restores the export default.
func (p *PlotCanvas) SetFonts(f textlayout.Provider) {
	p.fonts = f
	p.Refresh()
}

// SetCursorZoom anchors wheel zoom at the pointer instead of the center.
func (p *PlotCanvas) SetCursorZoom(on bool) { p.cursorZoom = on }

// SetScrollFactor multiplies wheel deltas; non-positive values are ignored.
func (p *PlotCanvas) SetScrollFactor(f float64) {
	if f > 0 {
		p.scrollFactor = f
	}
}

// DisplayList renders the current frame.
func (p *PlotCanvas) DisplayList() vector.DisplayList {
	return plot.Render(p.ctrl.Frame(p.theme))
}

// ApplyView runs change and records the view it replaced, if any.
func (p *PlotCanvas) ApplyView(change func()) {
	before := p.ctrl.View()
	change()
	p.recordView(before)
}

// UndoView restores the view before the last pan, zoom or ApplyView.
func (p *PlotCanvas) UndoView() bool {
	v, ok := p.views.Undo(p.ctrl.View())
	if ok {
		p.ctrl.SetView(v)
	}
	return ok
}

// RedoView reverses the last UndoView.
func (p *PlotCanvas) RedoView() bool {
	v, ok := p.views.Redo(p.ctrl.View())
	if ok {
		p.ctrl.SetView(v)
	}
	return ok
}

func (p *PlotCanvas) recordView(before plot.ViewState) {
	if p.ctrl.View() != before {
		p.views.Push(before, time.Now())
	}
}

func (p *PlotCanvas) changed() {
	p.Refresh()
	if p.OnChanged != nil {
		p.OnChanged()
	}
}

// draw is the raster generator; w and h are device pixels.
func (p *PlotCanvas) draw(w, _ int) image.Image {
	vp := p.ctrl.Viewport()
	scale := 1.0
	if vp.Width > 0 && w > 0 {
		scale = float64(w) / vp.Width
	}
	return export.Rasterize(p.DisplayList(), export.Options{Scale: scale, Fonts: p.fonts})
}

func pt(pos fyne.Position) vector.Pt { return vector.P(float64(pos.X), float64(pos.Y)) }

func button(b desktop.MouseButton) plot.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return plot.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return plot.ButtonTertiary
	default:
		return plot.ButtonPrimary
	}
}

func (p *PlotCanvas) MouseDown(e *desktop.MouseEvent) {
	if !p.gesture {
		p.gesture, p.viewDown = true, p.ctrl.View()
	}
	p.ctrl.PointerDown(pt(e.Position), button(e.Button))
}

func (p *PlotCanvas) MouseUp(e *desktop.MouseEvent) {
	p.ctrl.PointerUp(button(e.Button))
	p.endGesture()
}

func (p *PlotCanvas) Dragged(e *fyne.DragEvent) { p.ctrl.PointerMove(pt(e.Position)) }

// DragEnd ends a primary gesture even when the release happens outside the widget.
func (p *PlotCanvas) DragEnd() {
	p.ctrl.PointerUp(plot.ButtonPrimary)
	p.endGesture()
}

func (p *PlotCanvas) endGesture() {
	if p.gesture && p.ctrl.State() == plot.Idle {
		p.gesture = false
		p.recordView(p.viewDown)
	}
}

func (p *PlotCanvas) Scrolled(e *fyne.ScrollEvent) {
	d := float64(e.Scrolled.DY) * wheelStep * p.scrollFactor
	p.ApplyView(func() {
		if p.cursorZoom {
			p.ctrl.ScrollAt(d, pt(e.Position))
			return
		}
		p.ctrl.Scroll(d)
	})
}

func (p *PlotCanvas) MinSize() fyne.Size { return fyne.NewSize(200, 150) }

func (p *PlotCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &plotCanvasRenderer{pc: p, raster: canvas.NewRaster(p.draw)}
	r.objects = []fyne.CanvasObject{r.raster}
	return r
}

type plotCanvasRenderer struct {
	pc      *PlotCanvas
	raster  *canvas.Raster
	objects []fyne.CanvasObject
}

func (r *plotCanvasRenderer) Destroy()                     {}
func (r *plotCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *plotCanvasRenderer) MinSize() fyne.Size           { return r.pc.MinSize() }
func (r *plotCanvasRenderer) Refresh()                     { r.raster.Refresh() }

// Layout keeps the controller's viewport equal to the widget size.
func (r *plotCanvasRenderer) Layout(size fyne.Size) {
	r.raster.Move(fyne.NewPos(0, 0))
	r.raster.Resize(size)
	r.pc.ctrl.Resize(plot.Viewport{Width: float64(size.Width), Height: float64(size.Height)})
}
