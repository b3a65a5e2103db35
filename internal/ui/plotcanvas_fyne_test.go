//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"funcplot/internal/plot"
	"funcplot/internal/theme"
)

func newLaidOutCanvas(t *testing.T) (*PlotCanvas, *plotCanvasRenderer) {
	t.Helper()
	test.NewTempApp(t)
	pc := NewPlotCanvas(theme.Default())
	r, ok := pc.CreateRenderer().(*plotCanvasRenderer)
	if !ok {
		t.Fatalf("expected plotCanvasRenderer, got %T", pc.CreateRenderer())
	}
	r.Layout(fyne.NewSize(320, 240))
	pc.Controller().SetFunction(plot.FuncOf(func(x float64) float64 { return x * x }), plot.YofX)
	return pc, r
}

func mouse(x, y float32, b desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: b}
}

func TestPlotCanvas_LayoutSetsViewport(t *testing.T) {
	pc, r := newLaidOutCanvas(t)
	if vp := pc.Controller().Viewport(); vp.Width != 320 || vp.Height != 240 {
		t.Fatalf("viewport not synced with layout: %+v", vp)
	}
	if r.raster.Size() != fyne.NewSize(320, 240) {
		t.Fatalf("raster not resized: %v", r.raster.Size())
	}
}

func TestPlotCanvas_ProbeDrag(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	changes := 0
	pc.OnChanged = func() { changes++ }

	// (2, 4) sits at (220, 0) in a 320x240 viewport at scale 30
	pc.MouseDown(mouse(220, 0, desktop.MouseButtonPrimary))
	if pc.Controller().State() != plot.DraggingProbe {
		t.Fatalf("expected probe drag, got %v", pc.Controller().State())
	}
	pc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(250, 0)}, Dragged: fyne.NewDelta(30, 0)})
	w := pc.Controller().Probe().World
	if math.Abs(w.X-3) > 1e-9 || math.Abs(w.Y-9) > 1e-9 {
		t.Fatalf("probe should follow the curve to (3, 9), got %v", w)
	}
	pc.DragEnd()
	pc.MouseUp(mouse(250, 0, desktop.MouseButtonPrimary))
	if pc.Controller().State() != plot.Idle || pc.Controller().Probe().Visible {
		t.Fatalf("gesture should end on release")
	}
	if changes != 3 {
		t.Fatalf("expected 3 change notifications, got %d", changes)
	}
}

func TestPlotCanvas_SecondaryButtonIgnored(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	pc.MouseDown(mouse(10, 10, desktop.MouseButtonSecondary))
	pc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 10)}, Dragged: fyne.NewDelta(50, 0)})
	if v := pc.Controller().View(); v.OffsetX != 0 {
		t.Fatalf("secondary drag must not pan: %+v", v)
	}
}

func TestPlotCanvas_Pan(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	pc.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	pc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(40, 30)}, Dragged: fyne.NewDelta(30, 20)})
	pc.DragEnd()
	if v := pc.Controller().View(); v.OffsetX != 30 || v.OffsetY != 20 {
		t.Fatalf("unexpected pan offset: %+v", v)
	}
}

func TestPlotCanvas_ScrollCenter(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	pc.SetScrollFactor(0) // ignored
	pc.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)}, Scrolled: fyne.NewDelta(0, 10)})
	v := pc.Controller().View()
	if math.Abs(v.Scale-30*1.12) > 1e-9 || v.OffsetX != 0 || v.OffsetY != 0 {
		t.Fatalf("center zoom mismatch: %+v", v)
	}
}

func TestPlotCanvas_ScrollCursorKeepsPointFixed(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	pc.SetCursorZoom(true)
	pc.SetScrollFactor(2)
	at := fyne.NewPos(250, 40)
	before := pc.Controller().Mapper().WorldPt(pt(at))
	pc.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: at}, Scrolled: fyne.NewDelta(0, 10)})
	after := pc.Controller().Mapper().WorldPt(pt(at))
	if math.Abs(pc.Controller().View().Scale-30*1.24) > 1e-9 {
		t.Fatalf("scroll factor not applied: %+v", pc.Controller().View())
	}
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Fatalf("world point under cursor moved: %v -> %v", before, after)
	}
}

func TestPlotCanvas_DrawScalesToDevicePixels(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	img := pc.draw(640, 480)
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("unexpected raster size: %v", b)
	}
	pc.SetTheme(theme.Dark())
	if pc.Theme().Name != theme.Dark().Name {
		t.Fatalf("theme not switched")
	}
}

func TestPlotCanvas_UndoRedoView(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	if pc.UndoView() {
		t.Fatalf("nothing to undo yet")
	}
	pc.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	pc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(40, 30)}, Dragged: fyne.NewDelta(30, 20)})
	pc.DragEnd()
	pc.MouseUp(mouse(40, 30, desktop.MouseButtonPrimary))
	panned := pc.Controller().View()

	if !pc.UndoView() || pc.Controller().View() != plot.DefaultView() {
		t.Fatalf("undo should restore the view before the pan: %+v", pc.Controller().View())
	}
	if !pc.RedoView() || pc.Controller().View() != panned {
		t.Fatalf("redo should restore the pan: %+v", pc.Controller().View())
	}

	pc.ApplyView(pc.Controller().ResetView)
	if !pc.UndoView() || pc.Controller().View() != panned {
		t.Fatalf("undo should restore the view before reset: %+v", pc.Controller().View())
	}
}

func TestPlotCanvas_ProbeDragNotRecorded(t *testing.T) {
	pc, _ := newLaidOutCanvas(t)
	pc.MouseDown(mouse(220, 0, desktop.MouseButtonPrimary))
	pc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(250, 0)}, Dragged: fyne.NewDelta(30, 0)})
	pc.DragEnd()
	if pc.UndoView() {
		t.Fatalf("a probe drag does not change the view")
	}
}
