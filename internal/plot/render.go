/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import (
	"strconv"

	"funcplot/internal/theme"
	"funcplot/internal/vector"
)

const (
	// TickHalfLength is half the length of a tick stroke in pixels.
	TickHalfLength = 5.0
	// tickCull skips ticks this far outside the viewport.
	tickCull = 100.0
)

var (
	tickLabelOffset  = vector.Pt{X: 2, Y: -2}
	probeLabelOffset = vector.Pt{X: 5, Y: -5}
)

// Frame is an immutable snapshot of everything needed to draw one frame.
type Frame struct {
	View     ViewState
	Viewport Viewport
	Func     Func
	Mode     Mode
	Domain   Domain
	Probe    Probe
	Theme    theme.Theme
}

// Render draws a frame as a display list in fixed layer order: background,
// grid, axes, ticks with labels, curve, probe.
func Render(fr Frame) vector.DisplayList {
	m := NewMapper(fr.View, fr.Viewport)
	th := fr.Theme
	w, h := fr.Viewport.Width, fr.Viewport.Height
	dl := vector.DisplayList{Width: w, Height: h}

	dl.Add(vector.LayerBackground, vector.FillRect{Rect: vector.R(0, 0, w, h), Color: th.Background})

	plan := PlanGrid(m)
	drawGrid(&dl, m, plan, th)
	drawAxes(&dl, m, th)
	drawTicks(&dl, m, plan, th)

	for seg := range Trace(m, fr.Func, fr.Mode, fr.Domain) {
		dl.Add(vector.LayerCurve, vector.Polyline{Points: seg, Stroke: th.Curve})
	}

	drawProbe(&dl, m, fr.Probe, th)
	return dl
}

func drawGrid(dl *vector.DisplayList, m Mapper, plan GridPlan, th theme.Theme) {
	w, h := m.Viewport.Width, m.Viewport.Height
	for _, x := range plan.XMinor {
		sx, _ := m.ToScreen(x, 0)
		dl.Add(vector.LayerGrid, vector.Line{From: vector.P(sx, 0), To: vector.P(sx, h), Stroke: th.Grid})
	}
	for _, y := range plan.YMinor {
		_, sy := m.ToScreen(0, y)
		dl.Add(vector.LayerGrid, vector.Line{From: vector.P(0, sy), To: vector.P(w, sy), Stroke: th.Grid})
	}
}

// drawAxes draws the two lines through the world origin across the whole
// viewport. Off-screen axes are still emitted, pulled into the guard band.
func drawAxes(dl *vector.DisplayList, m Mapper, th theme.Theme) {
	w, h := m.Viewport.Width, m.Viewport.Height
	o := guard(m.ScreenPt(vector.Pt{}))
	dl.Add(vector.LayerAxes, vector.Line{From: vector.P(0, o.Y), To: vector.P(w, o.Y), Stroke: th.Axes})
	dl.Add(vector.LayerAxes, vector.Line{From: vector.P(o.X, 0), To: vector.P(o.X, h), Stroke: th.Axes})
}

func drawTicks(dl *vector.DisplayList, m Mapper, plan GridPlan, th theme.Theme) {
	view := vector.R(0, 0, m.Viewport.Width, m.Viewport.Height).Inset(-tickCull, -tickCull)
	label := func(at vector.Pt, v float64) {
		dl.Add(vector.LayerTicks, vector.Text{At: at.Add(tickLabelOffset), Text: FormatTick(v), Color: th.TickLabel, Font: th.Font})
	}
	for _, x := range plan.XTicks {
		p := m.ScreenPt(vector.P(x, 0))
		if !view.Contains(p) {
			continue
		}
		dl.Add(vector.LayerTicks, vector.Line{
			From:   vector.P(p.X, p.Y-TickHalfLength),
			To:     vector.P(p.X, p.Y+TickHalfLength),
			Stroke: th.Ticks,
		})
		label(p, x)
	}
	for _, y := range plan.YTicks {
		p := m.ScreenPt(vector.P(0, y))
		if !view.Contains(p) {
			continue
		}
		dl.Add(vector.LayerTicks, vector.Line{
			From:   vector.P(p.X-TickHalfLength, p.Y),
			To:     vector.P(p.X+TickHalfLength, p.Y),
			Stroke: th.Ticks,
		})
		label(p, y)
	}
}

func drawProbe(dl *vector.DisplayList, m Mapper, p Probe, th theme.Theme) {
	if !p.Drawable() {
		return
	}
	sp := m.ScreenPt(p.World)
	if !sp.Finite() {
		return
	}
	sp = guard(sp)
	dl.Add(vector.LayerProbe, vector.Circle{Center: sp, Radius: th.ProbeSize, Fill: th.Probe, Stroke: vector.Stroke{Color: th.Probe, Width: 1}})
	dl.Add(vector.LayerProbe, vector.Text{At: sp.Add(probeLabelOffset), Text: FormatProbe(p.World), Color: th.ProbeLabel, Font: th.Font})
}

// FormatProbe renders a world point as "(x, y)" with six significant digits.
func FormatProbe(w vector.Pt) string {
	return "(" + strconv.FormatFloat(w.X, 'g', 6, 64) + ", " + strconv.FormatFloat(w.Y, 'g', 6, 64) + ")"
}
