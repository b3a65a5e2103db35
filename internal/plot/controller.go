/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import (
	"funcplot/internal/theme"
	"funcplot/internal/vector"
)

const (
	// HitThreshold is the max screen distance for a press to grab the curve.
	HitThreshold = 10.0
	// ZoomDivisor converts a wheel delta into a scale factor: 1 + delta/ZoomDivisor.
	ZoomDivisor = 1000.0
)

// State is the gesture state of the controller.
type State uint8

const (
	Idle State = iota
	Panning
	DraggingProbe
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case DraggingProbe:
		return "dragging-probe"
	default:
		return "idle"
	}
}

// Button identifies a pointer button. Only ButtonPrimary starts gestures.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// Probe is the draggable marker on the curve.
type Probe struct {
	Visible bool
	World   vector.Pt
	// OutOfDomain is set when the independent coordinate lies outside the
	// bounded domain, where no curve is drawn.
	OutOfDomain bool
}

// Drawable reports whether the probe should be rendered: it is visible,
// inside the domain and its position is finite.
func (p Probe) Drawable() bool { return p.Visible && !p.OutOfDomain && p.World.Finite() }

// ProbeAt places a visible probe on the curve at the independent coordinate c.
func ProbeAt(f Func, mode Mode, dom Domain, c float64) Probe {
	w, _ := CurvePoint(f, mode, c)
	return Probe{Visible: true, World: w, OutOfDomain: !dom.Contains(c)}
}

// Controller owns the view, the plotted function and the probe, and turns
// normalized pointer and wheel input into pan, zoom and probe updates.
// It is not safe for concurrent use; hosts call it from their event loop.
type Controller struct {
	view     ViewState
	viewport Viewport
	fn       Func
	mode     Mode
	domain   Domain
	probe    Probe
	state    State
	anchor   vector.Pt

	// OnChange, if set, is called synchronously after every state change so
	// the host can redraw before handling the next event.
	OnChange func()
}

// NewController returns a controller with the default view.
func NewController(vp Viewport) *Controller {
	return &Controller{view: DefaultView(), viewport: vp, domain: Unbounded()}
}

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *Controller) View() ViewState    { return c.view }
func (c *Controller) Viewport() Viewport { return c.viewport }
func (c *Controller) Func() Func         { return c.fn }
func (c *Controller) Mode() Mode         { return c.mode }
func (c *Controller) Domain() Domain     { return c.domain }
func (c *Controller) Probe() Probe       { return c.probe }
func (c *Controller) State() State       { return c.state }

// Mapper returns the coordinate mapper for the current view and viewport.
func (c *Controller) Mapper() Mapper { return NewMapper(c.view, c.viewport) }

// SetFunction replaces the plotted function and its mode. A nil f clears the
// curve. Any gesture in progress is abandoned.
func (c *Controller) SetFunction(f Func, mode Mode) {
	c.fn = f
	c.mode = mode
	c.state = Idle
	c.probe = Probe{}
	c.changed()
}

// ClearFunction removes the curve.
func (c *Controller) ClearFunction() { c.SetFunction(nil, c.mode) }

// SetDomain limits the independent variable to [lo, hi].
func (c *Controller) SetDomain(lo, hi float64) error {
	d, err := NewDomain(lo, hi)
	if err != nil {
		return err
	}
	c.domain = d
	c.changed()
	return nil
}

// ClearDomain removes the domain limit.
func (c *Controller) ClearDomain() {
	c.domain = Unbounded()
	c.changed()
}

// SetView replaces the view; the scale is clamped.
func (c *Controller) SetView(v ViewState) {
	c.view = v.clamped()
	c.changed()
}

// ResetView restores zero offset and the default scale.
func (c *Controller) ResetView() { c.SetView(DefaultView()) }

// Resize updates the viewport size.
func (c *Controller) Resize(vp Viewport) {
	if vp == c.viewport {
		return
	}
	c.viewport = vp
	c.changed()
}

// HitTest projects pos onto the curve along the independent axis and reports
// the curve's world point when it lies within HitThreshold pixels of pos.
func (c *Controller) HitTest(pos vector.Pt) (vector.Pt, bool) {
	if c.fn == nil {
		return vector.Pt{}, false
	}
	m := c.Mapper()
	coord := independent(m, c.mode, pos)
	if !c.domain.Contains(coord) {
		return vector.Pt{}, false
	}
	w, ok := CurvePoint(c.fn, c.mode, coord)
	if !ok {
		return vector.Pt{}, false
	}
	d := pos.Dist(m.ScreenPt(w))
	if !(d <= HitThreshold) {
		return vector.Pt{}, false
	}
	return w, true
}

// PointerDown starts a gesture: a press on the curve grabs the probe,
// anywhere else starts panning.
func (c *Controller) PointerDown(pos vector.Pt, b Button) {
	if b != ButtonPrimary {
		return
	}
	if w, ok := c.HitTest(pos); ok {
		c.state = DraggingProbe
		c.probe = Probe{Visible: true, World: w}
		c.changed()
		return
	}
	c.state = Panning
	c.anchor = pos
	wasVisible := c.probe.Visible
	c.probe.Visible = false
	if wasVisible {
		c.changed()
	}
}

// PointerMove pans or drags the probe depending on the gesture.
func (c *Controller) PointerMove(pos vector.Pt) {
	switch c.state {
	case Panning:
		d := pos.Sub(c.anchor)
		c.anchor = pos
		if d.X == 0 && d.Y == 0 {
			return
		}
		c.view.OffsetX += d.X
		c.view.OffsetY += d.Y
		c.changed()
	case DraggingProbe:
		if c.fn == nil {
			return
		}
		coord := independent(c.Mapper(), c.mode, pos)
		// Keep the probe even where f is not finite or outside the domain;
		// rendering skips it there.
		c.probe = ProbeAt(c.fn, c.mode, c.domain, coord)
		c.changed()
	}
}

// PointerUp ends the gesture and hides the probe.
func (c *Controller) PointerUp(b Button) {
	if b != ButtonPrimary || c.state == Idle {
		return
	}
	c.state = Idle
	c.probe.Visible = false
	c.changed()
}

// zoomed returns the clamped scale after applying delta. ok is false for a
// non-finite delta.
func (c *Controller) zoomed(delta float64) (float64, bool) {
	if !vector.Finite(delta) {
		return 0, false
	}
	s := c.view.Scale * (1 + delta/ZoomDivisor)
	if !vector.Finite(s) {
		s = MaxScale
	}
	return vector.Clamp(s, MinScale, MaxScale), true
}

// Scroll zooms around the viewport center by 1 + delta/1000.
func (c *Controller) Scroll(delta float64) {
	s, ok := c.zoomed(delta)
	if !ok {
		return
	}
	c.view.Scale = s
	c.changed()
}

// ScrollAt zooms keeping the world point under pos fixed on screen.
func (c *Controller) ScrollAt(delta float64, pos vector.Pt) {
	s, ok := c.zoomed(delta)
	if !ok {
		return
	}
	w := c.Mapper().WorldPt(pos)
	ox := pos.X - w.X*s - c.viewport.Width/2
	oy := pos.Y + w.Y*s - c.viewport.Height/2
	c.view.Scale = s
	if vector.Finite(ox) && vector.Finite(oy) {
		c.view.OffsetX, c.view.OffsetY = ox, oy
	}
	c.changed()
}

// Frame snapshots everything the renderer needs.
func (c *Controller) Frame(th theme.Theme) Frame {
	return Frame{
		View:     c.view,
		Viewport: c.viewport,
		Func:     c.fn,
		Mode:     c.mode,
		Domain:   c.domain,
		Probe:    c.probe,
		Theme:    th,
	}
}
