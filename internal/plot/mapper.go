/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import "funcplot/internal/vector"

// Scale bounds in pixels per world unit.
const (
	MinScale     = 1e-8
	MaxScale     = 1e8
	DefaultScale = 30.0
)

// ViewState is the pan offset (pixels) and zoom (pixels per world unit).
type ViewState struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// DefaultView is the view after ResetView.
func DefaultView() ViewState { return ViewState{Scale: DefaultScale} }

// clamped returns v with Scale forced into [MinScale, MaxScale].
func (v ViewState) clamped() ViewState {
	if !vector.Finite(v.Scale) {
		v.Scale = DefaultScale
	}
	v.Scale = vector.Clamp(v.Scale, MinScale, MaxScale)
	return v
}

// Viewport is the drawing surface size in pixels.
type Viewport struct {
	Width, Height float64
}

// WorldRect is the visible region in world coordinates.
type WorldRect struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Mapper converts between world and screen coordinates for one frame.
// The screen origin of the world is the viewport center moved by the pan offset;
// screen Y grows downward, world Y grows upward.
type Mapper struct {
	View     ViewState
	Viewport Viewport
}

// NewMapper returns a mapper with the scale clamped into range.
func NewMapper(v ViewState, vp Viewport) Mapper {
	return Mapper{View: v.clamped(), Viewport: vp}
}

func (m Mapper) center() (cx, cy float64) {
	return m.Viewport.Width/2 + m.View.OffsetX, m.Viewport.Height/2 + m.View.OffsetY
}

// ToScreen maps world (x, y) to screen pixels.
func (m Mapper) ToScreen(wx, wy float64) (sx, sy float64) {
	cx, cy := m.center()
	return cx + wx*m.View.Scale, cy - wy*m.View.Scale
}

// ToWorld maps screen pixels to world coordinates.
func (m Mapper) ToWorld(sx, sy float64) (wx, wy float64) {
	cx, cy := m.center()
	return (sx - cx) / m.View.Scale, (cy - sy) / m.View.Scale
}

// ScreenPt is ToScreen on a point.
func (m Mapper) ScreenPt(w vector.Pt) vector.Pt {
	x, y := m.ToScreen(w.X, w.Y)
	return vector.Pt{X: x, Y: y}
}

// WorldPt is ToWorld on a point.
func (m Mapper) WorldPt(s vector.Pt) vector.Pt {
	x, y := m.ToWorld(s.X, s.Y)
	return vector.Pt{X: x, Y: y}
}

// Visible returns the world rectangle covered by the viewport.
func (m Mapper) Visible() WorldRect {
	x0, yTop := m.ToWorld(0, 0)
	x1, yBottom := m.ToWorld(m.Viewport.Width, m.Viewport.Height)
	return WorldRect{MinX: x0, MaxX: x1, MinY: yBottom, MaxY: yTop}
}
