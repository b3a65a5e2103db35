/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// A display list is an ordered set of drawing commands in screen pixels
// (origin top-left, Y down). Producers append; backends replay in order.

// Layer tags which stage of a frame produced a command.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerGrid
	LayerAxes
	LayerTicks
	LayerCurve
	LayerProbe
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerGrid:
		return "grid"
	case LayerAxes:
		return "axes"
	case LayerTicks:
		return "ticks"
	case LayerCurve:
		return "curve"
	case LayerProbe:
		return "probe"
	default:
		return "unknown"
	}
}

// Command is one drawing instruction. The set is closed: FillRect, Line,
// Polyline, Circle and Text.
type Command interface{ command() }

// FillRect paints an axis-aligned rectangle.
type FillRect struct {
	Rect  Rect
	Color Color
}

// Line strokes a single segment.
type Line struct {
	From, To Pt
	Stroke   Stroke
}

// Polyline strokes connected segments through Points.
type Polyline struct {
	Points []Pt
	Stroke Stroke
}

// Circle draws a circle; Fill and Stroke are applied when their alpha is non-zero.
type Circle struct {
	Center Pt
	Radius float64
	Fill   Color
	Stroke Stroke
}

// Text draws a single line with its baseline-left corner at At.
type Text struct {
	At    Pt
	Text  string
	Color Color
	Font  Font
}

func (FillRect) command() {}
func (Line) command()     {}
func (Polyline) command() {}
func (Circle) command()   {}
func (Text) command()     {}

// Item is a command tagged with its layer.
type Item struct {
	Layer Layer
	Cmd   Command
}

// DisplayList is the output of one rendered frame.
type DisplayList struct {
	Width, Height float64
	Items         []Item
}

// Add appends a command on layer l.
func (d *DisplayList) Add(l Layer, c Command) { d.Items = append(d.Items, Item{Layer: l, Cmd: c}) }

// Layers returns the distinct layers in first-appearance order.
func (d DisplayList) Layers() []Layer {
	var out []Layer
	seen := map[Layer]bool{}
	for _, it := range d.Items {
		if !seen[it.Layer] {
			seen[it.Layer] = true
			out = append(out, it.Layer)
		}
	}
	return out
}

// On returns the commands drawn on layer l.
func (d DisplayList) On(l Layer) []Command {
	var out []Command
	for _, it := range d.Items {
		if it.Layer == l {
			out = append(out, it.Cmd)
		}
	}
	return out
}
