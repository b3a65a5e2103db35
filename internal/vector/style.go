/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Styles and paint definitions.

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
	LightGray   = Color{192, 192, 192, 255}
	Gray        = Color{160, 160, 164, 255}
	Blue        = Color{0, 0, 255, 255}
	Red         = Color{255, 0, 0, 255}
)

// RGBA converts to the standard library color type.
func (c Color) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Hex renders #rrggbb, or #rrggbbaa when not fully opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHex parses #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// Stroke describes how lines are drawn. Dash holds alternating on/off lengths
// in pixels; an empty Dash is a solid line.
type Stroke struct {
	Color Color
	Width float64
	Cap   LineCap
	Dash  []float64
}

// Dashed reports whether the stroke has a usable dash pattern.
func (s Stroke) Dashed() bool {
	if len(s.Dash) == 0 {
		return false
	}
	var total float64
	for _, d := range s.Dash {
		if d < 0 {
			return false
		}
		total += d
	}
	return total > 0
}

// DashLine is the Qt-style dash pattern (4 on, 2 off in pen widths).
func DashLine(width float64) []float64 {
	if width < 1 {
		width = 1
	}
	return []float64{4 * width, 2 * width}
}

// Font is a text style hint for backends. Family is advisory; raster output
// always uses the built-in bitmap face.
type Font struct {
	Family string
	Size   float64
}
