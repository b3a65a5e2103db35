/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import (
	"math"
	"strconv"

	"funcplot/internal/vector"
)

const (
	// TargetPixelSpacing is the desired distance between labelled ticks.
	TargetPixelSpacing = 50.0
	// MinorDivisions is how many grid cells fit between two ticks.
	MinorDivisions = 5
	// MaxTicks caps the positions produced for one axis.
	MaxTicks = 10000
)

// NiceNumber rounds a positive candidate to {1,2,5,10}×10^k using the
// thresholds 1.5, 3 and 7 on the mantissa.
func NiceNumber(candidate float64) float64 {
	if !(candidate > 0) || math.IsInf(candidate, 0) {
		return 1
	}
	exponent := math.Floor(math.Log10(candidate))
	pow := math.Pow(10, exponent)
	fraction := candidate / pow
	var nice float64
	switch {
	case fraction < 1.5:
		nice = 1
	case fraction < 3:
		nice = 2
	case fraction < 7:
		nice = 5
	default:
		nice = 10
	}
	return nice * pow
}

// NiceSpacing returns the tick spacing in world units for scale px/unit.
func NiceSpacing(scale float64) float64 {
	return NiceNumber(TargetPixelSpacing / scale)
}

// Ticks returns multiples of spacing from floor(lo/spacing)*spacing up to hi
// inclusive. Positions are index*spacing so they do not drift, and values
// within a billionth of a step of zero are exactly 0.
func Ticks(lo, hi, spacing float64) []float64 {
	if !(spacing > 0) || !vector.Finite(spacing) || !vector.Finite(lo) || !vector.Finite(hi) || lo > hi {
		return nil
	}
	first := math.Floor(lo / spacing)
	last := math.Floor(hi / spacing)
	if !vector.Finite(first) || !vector.Finite(last) {
		return nil
	}
	n := last - first + 1
	if n > MaxTicks {
		n = MaxTicks
	}
	out := make([]float64, 0, int(n))
	for i := 0.0; i < n; i++ {
		pos := (first + i) * spacing
		if pos > hi {
			break
		}
		out = append(out, normalizeZero(pos, spacing))
	}
	return out
}

func normalizeZero(v, spacing float64) float64 {
	if math.Abs(v) < spacing*1e-9 || v == 0 {
		return 0
	}
	return v
}

// FormatTick renders a tick value with six significant digits.
func FormatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// GridPlan is the tick and grid layout for one frame.
type GridPlan struct {
	Spacing      float64
	MinorSpacing float64
	Rect         WorldRect
	XTicks       []float64
	YTicks       []float64
	XMinor       []float64
	YMinor       []float64
}

// PlanGrid computes tick and minor grid positions covering the visible rect.
func PlanGrid(m Mapper) GridPlan {
	r := m.Visible()
	s := NiceSpacing(m.View.Scale)
	minor := s / MinorDivisions
	return GridPlan{
		Spacing:      s,
		MinorSpacing: minor,
		Rect:         r,
		XTicks:       Ticks(r.MinX, r.MaxX, s),
		YTicks:       Ticks(r.MinY, r.MaxY, s),
		XMinor:       Ticks(r.MinX, r.MaxX, minor),
		YMinor:       Ticks(r.MinY, r.MaxY, minor),
	}
}
