/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import (
	"errors"
	"iter"
	"math"

	"funcplot/internal/vector"
)

// GuardBand bounds screen coordinates handed to backends. Samples far off
// screen are pulled in to this distance; the visible part of the curve is
// unchanged.
const GuardBand = 1e6

// MaxSamples caps the evaluations of f per traced frame.
const MaxSamples = 1 << 16

// ErrInvalidDomain is returned for empty, reversed or non-finite domains.
var ErrInvalidDomain = errors.New("invalid domain")

// Func is a unary real function. Results may be NaN or ±Inf.
type Func interface {
	Eval(v float64) float64
}

// FuncOf adapts a plain function to Func.
type FuncOf func(float64) float64

func (f FuncOf) Eval(v float64) float64 { return f(v) }

// Mode selects the independent axis.
type Mode uint8

const (
	// YofX plots y = f(x); x runs along the horizontal screen axis.
	YofX Mode = iota
	// XofY plots x = f(y); y runs along the vertical screen axis.
	XofY
)

func (m Mode) String() string {
	if m == XofY {
		return "x=f(y)"
	}
	return "y=f(x)"
}

// Var is the name of the independent variable for the mode.
func (m Mode) Var() string {
	if m == XofY {
		return "y"
	}
	return "x"
}

// Domain optionally limits the independent variable.
type Domain struct {
	Min, Max float64
	Bounded  bool
}

// Unbounded is the default domain.
func Unbounded() Domain { return Domain{Min: math.Inf(-1), Max: math.Inf(1)} }

// NewDomain validates [lo, hi].
func NewDomain(lo, hi float64) (Domain, error) {
	if !vector.Finite(lo) || !vector.Finite(hi) || lo >= hi {
		return Domain{}, ErrInvalidDomain
	}
	return Domain{Min: lo, Max: hi, Bounded: true}, nil
}

// Contains reports whether v lies in the domain.
func (d Domain) Contains(v float64) bool {
	if !d.Bounded {
		return true
	}
	return v >= d.Min && v <= d.Max
}

// Segment is a maximal run of finite samples drawn as one polyline.
type Segment []vector.Pt

// CurvePoint evaluates f at the independent coordinate c and returns the world
// point on the curve. ok is false when the result is not finite.
func CurvePoint(f Func, mode Mode, c float64) (world vector.Pt, ok bool) {
	v := f.Eval(c)
	if mode == XofY {
		world = vector.Pt{X: v, Y: c}
	} else {
		world = vector.Pt{X: c, Y: v}
	}
	return world, vector.Finite(v)
}

// independent returns the world coordinate of the independent variable under
// screen point s.
func independent(m Mapper, mode Mode, s vector.Pt) float64 {
	wx, wy := m.ToWorld(s.X, s.Y)
	if mode == XofY {
		return wy
	}
	return wx
}

// guard pulls a screen point into the guard band.
func guard(p vector.Pt) vector.Pt {
	return vector.Pt{X: vector.Clamp(p.X, -GuardBand, GuardBand), Y: vector.Clamp(p.Y, -GuardBand, GuardBand)}
}

// Trace samples f once per pixel column (YofX) or row (XofY) and yields the
// curve as screen-space segments. A non-finite result, or a sample outside
// dom, ends the current segment; the next valid sample starts a new one.
// A nil f yields nothing.
func Trace(m Mapper, f Func, mode Mode, dom Domain) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		if f == nil {
			return
		}
		extent := m.Viewport.Width
		if mode == XofY {
			extent = m.Viewport.Height
		}
		if !(extent > 0) || !vector.Finite(extent) {
			return
		}
		n := int(math.Ceil(math.Min(extent, MaxSamples)))
		var cur Segment
		flush := func() bool {
			if len(cur) == 0 {
				return true
			}
			seg := cur
			cur = nil
			return yield(seg)
		}
		for i := 0; i < n; i++ {
			var s vector.Pt
			if mode == XofY {
				s = vector.Pt{Y: float64(i)}
			} else {
				s = vector.Pt{X: float64(i)}
			}
			c := independent(m, mode, s)
			if !dom.Contains(c) {
				if !flush() {
					return
				}
				continue
			}
			w, ok := CurvePoint(f, mode, c)
			if !ok {
				if !flush() {
					return
				}
				continue
			}
			p := m.ScreenPt(w)
			if !p.Finite() {
				if !flush() {
					return
				}
				continue
			}
			cur = append(cur, guard(p))
		}
		flush()
	}
}
