/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	rasterx "golang.org/x/image/vector"

	"funcplot/internal/textlayout"
	"funcplot/internal/vector"
)

// clipMargin is how far outside the image strokes are still rasterized.
const clipMargin = 16.0

// Rasterize renders dl into a new RGBA image of size ceil(W*scale) x ceil(H*scale).
func Rasterize(dl vector.DisplayList, opt Options) *image.RGBA {
	s := opt.scale()
	w := max(1, int(math.Ceil(dl.Width*s)))
	h := max(1, int(math.Ceil(dl.Height*s)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := &raster{
		img:   img,
		z:     rasterx.NewRasterizer(w, h),
		s:     s,
		fonts: opt.fonts(),
		clip:  vector.R(-clipMargin, -clipMargin, float64(w)+2*clipMargin, float64(h)+2*clipMargin),
	}
	for _, it := range dl.Items {
		r.draw(it.Cmd)
	}
	r.flush()
	return img
}

func encodePNG(w io.Writer, dl vector.DisplayList, opt Options) error {
	return png.Encode(w, Rasterize(dl, opt))
}

// raster batches consecutive shapes of the same color into one rasterizer
// pass. All polygons are added with the same winding so overlaps union.
type raster struct {
	img   *image.RGBA
	z     *rasterx.Rasterizer
	s     float64
	fonts textlayout.Provider
	clip  vector.Rect

	col     vector.Color
	pending bool
}

func nrgba(c vector.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func (r *raster) use(c vector.Color) {
	if r.pending && c == r.col {
		return
	}
	r.flush()
	r.col = c
}

func (r *raster) flush() {
	if !r.pending {
		return
	}
	r.z.DrawOp = draw.Over
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(nrgba(r.col)), image.Point{})
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.pending = false
}

func (r *raster) pt(p vector.Pt) vector.Pt { return vector.Pt{X: p.X * r.s, Y: p.Y * r.s} }

// poly adds a closed polygon in image space with positive winding.
func (r *raster) poly(pts ...vector.Pt) {
	if len(pts) < 3 {
		return
	}
	var area float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p.X*q.Y - q.X*p.Y
	}
	if area == 0 {
		return
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	r.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X), float32(p.Y))
	}
	r.z.ClosePath()
	r.pending = true
}

func (r *raster) disc(c vector.Pt, radius float64) {
	if !(radius > 0) || !r.clip.Inset(-radius, -radius).Contains(c) {
		return
	}
	n := max(12, int(math.Ceil(2*math.Pi*radius/2)))
	pts := make([]vector.Pt, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vector.Pt{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	r.poly(pts...)
}

// segment strokes a→b in image space with half width hw.
func (r *raster) segment(a, b vector.Pt, hw float64, lineCap vector.LineCap) {
	a, b, ok := clipSegment(a, b, r.clip)
	if !ok {
		return
	}
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return
	}
	ux, uy := d.X/l, d.Y/l
	if lineCap == vector.CapSquare {
		a = vector.Pt{X: a.X - ux*hw, Y: a.Y - uy*hw}
		b = vector.Pt{X: b.X + ux*hw, Y: b.Y + uy*hw}
	}
	nx, ny := -uy*hw, ux*hw
	r.poly(
		vector.Pt{X: a.X + nx, Y: a.Y + ny},
		vector.Pt{X: b.X + nx, Y: b.Y + ny},
		vector.Pt{X: b.X - nx, Y: b.Y - ny},
		vector.Pt{X: a.X - nx, Y: a.Y - ny},
	)
}

func (r *raster) halfWidth(st vector.Stroke) float64 {
	return math.Max(st.Width*r.s, 1) / 2
}

func (r *raster) stroke(pts []vector.Pt, st vector.Stroke) {
	if st.Color.A == 0 || len(pts) == 0 {
		return
	}
	r.use(st.Color)
	hw := r.halfWidth(st)
	round := st.Cap == vector.CapRound
	if len(pts) == 1 {
		if round {
			r.disc(r.pt(pts[0]), hw)
		}
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := r.pt(pts[i-1]), r.pt(pts[i])
		if st.Dashed() {
			for _, d := range vector.SplitDashes(pts[i-1], pts[i], st.Dash) {
				r.segment(r.pt(d.A), r.pt(d.B), hw, st.Cap)
			}
			continue
		}
		r.segment(a, b, hw, st.Cap)
		// joints
		if hw > 0.75 || round {
			r.disc(b, hw)
		}
	}
	if round {
		r.disc(r.pt(pts[0]), hw)
	}
}

func (r *raster) draw(c vector.Command) {
	switch c := c.(type) {
	case vector.FillRect:
		if c.Color.A == 0 {
			return
		}
		r.use(c.Color)
		lo, hi := r.pt(c.Rect.Min()), r.pt(c.Rect.Max())
		r.poly(lo, vector.Pt{X: hi.X, Y: lo.Y}, hi, vector.Pt{X: lo.X, Y: hi.Y})
	case vector.Line:
		r.stroke([]vector.Pt{c.From, c.To}, c.Stroke)
	case vector.Polyline:
		r.stroke(c.Points, c.Stroke)
	case vector.Circle:
		if c.Fill.A > 0 {
			r.use(c.Fill)
			r.disc(r.pt(c.Center), c.Radius*r.s)
		}
		if c.Stroke.Color.A > 0 && c.Stroke.Width > 0 {
			n := max(12, int(math.Ceil(2*math.Pi*c.Radius)))
			ring := make([]vector.Pt, n+1)
			for i := range ring {
				a := 2 * math.Pi * float64(i) / float64(n)
				ring[i] = vector.Pt{X: c.Center.X + c.Radius*math.Cos(a), Y: c.Center.Y + c.Radius*math.Sin(a)}
			}
			r.stroke(ring, c.Stroke)
		}
	case vector.Text:
		r.text(c)
	}
}

func (r *raster) text(t vector.Text) {
	if t.Text == "" || t.Color.A == 0 {
		return
	}
	r.flush()
	at := r.pt(t.At)
	if !r.clip.Inset(-512, -512).Contains(at) {
		return
	}
	face, _ := r.fonts.Resolve(textlayout.FontSpec{Family: t.Font.Family, SizePx: t.Font.Size * r.s})
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(nrgba(t.Color)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(at.X * 64)), Y: fixed.Int26_6(math.Round(at.Y * 64))},
	}
	d.DrawString(t.Text)
}

// clipSegment clips a→b to rect (Liang-Barsky). ok is false when nothing
// remains or an endpoint is not finite.
func clipSegment(a, b vector.Pt, rect vector.Rect) (vector.Pt, vector.Pt, bool) {
	if !a.Finite() || !b.Finite() {
		return a, b, false
	}
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y
	lo, hi := rect.Min(), rect.Max()
	for _, e := range [4][2]float64{
		{-dx, a.X - lo.X},
		{dx, hi.X - a.X},
		{-dy, a.Y - lo.Y},
		{dy, hi.Y - a.Y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return a, b, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return vector.Pt{X: a.X + t0*dx, Y: a.Y + t0*dy}, vector.Pt{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}
