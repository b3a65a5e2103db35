/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"funcplot/internal/vector"
)

// encodePDF writes a single page whose size is the frame at opt.DPI.
// Units are points; one display-list pixel is 72/DPI pt. Text uses the
// built-in core fonts so nothing is embedded.
func encodePDF(w io.Writer, dl vector.DisplayList, opt Options) error {
	k := 72 / opt.dpi()
	pageW, pageH := dl.Width*k, dl.Height*k

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(opt.title(), true)
	pdf.SetCreator("funcplot", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	pdf.SetLineJoinStyle("round")
	pdf.ClipRect(0, 0, pageW, pageH, false)

	p := pdfPainter{pdf: pdf, k: k}
	for _, it := range dl.Items {
		p.draw(it.Cmd)
	}
	pdf.ClipEnd()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

type pdfPainter struct {
	pdf *gofpdf.Fpdf
	k   float64
}

func (p pdfPainter) alpha(c vector.Color) {
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func (p pdfPainter) stroke(st vector.Stroke) bool {
	if st.Color.A == 0 || st.Width <= 0 {
		return false
	}
	setDrawColor(p.pdf, st.Color)
	p.alpha(st.Color)
	p.pdf.SetLineWidth(st.Width * p.k)
	switch st.Cap {
	case vector.CapRound:
		p.pdf.SetLineCapStyle("round")
	case vector.CapSquare:
		p.pdf.SetLineCapStyle("square")
	default:
		p.pdf.SetLineCapStyle("butt")
	}
	if st.Dashed() {
		dash := make([]float64, len(st.Dash))
		for i, d := range st.Dash {
			dash[i] = d * p.k
		}
		p.pdf.SetDashPattern(dash, 0)
	} else {
		p.pdf.SetDashPattern([]float64{}, 0)
	}
	return true
}

func (p pdfPainter) draw(c vector.Command) {
	k := p.k
	switch c := c.(type) {
	case vector.FillRect:
		if c.Color.A == 0 {
			return
		}
		setFillColor(p.pdf, c.Color)
		p.alpha(c.Color)
		p.pdf.Rect(c.Rect.X*k, c.Rect.Y*k, c.Rect.W*k, c.Rect.H*k, "F")
	case vector.Line:
		if p.stroke(c.Stroke) {
			p.pdf.Line(c.From.X*k, c.From.Y*k, c.To.X*k, c.To.Y*k)
		}
	case vector.Polyline:
		if len(c.Points) < 2 || !p.stroke(c.Stroke) {
			return
		}
		p.pdf.MoveTo(c.Points[0].X*k, c.Points[0].Y*k)
		for _, pt := range c.Points[1:] {
			p.pdf.LineTo(pt.X*k, pt.Y*k)
		}
		p.pdf.DrawPath("D")
	case vector.Circle:
		style := ""
		if c.Fill.A > 0 {
			setFillColor(p.pdf, c.Fill)
			p.alpha(c.Fill)
			style = "F"
		}
		if p.stroke(c.Stroke) {
			style += "D"
		}
		if style != "" {
			p.pdf.Circle(c.Center.X*k, c.Center.Y*k, c.Radius*k, style)
		}
	case vector.Text:
		if c.Text == "" || c.Color.A == 0 {
			return
		}
		size := c.Font.Size
		if size <= 0 {
			size = 9
		}
		p.pdf.SetFont(coreFont(c.Font.Family), "", size*k)
		p.pdf.SetTextColor(int(c.Color.R), int(c.Color.G), int(c.Color.B))
		p.alpha(c.Color)
		p.pdf.Text(c.At.X*k, c.At.Y*k, c.Text)
	}
}

// coreFont maps a family to one of the PDF core fonts.
func coreFont(family string) string {
	switch f := strings.ToLower(family); f {
	case "courier", "times", "helvetica":
		return f
	case "mono", "monospace":
		return "courier"
	case "serif":
		return "times"
	}
	return "helvetica"
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
