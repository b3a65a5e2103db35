/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"funcplot/internal/vector"
)

// encodeSVG writes one <g> per contiguous layer run, in list order.
// Coordinates are display-list pixels rounded to 1/1000.
func encodeSVG(w io.Writer, dl vector.DisplayList, opt Options) error {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(dl.Width), num(dl.Height), num(dl.Width), num(dl.Height))
	wf("  <title>%s</title>\n", escText(opt.title()))
	wf("  <clipPath id=\"frame\"><rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\"/></clipPath>\n", num(dl.Width), num(dl.Height))
	wf("  <g clip-path=\"url(#frame)\">\n")

	open := false
	var cur vector.Layer
	for _, it := range dl.Items {
		if !open || it.Layer != cur {
			if open {
				wf("    </g>\n")
			}
			wf("    <g id=\"%s\">\n", it.Layer)
			open, cur = true, it.Layer
		}
		switch c := it.Cmd.(type) {
		case vector.FillRect:
			wf("      <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" %s/>\n",
				num(c.Rect.X), num(c.Rect.Y), num(c.Rect.W), num(c.Rect.H), svgPaint("fill", c.Color))
		case vector.Line:
			wf("      <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" %s/>\n",
				num(c.From.X), num(c.From.Y), num(c.To.X), num(c.To.Y), svgStroke(c.Stroke))
		case vector.Polyline:
			if len(c.Points) == 0 {
				continue
			}
			var pts strings.Builder
			for i, p := range c.Points {
				if i > 0 {
					pts.WriteByte(' ')
				}
				pts.WriteString(num(p.X))
				pts.WriteByte(',')
				pts.WriteString(num(p.Y))
			}
			wf("      <polyline points=\"%s\" fill=\"none\" stroke-linejoin=\"round\" %s/>\n", pts.String(), svgStroke(c.Stroke))
		case vector.Circle:
			fill := "fill=\"none\""
			if c.Fill.A > 0 {
				fill = svgPaint("fill", c.Fill)
			}
			wf("      <circle cx=\"%s\" cy=\"%s\" r=\"%s\" %s %s/>\n",
				num(c.Center.X), num(c.Center.Y), num(c.Radius), fill, svgStroke(c.Stroke))
		case vector.Text:
			family := c.Font.Family
			if family == "" {
				family = "Helvetica"
			}
			wf("      <text x=\"%s\" y=\"%s\" font-family=\"%s, Arial, sans-serif\" font-size=\"%s\" %s>%s</text>\n",
				num(c.At.X), num(c.At.Y), escAttr(family), num(c.Font.Size), svgPaint("fill", c.Color), escText(c.Text))
		}
	}
	if open {
		wf("    </g>\n")
	}
	wf("  </g>\n")
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(vector.FloatRound(v, 3), 'f', -1, 64)
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// svgPaint renders a fill or stroke attribute with opacity when translucent.
func svgPaint(attr string, c vector.Color) string {
	if c.A == 0 {
		return attr + "=\"none\""
	}
	s := attr + "=\"" + svgColor(c) + "\""
	if c.A < 255 {
		s += " " + attr + "-opacity=\"" + num(float64(c.A)/255) + "\""
	}
	return s
}

func svgStroke(st vector.Stroke) string {
	if st.Color.A == 0 || st.Width <= 0 {
		return "stroke=\"none\""
	}
	s := svgPaint("stroke", st.Color) + " stroke-width=\"" + num(st.Width) + "\""
	switch st.Cap {
	case vector.CapRound:
		s += " stroke-linecap=\"round\""
	case vector.CapSquare:
		s += " stroke-linecap=\"square\""
	}
	if st.Dashed() {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = num(d)
		}
		s += " stroke-dasharray=\"" + strings.Join(parts, " ") + "\""
	}
	return s
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
