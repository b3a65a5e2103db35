/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcplot/internal/theme"
	"funcplot/internal/vector"
)

func defaultTheme() theme.Theme { return theme.Default() }

func TestRender_LayerOrder(t *testing.T) {
	c := newSquareController()
	c.PointerDown(vector.P(460, 180), ButtonPrimary)
	dl := Render(c.Frame(defaultTheme()))

	assert.Equal(t, 800.0, dl.Width)
	assert.Equal(t, 600.0, dl.Height)
	assert.Equal(t, []vector.Layer{
		vector.LayerBackground,
		vector.LayerGrid,
		vector.LayerAxes,
		vector.LayerTicks,
		vector.LayerCurve,
		vector.LayerProbe,
	}, dl.Layers())

	// items must never go back to an earlier layer
	for i := 1; i < len(dl.Items); i++ {
		assert.LessOrEqual(t, dl.Items[i-1].Layer, dl.Items[i].Layer)
	}
}

func TestRender_NoFunctionNoCurve(t *testing.T) {
	dl := Render(NewController(vp800).Frame(defaultTheme()))
	assert.Empty(t, dl.On(vector.LayerCurve))
	assert.Empty(t, dl.On(vector.LayerProbe))
	assert.NotEmpty(t, dl.On(vector.LayerGrid))
}

func TestRender_Background(t *testing.T) {
	th := defaultTheme()
	dl := Render(NewController(vp800).Frame(th))
	require.NotEmpty(t, dl.Items)
	bg, ok := dl.Items[0].Cmd.(vector.FillRect)
	require.True(t, ok)
	assert.Equal(t, vector.R(0, 0, 800, 600), bg.Rect)
	assert.Equal(t, th.Background, bg.Color)
}

func TestRender_AxesThroughOrigin(t *testing.T) {
	th := defaultTheme()
	dl := Render(NewController(vp800).Frame(th))
	axes := dl.On(vector.LayerAxes)
	require.Len(t, axes, 2)

	h := axes[0].(vector.Line)
	assert.Equal(t, vector.P(0, 300), h.From)
	assert.Equal(t, vector.P(800, 300), h.To)
	assert.True(t, h.Stroke.Dashed())

	v := axes[1].(vector.Line)
	assert.Equal(t, vector.P(400, 0), v.From)
	assert.Equal(t, vector.P(400, 600), v.To)
}

func TestRender_TickAndLabel(t *testing.T) {
	dl := Render(NewController(vp800).Frame(defaultTheme()))
	var foundLine, foundLabel bool
	for _, cmd := range dl.On(vector.LayerTicks) {
		switch c := cmd.(type) {
		case vector.Line:
			if c.From == vector.P(460, 295) && c.To == vector.P(460, 305) {
				foundLine = true
			}
		case vector.Text:
			if c.Text == "2" && c.At == vector.P(462, 298) {
				foundLabel = true
			}
		}
	}
	assert.True(t, foundLine, "tick stroke at x=2")
	assert.True(t, foundLabel, "tick label at x=2")
}

func TestRender_CurveSegments(t *testing.T) {
	c := NewController(vp800)
	c.SetFunction(FuncOf(func(x float64) float64 { return 1 / x }), YofX)
	th := defaultTheme()
	dl := Render(c.Frame(th))
	curve := dl.On(vector.LayerCurve)
	require.Len(t, curve, 2)
	pl := curve[0].(vector.Polyline)
	assert.Equal(t, th.Curve, pl.Stroke)
}

func TestRender_Probe(t *testing.T) {
	c := newSquareController()
	c.PointerDown(vector.P(460, 180), ButtonPrimary)
	th := defaultTheme()
	probe := Render(c.Frame(th)).On(vector.LayerProbe)
	require.Len(t, probe, 2)

	dot := probe[0].(vector.Circle)
	assert.Equal(t, vector.P(460, 180), dot.Center)
	assert.Equal(t, th.ProbeSize, dot.Radius)
	assert.Equal(t, th.Probe, dot.Fill)

	label := probe[1].(vector.Text)
	assert.Equal(t, "(2, 4)", label.Text)
	assert.Equal(t, vector.P(465, 175), label.At)
}

func TestRender_FarPanStaysInGuardBand(t *testing.T) {
	c := newSquareController()
	c.SetView(ViewState{OffsetX: 1e12, OffsetY: -1e12, Scale: 30})
	dl := Render(c.Frame(defaultTheme()))
	for _, cmd := range dl.On(vector.LayerAxes) {
		l := cmd.(vector.Line)
		assert.True(t, l.From.Finite())
		assert.LessOrEqual(t, l.From.X, GuardBand)
		assert.GreaterOrEqual(t, l.From.Y, -GuardBand)
	}
	assert.Empty(t, dl.On(vector.LayerTicks))
}

func TestFormatProbe(t *testing.T) {
	assert.Equal(t, "(2, 4)", FormatProbe(vector.P(2, 4)))
	assert.Equal(t, "(0.333333, -1.5)", FormatProbe(vector.P(1.0/3, -1.5)))
	assert.Equal(t, "(1e+07, 0)", FormatProbe(vector.P(1e7, 0)))
}
