/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package theme holds the colors and stroke widths used to render a plot.
// Themes are JSON files validated against an embedded JSON schema before
// they are decoded; unset fields keep the built-in defaults.
package theme

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	applog "funcplot/internal/log"
	"funcplot/internal/vector"
)

//go:embed theme.schema.json
var schemaJSON string

// ErrInvalid is returned when a theme document fails schema validation.
var ErrInvalid = errors.New("invalid theme")

// Theme is the full set of paints for one frame.
type Theme struct {
	Name       string
	Background vector.Color
	Grid       vector.Stroke
	Axes       vector.Stroke
	Ticks      vector.Stroke
	TickLabel  vector.Color
	Curve      vector.Stroke
	Probe      vector.Color
	ProbeLabel vector.Color
	Font       vector.Font
	ProbeSize  float64
}

// Default mirrors the classic look: white paper, light gray grid, dashed gray
// axes, a blue curve and a red probe.
func Default() Theme {
	return Theme{
		Name:       "default",
		Background: vector.White,
		Grid:       vector.Stroke{Color: vector.LightGray, Width: 1},
		Axes:       vector.Stroke{Color: vector.Gray, Width: 1, Dash: vector.DashLine(1)},
		Ticks:      vector.Stroke{Color: vector.Gray, Width: 1},
		TickLabel:  vector.Gray,
		Curve:      vector.Stroke{Color: vector.Blue, Width: 2, Cap: vector.CapRound},
		Probe:      vector.Red,
		ProbeLabel: vector.Red,
		Font:       vector.Font{Family: "Helvetica", Size: 9},
		ProbeSize:  3,
	}
}

// Dark is a built-in alternative for dark desktop themes.
func Dark() Theme {
	t := Default()
	t.Name = "dark"
	t.Background = vector.Color{R: 30, G: 30, B: 34, A: 255}
	t.Grid.Color = vector.Color{R: 55, G: 55, B: 62, A: 255}
	t.Axes.Color = vector.Color{R: 150, G: 150, B: 160, A: 255}
	t.Ticks.Color = t.Axes.Color
	t.TickLabel = t.Axes.Color
	t.Curve.Color = vector.Color{R: 90, G: 170, B: 255, A: 255}
	t.Probe = vector.Color{R: 255, G: 110, B: 90, A: 255}
	t.ProbeLabel = t.Probe
	return t
}

// Builtin resolves a built-in theme by name.
func Builtin(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default", "light", "system":
		return Default(), true
	case "dark":
		return Dark(), true
	}
	return Theme{}, false
}

// file is the on-disk representation. Pointers distinguish "unset" from zero.
type file struct {
	Name       string   `json:"name"`
	Background string   `json:"background"`
	Grid       *strokeF `json:"grid"`
	Axes       *strokeF `json:"axes"`
	Ticks      *strokeF `json:"ticks"`
	TickLabel  string   `json:"tick_label"`
	Curve      *strokeF `json:"curve"`
	Probe      string   `json:"probe"`
	ProbeLabel string   `json:"probe_label"`
	FontSize   float64  `json:"font_size"`
	ProbeSize  float64  `json:"probe_size"`
}

type strokeF struct {
	Color string    `json:"color"`
	Width float64   `json:"width"`
	Dash  []float64 `json:"dash"`
}

// Resolve returns a built-in theme for a known name, otherwise loads the file at nameOrPath.
func Resolve(nameOrPath string) (Theme, error) {
	if t, ok := Builtin(nameOrPath); ok {
		return t, nil
	}
	return Load(nameOrPath)
}

// Load reads and validates a theme file.
func Load(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return Theme{}, fmt.Errorf("%s: %w", path, err)
	}
	applog.WithComponent("theme").Debug("theme loaded", slog.String("path", path), slog.String("name", t.Name))
	return t, nil
}

// Parse validates data against the theme schema and overlays it on Default.
func Parse(data []byte) (Theme, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Theme{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	t := Default()
	if f.Name != "" {
		t.Name = f.Name
	}
	var errs []error
	color := func(dst *vector.Color, s string) {
		if s == "" {
			return
		}
		c, err := vector.ParseHex(s)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = c
	}
	stroke := func(dst *vector.Stroke, s *strokeF) {
		if s == nil {
			return
		}
		color(&dst.Color, s.Color)
		if s.Width > 0 {
			dst.Width = s.Width
		}
		if s.Dash != nil {
			dst.Dash = append([]float64(nil), s.Dash...)
		}
	}
	color(&t.Background, f.Background)
	stroke(&t.Grid, f.Grid)
	stroke(&t.Axes, f.Axes)
	stroke(&t.Ticks, f.Ticks)
	color(&t.TickLabel, f.TickLabel)
	stroke(&t.Curve, f.Curve)
	color(&t.Probe, f.Probe)
	color(&t.ProbeLabel, f.ProbeLabel)
	if f.FontSize > 0 {
		t.Font.Size = f.FontSize
	}
	if f.ProbeSize > 0 {
		t.ProbeSize = f.ProbeSize
	}
	if len(errs) > 0 {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalid, errors.Join(errs...))
	}
	return t, nil
}
