/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"funcplot/internal/config"
	"funcplot/internal/crash"
	"funcplot/internal/export"
	"funcplot/internal/expr"
	"funcplot/internal/history"
	applog "funcplot/internal/log"
	"funcplot/internal/plot"
	"funcplot/internal/telemetry"
	"funcplot/internal/textlayout"
	"funcplot/internal/theme"
)

// historyPath is replaced in tests.
var historyPath = history.DefaultPath

func runRender(cfg config.AppConfig, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.StringP("output", "o", "", `output file; "-" writes to stdout (default plot.<format>)`)
	format := fs.StringP("format", "f", "", "png, svg or pdf (default from the output extension, then config)")
	width := fs.Int("width", cfg.Export.Width, "frame width in pixels")
	height := fs.Int("height", cfg.Export.Height, "frame height in pixels")
	scale := fs.Float64("scale", cfg.View.Scale, "zoom in pixels per unit")
	offX := fs.Float64("offset-x", 0, "horizontal pan in pixels")
	offY := fs.Float64("offset-y", 0, "vertical pan in pixels")
	domain := fs.String("domain", "", "limit the independent variable to min:max")
	probe := fs.Float64("probe-x", 0, "show the probe at this value of the independent variable")
	themeName := fs.String("theme", cfg.General.Theme, "light, dark or a JSON theme file")
	fontFile := fs.String("font", cfg.General.FontFile, "TTF/OTF file for labels in PNG output")
	pixelScale := fs.Float64("pixel-scale", 1, "PNG pixel density multiplier")
	dpi := fs.Float64("dpi", cfg.Export.DPI, "PDF resolution (pixels per inch)")
	preset := fs.String("preset", "", "write a preset bundle instead of one file: web or print")
	outDir := fs.String("out-dir", "", "directory for --preset output (default the preset name)")
	noHistory := fs.Bool("no-history", false, "do not remember the expression")
	showGo := fs.Bool("show-go", false, "print the generated Go source of the expression")
	logLevel := fs.String("log-level", "", "override the configured log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError("render: %v", err)
	}
	if err := applyLogLevel(fs, *logLevel); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError("render requires an expression")
	}
	if *width <= 0 || *height <= 0 {
		return usageError("render: size must be positive, got %dx%d", *width, *height)
	}
	text := strings.Join(fs.Args(), " ")

	l := applog.WithOperation(applog.WithComponent("cli"), "render")
	ctx := applog.ContextWith(context.Background(), slog.String("expr", text))
	crash.Annotate("expr", text)

	f, err := expr.CompileInput(text)
	if err != nil {
		return err
	}
	if *showGo {
		_, _ = fmt.Fprintln(stderr, f.GoSource())
	}
	th, err := theme.Resolve(*themeName)
	if err != nil {
		return err
	}

	ctrl := plot.NewController(plot.Viewport{Width: float64(*width), Height: float64(*height)})
	ctrl.SetView(plot.ViewState{OffsetX: *offX, OffsetY: *offY, Scale: *scale})
	ctrl.SetFunction(f, f.Mode())
	if *domain != "" {
		lo, hi, err := parseDomain(*domain)
		if err != nil {
			return usageError("render: %v", err)
		}
		if err := ctrl.SetDomain(lo, hi); err != nil {
			return usageError("render: --domain %s: %v", *domain, err)
		}
	}
	fr := ctrl.Frame(th)
	if fs.Changed("probe-x") {
		fr.Probe = plot.ProbeAt(f, f.Mode(), fr.Domain, *probe)
		switch {
		case fr.Probe.OutOfDomain:
			l.WarnContext(ctx, "probe not drawn: outside the domain", slog.Float64("at", *probe))
		case !fr.Probe.Drawable():
			l.WarnContext(ctx, "probe not drawn: function not finite there", slog.Float64("at", *probe))
		}
	}
	dl := plot.Render(fr)

	var fonts textlayout.Provider
	if strings.TrimSpace(*fontFile) != "" {
		lib, err := textlayout.LibraryFromFile(*fontFile)
		if err != nil {
			return err
		}
		fonts = textlayout.OTProvider{Lib: lib}
	}
	title := f.Mode().Var() + " ↦ " + f.String()

	if *preset != "" {
		p, err := export.ParsePreset(*preset)
		if err != nil {
			return usageError("render: %v", err)
		}
		bo := export.BatchOptions{Preset: p, OutDir: *outDir, Title: title, Fonts: fonts}
		if *format != "" {
			bo.Formats = strings.Split(*format, ",")
		}
		if fs.Changed("pixel-scale") {
			bo.Scale = *pixelScale
		}
		telemetry.Track("render", map[string]string{"preset": string(p), "mode": f.Mode().String()})
		paths, err := export.Batch(dl, bo)
		for _, p := range paths {
			_, _ = fmt.Fprintln(stdout, p)
		}
		if err != nil {
			return err
		}
	} else {
		opt := export.Options{Scale: *pixelScale, DPI: *dpi, Title: title, Fonts: fonts}
		if *format != "" {
			if opt.Format, err = export.ParseFormat(*format); err != nil {
				return usageError("render: %v", err)
			}
		}
		path := *out
		switch {
		case path == "-":
			if opt.Format == "" {
				opt.Format = export.Format(cfg.Export.Format)
			}
			if err := export.Encode(stdout, dl, opt); err != nil {
				return err
			}
		default:
			if path == "" {
				if opt.Format == "" {
					opt.Format = export.Format(cfg.Export.Format)
				}
				path = "plot." + string(opt.Format)
			}
			if err := export.WriteFile(path, dl, opt); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(stdout, path)
		}
		telemetry.Track("render", map[string]string{"format": string(opt.Format), "mode": f.Mode().String()})
	}

	if cfg.General.History && !*noHistory {
		remember(ctx, l, f.Input().Text)
	}
	return nil
}

// remember records text in the history database; failures only log.
func remember(ctx context.Context, l *slog.Logger, text string) {
	hp, err := historyPath()
	if err != nil {
		l.WarnContext(ctx, "history unavailable", slog.Any("err", err))
		return
	}
	st, err := history.Open(hp)
	if err != nil {
		l.WarnContext(ctx, "history unavailable", slog.Any("err", err))
		return
	}
	defer st.Close()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := st.Add(ctx, text); err != nil {
		l.WarnContext(ctx, "record history failed", slog.Any("err", err))
	}
}

// parseDomain reads "min:max" as two plain numbers.
func parseDomain(s string) (lo, hi float64, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("--domain %q: want min:max", s)
	}
	lo, err = strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--domain min: %w", err)
	}
	hi, err = strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--domain max: %w", err)
	}
	return lo, hi, nil
}
