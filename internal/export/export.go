/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a rendered display list to PNG, SVG or PDF.
// All backends execute the same commands in list order; only PNG rasterizes.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "funcplot/internal/log"
	"funcplot/internal/textlayout"
	"funcplot/internal/vector"
)

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrEmptyFrame    = errors.New("display list has no size")
)

// ParseFormat accepts png, svg or pdf in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options controls export behavior. Zero values select defaults.
//   - Scale multiplies PNG pixel dimensions (default 1).
//   - DPI maps display-list pixels to PDF points, 72/DPI pt per px (default 96).
//   - Fonts resolves label faces for PNG (default Go Regular, then basicfont).
type Options struct {
	Format Format
	Scale  float64
	DPI    float64
	Title  string
	Fonts  textlayout.Provider
}

func (o Options) scale() float64 {
	if !(o.Scale > 0) || !vector.Finite(o.Scale) {
		return 1
	}
	return o.Scale
}

func (o Options) dpi() float64 {
	if !(o.DPI > 0) || !vector.Finite(o.DPI) {
		return 96
	}
	return o.DPI
}

func (o Options) fonts() textlayout.Provider {
	if o.Fonts == nil {
		return textlayout.OTProvider{Lib: textlayout.DefaultLibrary()}
	}
	return o.Fonts
}

func (o Options) title() string {
	if o.Title == "" {
		return "funcplot"
	}
	return o.Title
}

// Encode writes dl to w in opt.Format.
func Encode(w io.Writer, dl vector.DisplayList, opt Options) error {
	if !(dl.Width > 0) || !(dl.Height > 0) {
		return ErrEmptyFrame
	}
	switch opt.Format {
	case FormatPNG:
		return encodePNG(w, dl, opt)
	case FormatSVG:
		return encodeSVG(w, dl, opt)
	case FormatPDF:
		return encodePDF(w, dl, opt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(opt.Format))
}

// WriteFile encodes dl into path, creating parent directories. An empty
// opt.Format is taken from the extension.
func WriteFile(path string, dl vector.DisplayList, opt Options) error {
	if opt.Format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		opt.Format = f
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", opt.Format, err)
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, dl, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode %s: %w", opt.Format, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", opt.Format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", opt.Format, err)
	}
	applog.WithComponent("export").Info("frame exported",
		slog.String("path", path),
		slog.String("format", string(opt.Format)),
		slog.Int("items", len(dl.Items)))
	return nil
}
