/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"funcplot/internal/textlayout"
	"funcplot/internal/vector"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls writing one frame in several formats.
//
// Path semantics:
//   - Files are <OutDir>/<Base>.<ext>; Base defaults to "plot".
//   - An empty OutDir is the preset name, relative to the working directory.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: png, svg, pdf; empty means preset defaults
	Scale   float64  // when > 0 overrides the preset's PNG scale
	OutDir  string
	Base    string
	Title   string
	Fonts   textlayout.Provider
}

// ParsePreset accepts web or print in any case.
func ParsePreset(s string) (PresetName, error) {
	switch p := PresetName(strings.ToLower(strings.TrimSpace(s))); p {
	case PresetWeb, PresetPrint:
		return p, nil
	}
	return "", fmt.Errorf("unknown preset: %s", s)
}

// Batch writes dl once per format and returns the written paths in order.
func Batch(dl vector.DisplayList, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	outDir := opt.OutDir
	if outDir == "" {
		outDir = string(opt.Preset)
	}
	base := opt.Base
	if base == "" {
		base = "plot"
	}
	scale := presetScale(opt.Preset)
	if opt.Scale > 0 {
		scale = opt.Scale
	}

	var written []string
	for _, name := range formats {
		f, err := ParseFormat(name)
		if err != nil {
			return written, err
		}
		out := filepath.Join(outDir, base+"."+string(f))
		eo := Options{Format: f, Scale: scale, DPI: presetDPI(opt.Preset), Title: opt.Title, Fonts: opt.Fonts}
		if err := WriteFile(out, dl, eo); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"png"}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 3
	}
	return 1
}

func presetDPI(p PresetName) float64 {
	if p == PresetPrint {
		return 300
	}
	return 96
}
