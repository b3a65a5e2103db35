/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// GoFamily is the family name of the built-in Go Regular font.
const GoFamily = "Go"

// FontLibrary stores loaded OpenType fonts by lower-cased family name and
// caches sized faces. It is safe for concurrent use.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	order []string
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
	dpi    float64
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[string]*opentype.Font), faces: make(map[faceKey]font.Face)}
}

var (
	defaultLibOnce sync.Once
	defaultLib     *FontLibrary
)

// DefaultLibrary returns a shared library holding the Go Regular font.
func DefaultLibrary() *FontLibrary {
	defaultLibOnce.Do(func() {
		defaultLib = NewFontLibrary()
		if err := defaultLib.Register(GoFamily, goregular.TTF); err != nil {
			panic(fmt.Sprintf("textlayout: embedded font: %v", err))
		}
	})
	return defaultLib
}

// LibraryFromFile returns a library whose fallback font is loaded from path,
// with Go Regular registered after it. An empty path gives DefaultLibrary.
func LibraryFromFile(path string) (*FontLibrary, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLibrary(), nil
	}
	fl := NewFontLibrary()
	family := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := fl.LoadTTF(family, path); err != nil {
		return nil, err
	}
	if err := fl.Register(GoFamily, goregular.TTF); err != nil {
		return nil, err
	}
	return fl, nil
}

// Register parses font data and stores it under family.
func (fl *FontLibrary) Register(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	key := strings.ToLower(family)
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if _, ok := fl.fonts[key]; !ok {
		fl.order = append(fl.order, key)
	}
	fl.fonts[key] = f
	for k := range fl.faces {
		if k.family == key {
			delete(fl.faces, k)
		}
	}
	return nil
}

// LoadTTF loads a font file into the library under the given family.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Register(family, data)
}

// face returns a cached face for family, falling back to the first registered
// font when the family is unknown. ok is false for an empty library.
func (fl *FontLibrary) face(family string, size, dpi float64) (font.Face, bool) {
	if fl == nil {
		return nil, false
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key := strings.ToLower(family)
	f, ok := fl.fonts[key]
	if !ok {
		if len(fl.order) == 0 {
			return nil, false
		}
		key = fl.order[0]
		f = fl.fonts[key]
	}
	fk := faceKey{family: key, size: size, dpi: dpi}
	if fc, ok := fl.faces[fk]; ok {
		return fc, true
	}
	fc, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, false
	}
	fl.faces[fk] = fc
	return fc, true
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	size := spec.SizePx
	if !(size > 0) || math.IsInf(size, 0) {
		size = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f, ok := p.Lib.face(spec.Family, size, dpi); ok {
		return f, metricsOf(f)
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
