/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestMeasure_BasicIsMonospaced(t *testing.T) {
	w, m := Measure(BasicProvider{}, FontSpec{}, "ABC")
	if w != 21 {
		t.Fatalf("expected 3*7px, got %v", w)
	}
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Fatalf("expected positive metrics: %+v", m)
	}
	w1, _ := Measure(nil, FontSpec{}, "-1.5")
	w2, _ := Measure(BasicProvider{}, FontSpec{}, "-1.5")
	if w1 != w2 {
		t.Fatalf("nil provider should act as basic: %v vs %v", w1, w2)
	}
}

func TestOTProvider_ScalesWithSize(t *testing.T) {
	p := OTProvider{Lib: DefaultLibrary()}
	small, _ := Measure(p, FontSpec{Family: GoFamily, SizePx: 10}, "(2, 4)")
	large, _ := Measure(p, FontSpec{Family: GoFamily, SizePx: 20}, "(2, 4)")
	if small <= 0 || large <= small*1.5 {
		t.Fatalf("expected width to scale with size: small=%v large=%v", small, large)
	}
}

func TestOTProvider_UnknownFamilyFallsBackToLibrary(t *testing.T) {
	p := OTProvider{Lib: DefaultLibrary()}
	a, _ := Measure(p, FontSpec{Family: "Helvetica", SizePx: 9}, "123")
	b, _ := Measure(p, FontSpec{Family: GoFamily, SizePx: 9}, "123")
	if a != b {
		t.Fatalf("expected fallback to Go font: %v vs %v", a, b)
	}
}

func TestOTProvider_EmptyLibraryUsesFallback(t *testing.T) {
	p := OTProvider{Lib: NewFontLibrary()}
	w, _ := Measure(p, FontSpec{SizePx: 30}, "AB")
	if w != 14 {
		t.Fatalf("expected basic fallback width 14, got %v", w)
	}
	var nilLib OTProvider
	if w, _ := Measure(nilLib, FontSpec{}, "A"); w != 7 {
		t.Fatalf("expected basic fallback for nil library, got %v", w)
	}
}

func TestFontLibrary_LoadErrors(t *testing.T) {
	fl := NewFontLibrary()
	if err := fl.LoadTTF("x", filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := fl.Register("x", []byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLibraryFromFile(t *testing.T) {
	if fl, err := LibraryFromFile(" "); err != nil || fl != DefaultLibrary() {
		t.Fatalf("empty path should give default library: %v", err)
	}
	path := filepath.Join(t.TempDir(), "MyFont.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	fl, err := LibraryFromFile(path)
	if err != nil {
		t.Fatalf("LibraryFromFile: %v", err)
	}
	if len(fl.order) != 2 || fl.order[0] != "myfont" || fl.order[1] != "go" {
		t.Fatalf("unexpected family order: %v", fl.order)
	}
	if _, err := LibraryFromFile(filepath.Join(t.TempDir(), "none.ttf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
