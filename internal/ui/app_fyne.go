//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

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
	"funcplot/internal/version"
)

// recentLimit is how many history entries the expression entry offers.
const recentLimit = 20

// Run starts the Fyne-based plotter window. A non-empty initial expression
// is compiled and plotted right away.
func Run(initial string) error {
	cfg, cfgErr := config.LoadValid()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))
	if cfgErr != nil {
		l.Warn("config problem; using defaults", slog.Any("err", cfgErr))
	}

	defer crash.Recover()

	th, err := theme.Resolve(cfg.General.Theme)
	if err != nil {
		l.Warn("theme load failed; using default", slog.Any("err", err))
		th = theme.Default()
	}

	var hist *history.Store
	if cfg.General.History {
		if hp, err := history.DefaultPath(); err != nil {
			l.Warn("history disabled", slog.Any("err", err))
		} else if hist, err = history.Open(hp); err != nil {
			l.Warn("history disabled", slog.Any("err", err))
		}
	}
	defer func() { _ = hist.Close() }()

	fyneApp := app.NewWithID("funcplot")
	w := fyneApp.NewWindow("funcplot")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", cfg.Export.Width), 400)
	winH := max(prefs.IntWithFallback("window.height", cfg.Export.Height), 300)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	pc := NewPlotCanvas(th)
	pc.SetCursorZoom(cfg.View.ZoomAnchor == config.AnchorCursor)
	pc.SetScrollFactor(cfg.View.ScrollFactor)
	if cfg.General.FontFile != "" {
		if lib, err := textlayout.LibraryFromFile(cfg.General.FontFile); err != nil {
			l.Warn("font load failed", slog.Any("err", err))
		} else {
			pc.SetFonts(textlayout.OTProvider{Lib: lib})
		}
	}
	ctrl := pc.Controller()
	ctrl.SetView(plot.ViewState{Scale: cfg.View.Scale})

	current := ""
	pc.OnChanged = func() {
		if p := ctrl.Probe(); p.Drawable() {
			status.SetText(plot.FormatProbe(p.World))
			return
		}
		v := ctrl.View()
		msg := fmt.Sprintf("scale %s px/unit", strconv.FormatFloat(v.Scale, 'g', 4, 64))
		if current != "" {
			msg = current + "    " + msg
		}
		status.SetText(msg)
	}

	recent := func() []string {
		if hist == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		texts, err := hist.Texts(ctx, recentLimit)
		if err != nil {
			l.Warn("read history failed", slog.Any("err", err))
		}
		return texts
	}

	entry := widget.NewSelectEntry(recent())
	entry.SetPlaceHolder("y = f(x)   or   x = g(y)")

	plotExpr := func(text string) {
		f, err := expr.CompileInput(text)
		if err != nil {
			l.Info("compile failed", slog.String("expr", text), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		in := f.Input()
		dep := "y"
		if in.Mode == plot.XofY {
			dep = "x"
		}
		current = dep + " = " + in.Body
		crash.Annotate("expr", in.Text)
		ctrl.SetFunction(f, f.Mode())
		if hist != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := hist.Add(ctx, in.Text); err != nil {
				l.Warn("record history failed", slog.Any("err", err))
			}
			cancel()
			entry.SetOptions(recent())
		}
	}
	entry.OnSubmitted = plotExpr

	exportFrame := func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			opt := export.Options{DPI: cfg.Export.DPI, Title: current}
			if err := export.WriteFile(outPath, pc.DisplayList(), opt); err != nil {
				_ = os.Remove(outPath)
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported to " + outPath)
			telemetry.Track("export", map[string]string{"format": strings.TrimPrefix(uc.URI().Extension(), "."), "theme": pc.Theme().Name})
		}, w)
		save.SetFileName("plot." + cfg.Export.Format)
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".svg", ".pdf"}))
		save.Show()
	}

	domainDialog := func() {
		lo, hi := widget.NewEntry(), widget.NewEntry()
		if d := ctrl.Domain(); d.Bounded {
			lo.SetText(strconv.FormatFloat(d.Min, 'g', -1, 64))
			hi.SetText(strconv.FormatFloat(d.Max, 'g', -1, 64))
		}
		dialog.ShowForm("Domain", "Apply", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Min", lo),
			widget.NewFormItem("Max", hi),
		}, func(ok bool) {
			if !ok {
				return
			}
			a, errA := strconv.ParseFloat(strings.TrimSpace(lo.Text), 64)
			b, errB := strconv.ParseFloat(strings.TrimSpace(hi.Text), 64)
			if errA != nil || errB != nil {
				dialog.ShowError(fmt.Errorf("domain bounds must be numbers"), w)
				return
			}
			if err := ctrl.SetDomain(a, b); err != nil {
				dialog.ShowError(err, w)
			}
		}, w)
	}

	plotBtn := widget.NewButton("Plot", func() { plotExpr(entry.Text) })
	resetBtn := widget.NewButton("Reset view", func() { pc.ApplyView(ctrl.ResetView) })
	exportBtn := widget.NewButton("Export…", exportFrame)
	topBar := container.NewBorder(nil, nil, nil, container.NewHBox(plotBtn, resetBtn, exportBtn), entry)

	w.SetContent(container.NewBorder(topBar, status, nil, nil, pc))

	// Menus
	exportItem := fyne.NewMenuItem("Export…", exportFrame)
	exportItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierControl}
	fileMenu := fyne.NewMenu("File", exportItem)

	resetItem := fyne.NewMenuItem("Reset view", func() { pc.ApplyView(ctrl.ResetView) })
	resetItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.Key0, Modifier: fyne.KeyModifierControl}
	undoItem := fyne.NewMenuItem("Undo view", func() { pc.UndoView() })
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem := fyne.NewMenuItem("Redo view", func() { pc.RedoView() })
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	clearItem := fyne.NewMenuItem("Clear curve", func() {
		current = ""
		crash.Annotate("expr", "")
		ctrl.ClearFunction()
	})
	domainItem := fyne.NewMenuItem("Domain…", domainDialog)
	clearDomainItem := fyne.NewMenuItem("Clear domain", func() { ctrl.ClearDomain() })
	lightItem := fyne.NewMenuItem("Light theme", func() { pc.SetTheme(theme.Default()) })
	darkItem := fyne.NewMenuItem("Dark theme", func() { pc.SetTheme(theme.Dark()) })
	viewMenu := fyne.NewMenu("View", undoItem, redoItem, resetItem, clearItem, fyne.NewMenuItemSeparator(), domainItem, clearDomainItem,
		fyne.NewMenuItemSeparator(), lightItem, darkItem)

	clearHistItem := fyne.NewMenuItem("Clear history", func() {
		if hist == nil {
			dialog.ShowInformation("History", "History is disabled.", w)
			return
		}
		dialog.ShowConfirm("History", "Forget all remembered expressions?", func(ok bool) {
			if !ok {
				return
			}
			if err := hist.Clear(context.Background()); err != nil {
				dialog.ShowError(err, w)
				return
			}
			entry.SetOptions(nil)
		}, w)
	})
	historyMenu := fyne.NewMenu("History", clearHistItem)

	aboutItem := fyne.NewMenuItem("About funcplot", func() {
		l.Info("menu: about")
		info := fmt.Sprintf("funcplot\nVersion: %s\nOS: %s\nArch: %s\nGo: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version())
		dialog.ShowInformation("About", info, w)
	})
	aboutMenu := fyne.NewMenu("About", aboutItem)

	w.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, historyMenu, aboutMenu))

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	if strings.TrimSpace(initial) != "" {
		entry.SetText(initial)
		plotExpr(initial)
	}

	telemetry.Track("ui", nil)
	w.ShowAndRun()
	telemetry.Flush(context.Background())
	return nil
}
