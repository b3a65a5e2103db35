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
	"os"
	"strings"

	"github.com/spf13/pflag"

	"funcplot/internal/config"
	"funcplot/internal/crash"
	applog "funcplot/internal/log"
	"funcplot/internal/telemetry"
	"funcplot/internal/ui"
	"funcplot/internal/version"
)

// errUsage marks command-line mistakes; they exit with status 2.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "funcplot - interactive 2D function plotter")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  funcplot version|-v|--version         Show version")
	_, _ = fmt.Fprintln(w, "  funcplot render <expr> [flags]        Plot <expr> to a PNG, SVG or PDF file (see render --help)")
	_, _ = fmt.Fprintln(w, "  funcplot history [-n N] [--clear]     List or clear remembered expressions")
	_, _ = fmt.Fprintln(w, "  funcplot ui [<expr>]                  Launch desktop UI (build with -tags fyne for full UI)")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Expressions: \"x^2 - 3\", \"y = sin(x)/x\", \"x = y*y\" (plots x as a function of y).")
}

func main() {
	cfg, cfgErr := config.LoadValid()
	// initialize structured logging from the merged config (env already applied)
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	defer crash.Recover()
	if cfgErr != nil {
		l.Warn("config problem; using defaults where needed", slog.Any("err", cfgErr))
	}

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage(os.Stdout)
		return
	}
	var err error
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("funcplot")
		fmt.Println(version.String())
		return
	case "render":
		err = runRender(cfg, args[2:], os.Stdout, os.Stderr)
	case "history":
		err = runHistory(cfg, args[2:], os.Stdout, os.Stderr)
	case "ui":
		err = ui.Run(strings.Join(args[2:], " "))
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		err = usageError("unknown command %q", args[1])
	}
	telemetry.Flush(context.Background())
	if err != nil {
		os.Exit(report(l, err, os.Stderr))
	}
}

// applyLogLevel handles the --log-level flag shared by subcommands.
func applyLogLevel(fs *pflag.FlagSet, s string) error {
	if !fs.Changed("log-level") {
		return nil
	}
	if err := applog.SetLevel(s); err != nil {
		return usageError("%s: --log-level: %v", fs.Name(), err)
	}
	return nil
}

// report prints err and returns the exit status for it.
func report(l *slog.Logger, err error, stderr io.Writer) int {
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(stderr, "Error:", strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
		usage(stderr)
		return 2
	default:
		l.Error("command failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}
