/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcplot/internal/config"
	"funcplot/internal/expr"
	"funcplot/internal/history"
	applog "funcplot/internal/log"
)

// tempHistory points the history database at a temp file for one test.
func tempHistory(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), history.FileName)
	old := historyPath
	historyPath = func() (string, error) { return p, nil }
	t.Cleanup(func() { historyPath = old })
	return p
}

func render(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := runRender(config.Defaults(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestRender_PNGFile(t *testing.T) {
	tempHistory(t)
	path := filepath.Join(t.TempDir(), "parabola.png")
	out, _, err := render(t, "x*x", "-o", path, "--width", "320", "--height", "240", "--probe-x", "2")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestRender_SVGToStdout(t *testing.T) {
	tempHistory(t)
	out, _, err := render(t, "y", "=", "1/x", "-o", "-", "--format", "svg", "--no-history", "--probe-x", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<polyline "), "1/x is drawn as two branches")
	assert.Contains(t, out, ">(2, 0.5)</text>")
}

func TestRender_XofYAndDomain(t *testing.T) {
	tempHistory(t)
	out, _, err := render(t, "x = y*y", "-o", "-", "-f", "svg", "--domain", "0:1", "--no-history")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<polyline "))
}

func TestRender_ProbeOutsideDomainNotDrawn(t *testing.T) {
	tempHistory(t)
	out, _, err := render(t, "x*x", "-o", "-", "-f", "svg", "--domain", "0:1", "--probe-x", "2", "--no-history")
	require.NoError(t, err)
	assert.NotContains(t, out, ">(2, 4)</text>")
	assert.NotContains(t, out, "<circle ")

	out, _, err = render(t, "x*x", "-o", "-", "-f", "svg", "--domain", "0:3", "--probe-x", "2", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, ">(2, 4)</text>")
}

func TestRender_ShowGo(t *testing.T) {
	tempHistory(t)
	_, errOut, err := render(t, "2*x", "-o", "-", "-f", "svg", "--show-go", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, errOut, "func F(v float64) float64")
}

func TestRender_Errors(t *testing.T) {
	tempHistory(t)
	_, _, err := render(t)
	assert.ErrorIs(t, err, errUsage)

	_, _, err = render(t, "x", "--width", "0")
	assert.ErrorIs(t, err, errUsage)

	_, _, err = render(t, "x", "--domain", "3")
	assert.ErrorIs(t, err, errUsage)

	_, _, err = render(t, "x", "--domain", "3:1")
	assert.ErrorIs(t, err, errUsage)

	_, _, err = render(t, "x", "-f", "gif")
	assert.ErrorIs(t, err, errUsage)

	_, _, err = render(t, "x", "--bogus")
	assert.ErrorIs(t, err, errUsage)

	_, _, err = render(t, "x", "--help")
	assert.ErrorIs(t, err, pflag.ErrHelp)

	_, _, err = render(t, "sin(", "-o", "-")
	var ee *expr.Error
	assert.ErrorAs(t, err, &ee)
	assert.NotErrorIs(t, err, errUsage)
}

func TestRender_Preset(t *testing.T) {
	tempHistory(t)
	dir := t.TempDir()
	out, _, err := render(t, "sin(x)", "--preset", "web", "--out-dir", dir, "--no-history")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plot.png")+"\n"+filepath.Join(dir, "plot.svg")+"\n", out)
}

func TestRenderThenHistory(t *testing.T) {
	tempHistory(t)
	for _, e := range []string{"x*x", "sin(x)", "x*x"} {
		_, _, err := render(t, e, "-o", "-", "-f", "svg")
		require.NoError(t, err)
	}

	var out bytes.Buffer
	require.NoError(t, runHistory(config.Defaults(), nil, &out, io.Discard))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "   2  "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "x*x"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "sin(x)"), lines[1])

	out.Reset()
	require.NoError(t, runHistory(config.Defaults(), []string{"-n", "1"}, &out, io.Discard))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	out.Reset()
	require.NoError(t, runHistory(config.Defaults(), []string{"--clear"}, &out, io.Discard))
	out.Reset()
	require.NoError(t, runHistory(config.Defaults(), nil, &out, io.Discard))
	assert.Empty(t, out.String())
}

func TestLogLevelFlag(t *testing.T) {
	tempHistory(t)
	t.Cleanup(func() { _ = applog.SetLevel("info") })

	_, _, err := render(t, "x", "-o", "-", "-f", "svg", "--no-history", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, applog.CurrentLevel())

	require.NoError(t, runHistory(config.Defaults(), []string{"--log-level", "ERROR"}, io.Discard, io.Discard))
	assert.Equal(t, slog.LevelError, applog.CurrentLevel())

	_, _, err = render(t, "x", "--log-level", "chatty")
	assert.ErrorIs(t, err, errUsage)
	assert.Equal(t, slog.LevelError, applog.CurrentLevel(), "a rejected level leaves the current one")
}

func TestReport_ExitCodes(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	var buf bytes.Buffer
	assert.Equal(t, 0, report(l, pflag.ErrHelp, &buf))
	assert.Equal(t, 2, report(l, usageError("bad %s", "flag"), &buf))
	assert.Contains(t, buf.String(), "Error: bad flag")
	assert.Equal(t, 1, report(l, os.ErrNotExist, &buf))
}

func TestParseDomain(t *testing.T) {
	lo, hi, err := parseDomain(" -1.5 : 2e1 ")
	require.NoError(t, err)
	assert.Equal(t, -1.5, lo)
	assert.Equal(t, 20.0, hi)
	_, _, err = parseDomain("a:1")
	assert.Error(t, err)
}
