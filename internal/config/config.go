/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "funcplot/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	Theme    string `yaml:"theme"` // "light" | "dark" | path to a JSON theme file
	History  bool   `yaml:"history"`
	FontFile string `yaml:"font_file"` // optional TTF/OTF for labels in raster export
}

type ViewConfig struct {
	Scale        float64 `yaml:"scale"`         // initial pixels per world unit
	ZoomAnchor   string  `yaml:"zoom_anchor"`   // "center" | "cursor"
	ScrollFactor float64 `yaml:"scroll_factor"` // multiplies wheel deltas before zooming
}

type ExportConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Format string  `yaml:"format"` // png | svg | pdf
	DPI    float64 `yaml:"dpi"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	View          ViewConfig    `yaml:"view"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

const (
	AnchorCenter = "center"
	AnchorCursor = "cursor"
)

// ErrInvalid wraps every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "light", History: true},
		View:          ViewConfig{Scale: 30, ZoomAnchor: AnchorCenter, ScrollFactor: 1},
		Export:        ExportConfig{Width: 800, Height: 600, Format: "png", DPI: 96},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile   = "FPL_CONFIG"
	EnvTheme        = "FPL_THEME"
	EnvHistory      = "FPL_HISTORY"
	EnvFontFile     = "FPL_FONT_FILE"
	EnvScale        = "FPL_SCALE"
	EnvZoomAnchor   = "FPL_ZOOM_ANCHOR"
	EnvScrollFactor = "FPL_SCROLL_FACTOR"
	EnvExportFormat = "FPL_EXPORT_FORMAT"
	EnvExportDPI    = "FPL_EXPORT_DPI"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "FPL_LOG_LEVEL"
	EnvLogFormat = "FPL_LOG_FORMAT"
	EnvLogSource = "FPL_LOG_SOURCE"
	EnvLogFile   = "FPL_LOG_FILE"
)

// Dir returns the per-user funcplot directory holding config, history and crash reports.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "funcplot")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "funcplot")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "funcplot")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "funcplot")
		}
	}
	if base == "" || base == "funcplot" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path. FPL_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadValid is Load followed by Validate. An invalid config is replaced by
// Defaults so nothing, logging included, starts from bad values; the
// returned error then carries both problems.
func LoadValid() (AppConfig, error) {
	cfg, err := Load()
	if verr := cfg.Validate(); verr != nil {
		return Defaults(), errors.Join(err, verr)
	}
	return cfg, err
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file. A missing file yields defaults;
// a malformed one is an error and the defaults are still returned.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path after validating it.
func SaveTo(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	applog.WithComponent("config").Debug("config saved", "path", path)
	return nil
}

// Validate rejects values the plotter cannot use.
func (c AppConfig) Validate() error {
	var errs []error
	if !(c.View.Scale > 0) {
		errs = append(errs, fmt.Errorf("view.scale must be > 0, got %v", c.View.Scale))
	}
	switch c.View.ZoomAnchor {
	case AnchorCenter, AnchorCursor:
	default:
		errs = append(errs, fmt.Errorf("view.zoom_anchor must be %q or %q, got %q", AnchorCenter, AnchorCursor, c.View.ZoomAnchor))
	}
	if !(c.View.ScrollFactor > 0) {
		errs = append(errs, fmt.Errorf("view.scroll_factor must be > 0, got %v", c.View.ScrollFactor))
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		errs = append(errs, fmt.Errorf("export size must be positive, got %dx%d", c.Export.Width, c.Export.Height))
	}
	switch c.Export.Format {
	case "png", "svg", "pdf":
	default:
		errs = append(errs, fmt.Errorf("export.format must be png, svg or pdf, got %q", c.Export.Format))
	}
	if !(c.Export.DPI > 0) {
		errs = append(errs, fmt.Errorf("export.dpi must be > 0, got %v", c.Export.DPI))
	}
	if _, err := applog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.Theme) != "" {
		dst.General.Theme = strings.TrimSpace(src.General.Theme)
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.History = src.General.History
	if strings.TrimSpace(src.General.FontFile) != "" {
		dst.General.FontFile = strings.TrimSpace(src.General.FontFile)
	}
	// view
	if src.View.Scale != 0 {
		dst.View.Scale = src.View.Scale
	}
	if strings.TrimSpace(src.View.ZoomAnchor) != "" {
		dst.View.ZoomAnchor = strings.ToLower(strings.TrimSpace(src.View.ZoomAnchor))
	}
	if src.View.ScrollFactor != 0 {
		dst.View.ScrollFactor = src.View.ScrollFactor
	}
	// export
	if src.Export.Width != 0 {
		dst.Export.Width = src.Export.Width
	}
	if src.Export.Height != 0 {
		dst.Export.Height = src.Export.Height
	}
	if strings.TrimSpace(src.Export.Format) != "" {
		dst.Export.Format = strings.ToLower(strings.TrimSpace(src.Export.Format))
	}
	if src.Export.DPI != 0 {
		dst.Export.DPI = src.Export.DPI
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.General.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistory)); v != "" {
		cfg.General.History = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontFile)); v != "" {
		cfg.General.FontFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvScale)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.View.Scale = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvZoomAnchor)); v != "" {
		cfg.View.ZoomAnchor = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvScrollFactor)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.View.ScrollFactor = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDPI)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Export.DPI = f
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// envKeys maps dotted config keys to their override variables.
var envKeys = map[string]string{
	"general.theme":      EnvTheme,
	"general.history":    EnvHistory,
	"general.font_file":  EnvFontFile,
	"view.scale":         EnvScale,
	"view.zoom_anchor":   EnvZoomAnchor,
	"view.scroll_factor": EnvScrollFactor,
	"export.format":      EnvExportFormat,
	"export.dpi":         EnvExportDPI,
	"logging.level":      EnvLogLevel,
	"logging.format":     EnvLogFormat,
	"logging.source":     EnvLogSource,
	"logging.file":       EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// LogOptions converts the logging section for log.Init. Empty fields are
// filled from the FPL_LOG_* environment.
func (l LoggingConfig) LogOptions() applog.Options {
	o := applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
	return o.Merge(applog.FromEnv())
}
