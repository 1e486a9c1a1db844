// Package config handles loading and saving dfmea configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/dfmea/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/dfmea/pkg/export"
	"github.com/vanderheijden86/dfmea/pkg/metrics"
	"github.com/vanderheijden86/dfmea/pkg/model"
)

// ExportConfig controls where and how exports are written.
type ExportConfig struct {
	Dir            string   `yaml:"dir,omitempty"`             // Target directory for exported files
	Title          string   `yaml:"title,omitempty"`           // Report and diagram title
	WorkbookLayout string   `yaml:"workbook_layout,omitempty"` // split, single
	Formats        []string `yaml:"formats,omitempty"`         // Formats written by export-all
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView string `yaml:"default_view,omitempty"` // structure, function, failure_mode
	TreeWidth   int    `yaml:"tree_width,omitempty"`   // Width of the tree pane in cells
	PreviewWrap int    `yaml:"preview_wrap,omitempty"` // Word wrap of the markdown preview
}

// Config is the top-level configuration for dfmea.
type Config struct {
	Export ExportConfig `yaml:"export,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
}

// Bounds for UI sizes.
const (
	MinTreeWidth = 16
	MaxTreeWidth = 120
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Export: ExportConfig{
			Dir:            ".",
			Title:          "DFMEA",
			WorkbookLayout: string(export.WorkbookSplit),
			Formats: []string{
				string(export.FormatWorkbook),
				string(export.FormatStructuredRecord),
				string(export.FormatDelimitedText),
			},
		},
		UI: UIConfig{
			DefaultView: "structure",
			TreeWidth:   36,
			PreviewWrap: 80,
		},
	}
}

// ConfigDir returns the XDG config directory for dfmea.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "dfmea")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dfmea")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. Keys missing from the
// file keep their defaults.
func LoadFrom(path string) (Config, error) {
	defer metrics.Timer(metrics.ConfigLoad)()
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.ViewMode(); err != nil {
		errs = append(errs, fmt.Errorf("ui.default_view: %w", err))
	}
	if _, err := c.ExportFormats(); err != nil {
		errs = append(errs, fmt.Errorf("export.formats: %w", err))
	}
	switch export.WorkbookLayout(c.Export.WorkbookLayout) {
	case export.WorkbookSplit, export.WorkbookSingle, "":
	default:
		errs = append(errs, fmt.Errorf("export.workbook_layout: unknown layout %q", c.Export.WorkbookLayout))
	}
	if w := c.UI.TreeWidth; w != 0 && (w < MinTreeWidth || w > MaxTreeWidth) {
		errs = append(errs, fmt.Errorf("ui.tree_width: %d outside %d-%d", w, MinTreeWidth, MaxTreeWidth))
	}
	if c.UI.PreviewWrap < 0 {
		errs = append(errs, fmt.Errorf("ui.preview_wrap: negative width %d", c.UI.PreviewWrap))
	}
	return errors.Join(errs...)
}

// ViewMode parses ui.default_view.
func (c Config) ViewMode() (model.ViewMode, error) {
	return model.ParseViewMode(c.UI.DefaultView)
}

// ExportFormats parses export.formats, dropping duplicates.
func (c Config) ExportFormats() ([]export.Format, error) {
	seen := make(map[export.Format]bool, len(c.Export.Formats))
	out := make([]export.Format, 0, len(c.Export.Formats))
	for _, s := range c.Export.Formats {
		f, err := export.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ExportOptions converts the export section into encoder options.
func (c Config) ExportOptions() export.Options {
	opts := export.DefaultOptions()
	if c.Export.Title != "" {
		opts.Title = c.Export.Title
	}
	if c.Export.WorkbookLayout != "" {
		opts.WorkbookLayout = export.WorkbookLayout(c.Export.WorkbookLayout)
	}
	return opts
}

// ExportDir returns the export directory with ~ expanded.
func (c Config) ExportDir() string {
	if c.Export.Dir == "" {
		return "."
	}
	return expandHome(c.Export.Dir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
