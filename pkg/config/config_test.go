package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/dfmea/pkg/export"
	"github.com/vanderheijden86/dfmea/pkg/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.DefaultView != "structure" {
		t.Errorf("expected default view 'structure', got %q", cfg.UI.DefaultView)
	}
	if cfg.UI.TreeWidth != 36 {
		t.Errorf("expected tree width 36, got %d", cfg.UI.TreeWidth)
	}
	if cfg.Export.WorkbookLayout != "split" {
		t.Errorf("expected split workbook layout, got %q", cfg.Export.WorkbookLayout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.DefaultView != "structure" {
		t.Errorf("expected default config, got view %q", cfg.UI.DefaultView)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
export:
  dir: ~/dfmea-out
  title: Pump DFMEA
  workbook_layout: single
  formats: [csv, md, csv, png]

ui:
  default_view: failure_mode
  tree_width: 40
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "dfmea-out"); cfg.ExportDir() != want {
		t.Errorf("expected expanded dir %q, got %q", want, cfg.ExportDir())
	}

	formats, err := cfg.ExportFormats()
	if err != nil {
		t.Fatal(err)
	}
	want := []export.Format{export.FormatDelimitedText, export.FormatMarkdown, export.FormatDiagramPNG}
	if len(formats) != len(want) {
		t.Fatalf("formats = %v, want %v", formats, want)
	}
	for i := range want {
		if formats[i] != want[i] {
			t.Errorf("formats[%d] = %q, want %q", i, formats[i], want[i])
		}
	}

	if v, _ := cfg.ViewMode(); v != model.ViewFailureMode {
		t.Errorf("expected failure mode view, got %v", v)
	}
	if cfg.UI.TreeWidth != 40 {
		t.Errorf("expected tree_width 40, got %d", cfg.UI.TreeWidth)
	}
	// Unset keys keep their defaults.
	if cfg.UI.PreviewWrap != 80 {
		t.Errorf("expected preview_wrap default 80, got %d", cfg.UI.PreviewWrap)
	}

	opts := cfg.ExportOptions()
	if opts.Title != "Pump DFMEA" || opts.WorkbookLayout != export.WorkbookSingle {
		t.Errorf("export options = %+v", opts)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
	if cfg.UI.DefaultView != "structure" {
		t.Error("expected defaults alongside the error")
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
export:
  workbook_layout: diagonal
  formats: [csv, docx]
ui:
  default_view: kanban
  tree_width: 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{"ui.default_view", "export.formats", "export.workbook_layout", "ui.tree_width"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should mention %s: %v", key, err)
		}
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Export.Dir = "/tmp/exports"
	cfg.Export.Formats = []string{"json", "sqlite"}
	cfg.UI.DefaultView = "function"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if loaded.Export.Dir != "/tmp/exports" {
		t.Errorf("expected '/tmp/exports', got %q", loaded.Export.Dir)
	}
	if strings.Join(loaded.Export.Formats, ",") != "json,sqlite" {
		t.Errorf("expected formats json,sqlite, got %v", loaded.Export.Formats)
	}
	if loaded.UI.DefaultView != "function" {
		t.Errorf("expected 'function', got %q", loaded.UI.DefaultView)
	}
}

func TestExportDir_Empty(t *testing.T) {
	cfg := Config{}
	if got := cfg.ExportDir(); got != "." {
		t.Errorf("expected '.', got %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "dfmea")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if ConfigPath() != filepath.Join(expected, "config.yaml") {
		t.Errorf("unexpected config path %q", ConfigPath())
	}
}
