package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/dfmea/pkg/config"
	"github.com/vanderheijden86/dfmea/pkg/model"
)

func TestOverridesApply(t *testing.T) {
	base := config.DefaultConfig()

	got := overrides{}.apply(base)
	if got.Export.Dir != base.Export.Dir || got.UI.DefaultView != base.UI.DefaultView {
		t.Fatalf("empty overrides changed config: %+v", got)
	}

	got = overrides{exportDir: "/tmp/out", view: "failure_mode"}.apply(base)
	if got.Export.Dir != "/tmp/out" {
		t.Errorf("Export.Dir = %q", got.Export.Dir)
	}
	if v, err := got.ViewMode(); err != nil || v != model.ViewFailureMode {
		t.Errorf("ViewMode() = %v, %v", v, err)
	}
}

func TestOverridesValidate(t *testing.T) {
	tests := []struct {
		view    string
		wantErr bool
	}{
		{"", false},
		{"structure", false},
		{"Function", false},
		{"failure-mode", false},
		{"matrix", true},
	}
	for _, tt := range tests {
		err := overrides{view: tt.view}.validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("validate(%q) error = %v, wantErr %v", tt.view, err, tt.wantErr)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil || cfg.Export.Title != config.DefaultConfig().Export.Title {
		t.Fatalf("loadConfig(\"\") = %+v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("export:\n  title: Brakes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Export.Title != "Brakes" {
		t.Errorf("title = %q", cfg.Export.Title)
	}
}

func TestNodeName(t *testing.T) {
	if got := nodeName(nil); got != "-" {
		t.Errorf("nodeName(nil) = %q", got)
	}
	if got := nodeName(model.NewComponentNode("Pump")); got != `"Pump"` {
		t.Errorf("nodeName = %q", got)
	}
}

func TestInitConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := overrides{exportDir: "/tmp/out", view: "function"}.apply(config.DefaultConfig())
	if err := initConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	got, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Export.Dir != "/tmp/out" || got.UI.DefaultView != "function" {
		t.Errorf("reloaded config = %+v", got)
	}
}
