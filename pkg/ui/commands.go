package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/dfmea/pkg/config"
	"github.com/vanderheijden86/dfmea/pkg/export"
	"github.com/vanderheijden86/dfmea/pkg/watcher"
)

// ExportDoneMsg reports a finished export, copy or export-all.
type ExportDoneMsg struct {
	Results []export.Result
	Err     error
}

// ConfigReloadedMsg carries the re-read configuration after the config
// file changed on disk.
type ConfigReloadedMsg struct {
	Config config.Config
	Err    error
}

// exportCmd encodes and delivers records off the UI goroutine. Records
// must be a snapshot and the exporter a copy; the forest and config keep
// changing while the command runs.
func exportCmd(e export.Exporter, records []export.Record, format export.Format) tea.Cmd {
	return func() tea.Msg {
		res, err := e.Export(context.Background(), records, format)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		return ExportDoneMsg{Results: []export.Result{res}}
	}
}

func exportAllCmd(e export.Exporter, records []export.Record, formats []export.Format) tea.Cmd {
	return func() tea.Msg {
		results, err := e.ExportAll(context.Background(), records, formats)
		return ExportDoneMsg{Results: results, Err: err}
	}
}

// WatchConfigCmd waits for the next change of the watched config file and
// reloads it.
func WatchConfigCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		cfg, err := config.LoadFrom(w.Path())
		return ConfigReloadedMsg{Config: cfg, Err: err}
	}
}

// exportStatus renders an ExportDoneMsg for the status bar.
func exportStatus(msg ExportDoneMsg) (string, bool) {
	if msg.Err != nil {
		if errors.Is(msg.Err, export.ErrNoData) {
			return "No data to export", true
		}
		return fmt.Sprintf("Export failed: %v", msg.Err), true
	}
	switch len(msg.Results) {
	case 0:
		return "Nothing exported", false
	case 1:
		r := msg.Results[0]
		if r.Location == "clipboard" {
			return fmt.Sprintf("Copied %s to clipboard", r.Format.Label()), false
		}
		return fmt.Sprintf("Exported %s", r.Location), false
	}
	names := make([]string, len(msg.Results))
	for i, r := range msg.Results {
		names[i] = filepath.Base(r.Location)
	}
	return fmt.Sprintf("Exported %d files: %s", len(msg.Results), strings.Join(names, ", ")), false
}
