package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/dfmea/pkg/config"
	"github.com/vanderheijden86/dfmea/pkg/debug"
	"github.com/vanderheijden86/dfmea/pkg/metrics"
	"github.com/vanderheijden86/dfmea/pkg/model"
	"github.com/vanderheijden86/dfmea/pkg/ui"
	"github.com/vanderheijden86/dfmea/pkg/version"
	"github.com/vanderheijden86/dfmea/pkg/watcher"
)

// overrides holds settings given on the command line. They win over the
// config file, including after a reload.
type overrides struct {
	exportDir string
	view      string
}

func (o overrides) apply(cfg config.Config) config.Config {
	if o.exportDir != "" {
		cfg.Export.Dir = o.exportDir
	}
	if o.view != "" {
		cfg.UI.DefaultView = o.view
	}
	return cfg
}

func (o overrides) validate() error {
	if o.view == "" {
		return nil
	}
	if _, err := model.ParseViewMode(o.view); err != nil {
		return fmt.Errorf("--view: %w", err)
	}
	return nil
}

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default ~/.config/dfmea/config.yaml)")
	exportDir := flag.String("export-dir", "", "Directory for exported files (overrides export.dir)")
	viewFlag := flag.String("view", "", "Initial view: structure, function or failure_mode")
	initConfigFlag := flag.Bool("init-config", false, "Write the effective config to the config file and exit")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: dfmea [options]")
		fmt.Println("\nA terminal editor for design failure mode and effects analysis.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("dfmea %s\n", version.Version)
		os.Exit(0)
	}

	ov := overrides{exportDir: *exportDir, view: *viewFlag}
	if err := ov.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	loadStart := time.Now()
	cfg, err := loadConfig(path)
	debug.LogTiming("config load", time.Since(loadStart))
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	cfg = ov.apply(cfg)
	debug.Dump("config", cfg)

	if *initConfigFlag {
		if err := initConfig(cfg, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: dfmea needs an interactive terminal")
		os.Exit(1)
	}

	forest := model.NewForest()
	forest.OnChange(func(c model.Change) {
		debug.Log("forest: %s %s (rev %d)", c.Kind, nodeName(c.Node), c.Revision)
	})

	m := ui.NewModel(forest, cfg).WithConfigOverride(ov.apply)
	if path != "" {
		w, err := watcher.NewWatcher(path, watcher.WithOnError(func(err error) {
			debug.Log("config watcher: %v", err)
		}))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("config watcher disabled: %v", err)
		} else {
			defer w.Stop()
			m = m.WithConfigWatcher(w)
		}
	}

	err = runTUIProgram(m)
	dumpMetrics()
	if err != nil {
		fmt.Printf("Error running dfmea: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFrom(path)
}

// initConfig writes cfg to path, or to the XDG config file when path is empty.
func initConfig(cfg config.Config, path string) error {
	if path == "" {
		return config.Save(cfg)
	}
	return config.SaveTo(cfg, path)
}

func nodeName(n *model.ComponentNode) string {
	if n == nil {
		return "-"
	}
	return strconv.Quote(n.Name)
}

func dumpMetrics() {
	if !debug.Enabled() || !metrics.Enabled() {
		return
	}
	debug.Section("timing")
	for _, s := range metrics.AllTimingStats() {
		debug.Log("%s: n=%d avg=%.2fms max=%.2fms", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set DFMEA_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("DFMEA_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
