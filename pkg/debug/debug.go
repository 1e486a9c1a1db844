// Package debug provides conditional debug logging for dfmea.
//
// Debug logging is enabled by setting the DFMEA_DEBUG environment variable:
//
//	DFMEA_DEBUG=1 dfmea 2>dfmea.log
//
// The TUI owns stdout, so messages go to stderr (or the writer passed to
// SetOutput) with timestamps. When disabled (default), all debug functions
// are no-ops.
//
// Usage:
//
//	debug.Log("exported %d records", len(records))
//	defer debug.LogEnterExit("encodeWorkbook")()
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[DFMEA_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("DFMEA_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, e.g. to a log file chosen on the
// command line. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

func printf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	printf("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("export")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	printf("-> %s", name)
	start := time.Now()
	return func() {
		printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	printf("%s: %T = %+v", name, v, v)
}

// Section logs a section header for visual organization in debug output.
func Section(name string) {
	printf("=== %s ===", name)
}
