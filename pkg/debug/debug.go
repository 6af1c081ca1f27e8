// Package debug provides conditional debug logging for spiderlab.
//
// Debug logging is enabled by setting the SPIDER_DEBUG environment variable:
//
//	SPIDER_DEBUG=1 spider-pool --suits 4 --count 100
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Usage:
//
//	import "github.com/vanderheijden86/spiderlab/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("expanded %d nodes", expanded)
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"log"
	"os"
	"time"
)

var (
	// enabled is true when the SPIDER_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [SPIDER_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("SPIDER_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[SPIDER_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
// Note: This also requires initializing the logger if not already done.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[SPIDER_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}
