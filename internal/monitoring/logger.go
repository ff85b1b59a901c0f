// Package monitoring holds the process-wide diagnostic logger used by the
// downscaling pipeline and its HTTP surface.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, defaulting to log.Printf.
// The resampler routes fallback reports through it so degraded output is
// always visible in the service log.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger; nil installs a no-op logger, which
// tests use to silence expected fallback noise.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
