package rgbdtrack

import "log"

// Logf is the logger used by the package, replace it with SetLogger
var Logf = log.Printf

// SetLogger replaces the package logger, nil silences it
func SetLogger(fn func(format string, v ...any)) {

	if fn == nil {
		fn = func(string, ...any) {}
	}

	Logf = fn
}
