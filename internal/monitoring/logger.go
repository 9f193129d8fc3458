// Package monitoring holds the diagnostic logger used at the estimator's
// integration boundary. Library code never writes to stderr on its own; a
// command or host installs a sink with SetLogger.
package monitoring

// Logf is the package-level diagnostic logger. It is a no-op until
// SetLogger installs a sink such as log.Printf.
var Logf func(format string, v ...any) = nop

func nop(string, ...any) {}

// SetLogger replaces the package logger. Passing nil restores the no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = nop
		return
	}
	Logf = f
}
