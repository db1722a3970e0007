package grove

import "log/slog"

var logger = slog.Default().With("pkg", "grove")

// SetLogger replaces the logger used for debug output and recoverable
// frame warnings. A nil logger restores the default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default().With("pkg", "grove")
	}
	logger = l
}

// Logger returns the logger grove writes to.
func Logger() *slog.Logger {
	return logger
}
