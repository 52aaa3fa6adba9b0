package logger

// Logger is the leveled logging contract the core packages depend on.
// Concrete adapters live under infra so the core never binds to a logging
// library directly.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
