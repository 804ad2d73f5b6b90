package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger defines a minimal, printf-style logging contract.
//
// Long-lived components depend on this interface rather than on the concrete
// implementation so tests can swap in a no-op or recording logger.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

var (
	loggerInstance *defaultLogger
	loggerOnce     sync.Once
)

// defaultLogger writes leveled, component-tagged lines to a shared writer.
type defaultLogger struct {
	mu        *sync.Mutex
	out       *io.Writer
	level     LogLevel
	component string
}

func getLogger() *defaultLogger {
	loggerOnce.Do(func() {
		var out io.Writer = os.Stdout
		loggerInstance = &defaultLogger{
			mu:    &sync.Mutex{},
			out:   &out,
			level: INFO,
		}
		if lvl := os.Getenv("VASSISTANT_LOG_LEVEL"); lvl != "" {
			loggerInstance.level = parseLevel(lvl)
		}
	})
	return loggerInstance
}

// NewComponentLogger creates a logger scoped to a specific component.
func NewComponentLogger(component string) Logger {
	base := getLogger()
	return &defaultLogger{
		mu:        base.mu,
		out:       base.out,
		level:     base.level,
		component: component,
	}
}

// SetLevel sets the minimum level for loggers created after this call.
func SetLevel(level LogLevel) {
	l := getLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects all component loggers, typically to a file.
func SetOutput(w io.Writer) {
	l := getLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.out = w
}

func (l *defaultLogger) log(level LogLevel, format string, args ...any) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	// Format: 2025-09-30 12:34:56 [INFO] [Dialogue] engine.go:42 - Message
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	component := l.component
	if component == "" {
		component = "VASSISTANT"
	}

	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(*l.out, "%s [%s] [%s] %s:%d - %s\n",
		timestamp, levelToString(level), component, file, line, message)
}

// Debug logs a debug message
func (l *defaultLogger) Debug(format string, args ...any) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *defaultLogger) Info(format string, args ...any) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *defaultLogger) Warn(format string, args ...any) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *defaultLogger) Error(format string, args ...any) {
	l.log(ERROR, format, args...)
}

func levelToString(level LogLevel) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func parseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "WARN":
		return WARN
	case "error", "ERROR":
		return ERROR
	default:
		return INFO
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
