// Package logger provides the shell's diagnostic logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across the shell.
type Logger interface {
	Debug(message string, fields ...Field)
	Info(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Error(message string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Formatter renders entries as a single colored line.
type Formatter struct {
	TimestampFormat string
	DisableColors   bool
}

// Format implements logrus.Formatter
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelColor *color.Color
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = color.New(color.FgRed, color.Bold)
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
	case logrus.InfoLevel:
		levelColor = color.New(color.FgCyan)
	default:
		levelColor = color.New(color.FgWhite, color.Faint)
	}

	level := fmt.Sprintf("%-5s", levelName(entry.Level))
	if !f.DisableColors {
		level = levelColor.Sprint(level)
	}
	line := fmt.Sprintf("[%s] %s %s", entry.Time.Format(f.TimestampFormat), level, entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, entry.Data[k])
		}
	}
	return []byte(line + "\n"), nil
}

func levelName(level logrus.Level) string {
	switch level {
	case logrus.WarnLevel:
		return "WARN"
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "ERROR"
	case logrus.InfoLevel:
		return "INFO"
	default:
		return "DEBUG"
	}
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a logger writing to stderr and, when logFile is set, to that
// file as well. Unknown levels fall back to warn. The returned close func
// releases the log file and is never nil.
func New(logFile, logLevel string) (Logger, func() error, error) {
	if logFile == "" {
		return NewWithOutput(os.Stderr, logLevel, false), func() error { return nil }, nil
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	out := io.MultiWriter(os.Stderr, file)
	return NewWithOutput(out, logLevel, false), file.Close, nil
}

// NewWithOutput creates a logger with a custom output (for testing).
func NewWithOutput(out io.Writer, logLevel string, colors bool) Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
	log.SetOutput(out)
	log.SetFormatter(&Formatter{
		TimestampFormat: "15:04:05",
		DisableColors:   !colors,
	})
	return &logrusLogger{entry: logrus.NewEntry(log)}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewWithOutput(io.Discard, "panic", false)
}

func (l *logrusLogger) Debug(message string, fields ...Field) {
	l.entry.WithFields(toFields(fields)).Debug(message)
}

func (l *logrusLogger) Info(message string, fields ...Field) {
	l.entry.WithFields(toFields(fields)).Info(message)
}

func (l *logrusLogger) Warn(message string, fields ...Field) {
	l.entry.WithFields(toFields(fields)).Warn(message)
}

func (l *logrusLogger) Error(message string, fields ...Field) {
	l.entry.WithFields(toFields(fields)).Error(message)
}

func (l *logrusLogger) With(fields ...Field) Logger {
	return &logrusLogger{entry: l.entry.WithFields(toFields(fields))}
}

func toFields(fields []Field) logrus.Fields {
	result := make(logrus.Fields, len(fields))
	for _, f := range fields {
		result[f.Key] = f.Value
	}
	return result
}
