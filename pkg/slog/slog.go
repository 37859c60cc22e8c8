// Package slog implements the QNX system logger entry point slogf on top of
// logrus.
package slog

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
)

// QNX severities (sys/slog.h)
const (
	Shutdown = iota
	Critical
	Error
	Warning
	Notice
	Info
	Debug1
	Debug2
)

// Entry field keys
const (
	FieldCode     = "code"
	FieldSeverity = "severity"
)

// Level maps a QNX severity to a logrus level. Unknown severities log at
// info. Shutdown maps to fatal but never exits the process.
func Level(severity int) logrus.Level {
	switch severity {
	case Shutdown:
		return logrus.FatalLevel
	case Critical, Error:
		return logrus.ErrorLevel
	case Warning:
		return logrus.WarnLevel
	case Notice, Info:
		return logrus.InfoLevel
	case Debug1:
		return logrus.DebugLevel
	case Debug2:
		return logrus.TraceLevel
	}
	return logrus.InfoLevel
}

// Logger writes slogf records to a logrus logger
type Logger struct {
	l *logrus.Logger
}

// New creates a Logger writing to l
func New(l *logrus.Logger) *Logger {
	return &Logger{l: l}
}

// Slogf formats and logs one record and returns the length of the message
func (s *Logger) Slogf(code, severity int, format string, args ...interface{}) int {
	msg := fmt.Sprintf(format, args...)
	s.l.WithFields(logrus.Fields{
		FieldCode:     code,
		FieldSeverity: severity,
	}).Log(Level(severity), msg)
	return len(msg)
}

var std = New(logrus.StandardLogger())

// Slogf logs through the logrus standard logger
func Slogf(code, severity int, format string, args ...interface{}) int {
	return std.Slogf(code, severity, format, args...)
}

// Formatter renders entries the way the QNX console logger does:
// "SLOG [code] [severity] message". Entries without slog fields get code 0
// and the severity matching their level.
type Formatter struct{}

// Format implements logrus.Formatter
func (Formatter) Format(e *logrus.Entry) ([]byte, error) {
	code, _ := e.Data[FieldCode].(int)
	sev, ok := e.Data[FieldSeverity].(int)
	if !ok {
		sev = severity(e.Level)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "SLOG [%d] [%d] %s\n", code, sev, e.Message)
	return b.Bytes(), nil
}

func severity(l logrus.Level) int {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return Shutdown
	case logrus.ErrorLevel:
		return Error
	case logrus.WarnLevel:
		return Warning
	case logrus.InfoLevel:
		return Info
	case logrus.DebugLevel:
		return Debug1
	}
	return Debug2
}
