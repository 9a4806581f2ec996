// Package logging builds the component loggers used across BudgetBox.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a stderr logger tagged with the component name.
func New(component string) *log.Logger {
	return log.New(os.Stderr, "["+component+"] ", log.LstdFlags)
}

// NewRotating returns a logger that writes to both stderr and a
// size-rotated log file. Long-running daemons use this so their logs
// survive restarts without growing unbounded.
func NewRotating(component, path string) *log.Logger {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return log.New(io.MultiWriter(os.Stderr, rotator), "["+component+"] ", log.LstdFlags)
}

// ForDaemon returns a rotating logger when logFile is set, otherwise a
// plain stderr logger.
func ForDaemon(component, logFile string) *log.Logger {
	if logFile != "" {
		return NewRotating(component, logFile)
	}
	return New(component)
}
