package internal

import (
	"io"
	"log"
	"os"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	logger   = log.New(os.Stderr, "", log.LstdFlags)
	logFile  *os.File
)

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogFile tees log output to the given file in addition to stderr.
// Replaces any previously configured log file.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// CloseLogFile detaches and closes the log file sink.
func CloseLogFile() {
	if logFile == nil {
		return
	}
	logger.SetOutput(os.Stderr)
	_ = logFile.Close()
	logFile = nil
}

func logf(level LogLevel, tag, format string, args ...interface{}) {
	if logLevel >= level {
		logger.Printf(tag+" "+format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logf(LogLevelError, "[ERROR]", format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logf(LogLevelWarn, "[WARN]", format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logf(LogLevelInfo, "[INFO]", format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logf(LogLevelDebug, "[DEBUG]", format, args...)
}
