// Copyright (c) 2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package logger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents the level to log messages at.
type Level int

const (
	// LogDebug represents debug messages.
	LogDebug Level = iota
	// LogInfo represents informational messages.
	LogInfo
	// LogWarning represents warnings.
	LogWarning
	// LogError represents errors.
	LogError
)

// TraceType is the log type that, enabled at debug level, logs every
// message going in and out of the formatter.
const TraceType = "trace"

var (
	// LogLevelNames takes a config name and gives the real log level.
	LogLevelNames = map[string]Level{
		"debug":    LogDebug,
		"info":     LogInfo,
		"warn":     LogWarning,
		"warning":  LogWarning,
		"warnings": LogWarning,
		"error":    LogError,
		"errors":   LogError,
	}
	// LogLevelDisplayNames gives the display name to use for our log levels.
	LogLevelDisplayNames = map[Level]string{
		LogDebug:   "debug",
		LogInfo:    "info",
		LogWarning: "warn",
		LogError:   "error",
	}

	// alternate spellings accepted in config files
	typeAliases = map[string]string{
		"patterns": "format",
		"render":   "format",
		"reload":   "rehash",
		"ws":       "server",
	}
)

func resolveTypeAlias(typeName string) (result string) {
	if canonicalized, ok := typeAliases[typeName]; ok {
		return canonicalized
	}
	return typeName
}

// Manager is the main interface used to log debug/info/error messages.
type Manager struct {
	configMutex sync.RWMutex
	loggers     []singleLogger
	writeLock   sync.Mutex // one lock for stdout, stderr and any custom writer
	fileLock    sync.Mutex
	tracing     atomic.Uint32
}

// LoggingConfig represents the configuration of a single logger.
type LoggingConfig struct {
	Method        string
	MethodStdout  bool `yaml:"-"`
	MethodStderr  bool `yaml:"-"`
	MethodFile    bool `yaml:"-"`
	Filename      string
	TypeString    string   `yaml:"type"`
	Types         []string `yaml:"-"`
	ExcludedTypes []string `yaml:"-"`
	LevelString   string   `yaml:"level"`
	Level         Level    `yaml:"-"`
	// Writer, if set, receives log lines in addition to the other methods
	Writer io.Writer `yaml:"-"`
}

// NewManager returns a new log manager.
func NewManager(config []LoggingConfig) (*Manager, error) {
	var logger Manager

	if err := logger.ApplyConfig(config); err != nil {
		return nil, err
	}

	return &logger, nil
}

// ApplyConfig applies the given config to this logger (rehashes the config, in other words).
func (logger *Manager) ApplyConfig(config []LoggingConfig) error {
	logger.configMutex.Lock()
	defer logger.configMutex.Unlock()

	for _, logger := range logger.loggers {
		logger.Close()
	}

	logger.loggers = nil
	logger.tracing.Store(0)

	var lastErr error
	for _, logConfig := range config {
		typeMap := make(map[string]bool)
		for _, name := range logConfig.Types {
			typeMap[resolveTypeAlias(name)] = true
		}
		excludedTypeMap := make(map[string]bool)
		for _, name := range logConfig.ExcludedTypes {
			excludedTypeMap[resolveTypeAlias(name)] = true
		}

		sLogger := singleLogger{
			methodStdout: logConfig.MethodStdout,
			methodStderr: logConfig.MethodStderr,
			writer:       logConfig.Writer,
			level:        logConfig.Level,
			types:        typeMap,
			excluded:     excludedTypeMap,
			writeLock:    &logger.writeLock,
			fileLock:     &logger.fileLock,
		}
		// tracing is opt-in: "*" alone does not turn it on
		if typeMap[TraceType] && !excludedTypeMap[TraceType] && logConfig.Level == LogDebug {
			logger.tracing.Store(1)
		}
		if logConfig.MethodFile {
			file, err := os.OpenFile(logConfig.Filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
			if err != nil {
				lastErr = fmt.Errorf("Could not open log file %s [%s]", logConfig.Filename, err.Error())
			} else {
				sLogger.file = file
				sLogger.fileWriter = bufio.NewWriter(file)
			}
		}
		logger.loggers = append(logger.loggers, sLogger)
	}

	return lastErr
}

// IsTracing returns true if formatter input and output is being logged.
func (logger *Manager) IsTracing() bool {
	return logger.tracing.Load() == 1
}

// Close flushes and closes any log files.
func (logger *Manager) Close() {
	logger.configMutex.Lock()
	defer logger.configMutex.Unlock()
	for _, logger := range logger.loggers {
		logger.Close()
	}
	logger.loggers = nil
}

// Log logs the given message with the given details.
func (logger *Manager) Log(level Level, logType string, messageParts ...string) {
	logger.configMutex.RLock()
	defer logger.configMutex.RUnlock()

	for i := range logger.loggers {
		logger.loggers[i].Log(level, logType, messageParts...)
	}
}

// Debug logs the given message as a debug message.
func (logger *Manager) Debug(logType string, messageParts ...string) {
	logger.Log(LogDebug, logType, messageParts...)
}

// Info logs the given message as an info message.
func (logger *Manager) Info(logType string, messageParts ...string) {
	logger.Log(LogInfo, logType, messageParts...)
}

// Warning logs the given message as a warning message.
func (logger *Manager) Warning(logType string, messageParts ...string) {
	logger.Log(LogWarning, logType, messageParts...)
}

// Error logs the given message as an error message.
func (logger *Manager) Error(logType string, messageParts ...string) {
	logger.Log(LogError, logType, messageParts...)
}

// singleLogger represents a single logger instance.
type singleLogger struct {
	writeLock    *sync.Mutex
	fileLock     *sync.Mutex
	methodStdout bool
	methodStderr bool
	writer       io.Writer
	file         *os.File
	fileWriter   *bufio.Writer
	level        Level
	types        map[string]bool
	excluded     map[string]bool
}

func (logger *singleLogger) Close() error {
	if logger.file != nil {
		flushErr := logger.fileWriter.Flush()
		closeErr := logger.file.Close()
		if flushErr != nil {
			return flushErr
		}
		return closeErr
	}
	return nil
}

func (logger *singleLogger) enabled() bool {
	return logger.methodStdout || logger.methodStderr || logger.writer != nil || logger.file != nil
}

// Log logs the given message with the given details.
func (logger *singleLogger) Log(level Level, logType string, messageParts ...string) {
	if !logger.enabled() || level < logger.level {
		return
	}

	capturing := (logger.types["*"] || logger.types[logType]) && !logger.excluded["*"] && !logger.excluded[logType]
	if !capturing {
		return
	}

	var rawBuf bytes.Buffer
	// 6 is len("rehash"), the longest log type in use
	fmt.Fprintf(&rawBuf, "%s : %-5s : %-6s : ", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), LogLevelDisplayNames[level], logType)
	for i, p := range messageParts {
		rawBuf.WriteString(p)

		if i != len(messageParts)-1 {
			rawBuf.WriteString(" : ")
		}
	}
	rawBuf.WriteRune('\n')

	logger.writeLock.Lock()
	if logger.methodStdout {
		os.Stdout.Write(rawBuf.Bytes())
	}
	if logger.methodStderr {
		os.Stderr.Write(rawBuf.Bytes())
	}
	if logger.writer != nil {
		logger.writer.Write(rawBuf.Bytes())
	}
	logger.writeLock.Unlock()

	if logger.file != nil {
		logger.fileLock.Lock()
		logger.fileWriter.Write(rawBuf.Bytes())
		logger.fileWriter.Flush()
		logger.fileLock.Unlock()
	}
}
