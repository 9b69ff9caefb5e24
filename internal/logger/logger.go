package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"sr25519-bridge/internal/types"
)

// Config represents logger configuration
type Config struct {
	Level         string
	Format        string
	ConsoleOutput bool
	ConsoleColor  bool
	FileOutput    bool
	FileName      string
	FileMaxSize   string

	// Output overrides the console writer. Used by tests.
	Output io.Writer
}

// FromLoggingConfig maps the YAML logging section onto a logger Config
func FromLoggingConfig(cfg types.LoggingConfig) Config {
	return Config{
		Level:         cfg.Level,
		Format:        cfg.Format,
		ConsoleOutput: cfg.ConsoleOutput,
		ConsoleColor:  cfg.ConsoleColor,
		FileOutput:    cfg.FileOutput,
		FileName:      cfg.FileName,
		FileMaxSize:   cfg.FileMaxSize,
	}
}

// Logger wraps a zerolog logger
type Logger struct {
	zlog zerolog.Logger
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Init initializes the global logger with given configuration
func Init(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
	return nil
}

func global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// New creates a new logger instance
func New(config Config) (*Logger, error) {
	level, err := parseLogLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var writers []io.Writer

	if config.ConsoleOutput || config.Output != nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		if config.Format == "text" {
			out = zerolog.ConsoleWriter{
				Out:        out,
				NoColor:    !config.ConsoleColor,
				TimeFormat: time.RFC3339,
			}
		}
		writers = append(writers, out)
	}

	if config.FileOutput {
		if config.FileName == "" {
			return nil, fmt.Errorf("file_name is required when file_output is enabled")
		}

		maxSizeMB, err := parseMaxSize(config.FileMaxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid file_max_size: %w", err)
		}

		path, err := logFilePath(config.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve log file path: %w", err)
		}

		writers = append(writers, &lumberjack.Logger{
			Filename: path,
			MaxSize:  maxSizeMB, // megabytes
			Compress: true,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	var writer io.Writer = writers[0]
	if len(writers) > 1 {
		writer = io.MultiWriter(writers...)
	}

	return &Logger{
		zlog: zerolog.New(writer).Level(level).With().Timestamp().Logger(),
	}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func parseLogLevel(levelStr string) (zerolog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseMaxSize converts size string (e.g., "10MB") to megabytes
func parseMaxSize(sizeStr string) (int, error) {
	if sizeStr == "" {
		return 10, nil
	}

	trimmed := strings.TrimSuffix(strings.ToUpper(sizeStr), "MB")
	size, err := strconv.Atoi(trimmed)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("invalid size format: %s", sizeStr)
	}
	return size, nil
}

// logFilePath places relative log files next to the executable
func logFilePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(execPath), name), nil
}

// With returns a child logger that adds the given key/value pairs to every entry
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(fieldsToMap(fields...)).Logger()}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.zlog.Debug().Fields(fieldsToMap(fields...)).Msg(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.zlog.Info().Fields(fieldsToMap(fields...)).Msg(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.zlog.Warn().Fields(fieldsToMap(fields...)).Msg(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...interface{}) {
	l.zlog.Error().Fields(fieldsToMap(fields...)).Msg(msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	l.zlog.Fatal().Fields(fieldsToMap(fields...)).Msg(msg)
}

// Package level helpers forward to the global logger and do nothing before Init.

func Debug(msg string, fields ...interface{}) {
	if l := global(); l != nil {
		l.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...interface{}) {
	if l := global(); l != nil {
		l.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...interface{}) {
	if l := global(); l != nil {
		l.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...interface{}) {
	if l := global(); l != nil {
		l.Error(msg, fields...)
	}
}

func Fatal(msg string, fields ...interface{}) {
	if l := global(); l != nil {
		l.Fatal(msg, fields...)
	}
	os.Exit(1)
}

// Component returns a child of the global logger tagged with the component
// name, or a no-op logger before Init
func Component(name string) *Logger {
	if l := global(); l != nil {
		return l.With("component", name)
	}
	return Nop()
}

// fieldsToMap converts alternating key/value pairs to a map for zerolog
func fieldsToMap(fields ...interface{}) map[string]interface{} {
	fieldMap := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			fieldMap[key] = fields[i+1]
		}
	}
	return fieldMap
}
