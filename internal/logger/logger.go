// Package logger is the process-wide structured log. Output goes to a rotating
// file under the config directory; stderr is added for debugging and for
// long-running commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelEnvVar overrides the level chosen from the flags.
const LevelEnvVar = "STRIDE_LOG_LEVEL"

const (
	fileName      = "stride.log"
	maxSizeMB     = 10
	maxBackups    = 3
	maxAgeDays    = 28
	defaultPrefix = "stride"
)

var (
	Logger *log.Logger

	output  io.Writer = io.Discard
	logPath string
)

type Config struct {
	Debug     bool
	ConfigDir string
	// Stderr mirrors output to stderr at info level without turning on debug.
	Stderr bool
	// Level, when set, wins over Debug and Stderr ("debug", "info", "warn", "error").
	Level string
}

func (c Config) level() (log.Level, error) {
	if c.Level != "" {
		lvl, err := log.ParseLevel(strings.ToLower(c.Level))
		if err != nil {
			return log.WarnLevel, fmt.Errorf("invalid log level %q", c.Level)
		}
		return lvl, nil
	}
	switch {
	case c.Debug:
		return log.DebugLevel, nil
	case c.Stderr:
		return log.InfoLevel, nil
	}
	return log.WarnLevel, nil
}

// Init points the global logger at <ConfigDir>/logs/stride.log. An invalid
// Level falls back to warn and is reported after the logger is usable.
func Init(cfg Config) error {
	dir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logPath = filepath.Join(dir, fileName)

	var w io.Writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	if cfg.Debug || cfg.Stderr {
		w = io.MultiWriter(os.Stderr, w)
	}
	output = w

	lvl, levelErr := cfg.level()
	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          defaultPrefix,
	})
	return levelErr
}

// Path is the active log file, empty before Init.
func Path() string {
	return logPath
}

func Writer() io.Writer {
	return output
}

// With returns a child logger carrying keyvals, or a discarding logger before
// Init.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs and exits with status 1.
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
