// Package logger wraps a process-wide charmbracelet logger. Until Init or
// InitWriter runs, every helper is a no-op.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/dayprompt/internal/constants"
)

// Logger is the shared instance. Nil disables logging.
var Logger *log.Logger

type Config struct {
	// Debug lowers the level to debug, reports callers and mirrors to stderr.
	Debug bool
	// ConfigDir holds the logs/ directory.
	ConfigDir string
	// Stderr mirrors log output to stderr without enabling debug level.
	Stderr bool
}

// Init logs to a rotating file under <ConfigDir>/logs.
func Init(cfg Config) error {
	dir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(dir, constants.AppName+".log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	if cfg.Debug || cfg.Stderr {
		w = io.MultiWriter(os.Stderr, w)
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	Logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

// InitWriter points the shared logger at w. Used by tests and dry runs.
func InitWriter(w io.Writer, level log.Level) {
	Logger = log.NewWithOptions(w, log.Options{Level: level, Prefix: constants.AppName})
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Error(msg, keyvals...)
	}
}
