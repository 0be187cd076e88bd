package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the log file. Empty means stderr only.
	FilePath string
	// MaxSizeMB is the size in MB before rotation (default: 10).
	MaxSizeMB int
	// MaxFiles is the number of rotated files kept (default: 5).
	MaxFiles int
	// WriteToStderr mirrors file output to stderr.
	WriteToStderr bool
}

// DefaultConfig returns the defaults for file logging.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig returns configuration for --debug.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// ServerConfig returns configuration for stdio serving. stdout carries
// JSON-RPC, so nothing may be written to stdout or stderr.
func ServerConfig(level string) Config {
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.WriteToStderr = false
	return cfg
}

// Setup builds a JSON logger for cfg and returns it with a cleanup function
// that flushes and closes the log file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if cfg.FilePath == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 5
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}

	return slog.New(slog.NewJSONHandler(output, opts)), cleanup, nil
}

// SetupDefault installs a logger for cfg as the slog default.
func SetupDefault(cfg Config) (func(), error) {
	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	if cfg.FilePath != "" {
		slog.Debug("logging_initialized",
			slog.String("log_file", cfg.FilePath),
			slog.String("level", cfg.Level),
			slog.Bool("stderr", cfg.WriteToStderr))
	}
	return cleanup, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts a level name to slog.Level. Unknown names map to info.
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
