package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger writing to stdout and, when extra is
// non-nil, to extra as JSON as well.
// APP_ENV=dev (or development) uses a human-friendly console writer on stdout.
func NewLogger(env, level string, extra io.Writer) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if extra != nil {
		out = zerolog.MultiLevelWriter(out, extra)
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// OpenStageLog opens (appending) <dir>/<stage>.log.
func OpenStageLog(dir, stage string) (*os.File, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, stage+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
