// Package logging builds the logger used by the formula command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/formula/internal/config"
)

// New creates a logger from c. The returned function closes any log file and
// must be called when the logger is no longer used.
func New(c *config.Log) (*logrus.Logger, func(), error) {
	l := logrus.New()
	lvl := c.Level
	if lvl == "" {
		lvl = "warning"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", c.Format)
	}

	cleanup := func() {}
	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "stderr", "":
		l.SetOutput(os.Stderr)
	case "discard":
		l.SetOutput(io.Discard)
	case "file":
		if c.OutputFile == "" {
			return nil, nil, fmt.Errorf("log output is file but no output_file is set")
		}
		if err := os.MkdirAll(filepath.Dir(c.OutputFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(c.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		l.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown log output %q", c.Output)
	}
	return l, cleanup, nil
}
