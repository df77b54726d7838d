package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/formula/internal/config"
)

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "formula.log")
	l, cleanup, err := New(&config.Log{Level: "debug", Format: "json", Output: "file", OutputFile: path})
	if err != nil {
		t.Fatal(err)
	}
	l.WithField("formula", "1+1").Debug("compiled formula")
	cleanup()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(b, &entry); err != nil {
		t.Fatalf("log is not json: %q", b)
	}
	if entry["msg"] != "compiled formula" || entry["formula"] != "1+1" || entry["level"] != "debug" {
		t.Errorf("wrong entry %v", entry)
	}
}

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		want  logrus.Level
	}{
		{"", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"info", logrus.InfoLevel},
		{"DEBUG", logrus.DebugLevel},
		{"trace", logrus.TraceLevel},
	}
	for _, c := range cases {
		l, cleanup, err := New(&config.Log{Level: c.level, Output: "discard"})
		if err != nil {
			t.Errorf("%q: %v", c.level, err)
			continue
		}
		cleanup()
		if l.GetLevel() != c.want {
			t.Errorf("%q: want %v, got %v", c.level, c.want, l.GetLevel())
		}
	}
}

func TestNewErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Log
		msg  string
	}{
		{"level", config.Log{Level: "loud"}, "level"},
		{"format", config.Log{Format: "xml"}, "format"},
		{"output", config.Log{Output: "syslog"}, "output"},
		{"file", config.Log{Output: "file"}, "output_file"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := New(&c.cfg)
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Errorf("%q doesn't mention %s", err.Error(), c.msg)
			}
		})
	}
}
