package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formula.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
  output: file
  output_file: /tmp/formula.log
cache:
  capacity: 16
grouping: right
globals:
  - gravity=9.8
  - $Answer = 42
contexts:
  - player.Health=50
  - player.MaxHealth=100
  - World.width=8
repl:
  history: /tmp/history
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantLog := Log{Level: "debug", Format: "json", Output: "file", OutputFile: "/tmp/formula.log"}
	if *c.Log != wantLog {
		t.Errorf("wrong log config %+v", c.Log)
	}
	if c.Cache.Capacity != 16 {
		t.Errorf("wrong capacity %d", c.Cache.Capacity)
	}
	if c.Grouping != "right" {
		t.Errorf("wrong grouping %q", c.Grouping)
	}
	if want := map[string]float64{"gravity": 9.8, "Answer": 42}; !reflect.DeepEqual(c.Globals, want) {
		t.Errorf("wrong globals %v", c.Globals)
	}
	want := map[string]map[string]float64{
		"player": {"Health": 50, "MaxHealth": 100},
		"World":  {"width": 8},
	}
	if !reflect.DeepEqual(c.Contexts, want) {
		t.Errorf("wrong contexts %v", c.Contexts)
	}
	if c.REPL.History != "/tmp/history" {
		t.Errorf("wrong history %q", c.REPL.History)
	}
}

func TestDefaults(t *testing.T) {
	v := New()
	c, err := FromViper(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Log.Level != "warning" || c.Log.Format != "text" || c.Log.Output != "stderr" {
		t.Errorf("wrong log defaults %+v", c.Log)
	}
	if c.Cache.Capacity != 64 {
		t.Errorf("wrong default capacity %d", c.Cache.Capacity)
	}
	if c.Grouping != "left" {
		t.Errorf("wrong default grouping %q", c.Grouping)
	}
	if len(c.Globals) != 0 || len(c.Contexts) != 0 {
		t.Errorf("defaults define variables: %v %v", c.Globals, c.Contexts)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("FORMULA_CACHE_CAPACITY", "3")
	t.Setenv("FORMULA_LOG_LEVEL", "info")
	t.Setenv("FORMULA_GLOBALS", "a=1 b=2")
	c, err := Load(writeConfig(t, "cache:\n  capacity: 16\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Cache.Capacity != 3 {
		t.Errorf("environment did not override capacity: %d", c.Cache.Capacity)
	}
	if c.Log.Level != "info" {
		t.Errorf("environment did not override level: %q", c.Log.Level)
	}
	if want := map[string]float64{"a": 1, "b": 2}; !reflect.DeepEqual(c.Globals, want) {
		t.Errorf("wrong globals %v", c.Globals)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"global-no-value", "globals: [gravity]\n"},
		{"global-bad-value", "globals: [gravity=heavy]\n"},
		{"context-no-dot", "contexts: [Health=50]\n"},
		{"context-empty-name", "contexts: [player.=50]\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if cfg, err := Load(writeConfig(t, c.body)); err == nil {
				t.Errorf("loaded %+v", cfg)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit config file loaded")
	}
}

func TestParseAssignment(t *testing.T) {
	cases := []struct {
		in   string
		name string
		val  float64
		ok   bool
	}{
		{"x=1", "x", 1, true},
		{" x = 1.5 ", "x", 1.5, true},
		{"$x=-2", "x", -2, true},
		{"p.Health=1e2", "p.Health", 100, true},
		{"x", "", 0, false},
		{"=1", "", 0, false},
		{"x=", "", 0, false},
		{"x=one", "", 0, false},
	}
	for _, c := range cases {
		name, val, err := ParseAssignment(c.in)
		if (err == nil) != c.ok {
			t.Errorf("%q: wrong error %v", c.in, err)
			continue
		}
		if c.ok && (name != c.name || val != c.val) {
			t.Errorf("%q: want %s=%g, got %s=%g", c.in, c.name, c.val, name, val)
		}
	}
}

func TestWatch(t *testing.T) {
	v := New()
	if Watch(v, func(*Config, error) {}) {
		t.Error("watching with no config file")
	}
	path := writeConfig(t, "contexts: [player.Health=50]\n")
	if err := Read(v, path); err != nil {
		t.Fatal(err)
	}
	changed := make(chan *Config, 4)
	if !Watch(v, func(c *Config, err error) {
		if err == nil {
			changed <- c
		}
	}) {
		t.Fatal("not watching")
	}
	if err := os.WriteFile(path, []byte("contexts: [player.Health=25]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Contexts["player"]["Health"] == 25 {
				return
			}
		case <-timeout:
			t.Fatal("no reload after the file changed")
		}
	}
}
