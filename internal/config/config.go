// Package config loads settings for the formula command from a file, the
// environment, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g. FORMULA_LOG_LEVEL for log.level.
const EnvPrefix = "FORMULA"

// Config is the full set of settings.
type Config struct {
	Log      *Log
	Cache    *Cache
	REPL     *REPL
	Grouping string
	// Globals are process-wide variables defined before any formula runs.
	Globals map[string]float64
	// Contexts maps context names to their variables.
	Contexts map[string]map[string]float64
	Viper    *viper.Viper
}

// Log configures the command's logger.
type Log struct {
	Level      string
	Format     string
	Output     string
	OutputFile string
}

// Cache configures the compiled formula cache.
type Cache struct {
	Capacity int
}

// REPL configures the interactive loop.
type REPL struct {
	History string
}

// New creates a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "warning")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.output_file", "")
	v.SetDefault("cache.capacity", 64)
	v.SetDefault("grouping", "left")
	v.SetDefault("globals", []string{})
	v.SetDefault("contexts", []string{})
	v.SetDefault("repl.history", defaultHistory())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".formula_history")
}

// Read reads the config file at path into v. With an empty path, it looks for
// formula.yaml in the working directory and in $HOME/.config/formula, and a
// missing file is not an error.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formula")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "formula"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load reads the config file at path and returns the resulting settings.
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper builds settings from the current values in v.
func FromViper(v *viper.Viper) (*Config, error) {
	globals, err := getGlobals(v)
	if err != nil {
		return nil, err
	}
	contexts, err := getContexts(v)
	if err != nil {
		return nil, err
	}
	c := &Config{
		Log:      getLogConfig(v),
		Cache:    &Cache{Capacity: v.GetInt("cache.capacity")},
		REPL:     &REPL{History: v.GetString("repl.history")},
		Grouping: v.GetString("grouping"),
		Globals:  globals,
		Contexts: contexts,
		Viper:    v,
	}
	return c, nil
}

func getLogConfig(v *viper.Viper) *Log {
	return &Log{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		Output:     v.GetString("log.output"),
		OutputFile: v.GetString("log.output_file"),
	}
}

// getGlobals reads globals as a list of name=value assignments. Lists are
// used instead of maps so that names keep their case.
func getGlobals(v *viper.Viper) (map[string]float64, error) {
	list, err := cast.ToStringSliceE(v.Get("globals"))
	if err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}
	r := make(map[string]float64, len(list))
	for _, s := range list {
		name, val, err := ParseAssignment(s)
		if err != nil {
			return nil, fmt.Errorf("globals: %w", err)
		}
		r[name] = val
	}
	return r, nil
}

// getContexts reads contexts as a list of context.name=value assignments.
func getContexts(v *viper.Viper) (map[string]map[string]float64, error) {
	list, err := cast.ToStringSliceE(v.Get("contexts"))
	if err != nil {
		return nil, fmt.Errorf("contexts: %w", err)
	}
	r := make(map[string]map[string]float64)
	for _, s := range list {
		name, val, err := ParseAssignment(s)
		if err != nil {
			return nil, fmt.Errorf("contexts: %w", err)
		}
		ctx, vr, ok := strings.Cut(name, ".")
		if !ok || ctx == "" || vr == "" {
			return nil, fmt.Errorf("contexts: %q is not of the form context.name=value", s)
		}
		if r[ctx] == nil {
			r[ctx] = make(map[string]float64)
		}
		r[ctx][vr] = val
	}
	return r, nil
}

// ParseAssignment splits "name=value" into its parts. The name may carry the
// $ variable prefix, which is removed.
func ParseAssignment(s string) (string, float64, error) {
	name, val, ok := strings.Cut(s, "=")
	name = strings.TrimPrefix(strings.TrimSpace(name), "$")
	val = strings.TrimSpace(val)
	if !ok || name == "" || val == "" {
		return "", 0, fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		return "", 0, fmt.Errorf("value of %s: %w", name, err)
	}
	return name, f, nil
}

// Watch calls callback with fresh settings each time the config file in use
// changes. It does nothing if no config file was read.
func Watch(v *viper.Viper, callback func(*Config, error)) bool {
	if v.ConfigFileUsed() == "" {
		return false
	}
	v.OnConfigChange(func(fsnotify.Event) {
		callback(FromViper(v))
	})
	v.WatchConfig()
	return true
}
