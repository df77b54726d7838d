// Package commands implements the formula command line.
package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/internal/config"
	"github.com/zephyrtronium/formula/internal/logging"
)

// app is the state shared by every subcommand.
type app struct {
	cfgPath string
	v       *viper.Viper
	cfg     *config.Config
	log     *logrus.Logger
	cleanup func()
	cache   *formula.FormulaCache
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "formula",
		Short:         "Calculate math, boolean, and bitwise formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default formula.yaml in . or $HOME/.config/formula)")
	pf.String("grouping", "", "grouping of equal-precedence operators, left or right")
	pf.String("log-level", "", "log level")
	pf.Int("cache", 0, "number of compiled formulas to keep")

	root.AddCommand(
		newEvalCmd(a),
		newReplCmd(a),
		newOpsCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.v = config.New()
	pf := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{"grouping": "grouping", "log.level": "log-level", "cache.capacity": "cache"} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return err
		}
	}
	if err := config.Read(a.v, a.cfgPath); err != nil {
		return err
	}
	cfg, err := config.FromViper(a.v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.log, a.cleanup, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if f := a.v.ConfigFileUsed(); f != "" {
		a.log.WithField("file", f).Debug("read config")
	}

	if cfg.Cache.Capacity == formula.DefaultCapacity {
		a.cache = formula.DefaultCache()
	} else {
		a.cache = formula.NewFormulaCache(cfg.Cache.Capacity)
	}
	a.cache.OnEvict(func(k formula.FormulaKey, _ *formula.Formula) {
		a.log.WithField("formula", k.Source).Debug("evicted formula")
	})
	for name, val := range cfg.Globals {
		if !formula.SetGlobalVar(name, val) {
			a.log.WithField("name", name).Warn("global variable is already defined")
		}
	}
	return nil
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

// interpreter creates an interpreter with the configured cache, grouping,
// and contexts.
func (a *app) interpreter() (*formula.Interpreter, error) {
	g, ok := formula.ParseGrouping(a.cfg.Grouping)
	if !ok {
		return nil, fmt.Errorf("unknown grouping %q", a.cfg.Grouping)
	}
	in := formula.New(formula.WithCache(a.cache), formula.WithLogger(a.log), g)
	setContexts(in, a.cfg.Contexts)
	return in, nil
}

func setContexts(in *formula.Interpreter, ctxs map[string]map[string]float64) {
	for name, vars := range ctxs {
		in.SetContext(name, formula.MapContext(vars))
	}
}
