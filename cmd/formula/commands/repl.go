package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/internal/config"
)

const banner = `formula calculator
'setv key value' to set a variable
'q' to quit
----------`

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Calculate formulas interactively",
		Long: `Calculate formulas interactively. Each result is stored in a variable
named by its index, so the first result is $0, the second $1, and so on.
When a config file is in use, changes to its contexts apply to later
formulas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.interpreter()
			if err != nil {
				return err
			}
			defer in.Dispose()
			s := &session{in: in, out: cmd.OutOrStdout(), errs: cmd.ErrOrStderr(), log: a.log}

			reload := make(chan *config.Config, 1)
			config.Watch(a.v, func(c *config.Config, err error) {
				if err != nil {
					a.log.WithError(err).Error("config reload failed")
					return
				}
				// Keep only the newest settings.
				select {
				case <-reload:
				default:
				}
				reload <- c
			})

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)
			hist := a.cfg.REPL.History
			if hist != "" {
				if f, err := os.Open(hist); err == nil {
					_, _ = ln.ReadHistory(f)
					_ = f.Close()
				}
				defer func() {
					if f, err := os.Create(hist); err == nil {
						_, _ = ln.WriteHistory(f)
						_ = f.Close()
					}
				}()
			}

			fmt.Fprintln(s.out, banner)
			for {
				line, err := ln.Prompt("  : ")
				if err != nil {
					if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
						fmt.Fprintln(s.out)
						return nil
					}
					return err
				}
				select {
				case c := <-reload:
					s.reload(c)
				default:
				}
				if strings.TrimSpace(line) != "" {
					ln.AppendHistory(line)
				}
				if s.handle(line) {
					return nil
				}
			}
		},
	}
}

// session is the state of one interactive loop.
type session struct {
	in   *formula.Interpreter
	out  io.Writer
	errs io.Writer
	log  logrus.FieldLogger
	// results is the number of results stored so far.
	results int
}

// handle processes one line of input. It reports whether the loop should
// stop.
func (s *session) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "q", line == "Q":
		fmt.Fprintln(s.out, "Good bye :)")
		return true
	case line == "setv" || strings.HasPrefix(line, "setv "):
		f := strings.Fields(line)
		if len(f) != 3 {
			fmt.Fprintln(s.errs, "Syntax: setv key value")
			return false
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			fmt.Fprintln(s.errs, "Syntax: setv key value")
			return false
		}
		s.in.SetVar(f[1], v)
		return false
	}
	v, err := s.in.Calculate(line)
	if err != nil {
		fmt.Fprintln(s.errs, err)
		return false
	}
	name := strconv.Itoa(s.results)
	s.in.SetVar(name, v)
	s.results++
	fmt.Fprintf(s.out, "$%s> %g\n", name, v)
	return false
}

// reload replaces the interpreter's contexts with those of c.
func (s *session) reload(c *config.Config) {
	setContexts(s.in, c.Contexts)
	s.log.WithField("contexts", len(c.Contexts)).Info("reloaded contexts")
}
