package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zephyrtronium/formula/internal/config"
)

// assignment is a variable definition given on the command line.
type assignment struct {
	name string
	val  float64
}

// givenFlag collects name=value definitions from repeated flags.
type givenFlag []assignment

var _ pflag.Value = (*givenFlag)(nil)

func (g *givenFlag) String() string {
	s := make([]string, len(*g))
	for i, a := range *g {
		s[i] = fmt.Sprintf("%s=%g", a.name, a.val)
	}
	return "[" + strings.Join(s, ",") + "]"
}

func (g *givenFlag) Set(s string) error {
	name, val, err := config.ParseAssignment(s)
	if err != nil {
		return err
	}
	*g = append(*g, assignment{name: name, val: val})
	return nil
}

func (g *givenFlag) Type() string {
	return "name=value"
}

func newEvalCmd(a *app) *cobra.Command {
	var (
		given  givenFlag
		verb   string
		inname string
		echo   bool
	)
	cmd := &cobra.Command{
		Use:   "eval [formula...]",
		Short: "Calculate formulas given as arguments or read one per line",
		Long: `Calculate each formula given as an argument. With --file, or with no
arguments, formulas are also read one per line; blank lines and lines
starting with # are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.interpreter()
			if err != nil {
				return err
			}
			defer in.Dispose()
			for _, d := range given {
				in.SetVar(d.name, d.val)
			}

			srcs := args
			r, closer, err := infile(inname, len(args) == 0, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if r != nil {
				defer closer()
				lines, err := readFormulas(r)
				if err != nil {
					return err
				}
				srcs = append(srcs, lines...)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, src := range srcs {
				if echo {
					f, err := in.Compile(src)
					if err == nil {
						fmt.Fprintf(out, "%v : ", f)
					}
				}
				v, err := in.Calculate(src)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				fmt.Fprintf(out, verb+"\n", v)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d formulas failed", failed, len(srcs))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Var(&given, "given", "name=value variable definition (any number of times)")
	f.StringVar(&verb, "fmt", "%g", "result formatting string")
	f.StringVarP(&inname, "file", "f", "", "file of formulas, one per line, or - for stdin (default stdin if no args given)")
	f.BoolVar(&echo, "echo", false, "print the bracketed form of each formula")
	return cmd
}

func infile(inname string, std bool, stdin io.Reader) (io.Reader, func(), error) {
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	case inname == "-", std:
		return stdin, func() {}, nil
	}
	return nil, nil, nil
}

func readFormulas(r io.Reader) ([]string, error) {
	var srcs []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		srcs = append(srcs, line)
	}
	return srcs, s.Err()
}
