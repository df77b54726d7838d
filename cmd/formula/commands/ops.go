package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/formula"
)

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the built-in operators",
		Args:  cobra.NoArgs,
		// The operator table needs no config or logger.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := formula.Builtins()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tNAME\tARITY\tPRECEDENCE")
			for _, sym := range reg.Symbols() {
				op, _ := reg.Lookup(sym)
				assoc := ""
				if op.RightAssoc {
					assoc = " (right)"
				}
				fmt.Fprintf(w, "%s\t%s\t%v\t%d%s\n", op.Symbol, op.Name, op.Arity, op.Prec, assoc)
			}
			return w.Flush()
		},
	}
}
