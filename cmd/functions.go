package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/psoswarm/internal/objective"
	"github.com/cwbudde/psoswarm/internal/report"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the available benchmark functions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeFunctions(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}

func writeFunctions(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM\tBOUNDS\tMINIMUM")

	for _, name := range objective.Names() {
		fn, err := objective.Lookup(name)
		if err != nil {
			return err
		}

		d := "any"
		if fn.Dim() > 0 {
			d = fmt.Sprintf("%d", fn.Dim())
		}
		lo, hi := fn.Bounds()

		minimum := "-"
		if optima := fn.Optima(); len(optima) > 0 {
			minimum = fmt.Sprintf("%g at %s", optima[0].Val, report.FormatVec(optima[0].Pos))
			if len(optima) > 1 {
				minimum += fmt.Sprintf(" (+%d more)", len(optima)-1)
			}
		}

		fmt.Fprintf(w, "%s\t%s\t[%g, %g]\t%s\n", fn.Name(), d, lo, hi, minimum)
	}

	return w.Flush()
}
