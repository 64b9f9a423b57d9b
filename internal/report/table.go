package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/psoswarm/internal/pso"
)

// FormatVec prints a vector with eight decimals, e.g. [1.00000000 -2.50000000].
func FormatVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.8f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// WriteIterationTable prints, for every record, the global best followed by
// a table of particle positions, velocities and personal bests.
func WriteIterationTable(w io.Writer, logs []pso.IterationRecord) error {
	for _, rec := range logs {
		if err := writeIteration(w, rec); err != nil {
			return err
		}
	}
	return nil
}

func writeIteration(w io.Writer, rec pso.IterationRecord) error {
	if _, err := fmt.Fprintf(w, "\n--- Iteration %d ---\n", rec.Iteration); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "gBest: Position = %s, Value = %g\n\n",
		FormatVec(rec.GlobalBest.Position), rec.GlobalBest.Value); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTICLE\tPOSITION\tVELOCITY\tPBEST")
	fmt.Fprintln(tw, "--------\t--------\t--------\t-----")
	for i, snap := range rec.Particles {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			i+1,
			FormatVec(snap.Position),
			FormatVec(snap.Velocity),
			FormatVec(snap.PersonalBest),
		)
	}
	return tw.Flush()
}

// WriteResult prints the final best position and value.
func WriteResult(w io.Writer, res pso.Result) error {
	_, err := fmt.Fprintf(w, "Best Position: %s\nBest Value: %g\n", FormatVec(res.Position), res.Value)
	return err
}
