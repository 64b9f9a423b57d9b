package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/psoswarm/internal/objective"
	"github.com/cwbudde/psoswarm/internal/opt"
	"github.com/cwbudde/psoswarm/internal/pso"
)

var (
	compareFunction string
	compareDim      int
	compareIters    int
	comparePop      int
	compareSeed     int64
	compareRuns     int
	compareWorkers  int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the particle swarm against the mayfly optimizer",
	Long: `Runs the particle swarm and the mayfly algorithm on the same function with
the same budget (iterations x population) over one or more seeds and prints
the best and mean values reached by each.`,
	RunE: runCompare,
}

func init() {
	def := pso.DefaultConfig()

	compareCmd.Flags().StringVar(&compareFunction, "function", "valley", "Objective function")
	compareCmd.Flags().IntVar(&compareDim, "dim", def.Dimension, "Search space dimension")
	compareCmd.Flags().IntVar(&compareIters, "iters", def.Iterations, "Iterations per run")
	compareCmd.Flags().IntVar(&comparePop, "pop", def.Particles, "Population size (particles / mayflies)")
	compareCmd.Flags().Int64Var(&compareSeed, "seed", def.Seed, "Seed of the first run")
	compareCmd.Flags().IntVar(&compareRuns, "runs", 5, "Runs per optimizer, with consecutive seeds")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 4, "Concurrent runs")

	rootCmd.AddCommand(compareCmd)
}

// compareRow is the outcome of one optimizer run.
type compareRow struct {
	Optimizer string
	Seed      int64
	Position  []float64
	Value     float64
	Elapsed   time.Duration
}

// compareSummary aggregates the runs of one optimizer.
type compareSummary struct {
	Optimizer string
	Runs      int
	Best      float64
	Mean      float64
	Worst     float64
	// Distance from the best run to the nearest known optimum, NaN if unknown.
	Distance float64
	Elapsed  time.Duration
}

func runCompare(cmd *cobra.Command, args []string) error {
	fn, err := objective.Lookup(compareFunction)
	if err != nil {
		return err
	}
	if err := objective.CheckDim(fn, compareDim); err != nil {
		return err
	}
	if compareRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", compareRuns)
	}

	rows, err := compareOptimizers(fn, compareDim, compareIters, comparePop, compareSeed, compareRuns, compareWorkers)
	if err != nil {
		return err
	}

	return writeComparison(cmd.OutOrStdout(), fn, summarizeComparison(fn, rows))
}

// compareOptimizers runs PSO (with the default coefficients) and mayfly for
// runs consecutive seeds each.
func compareOptimizers(fn objective.Func, dim, iters, popSize int, seed int64, runs, workers int) ([]compareRow, error) {
	lo, hi := fn.Bounds()
	lower := []float64{lo}
	upper := []float64{hi}
	def := pso.DefaultConfig()

	if workers < 1 {
		workers = 1
	}
	p := pool.NewWithResults[compareRow]().WithErrors().WithMaxGoroutines(workers)

	for i := 0; i < runs; i++ {
		s := seed + int64(i)
		optimizers := []opt.Optimizer{
			opt.NewPSO(iters, popSize, def.C1, def.C2, s),
			opt.NewMayfly(iters, popSize, s),
		}
		for _, o := range optimizers {
			o := o
			p.Go(func() (compareRow, error) {
				start := time.Now()
				pos, val, err := o.Run(fn.Eval, lower, upper, dim)
				if err != nil {
					return compareRow{}, fmt.Errorf("%s (seed %d): %w", o.Name(), s, err)
				}
				return compareRow{
					Optimizer: o.Name(),
					Seed:      s,
					Position:  pos,
					Value:     val,
					Elapsed:   time.Since(start),
				}, nil
			})
		}
	}

	rows, err := p.Wait()
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Optimizer != rows[j].Optimizer {
			return rows[i].Optimizer > rows[j].Optimizer
		}
		return rows[i].Seed < rows[j].Seed
	})
	return rows, nil
}

func summarizeComparison(fn objective.Func, rows []compareRow) []compareSummary {
	byName := map[string][]compareRow{}
	var order []string
	for _, r := range rows {
		if _, ok := byName[r.Optimizer]; !ok {
			order = append(order, r.Optimizer)
		}
		byName[r.Optimizer] = append(byName[r.Optimizer], r)
	}

	summaries := make([]compareSummary, 0, len(order))
	for _, name := range order {
		group := byName[name]
		values := make([]float64, len(group))
		var elapsed time.Duration
		for i, r := range group {
			values[i] = r.Value
			elapsed += r.Elapsed
		}
		best := floats.MinIdx(values)

		summaries = append(summaries, compareSummary{
			Optimizer: name,
			Runs:      len(group),
			Best:      values[best],
			Mean:      floats.Sum(values) / float64(len(values)),
			Worst:     floats.Max(values),
			Distance:  nearestOptimum(fn, group[best].Position),
			Elapsed:   elapsed,
		})
	}
	return summaries
}

// nearestOptimum returns the Euclidean distance from pos to the closest known
// optimum of fn with matching dimension, or NaN.
func nearestOptimum(fn objective.Func, pos []float64) float64 {
	dist := math.NaN()
	for _, o := range fn.Optima() {
		if len(o.Pos) != len(pos) {
			continue
		}
		d := floats.Distance(pos, o.Pos, 2)
		if math.IsNaN(dist) || d < dist {
			dist = d
		}
	}
	return dist
}

func writeComparison(out io.Writer, fn objective.Func, summaries []compareSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Function: %s\n\n", fn.Name())
	fmt.Fprintln(w, "OPTIMIZER\tRUNS\tBEST\tMEAN\tWORST\tDIST TO OPTIMUM\tTIME")
	for _, s := range summaries {
		dist := "-"
		if !math.IsNaN(s.Distance) {
			dist = fmt.Sprintf("%.6f", s.Distance)
		}
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%.6g\t%s\t%s\n",
			s.Optimizer, s.Runs, s.Best, s.Mean, s.Worst, dist, s.Elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}
