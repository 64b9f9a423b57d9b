package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/psoswarm/internal/objective"
	"github.com/cwbudde/psoswarm/internal/pso"
	"github.com/cwbudde/psoswarm/internal/report"
	"github.com/cwbudde/psoswarm/internal/store"
)

var (
	functionName  string
	dim           int
	lower         float64
	upper         float64
	particles     int
	iters         int
	c1            float64
	c2            float64
	seed          int64
	outDir        string
	makeGIF       bool
	printTable    bool
	xlsxPath      string
	frameDelay    time.Duration
	renderWorkers int
	bestMarker    string
	particleColor string
	autoRange     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a particle swarm on a benchmark function",
	Long: `Runs the swarm on the selected function, prints the per-iteration table,
renders one plot per iteration plus an animated GIF, and stores the run record
and its trace under the data directory.`,
	RunE: runSwarmCmd,
}

func init() {
	def := pso.DefaultConfig()
	style := report.DefaultStyle()

	runCmd.Flags().StringVar(&functionName, "function", "valley", "Objective function (see 'psoswarm functions')")
	runCmd.Flags().IntVar(&dim, "dim", def.Dimension, "Search space dimension")
	runCmd.Flags().Float64Var(&lower, "lower", def.Lower, "Lower bound (defaults to the function's bound)")
	runCmd.Flags().Float64Var(&upper, "upper", def.Upper, "Upper bound (defaults to the function's bound)")
	runCmd.Flags().IntVar(&particles, "particles", def.Particles, "Number of particles")
	runCmd.Flags().IntVar(&iters, "iters", def.Iterations, "Number of iterations")
	runCmd.Flags().Float64Var(&c1, "c1", def.C1, "Cognitive coefficient")
	runCmd.Flags().Float64Var(&c2, "c2", def.C2, "Social coefficient")
	runCmd.Flags().Int64Var(&seed, "seed", def.Seed, "Random seed")

	runCmd.Flags().StringVar(&outDir, "out-dir", "pso_plots", "Directory for iteration plots (empty disables plotting)")
	runCmd.Flags().BoolVar(&makeGIF, "gif", true, "Assemble the plots into pso_animation.gif")
	runCmd.Flags().BoolVar(&printTable, "table", true, "Print the per-iteration particle table")
	runCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Export the iteration log to this .xlsx file")
	runCmd.Flags().DurationVar(&frameDelay, "frame-delay", style.FrameDelay, "Delay between GIF frames")
	runCmd.Flags().IntVar(&renderWorkers, "workers", style.Workers, "Concurrent frame renderers")
	runCmd.Flags().StringVar(&bestMarker, "best-marker", style.BestMarker, "Global best marker: circle, cross, plus, ring, square, triangle")
	runCmd.Flags().StringVar(&particleColor, "particle-color", "#1e90ff", "Particle color as #rrggbb")
	runCmd.Flags().BoolVar(&autoRange, "auto-range", false, "Fit the axes to the particles instead of the bounds")

	addStoreFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// runOptions is everything a run needs, decoupled from the flag variables.
type runOptions struct {
	Function   string
	Config     pso.Config
	OutDir     string
	GIF        bool
	Table      bool
	XLSXPath   string
	Style      report.Style
	DataDir    string
	Store      store.Store
	RunID      string
	TraceToDir bool
}

func runSwarmCmd(cmd *cobra.Command, args []string) error {
	fn, err := objective.Lookup(functionName)
	if err != nil {
		return err
	}

	cfg := pso.Config{
		Dimension:  dim,
		Lower:      lower,
		Upper:      upper,
		Particles:  particles,
		Iterations: iters,
		C1:         c1,
		C2:         c2,
		Seed:       seed,
	}
	lo, hi := fn.Bounds()
	if !cmd.Flags().Changed("lower") {
		cfg.Lower = lo
	}
	if !cmd.Flags().Changed("upper") {
		cfg.Upper = hi
	}

	style := report.DefaultStyle()
	style.Min, style.Max = cfg.Lower, cfg.Upper
	style.AutoRange = autoRange
	style.FrameDelay = frameDelay
	style.Workers = renderWorkers
	style.BestMarker = bestMarker
	if style.ParticleColor, err = report.ParseColor(particleColor); err != nil {
		return err
	}

	runStore, err := openStore(storeBackend, dataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	if runStore != nil {
		defer runStore.Close()
	}

	_, err = executeRun(cmd.Context(), runOptions{
		Function:   fn.Name(),
		Config:     cfg,
		OutDir:     outDir,
		GIF:        makeGIF,
		Table:      printTable,
		XLSXPath:   xlsxPath,
		Style:      style,
		DataDir:    dataDir,
		Store:      runStore,
		RunID:      uuid.New().String(),
		TraceToDir: runStore != nil,
	}, cmd.OutOrStdout())
	return err
}

// executeRun runs the swarm and produces every requested artifact. The
// returned record is the one saved to the store (if any).
func executeRun(ctx context.Context, opts runOptions, out io.Writer) (*store.RunRecord, error) {
	fn, err := objective.Lookup(opts.Function)
	if err != nil {
		return nil, err
	}
	if err := objective.CheckDim(fn, opts.Config.Dimension); err != nil {
		return nil, err
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.OutDir != "" {
		if err := opts.Style.Validate(); err != nil {
			return nil, fmt.Errorf("invalid plot style: %w", err)
		}
	}

	swarm, err := pso.New(opts.Config, fn.Eval)
	if err != nil {
		return nil, fmt.Errorf("failed to create swarm: %w", err)
	}

	var trace *store.TraceWriter
	if opts.TraceToDir {
		trace, err = store.NewTraceWriter(opts.DataDir, opts.RunID)
		if err != nil {
			return nil, err
		}
		defer trace.Close()

		swarm.OnIteration(func(rec pso.IterationRecord) {
			if err := trace.Write(rec); err != nil {
				slog.Warn("Failed to write trace entry", "run_id", opts.RunID, "iteration", rec.Iteration, "error", err)
			}
		})
	}

	slog.Info("Starting swarm",
		"run_id", opts.RunID,
		"function", opts.Function,
		"dim", opts.Config.Dimension,
		"particles", opts.Config.Particles,
		"iters", opts.Config.Iterations,
	)

	start := time.Now()
	result, err := swarm.Run()
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("swarm run failed: %w", err)
	}

	logs := swarm.Logs()
	slog.Info("Swarm finished",
		"run_id", opts.RunID,
		"elapsed", elapsed,
		"best_value", result.Value,
		"improvement", report.Improvement(logs),
	)

	artifacts := map[string]string{}
	if trace != nil {
		artifacts["trace"] = trace.Path()
	}

	if opts.Table {
		if err := report.WriteIterationTable(out, logs); err != nil {
			return nil, fmt.Errorf("failed to write iteration table: %w", err)
		}
	}

	if opts.OutDir != "" {
		frames, err := report.RenderFrames(ctx, logs, opts.OutDir, opts.Style)
		if err != nil {
			return nil, fmt.Errorf("failed to render frames: %w", err)
		}
		artifacts["frames"] = opts.OutDir

		if opts.GIF {
			gifPath := filepath.Join(opts.OutDir, "pso_animation.gif")
			if err := report.AssembleGIF(frames, gifPath, opts.Style); err != nil {
				return nil, fmt.Errorf("failed to assemble GIF: %w", err)
			}
			artifacts["gif"] = gifPath
		}
	}

	if opts.XLSXPath != "" {
		if err := report.ExportXLSX(logs, opts.XLSXPath); err != nil {
			return nil, err
		}
		artifacts["xlsx"] = opts.XLSXPath
	}

	record := store.NewRunRecord(opts.RunID, opts.Function, opts.Config, result, elapsed)
	if len(artifacts) > 0 {
		record.Artifacts = artifacts
	}
	if opts.Store != nil {
		if err := opts.Store.SaveRun(record); err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
		slog.Info("Run saved", "run_id", opts.RunID)
	}

	if err := report.WriteResult(out, result); err != nil {
		return nil, err
	}
	return record, nil
}
