package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/psoswarm/internal/report"
	"github.com/cwbudde/psoswarm/internal/store"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
	showTable     bool
	showXLSX      string
	showFramesDir string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored swarm runs",
	Long:  `List, inspect and clean the run records and traces kept under the data directory.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored runs",
	Long:  `Display all runs with function, timestamp, iterations, best value and on-disk size.`,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored run",
	Long: `Prints a run's record. With --table, --xlsx or --frames the iteration log
is read back from the run's trace and rendered again.`,
	Args: cobra.ExactArgs(1),
	RunE: runShowRun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old runs based on retention policy.
You can keep only the newest N runs or delete runs older than N days.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run records and traces")
	runsCmd.PersistentFlags().StringVar(&storeBackend, "store", "fs", "Run record backend: fs or badger")

	showRunCmd.Flags().BoolVar(&showTable, "table", false, "Print the iteration table from the trace")
	showRunCmd.Flags().StringVar(&showXLSX, "xlsx", "", "Export the trace to this .xlsx file")
	showRunCmd.Flags().StringVar(&showFramesDir, "frames", "", "Render the trace as frames plus a GIF into this directory")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

// openRunStore opens the configured store and refuses "none", which has
// nothing to manage.
func openRunStore() (store.Store, error) {
	runStore, err := openStore(storeBackend, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	if runStore == nil {
		return nil, fmt.Errorf("no run store configured")
	}
	return runStore, nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := openRunStore()
	if err != nil {
		return err
	}
	defer runStore.Close()

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	return writeRunList(cmd.OutOrStdout(), infos, dataDir, time.Now())
}

func writeRunList(out io.Writer, infos []store.RunInfo, baseDir string, now time.Time) error {
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tFUNCTION\tCREATED\tITERATIONS\tPARTICLES\tBEST VALUE\tSIZE")
	fmt.Fprintln(w, "------\t--------\t-------\t----------\t---------\t----------\t----")

	for _, info := range infos {
		sizeStr := "-"
		if size, err := getDirSize(store.RunDir(baseDir, info.RunID)); err == nil {
			sizeStr = humanize.Bytes(uint64(size))
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.6g\t%s\n",
			shortRunID(info.RunID),
			info.Function,
			humanize.RelTime(info.Timestamp, now, "ago", "from now"),
			info.Iterations,
			info.Particles,
			info.BestValue,
			sizeStr,
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal runs: %s\n", humanize.Comma(int64(len(infos))))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, err := openRunStore()
	if err != nil {
		return err
	}
	defer runStore.Close()

	record, err := runStore.LoadRun(args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run not found: %s", args[0])
	} else if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeRunRecord(out, record); err != nil {
		return err
	}

	if !showTable && showXLSX == "" && showFramesDir == "" {
		return nil
	}

	logs, err := store.LoadTrace(dataDir, record.RunID)
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}

	if showTable {
		fmt.Fprintln(out)
		if err := report.WriteIterationTable(out, logs); err != nil {
			return err
		}
	}
	if showXLSX != "" {
		if err := report.ExportXLSX(logs, showXLSX); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", showXLSX)
	}
	if showFramesDir != "" {
		style := report.DefaultStyle()
		style.Min, style.Max = record.Config.Lower, record.Config.Upper

		frames, err := report.RenderFrames(cmd.Context(), logs, showFramesDir, style)
		if err != nil {
			return err
		}
		gifPath := filepath.Join(showFramesDir, "pso_animation.gif")
		if err := report.AssembleGIF(frames, gifPath, style); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d frames and %s\n", len(frames), gifPath)
	}

	return nil
}

func writeRunRecord(out io.Writer, r *store.RunRecord) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Run:\t%s\n", r.RunID)
	fmt.Fprintf(w, "Function:\t%s\n", r.Function)
	fmt.Fprintf(w, "Created:\t%s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Elapsed:\t%s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Dimension:\t%d\n", r.Config.Dimension)
	fmt.Fprintf(w, "Bounds:\t[%g, %g]\n", r.Config.Lower, r.Config.Upper)
	fmt.Fprintf(w, "Particles:\t%d\n", r.Config.Particles)
	fmt.Fprintf(w, "Iterations:\t%d/%d\n", r.Iterations, r.Config.Iterations)
	fmt.Fprintf(w, "c1/c2:\t%g/%g\n", r.Config.C1, r.Config.C2)
	fmt.Fprintf(w, "Seed:\t%d\n", r.Config.Seed)
	fmt.Fprintf(w, "Best Position:\t%s\n", report.FormatVec(r.BestPosition))
	fmt.Fprintf(w, "Best Value:\t%g\n", r.BestValue)

	kinds := make([]string, 0, len(r.Artifacts))
	for kind := range r.Artifacts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "Artifact %s:\t%s\n", kind, r.Artifacts[kind])
	}
	return w.Flush()
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := openRunStore()
	if err != nil {
		return err
	}
	defer runStore.Close()

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Println("No runs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (%s, %s)\n",
			shortRunID(info.RunID),
			info.Function,
			humanize.Time(info.Timestamp),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := deleteRun(runStore, dataDir, info.RunID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.RunID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.RunID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// deleteRun removes the record and whatever the filesystem still holds for
// the run (trace, rendered frames).
func deleteRun(runStore store.Store, baseDir, runID string) error {
	if err := runStore.DeleteRun(runID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := os.RemoveAll(store.RunDir(baseDir, runID)); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}
	return nil
}

// selectRunsForDeletion determines which runs should be deleted based on
// retention policy. A run matching both rules is listed once.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int, now time.Time) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.RunID] {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	return toDelete
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

func shortRunID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}
