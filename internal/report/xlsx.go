package report

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/cwbudde/psoswarm/internal/pso"
)

const (
	summarySheet   = "Summary"
	particlesSheet = "Particles"
)

// ExportXLSX writes the iteration log to a workbook with a Summary sheet
// (one row per iteration) and a Particles sheet (one row per particle per
// iteration).
func ExportXLSX(logs []pso.IterationRecord, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(particlesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := setRow(f, summarySheet, 1, []interface{}{
		"Iteration", "gBest Value", "gBest Position", "Mean Distance", "Max Distance", "Mean Speed",
	}); err != nil {
		return err
	}
	if err := setRow(f, particlesSheet, 1, []interface{}{
		"Iteration", "Particle", "Position", "Velocity", "PBest",
	}); err != nil {
		return err
	}

	prow := 2
	for i, rec := range logs {
		st := Summarize(rec)
		if err := setRow(f, summarySheet, i+2, []interface{}{
			rec.Iteration,
			rec.GlobalBest.Value,
			FormatVec(rec.GlobalBest.Position),
			st.MeanDistance,
			st.MaxDistance,
			st.MeanSpeed,
		}); err != nil {
			return err
		}

		for j, snap := range rec.Particles {
			if err := setRow(f, particlesSheet, prow, []interface{}{
				rec.Iteration,
				j + 1,
				FormatVec(snap.Position),
				FormatVec(snap.Velocity),
				FormatVec(snap.PersonalBest),
			}); err != nil {
				return err
			}
			prow++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	slog.Info("Saved workbook", "path", path, "iterations", len(logs))
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
