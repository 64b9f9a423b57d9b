package report

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/cwbudde/psoswarm/internal/pso"
)

// PlotIteration builds a scatter plot of the particle positions in rec with
// the global best marked.
func PlotIteration(rec pso.IterationRecord, style Style) (*plot.Plot, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("PSO Iteration %d", rec.Iteration)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	pts := make(plotter.XYs, len(rec.Particles))
	for i, snap := range rec.Particles {
		pts[i].X = coord(snap.Position, style.XDim)
		pts[i].Y = coord(snap.Position, style.YDim)
	}

	particles, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build particle scatter: %w", err)
	}
	particles.GlyphStyle.Color = style.ParticleColor
	particles.GlyphStyle.Radius = style.ParticleRadius
	particles.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(particles)
	p.Legend.Add(fmt.Sprintf("Particles - Iteration %d", rec.Iteration), particles)

	if len(rec.GlobalBest.Position) > 0 {
		best, err := plotter.NewScatter(plotter.XYs{{
			X: coord(rec.GlobalBest.Position, style.XDim),
			Y: coord(rec.GlobalBest.Position, style.YDim),
		}})
		if err != nil {
			return nil, fmt.Errorf("failed to build global best marker: %w", err)
		}
		shape, _ := glyph(style.BestMarker)
		best.GlyphStyle.Color = style.BestColor
		best.GlyphStyle.Radius = style.BestRadius
		best.GlyphStyle.Shape = shape

		p.Add(best)
		p.Legend.Add("Global Best", best)
	}

	if !style.AutoRange {
		p.X.Min, p.X.Max = style.Min, style.Max
		p.Y.Min, p.Y.Max = style.Min, style.Max
	}
	p.Legend.Top = true

	return p, nil
}

// RenderIteration draws rec into an in-memory image.
func RenderIteration(rec pso.IterationRecord, style Style) (image.Image, error) {
	p, err := PlotIteration(rec, style)
	if err != nil {
		return nil, err
	}
	c := vgimg.New(style.Width, style.Height)
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// WriteIterationPNG renders rec as PNG to w.
func WriteIterationPNG(w io.Writer, rec pso.IterationRecord, style Style) error {
	img, err := RenderIteration(rec, style)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}

// FrameName returns the file name of the frame for a 1-indexed iteration,
// zero-padded to the digit count of total.
func FrameName(iteration, total int) string {
	digits := len(strconv.Itoa(total))
	return fmt.Sprintf("iteration_%0*d.png", digits, iteration)
}

// RenderFrames writes one PNG per record into dir and returns the paths in
// iteration order. Stale iteration_*.png files in dir are removed first;
// other files are left alone. Frames are rendered concurrently.
func RenderFrames(ctx context.Context, logs []pso.IterationRecord, dir string, style Style) ([]string, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	stale, err := filepath.Glob(filepath.Join(dir, "iteration_*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan frame directory: %w", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale frame: %w", err)
		}
	}

	workers := style.Workers
	if workers <= 0 {
		workers = 1
	}

	paths := make([]string, len(logs))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers).WithCancelOnError()
	for i, rec := range logs {
		path := filepath.Join(dir, FrameName(rec.Iteration, len(logs)))
		paths[i] = path
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFrame(path, rec, style)
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Rendered frames", "dir", dir, "count", len(paths))
	return paths, nil
}

func writeFrame(path string, rec pso.IterationRecord, style Style) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := WriteIterationPNG(f, rec, style); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func coord(v []float64, dim int) float64 {
	if dim < len(v) {
		return v[dim]
	}
	return 0
}
