// Package ui renders the HTML pages served by the job server.
package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// JobListItem is the view model for one row of the job list.
type JobListItem struct {
	ID         string
	State      string
	Function   string
	Dimension  int
	Particles  int
	Iterations int
	MaxIters   int
	BestValue  float64
	StartTime  time.Time
	EndTime    *time.Time
	Error      string
}

// Elapsed returns the job's running time, up to now for unfinished jobs.
func (j JobListItem) Elapsed() time.Duration {
	if j.EndTime != nil {
		return j.EndTime.Sub(j.StartTime)
	}
	return time.Since(j.StartTime)
}

// Progress returns completed iterations as a percentage.
func (j JobListItem) Progress() int {
	if j.MaxIters <= 0 {
		return 0
	}
	return j.Iterations * 100 / j.MaxIters
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PSO Swarm Jobs</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 4px 10px; border-bottom: 1px solid #ddd; text-align: left; }
.state-completed { color: #2e7d32; }
.state-failed { color: #c62828; }
.state-running { color: #1565c0; }
</style>
</head>
<body>
<h1>PSO Swarm Jobs</h1>
`

// JobList renders the job overview page.
func JobList(items []JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		if len(items) == 0 {
			_, err := io.WriteString(w, "<p>No jobs yet. POST a config to <code>/api/v1/jobs</code> to start one.</p>\n</body>\n</html>\n")
			return err
		}

		if _, err := io.WriteString(w, "<table>\n<tr><th>ID</th><th>State</th><th>Function</th><th>Dim</th><th>Particles</th><th>Progress</th><th>Best Value</th><th>Elapsed</th><th></th></tr>\n"); err != nil {
			return err
		}

		for _, item := range items {
			if err := jobRow(item).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</table>\n</body>\n</html>\n")
		return err
	})
}

func jobRow(item JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := "/api/v1/jobs/" + item.ID

		status := templ.EscapeString(item.State)
		if item.Error != "" {
			status = fmt.Sprintf(`%s <span title="%s">(!)</span>`, status, templ.EscapeString(item.Error))
		}

		_, err := fmt.Fprintf(w,
			`<tr><td><a href="%s">%s</a></td><td class="state-%s">%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d/%d (%d%%)</td><td>%s</td><td>%s</td><td><a href="%s/trace">trace</a> <a href="%s/stream">stream</a></td></tr>`+"\n",
			templ.EscapeString(base), templ.EscapeString(shortID(item.ID)),
			templ.EscapeString(item.State), status,
			templ.EscapeString(item.Function),
			item.Dimension, item.Particles,
			item.Iterations, item.MaxIters, item.Progress(),
			strconv.FormatFloat(item.BestValue, 'g', 6, 64),
			item.Elapsed().Round(time.Millisecond),
			templ.EscapeString(base), templ.EscapeString(base),
		)
		return err
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
