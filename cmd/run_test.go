package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/psoswarm/internal/pso"
	"github.com/cwbudde/psoswarm/internal/report"
	"github.com/cwbudde/psoswarm/internal/store"
)

func smallRunOptions(t *testing.T) runOptions {
	t.Helper()
	cfg := pso.DefaultConfig()
	cfg.Particles = 4
	cfg.Iterations = 3

	return runOptions{
		Function: "valley",
		Config:   cfg,
		Table:    true,
		Style:    report.DefaultStyle(),
		RunID:    "test-run",
	}
}

func TestExecuteRun_TableOnly(t *testing.T) {
	opts := smallRunOptions(t)

	var buf bytes.Buffer
	record, err := executeRun(context.Background(), opts, &buf)
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	if record.RunID != "test-run" {
		t.Errorf("Expected run id test-run, got %s", record.RunID)
	}
	if record.Iterations != 3 {
		t.Errorf("Expected 3 iterations, got %d", record.Iterations)
	}
	if len(record.BestPosition) != 2 {
		t.Errorf("Expected 2-dimensional best position, got %d", len(record.BestPosition))
	}
	if record.Artifacts != nil {
		t.Errorf("Expected no artifacts, got %v", record.Artifacts)
	}

	out := buf.String()
	if !strings.Contains(out, "Best Value:") {
		t.Errorf("Expected result summary in output, got:\n%s", out)
	}
}

func TestExecuteRun_Deterministic(t *testing.T) {
	opts := smallRunOptions(t)
	opts.Table = false

	r1, err := executeRun(context.Background(), opts, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	r2, err := executeRun(context.Background(), opts, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if r1.BestValue != r2.BestValue {
		t.Errorf("Expected identical best values for the same seed, got %g and %g", r1.BestValue, r2.BestValue)
	}
}

func TestExecuteRun_AllArtifacts(t *testing.T) {
	dir := t.TempDir()
	fs, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	opts := smallRunOptions(t)
	opts.Table = false
	opts.OutDir = filepath.Join(dir, "plots")
	opts.GIF = true
	opts.XLSXPath = filepath.Join(dir, "log.xlsx")
	opts.DataDir = dir
	opts.Store = fs
	opts.TraceToDir = true

	record, err := executeRun(context.Background(), opts, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	for _, kind := range []string{"trace", "frames", "gif", "xlsx"} {
		if _, ok := record.Artifacts[kind]; !ok {
			t.Errorf("Expected %s artifact, got %v", kind, record.Artifacts)
		}
	}
	for _, path := range []string{
		filepath.Join(opts.OutDir, report.FrameName(1, 3)),
		filepath.Join(opts.OutDir, report.FrameName(3, 3)),
		filepath.Join(opts.OutDir, "pso_animation.gif"),
		opts.XLSXPath,
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}

	loaded, err := fs.LoadRun("test-run")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.BestValue != record.BestValue {
		t.Errorf("Expected stored best value %g, got %g", record.BestValue, loaded.BestValue)
	}

	logs, err := store.LoadTrace(dir, "test-run")
	if err != nil {
		t.Fatalf("LoadTrace failed: %v", err)
	}
	if len(logs) != 3 {
		t.Errorf("Expected 3 trace entries, got %d", len(logs))
	}
}

func TestExecuteRun_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*runOptions)
	}{
		{"unknown function", func(o *runOptions) { o.Function = "nope" }},
		{"wrong dimension", func(o *runOptions) { o.Config.Dimension = 3 }},
		{"no particles", func(o *runOptions) { o.Config.Particles = 0 }},
		{"inverted bounds", func(o *runOptions) { o.Config.Lower, o.Config.Upper = 5, -5 }},
		{"bad marker", func(o *runOptions) {
			o.OutDir = t.TempDir()
			o.Style.BestMarker = "star"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := smallRunOptions(t)
			tt.modify(&opts)

			if _, err := executeRun(context.Background(), opts, &bytes.Buffer{}); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	fs, err := openStore("fs", dir)
	if err != nil {
		t.Fatalf("fs backend failed: %v", err)
	}
	if _, ok := fs.(*store.FSStore); !ok {
		t.Errorf("Expected *store.FSStore, got %T", fs)
	}

	bs, err := openStore("badger", dir)
	if err != nil {
		t.Fatalf("badger backend failed: %v", err)
	}
	if _, ok := bs.(*store.BadgerStore); !ok {
		t.Errorf("Expected *store.BadgerStore, got %T", bs)
	}
	if err := bs.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	none, err := openStore("none", dir)
	if err != nil || none != nil {
		t.Errorf("Expected nil store for none, got %v, %v", none, err)
	}

	if _, err := openStore("redis", dir); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
