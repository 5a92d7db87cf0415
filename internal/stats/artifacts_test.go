package stats

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"rotorbreak/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:           runID,
			Method:          model.MethodHillClimb,
			Reflector:       "B",
			CatalogSize:     5,
			MaxIterations:   2000,
			StagnationLimit: 100,
			Seed:            7,
			CiphertextLen:   96,
		},
		FitnessHistory: []float64{0.41, 0.52, 0.63},
		Result: model.AttackRun{
			ID:        runID,
			Method:    model.MethodHillClimb,
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Best: model.MachineConfig{
				Rotors:    [3]string{"II", "V", "I"},
				Positions: [3]string{"F", "W", "C"},
				Reflector: "B",
			},
			Fitness:   0.63,
			Plaintext: "WEATHERREPORT",
			Evaluated: 2000,
			Seed:      7,
		},
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	runID := "run-123"
	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts(runID))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, file := range []string{"config.json", "fitness_history.json", "result.json", "fitness_series.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	exportedDir, err := ExportRunArtifacts(baseDir, runID, outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}
	for _, file := range []string{"config.json", "fitness_history.json", "result.json", "fitness_series.csv"} {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestReadRunConfigAndResult(t *testing.T) {
	baseDir := t.TempDir()
	runID := "run-read"
	artifacts := sampleArtifacts(runID)
	if _, err := WriteRunArtifacts(baseDir, artifacts); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	cfg, ok, err := ReadRunConfig(baseDir, runID)
	if err != nil || !ok {
		t.Fatalf("read config: ok=%t err=%v", ok, err)
	}
	if cfg.Method != model.MethodHillClimb || cfg.Seed != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	result, ok, err := ReadRunResult(baseDir, runID)
	if err != nil || !ok {
		t.Fatalf("read result: ok=%t err=%v", ok, err)
	}
	if result.Best.Rotors != artifacts.Result.Best.Rotors {
		t.Fatalf("unexpected result: %+v", result)
	}

	if _, ok, err := ReadRunConfig(baseDir, "run-missing"); err != nil || ok {
		t.Fatalf("missing config: ok=%t err=%v", ok, err)
	}
}

func TestFitnessSeriesRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	runID := "run-series"
	artifacts := sampleArtifacts(runID)
	if _, err := WriteRunArtifacts(baseDir, artifacts); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	series, ok, err := ReadFitnessSeries(baseDir, runID)
	if err != nil || !ok {
		t.Fatalf("read series: ok=%t err=%v", ok, err)
	}
	if !reflect.DeepEqual(series, artifacts.FitnessHistory) {
		t.Fatalf("series mismatch: got=%v want=%v", series, artifacts.FitnessHistory)
	}

	if _, ok, err := ReadFitnessSeries(baseDir, "run-missing"); err != nil || ok {
		t.Fatalf("missing series: ok=%t err=%v", ok, err)
	}
}

func TestRunIndexAppendListAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-1",
		Method:       model.MethodHillClimb,
		Fitness:      0.80,
		Evaluated:    2000,
		Seed:         1,
		CreatedAtUTC: "2026-03-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-1: %v", err)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-2",
		Method:       model.MethodExhaustive,
		Fitness:      0.82,
		Evaluated:    1054560,
		CreatedAtUTC: "2026-03-01T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-2: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-2" || entries[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %+v", entries)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-1",
		Method:       model.MethodHillClimb,
		Fitness:      0.90,
		Evaluated:    4000,
		Seed:         1,
		CreatedAtUTC: "2026-03-01T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("upsert run-1: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list after upsert: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after upsert, got %d", len(entries))
	}
	if entries[0].RunID != "run-1" || entries[0].Fitness != 0.90 {
		t.Fatalf("unexpected upsert result: %+v", entries[0])
	}
}

func TestRunIndexEqualTimestampPrefersLaterAppend(t *testing.T) {
	baseDir := t.TempDir()
	ts := "2026-03-01T12:00:00Z"

	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-a", CreatedAtUTC: ts}); err != nil {
		t.Fatalf("append run-a: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-b", CreatedAtUTC: ts}); err != nil {
		t.Fatalf("append run-b: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-b" {
		t.Fatalf("expected latest appended run-b first, got %+v", entries)
	}
}

func TestListRunIndexMissingFileIsEmpty(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %+v", entries)
	}
}
