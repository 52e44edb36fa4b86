package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"toroid/internal/config"
	"toroid/internal/storage"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("output = %q, want version %q", out, version)
	}
}

func TestSimulatePatterns(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"block", "convergence: constant(4) at step 4"},
		{"empty", "convergence: constant(0) at step 0"},
		{"beacon", "convergence: dynamic"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			out, err := run(t, "simulate", "--pattern", tt.pattern, "--set", "max_steps=40")
			if err != nil {
				t.Fatalf("simulate: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			if !strings.Contains(out, "state: converged after 40 steps") {
				t.Errorf("output = %q, want full budget run", out)
			}
		})
	}
}

func TestSimulateBreakAndReclassify(t *testing.T) {
	out, err := run(t, "simulate", "--pattern", "block",
		"--set", "break_on_convergence=true", "--reclassify", "--frames")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	for _, want := range []string{
		"state: converged after 5 steps",
		"replayed: constant(4) at step 4",
		"final window: constant(4) at step 4",
		"step 0  population 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateErrors(t *testing.T) {
	if _, err := run(t, "simulate", "--pattern", "nope"); err == nil {
		t.Error("expected error for unknown pattern")
	}
	if _, err := run(t, "simulate", "--set", "window=0"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
	if _, err := run(t, "simulate", "--set", "bogus=1"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestBatchThenAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.arrow")
	out, err := run(t, "batch", "--out", path, "--set", "runs=30", "--set", "max_steps=60")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !strings.Contains(out, "runs: 30") || !strings.Contains(out, "wrote 30 candidates") {
		t.Errorf("batch output = %q", out)
	}

	out, err = run(t, "analyze", path, "--top", "0")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "30 candidate states") || !strings.Contains(out, "distinct attractors") {
		t.Errorf("analyze output = %q", out)
	}
}

func TestSimulateWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block.png")
	out, err := run(t, "simulate", "--pattern", "block", "--set", "max_steps=10", "--png", path, "--scale", "4")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("output = %q", out)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 24 {
		t.Fatalf("bounds = %v, want 24x24", b)
	}
}

func TestAnalyzeSaveLeavesBatchSettingsZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.arrow")
	db := filepath.Join(dir, "surveys.db")
	if _, err := run(t, "batch", "--out", path, "--set", "runs=20", "--set", "max_steps=60"); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if _, err := run(t, "analyze", path, "--save",
		"--set", "store_backend=sqlite", "--set", "store_path="+db, "--set", "seed=99"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	s, err := storage.NewSQLiteStore(db)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	list, err := s.Surveys(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("surveys = %v, %v", list, err)
	}
	sv := list[0]
	if sv.Runs != 20 || sv.Width != 6 || sv.Height != 6 {
		t.Errorf("survey shape = %+v", sv)
	}
	if sv.Steps != 0 || sv.Window != 0 || sv.Seed != 0 || sv.AliveProbability != 0 {
		t.Errorf("batch settings should be zero, got %+v", sv)
	}
}

func TestAnalyzeRejectsMissingFile(t *testing.T) {
	if _, err := run(t, "analyze", filepath.Join(t.TempDir(), "missing.arrow")); err == nil {
		t.Error("expected error")
	}
}

func TestSurveySaveAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "surveys.db")
	sets := []string{"--set", "runs=30", "--set", "max_steps=60", "--set", "store_backend=sqlite", "--set", "store_path=" + db}

	out, err := run(t, append([]string{"survey", "--save"}, sets...)...)
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	_, after, ok := strings.Cut(out, "saved survey ")
	if !ok {
		t.Fatalf("survey output = %q", out)
	}
	id := strings.Fields(after)[0]

	out, err = run(t, append([]string{"list"}, sets...)...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("list output = %q, want %s", out, id)
	}

	out, err = run(t, append([]string{"list", id}, sets...)...)
	if err != nil {
		t.Fatalf("list id: %v", err)
	}
	if !strings.Contains(out, "#1  population") {
		t.Errorf("attractor output = %q", out)
	}
}

func TestSweep(t *testing.T) {
	out, err := run(t, "sweep", "--sizes", "4x4,5x5", "--probabilities", "0.3",
		"--parallel", "2", "--top", "0", "--set", "runs=10", "--set", "max_steps=40")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(out, "Sweeping 2 scenarios") || !strings.Contains(out, " 2) ") {
		t.Errorf("sweep output = %q", out)
	}
}

func TestConfigOutput(t *testing.T) {
	out, err := run(t, "config", "--set", "width=9")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "width:") || !strings.Contains(out, "9") {
		t.Errorf("config output = %q", out)
	}

	out, err = run(t, "config", "--yaml", "--set", "seed=42")
	if err != nil {
		t.Fatalf("config --yaml: %v", err)
	}
	if !strings.Contains(out, "seed: 42") {
		t.Errorf("yaml output = %q", out)
	}

	out, err = run(t, "config", "--get", "window", "--set", "window=12")
	if err != nil {
		t.Fatalf("config --get: %v", err)
	}
	if strings.TrimSpace(out) != "12" {
		t.Errorf("get output = %q, want 12", out)
	}
	if _, err := run(t, "config", "--get", "nope"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}

	out, err = run(t, "config", "--keys")
	if err != nil {
		t.Fatalf("config --keys: %v", err)
	}
	if !strings.Contains(out, "TOROID_MAX_STEPS") {
		t.Errorf("keys output = %q", out)
	}
}

func TestParseSizes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"6x6", 1, false},
		{"4x4, 5x3,", 2, false},
		{"", 0, true},
		{"6", 0, true},
		{"0x4", 0, true},
		{"ax4", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSizes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSizes(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("parseSizes(%q) = %v, want %d sizes", tt.in, got, tt.want)
		}
	}
	if _, err := parseProbabilities("0.2,1.5"); err == nil {
		t.Error("expected error for probability above 1")
	}
}
