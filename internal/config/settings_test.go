package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Logging.Level != "info" {
		t.Errorf("default logging level = %q, want info", settings.Logging.Level)
	}
	if settings.Logging.Format != "console" {
		t.Errorf("default logging format = %q, want console", settings.Logging.Format)
	}
	if settings.Solver.Strategy != "constrained" {
		t.Errorf("default solver strategy = %q, want constrained", settings.Solver.Strategy)
	}
	if settings.Solver.StepSize != 0.01 {
		t.Errorf("default step size = %v, want 0.01", settings.Solver.StepSize)
	}
	if settings.Solver.MaxAttempts != 10 {
		t.Errorf("default max attempts = %v, want 10", settings.Solver.MaxAttempts)
	}
	if settings.YNAB.APIURL != "https://api.youneedabudget.com/v1" {
		t.Errorf("default api url = %q", settings.YNAB.APIURL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
logging:
  level: debug
  format: json
solver:
  strategy: montecarlo
  stepSize: 0.5
  seed: 42
ynab:
  budget: household
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing settings: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Logging.Level != "debug" || settings.Logging.Format != "json" {
		t.Errorf("logging = %+v", settings.Logging)
	}
	if settings.Solver.Strategy != "montecarlo" || settings.Solver.StepSize != 0.5 || settings.Solver.Seed != 42 {
		t.Errorf("solver = %+v", settings.Solver)
	}
	if settings.YNAB.Budget != "household" {
		t.Errorf("ynab budget = %q, want household", settings.YNAB.Budget)
	}
	// unset fields still get their defaults
	if settings.Solver.MaxAttempts != 10 {
		t.Errorf("max attempts = %v, want default 10", settings.Solver.MaxAttempts)
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	t.Setenv("YNAB_API_KEY", "sekrit")
	settings, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.YNAB.Token != "sekrit" {
		t.Errorf("token = %q, want value from YNAB_API_KEY", settings.YNAB.Token)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown strategy", "solver:\n  strategy: simplex\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"non-positive step", "solver:\n  stepSize: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing settings: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("Load() expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
