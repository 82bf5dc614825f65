package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vsinha/clinicaldemand/pkg/application/services"
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/clinicaldemand/pkg/interfaces/input"
)

type reportFile struct {
	Scenario string `json:"scenario"`
	Summary  struct {
		FinalRecommendation int64 `json:"finalRecommendation"`
	} `json:"summary"`
	Months []struct {
		Month             string `json:"month"`
		ProjectedProjects int64  `json:"projectedProjects"`
	} `json:"months"`
	Warnings []string `json:"warnings"`
}

// runModel executes the command with JSON output to a temp file and decodes the report
func runModel(t *testing.T, config Config) (*reportFile, error) {
	t.Helper()
	config.Format = "json"
	config.OutputPath = filepath.Join(t.TempDir(), "report.json")
	if config.Coercion == "" {
		config.Coercion = "strict"
	}

	if err := NewModelCommand(config).Execute(context.Background()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(config.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var report reportFile
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	return &report, nil
}

func TestModelCommand_Overrides(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		expectedFinal int64
	}{
		{
			name:          "defaults",
			expectedFinal: 14,
		},
		{
			name:          "doubled volume",
			config:        Config{Overrides: map[string]string{"quarterlyProjectCount": "32"}},
			expectedFinal: 28,
		},
		{
			name:          "legacy alias",
			config:        Config{Overrides: map[string]string{"q3ProjectCount": "32"}},
			expectedFinal: 28,
		},
		{
			name:          "no buffer",
			config:        Config{Overrides: map[string]string{"safetyBufferPercent": "0"}},
			expectedFinal: 12,
		},
		{
			name: "lenient malformed reads as zero",
			config: Config{
				Coercion:  "lenient",
				Overrides: map[string]string{"growthRate": "lots"},
			},
			expectedFinal: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := runModel(t, tt.config)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if report.Summary.FinalRecommendation != tt.expectedFinal {
				t.Errorf("Expected final recommendation %d, got %d", tt.expectedFinal, report.Summary.FinalRecommendation)
			}
		})
	}
}

func TestModelCommand_FactorOverride(t *testing.T) {
	report, err := runModel(t, Config{FactorOverrides: map[string]string{"Aug": "1.0"}})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Months[7].Month != "Aug" || report.Months[7].ProjectedProjects != 5 {
		t.Errorf("Expected Aug at 5 projects, got %+v", report.Months[7])
	}
	if report.Months[8].ProjectedProjects != 9 {
		t.Errorf("Sep should be untouched at 9, got %d", report.Months[8].ProjectedProjects)
	}
}

func TestModelCommand_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		sentinel error
	}{
		{
			name:     "malformed number",
			config:   Config{Overrides: map[string]string{"clinicalHoursPerProject": "113h"}},
			sentinel: input.ErrMalformedNumber,
		},
		{
			name:     "unknown assumption",
			config:   Config{Overrides: map[string]string{"budget": "1"}},
			sentinel: entities.ErrUnknownAssumption,
		},
		{
			name:     "unknown month",
			config:   Config{FactorOverrides: map[string]string{"Smarch": "1"}},
			sentinel: entities.ErrInvalidDistribution,
		},
		{
			name: "zero availability in lenient mode",
			config: Config{
				Coercion:  "lenient",
				Overrides: map[string]string{"availabilityFactor": "0"},
			},
			sentinel: entities.ErrNonPositiveDivisor,
		},
		{
			name:     "overflowing volume",
			config:   Config{Overrides: map[string]string{"quarterlyProjectCount": "1e20"}},
			sentinel: entities.ErrResultOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runModel(t, tt.config)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestModelCommand_StrictValidation(t *testing.T) {
	_, err := runModel(t, Config{Overrides: map[string]string{"availabilityFactor": "0"}})

	var validationErr *services.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *services.ValidationError, got %v", err)
	}
	if len(validationErr.Result.Errors) != 1 {
		t.Errorf("Expected one validation error, got %v", validationErr.Result.Errors)
	}
}

func TestModelCommand_InvalidCoercion(t *testing.T) {
	if _, err := runModel(t, Config{Coercion: "sloppy"}); err == nil {
		t.Error("Expected error for unknown coercion policy")
	}
}

func TestModelCommand_ScenarioDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := yaml.WriteTemplate(filepath.Join(dir, "default.yaml")); err != nil {
		t.Fatalf("WriteTemplate failed: %v", err)
	}
	busy := "version: 1\nname: busy\nassumptions:\n  quarterlyProjectCount: 32\n"
	if err := os.WriteFile(filepath.Join(dir, "busy.yml"), []byte(busy), 0644); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}

	tests := []struct {
		name          string
		expectedFinal int64
	}{
		{"", 14},
		{"default", 14},
		{"busy", 28},
	}
	for _, tt := range tests {
		report, err := runModel(t, Config{Scenario: dir, ScenarioName: tt.name})
		if err != nil {
			t.Fatalf("Scenario %q failed: %v", tt.name, err)
		}
		if report.Summary.FinalRecommendation != tt.expectedFinal {
			t.Errorf("Scenario %q: expected %d, got %d", tt.name, tt.expectedFinal, report.Summary.FinalRecommendation)
		}
	}

	if _, err := runModel(t, Config{Scenario: dir, ScenarioName: "missing"}); !errors.Is(err, entities.ErrScenarioNotFound) {
		t.Errorf("Expected ErrScenarioNotFound, got %v", err)
	}

	listing := NewModelCommand(Config{Scenario: dir, List: true, Coercion: "strict"})
	if err := listing.Execute(context.Background()); err != nil {
		t.Errorf("List failed: %v", err)
	}
}

func TestInitCommand_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "site.yaml")

	initCmd := NewInitCommand(InitConfig{Path: scenarioPath, WithCSV: true})
	if err := initCmd.Execute(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := initCmd.Execute(context.Background()); err == nil {
		t.Error("Second init should refuse to overwrite")
	}

	report, err := runModel(t, Config{
		Scenario:         scenarioPath,
		DistributionFile: filepath.Join(dir, "distribution.csv"),
		AssumptionsFile:  filepath.Join(dir, "assumptions.csv"),
	})
	if err != nil {
		t.Fatalf("Model over generated files failed: %v", err)
	}
	if report.Scenario != "default" || report.Summary.FinalRecommendation != 14 {
		t.Errorf("Expected default scenario at 14, got %s at %d", report.Scenario, report.Summary.FinalRecommendation)
	}
	if len(report.Months) != 12 || report.Months[7].ProjectedProjects != 9 {
		t.Errorf("Unexpected monthly rows: %+v", report.Months)
	}
}
