package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/memory"
	testinghelpers "github.com/vsinha/clinicaldemand/pkg/infrastructure/testing"
)

func TestScenarioService_List(t *testing.T) {
	service := NewScenarioService(NewCalculator(nil), testinghelpers.BuildScenarioCatalog())

	summaries, err := service.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	expected := []string{"default", "flat", "growth"}
	if len(summaries) != len(expected) {
		t.Fatalf("Expected %d scenarios, got %d", len(expected), len(summaries))
	}
	for i, name := range expected {
		if summaries[i].Name != name {
			t.Errorf("Scenario %d: expected %s, got %s", i, name, summaries[i].Name)
		}
		if summaries[i].Description == "" {
			t.Errorf("Scenario %s should carry a description", name)
		}
	}
}

func TestScenarioService_Evaluate(t *testing.T) {
	service := NewScenarioService(NewCalculator(nil), testinghelpers.BuildScenarioCatalog())
	ctx := context.Background()

	tests := []struct {
		scenario      string
		expectedFinal int64
	}{
		{"default", 14},
		{"flat", 14},
		// 80 projects/year: peak ceil(80*1.6/12) = 11 -> 15 resources, +3 buffer
		{"growth", 18},
	}

	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			report, err := service.Evaluate(ctx, tt.scenario, false)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if report.Scenario != tt.scenario {
				t.Errorf("Expected report for %s, got %s", tt.scenario, report.Scenario)
			}
			if report.Summary.FinalRecommendation != tt.expectedFinal {
				t.Errorf("Expected final recommendation %d, got %d", tt.expectedFinal, report.Summary.FinalRecommendation)
			}
		})
	}
}

func TestScenarioService_EvaluateMissing(t *testing.T) {
	service := NewScenarioService(NewCalculator(nil), testinghelpers.BuildScenarioCatalog())

	_, err := service.Evaluate(context.Background(), "missing", true)
	if !errors.Is(err, entities.ErrScenarioNotFound) {
		t.Errorf("Expected ErrScenarioNotFound, got %v", err)
	}
}

func TestScenarioService_EvaluateNonFiniteScenario(t *testing.T) {
	bad := entities.DefaultModelInput()
	bad.Assumptions.PeakMonthMultiplier = math.NaN()

	repo := memory.NewScenarioRepository(1)
	if err := repo.LoadScenarios([]*entities.Scenario{{Name: "bad", Input: bad}}); err != nil {
		t.Fatalf("LoadScenarios failed: %v", err)
	}
	service := NewScenarioService(NewCalculator(nil), repo)

	// lenient skips validation, so the model itself must refuse the NaN
	_, err := service.Evaluate(context.Background(), "bad", false)
	if !errors.Is(err, entities.ErrNonFiniteValue) {
		t.Errorf("Expected ErrNonFiniteValue in lenient mode, got %v", err)
	}

	_, err = service.Evaluate(context.Background(), "bad", true)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError in strict mode, got %v", err)
	}
}
