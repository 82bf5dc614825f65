package services

import (
	"context"
	"fmt"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
	"github.com/vsinha/clinicaldemand/pkg/domain/repositories"
)

// ScenarioService evaluates named scenarios from a catalog
type ScenarioService struct {
	calculator *Calculator
	repo       repositories.ScenarioRepository
}

// NewScenarioService creates a new scenario service
func NewScenarioService(calculator *Calculator, repo repositories.ScenarioRepository) *ScenarioService {
	return &ScenarioService{
		calculator: calculator,
		repo:       repo,
	}
}

// ScenarioSummary describes one catalog entry
type ScenarioSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// List returns the catalog sorted by name
func (s *ScenarioService) List() ([]ScenarioSummary, error) {
	scenarios, err := s.repo.GetAllScenarios()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	summaries := make([]ScenarioSummary, 0, len(scenarios))
	for _, scenario := range scenarios {
		summaries = append(summaries, ScenarioSummary{
			Name:        scenario.Name,
			Description: scenario.Description,
		})
	}
	return summaries, nil
}

// Evaluate computes the report for the named scenario
func (s *ScenarioService) Evaluate(ctx context.Context, name string, strict bool) (*dto.DemandReport, error) {
	scenario, err := s.repo.GetScenario(name)
	if err != nil {
		return nil, err
	}

	report, err := s.calculator.Report(ctx, scenario.Input, strict)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	report.Scenario = scenario.Name
	return report, nil
}
