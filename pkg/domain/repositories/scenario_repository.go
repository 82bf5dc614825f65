package repositories

import "github.com/vsinha/clinicaldemand/pkg/domain/entities"

// ScenarioRepository provides read access to a catalog of named scenarios
type ScenarioRepository interface {
	GetScenario(name string) (*entities.Scenario, error)
	GetAllScenarios() ([]*entities.Scenario, error)
	LoadScenarios(scenarios []*entities.Scenario) error
}
