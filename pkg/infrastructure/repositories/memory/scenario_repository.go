package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/domain/repositories"
)

// ScenarioRepository provides in-memory scenario storage
type ScenarioRepository struct {
	scenarios   []entities.Scenario
	scenarioMap map[string]int
	mutex       sync.RWMutex
}

// NewScenarioRepository creates a new in-memory scenario repository
func NewScenarioRepository(expectedScenarios int) *ScenarioRepository {
	return &ScenarioRepository{
		scenarios:   make([]entities.Scenario, 0, expectedScenarios),
		scenarioMap: make(map[string]int, expectedScenarios),
	}
}

// Verify interface compliance
var _ repositories.ScenarioRepository = (*ScenarioRepository)(nil)

// LoadScenarios loads scenarios into the repository; names must be unique
func (r *ScenarioRepository) LoadScenarios(scenarios []*entities.Scenario) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, scenario := range scenarios {
		if scenario.Name == "" {
			return fmt.Errorf("scenario name cannot be empty")
		}
		if _, exists := r.scenarioMap[scenario.Name]; exists {
			return fmt.Errorf("scenario %s already exists", scenario.Name)
		}
		r.scenarioMap[scenario.Name] = len(r.scenarios)
		r.scenarios = append(r.scenarios, *scenario)
	}
	return nil
}

// GetScenario returns a copy of the named scenario
func (r *ScenarioRepository) GetScenario(name string) (*entities.Scenario, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, exists := r.scenarioMap[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrScenarioNotFound, name)
	}
	scenario := r.scenarios[index]
	return &scenario, nil
}

// GetAllScenarios returns copies of all scenarios sorted by name
func (r *ScenarioRepository) GetAllScenarios() ([]*entities.Scenario, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	scenarios := make([]*entities.Scenario, 0, len(r.scenarios))
	for i := range r.scenarios {
		scenario := r.scenarios[i]
		scenarios = append(scenarios, &scenario)
	}
	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].Name < scenarios[j].Name
	})
	return scenarios, nil
}
