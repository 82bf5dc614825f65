package testing

import (
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/memory"
)

// BuildScenarioCatalog builds the reference scenario catalog:
//   - "default": the reference assumptions with the seasonal distribution
//   - "flat": the reference assumptions spread evenly across the year
//   - "growth": 25% growth with a longer average project duration
func BuildScenarioCatalog() *memory.ScenarioRepository {
	repo := memory.NewScenarioRepository(3)

	growth := entities.DefaultModelInput()
	growth.Assumptions.GrowthRatePercent = 25
	growth.Assumptions.AvgProjectDurationWeeks = 20

	scenarios := []*entities.Scenario{
		{
			Name:        "default",
			Description: "Reference staffing scenario",
			Input:       entities.DefaultModelInput(),
		},
		{
			Name:        "flat",
			Description: "Reference assumptions without seasonality",
			Input:       FlatModelInput(),
		},
		{
			Name:        "growth",
			Description: "25% growth, longer projects",
			Input:       growth,
		},
	}

	if err := repo.LoadScenarios(scenarios); err != nil {
		panic(err)
	}
	return repo
}

// FlatModelInput returns the reference assumptions with every factor at 1.0
func FlatModelInput() entities.ModelInput {
	return entities.ModelInput{
		Assumptions:  entities.DefaultAssumptions(),
		Distribution: entities.FlatDistribution(),
	}
}

// BrokenModelInput returns an input whose effective hours per resource are zero
func BrokenModelInput() entities.ModelInput {
	input := entities.DefaultModelInput()
	input.Assumptions.AvailabilityFactorPercent = 0
	return input
}

// MustSetFactor sets one factor and panics on a bad index
func MustSetFactor(input entities.ModelInput, index int, factor float64) entities.ModelInput {
	if err := input.Distribution.SetFactor(index, factor); err != nil {
		panic(err)
	}
	return input
}
