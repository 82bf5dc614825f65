package services

import (
	"fmt"
	"math"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

// meanFactorTolerance is how far the mean month factor may drift from 1.0 before a warning
const meanFactorTolerance = 0.005

// AssumptionValidator checks model inputs against their documented ranges.
// The demand model never calls it; callers decide whether to reject or proceed.
type AssumptionValidator struct{}

// NewAssumptionValidator creates a new assumption validator
func NewAssumptionValidator() *AssumptionValidator {
	return &AssumptionValidator{}
}

// ValidationResult contains the results of input validation
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks assumptions and distribution together
func (v *AssumptionValidator) Validate(input entities.ModelInput) *ValidationResult {
	result := &ValidationResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	v.validateAssumptions(input.Assumptions, result)
	v.validateDistribution(input.Distribution, result)

	return result
}

func (v *AssumptionValidator) validateAssumptions(a entities.Assumptions, result *ValidationResult) {
	for _, key := range entities.AssumptionKeys {
		value, _ := a.Get(key)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s must be a finite number", key))
		}
	}

	positive := []entities.AssumptionKey{
		entities.QuarterlyProjectCount,
		entities.ClinicalHoursPerProject,
		entities.MaxConcurrentProjectsPerResource,
		entities.WorkingHoursPerYear,
		entities.AvgProjectDurationWeeks,
	}
	for _, key := range positive {
		value, _ := a.Get(key)
		if value <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s must be positive, got %g", key, value))
		}
	}

	if a.AvailabilityFactorPercent <= 0 || a.AvailabilityFactorPercent > 100 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s must be in (0, 100], got %g", entities.AvailabilityFactorPercent, a.AvailabilityFactorPercent))
	}
	if a.SafetyBufferPercent < 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s cannot be negative, got %g", entities.SafetyBufferPercent, a.SafetyBufferPercent))
	}
	if a.PeakMonthMultiplier < 1 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s must be at least 1, got %g", entities.PeakMonthMultiplier, a.PeakMonthMultiplier))
	}
	if a.GrowthRatePercent <= -100 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s must be greater than -100, got %g", entities.GrowthRatePercent, a.GrowthRatePercent))
	}
}

func (v *AssumptionValidator) validateDistribution(d entities.MonthlyDistribution, result *ValidationResult) {
	for i, month := range d {
		if month.Label == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("month %d has an empty label", i+1))
		}
		if math.IsNaN(month.Factor) || math.IsInf(month.Factor, 0) {
			result.Errors = append(result.Errors, fmt.Sprintf("factor for %s must be a finite number", month.Label))
			continue
		}
		if month.Factor < 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("factor for %s cannot be negative, got %g", month.Label, month.Factor))
		}
	}

	if mean := d.MeanFactor(); math.Abs(mean-1) > meanFactorTolerance {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("month factors average %.3f, monthly projects will not sum to the annual count", mean))
	}
}
