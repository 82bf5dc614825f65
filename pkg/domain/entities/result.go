package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthlyRow is one month of the seasonal breakdown
type MonthlyRow struct {
	Label               string          `json:"month"`
	ProjectedProjects   int64           `json:"projectedProjects"`
	ClinicalHours       decimal.Decimal `json:"clinicalHours"`
	ResourcesNeeded     int64           `json:"resourcesNeeded"`
	RecommendedStaffing int64           `json:"recommendedStaffing"`
}

// UtilizationPercent returns ResourcesNeeded as a percentage of RecommendedStaffing
func (r MonthlyRow) UtilizationPercent() (decimal.Decimal, error) {
	if r.RecommendedStaffing <= 0 {
		return decimal.Zero, fmt.Errorf("recommended staffing %d for %s: %w",
			r.RecommendedStaffing, r.Label, ErrNonPositiveDivisor)
	}
	return decimal.NewFromInt(r.ResourcesNeeded).
		Mul(hundred).
		Div(decimal.NewFromInt(r.RecommendedStaffing)), nil
}

// ResultBundle is the full derivation of one ModelInput. It is never mutated after Compute returns.
type ResultBundle struct {
	// Intermediate aggregates
	AnnualProjectCount        decimal.Decimal `json:"annualProjectCount"`
	TotalAnnualHours          decimal.Decimal `json:"totalAnnualHours"`
	EffectiveHoursPerResource decimal.Decimal `json:"effectiveHoursPerResource"`

	// Independent estimates
	HoursBasedResources       int64 `json:"hoursBasedResources"`
	ConcurrencyBasedResources int64 `json:"concurrencyBasedResources"`
	PeakBasedResources        int64 `json:"peakBasedResources"`

	BaseRequirement     int64 `json:"baseRequirement"`
	SafetyBuffer        int64 `json:"safetyBuffer"`
	FinalRecommendation int64 `json:"finalRecommendation"`

	MonthlyRows [MonthsPerYear]MonthlyRow `json:"monthlyRows"`

	// Diagnostics
	AvgProjectsInProgress decimal.Decimal `json:"avgProjectsInProgress"`
	BaseMonthlyProjects   decimal.Decimal `json:"baseMonthlyProjects"`
	PeakMonthProjects     int64           `json:"peakMonthProjects"`
}

// Equal reports whether two bundles carry identical values
func (b *ResultBundle) Equal(other *ResultBundle) bool {
	if b == nil || other == nil {
		return b == other
	}
	if !b.AnnualProjectCount.Equal(other.AnnualProjectCount) ||
		!b.TotalAnnualHours.Equal(other.TotalAnnualHours) ||
		!b.EffectiveHoursPerResource.Equal(other.EffectiveHoursPerResource) ||
		!b.AvgProjectsInProgress.Equal(other.AvgProjectsInProgress) ||
		!b.BaseMonthlyProjects.Equal(other.BaseMonthlyProjects) {
		return false
	}
	if b.HoursBasedResources != other.HoursBasedResources ||
		b.ConcurrencyBasedResources != other.ConcurrencyBasedResources ||
		b.PeakBasedResources != other.PeakBasedResources ||
		b.BaseRequirement != other.BaseRequirement ||
		b.SafetyBuffer != other.SafetyBuffer ||
		b.FinalRecommendation != other.FinalRecommendation ||
		b.PeakMonthProjects != other.PeakMonthProjects {
		return false
	}
	for i := range b.MonthlyRows {
		x, y := b.MonthlyRows[i], other.MonthlyRows[i]
		if x.Label != y.Label ||
			x.ProjectedProjects != y.ProjectedProjects ||
			!x.ClinicalHours.Equal(y.ClinicalHours) ||
			x.ResourcesNeeded != y.ResourcesNeeded ||
			x.RecommendedStaffing != y.RecommendedStaffing {
			return false
		}
	}
	return true
}

// TotalProjectedProjects sums ProjectedProjects over the twelve months
func (b *ResultBundle) TotalProjectedProjects() int64 {
	var total int64
	for _, row := range b.MonthlyRows {
		total += row.ProjectedProjects
	}
	return total
}

// PeakMonth returns the row with the highest ResourcesNeeded; ties keep the earliest month
func (b *ResultBundle) PeakMonth() MonthlyRow {
	peak := b.MonthlyRows[0]
	for _, row := range b.MonthlyRows[1:] {
		if row.ResourcesNeeded > peak.ResourcesNeeded {
			peak = row
		}
	}
	return peak
}
