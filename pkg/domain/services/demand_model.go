package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

var (
	one             = decimal.NewFromInt(1)
	half            = decimal.New(5, -1)
	hundred         = decimal.NewFromInt(100)
	quartersPerYear = decimal.NewFromInt(4)
	weeksPerYear    = decimal.NewFromInt(52)
	monthsPerYear   = decimal.NewFromInt(entities.MonthsPerYear)
	maxInt64        = decimal.NewFromInt(math.MaxInt64)
	minInt64        = decimal.NewFromInt(math.MinInt64)
)

// DemandModel estimates clinical staffing requirements from a set of assumptions
// and a seasonal distribution. It holds no state and is safe for concurrent use.
type DemandModel struct{}

// NewDemandModel creates a new demand model
func NewDemandModel() *DemandModel {
	return &DemandModel{}
}

// Compute derives the full result bundle for the given inputs.
// It fails on a non-finite input, a non-positive division base (effective hours per
// resource or max concurrent projects per resource), or an integer result beyond int64.
// All other inputs are taken as given.
func (m *DemandModel) Compute(a entities.Assumptions, d entities.MonthlyDistribution) (*entities.ResultBundle, error) {
	if err := checkFinite(a, d); err != nil {
		return nil, err
	}

	quarterlyCount := decimal.NewFromFloat(a.QuarterlyProjectCount)
	hoursPerProject := decimal.NewFromFloat(a.ClinicalHoursPerProject)
	availability := decimal.NewFromFloat(a.AvailabilityFactorPercent)
	maxConcurrent := decimal.NewFromFloat(a.MaxConcurrentProjectsPerResource)
	workingHours := decimal.NewFromFloat(a.WorkingHoursPerYear)
	bufferPercent := decimal.NewFromFloat(a.SafetyBufferPercent)
	durationWeeks := decimal.NewFromFloat(a.AvgProjectDurationWeeks)
	peakMultiplier := decimal.NewFromFloat(a.PeakMonthMultiplier)
	growthPercent := decimal.NewFromFloat(a.GrowthRatePercent)

	// Aggregates. Growth is a single flat adjustment on the annualized quarter.
	annualProjects := quarterlyCount.Mul(quartersPerYear).Mul(one.Add(growthPercent.Div(hundred)))
	totalHours := annualProjects.Mul(hoursPerProject)
	effectiveHours := workingHours.Mul(availability).Div(hundred)

	if !effectiveHours.IsPositive() {
		return nil, fmt.Errorf("effective hours per resource is %s: %w", effectiveHours, entities.ErrNonPositiveDivisor)
	}
	if !maxConcurrent.IsPositive() {
		return nil, fmt.Errorf("max concurrent projects per resource is %s: %w", maxConcurrent, entities.ErrNonPositiveDivisor)
	}

	// Hours-based
	hoursBased := totalHours.Div(effectiveHours).Ceil()

	// Concurrency-based
	projectWeeks := annualProjects.Mul(durationWeeks)
	avgInProgress := projectWeeks.Div(weeksPerYear)
	concurrencyBased := projectWeeks.Div(weeksPerYear.Mul(maxConcurrent)).Ceil()

	// Peak-based, against one month of capacity (effectiveHours / 12)
	baseMonthly := annualProjects.Div(monthsPerYear)
	peakProjects := annualProjects.Mul(peakMultiplier).Div(monthsPerYear).Ceil()
	peakBased := monthlyResources(peakProjects.Mul(hoursPerProject), effectiveHours)

	// The binding estimate wins, then the buffer is added on top
	base := decimal.Max(hoursBased, concurrencyBased, peakBased)
	buffer := base.Mul(bufferPercent).Div(hundred).Ceil()
	final := base.Add(buffer)

	ints := &intConverter{}
	result := &entities.ResultBundle{
		AnnualProjectCount:        annualProjects,
		TotalAnnualHours:          totalHours,
		EffectiveHoursPerResource: effectiveHours,
		HoursBasedResources:       ints.convert("hours-based resources", hoursBased),
		ConcurrencyBasedResources: ints.convert("concurrency-based resources", concurrencyBased),
		PeakBasedResources:        ints.convert("peak-based resources", peakBased),
		BaseRequirement:           ints.convert("base requirement", base),
		SafetyBuffer:              ints.convert("safety buffer", buffer),
		FinalRecommendation:       ints.convert("final recommendation", final),
		AvgProjectsInProgress:     avgInProgress,
		BaseMonthlyProjects:       baseMonthly,
		PeakMonthProjects:         ints.convert("peak month projects", peakProjects),
	}

	// Monthly breakdown, in calendar order
	for i, month := range d {
		projected := roundHalfUp(annualProjects.Mul(decimal.NewFromFloat(month.Factor)).Div(monthsPerYear))
		hours := projected.Mul(hoursPerProject)
		result.MonthlyRows[i] = entities.MonthlyRow{
			Label:               month.Label,
			ProjectedProjects:   ints.convert(month.Label+" projected projects", projected),
			ClinicalHours:       hours,
			ResourcesNeeded:     ints.convert(month.Label+" resources needed", monthlyResources(hours, effectiveHours)),
			RecommendedStaffing: result.FinalRecommendation,
		}
	}
	if ints.err != nil {
		return nil, ints.err
	}

	return result, nil
}

// monthlyResources is ceil(hours / (effectiveHours/12)), computed as hours*12/effectiveHours
// so that an exact quotient is never pushed over an integer by an inexact monthly capacity.
func monthlyResources(hours, effectiveHours decimal.Decimal) decimal.Decimal {
	return hours.Mul(monthsPerYear).Div(effectiveHours).Ceil()
}

// roundHalfUp rounds to the nearest integer with halves going towards positive infinity
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// checkFinite rejects NaN and infinite inputs, which have no decimal representation
func checkFinite(a entities.Assumptions, d entities.MonthlyDistribution) error {
	for _, key := range entities.AssumptionKeys {
		value, err := a.Get(key)
		if err != nil {
			return err
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%s is %g: %w", key, value, entities.ErrNonFiniteValue)
		}
	}
	for _, month := range d {
		if math.IsNaN(month.Factor) || math.IsInf(month.Factor, 0) {
			return fmt.Errorf("factor for %s is %g: %w", month.Label, month.Factor, entities.ErrNonFiniteValue)
		}
	}
	return nil
}

// intConverter narrows decimals to int64, keeping the first value that does not fit
type intConverter struct {
	err error
}

func (c *intConverter) convert(name string, d decimal.Decimal) int64 {
	if c.err != nil {
		return 0
	}
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		c.err = fmt.Errorf("%s exceeds int64: %w", name, entities.ErrResultOutOfRange)
		return 0
	}
	return d.IntPart()
}
