package entities

import (
	"fmt"
	"strings"
)

// AssumptionKey names a single editable assumption
type AssumptionKey string

const (
	QuarterlyProjectCount            AssumptionKey = "quarterlyProjectCount"
	ClinicalHoursPerProject          AssumptionKey = "clinicalHoursPerProject"
	AvailabilityFactorPercent        AssumptionKey = "availabilityFactor"
	MaxConcurrentProjectsPerResource AssumptionKey = "maxConcurrentProjects"
	WorkingHoursPerYear              AssumptionKey = "workingHoursPerYear"
	SafetyBufferPercent              AssumptionKey = "safetyBufferPercent"
	AvgProjectDurationWeeks          AssumptionKey = "avgProjectDurationWeeks"
	PeakMonthMultiplier              AssumptionKey = "peakMonthMultiplier"
	GrowthRatePercent                AssumptionKey = "growthRate"
)

// AssumptionKeys lists every key in form order
var AssumptionKeys = []AssumptionKey{
	QuarterlyProjectCount,
	ClinicalHoursPerProject,
	AvailabilityFactorPercent,
	MaxConcurrentProjectsPerResource,
	WorkingHoursPerYear,
	SafetyBufferPercent,
	AvgProjectDurationWeeks,
	PeakMonthMultiplier,
	GrowthRatePercent,
}

var assumptionAliases = map[string]AssumptionKey{
	"q3projectcount":                   QuarterlyProjectCount,
	"availabilityfactorpercent":        AvailabilityFactorPercent,
	"maxconcurrentprojectsperresource": MaxConcurrentProjectsPerResource,
	"growthratepercent":                GrowthRatePercent,
}

// Label returns the human-readable form label for the key
func (k AssumptionKey) Label() string {
	switch k {
	case QuarterlyProjectCount:
		return "Quarterly Project Count"
	case ClinicalHoursPerProject:
		return "Clinical Hours per Project"
	case AvailabilityFactorPercent:
		return "Availability Factor (%)"
	case MaxConcurrentProjectsPerResource:
		return "Max Concurrent Projects per Resource"
	case WorkingHoursPerYear:
		return "Working Hours per Year"
	case SafetyBufferPercent:
		return "Safety Buffer (%)"
	case AvgProjectDurationWeeks:
		return "Avg Project Duration (weeks)"
	case PeakMonthMultiplier:
		return "Peak Month Multiplier"
	case GrowthRatePercent:
		return "Growth Rate (%)"
	default:
		return string(k)
	}
}

// ParseAssumptionKey resolves a key name, case-insensitively, including legacy aliases
func ParseAssumptionKey(name string) (AssumptionKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, key := range AssumptionKeys {
		if strings.ToLower(string(key)) == normalized {
			return key, nil
		}
	}
	if key, ok := assumptionAliases[normalized]; ok {
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAssumption, name)
}

// Assumptions is the full set of numeric model inputs.
// It is a plain value: the caller owns it and the engine only reads it.
type Assumptions struct {
	QuarterlyProjectCount            float64 `json:"quarterlyProjectCount" yaml:"quarterlyProjectCount"`
	ClinicalHoursPerProject          float64 `json:"clinicalHoursPerProject" yaml:"clinicalHoursPerProject"`
	AvailabilityFactorPercent        float64 `json:"availabilityFactor" yaml:"availabilityFactor"`
	MaxConcurrentProjectsPerResource float64 `json:"maxConcurrentProjects" yaml:"maxConcurrentProjects"`
	WorkingHoursPerYear              float64 `json:"workingHoursPerYear" yaml:"workingHoursPerYear"`
	SafetyBufferPercent              float64 `json:"safetyBufferPercent" yaml:"safetyBufferPercent"`
	AvgProjectDurationWeeks          float64 `json:"avgProjectDurationWeeks" yaml:"avgProjectDurationWeeks"`
	PeakMonthMultiplier              float64 `json:"peakMonthMultiplier" yaml:"peakMonthMultiplier"`
	GrowthRatePercent                float64 `json:"growthRate" yaml:"growthRate"`
}

// DefaultAssumptions returns the reference staffing scenario
func DefaultAssumptions() Assumptions {
	return Assumptions{
		QuarterlyProjectCount:            16,
		ClinicalHoursPerProject:          113,
		AvailabilityFactorPercent:        50,
		MaxConcurrentProjectsPerResource: 3,
		WorkingHoursPerYear:              2080,
		SafetyBufferPercent:              15,
		AvgProjectDurationWeeks:          16,
		PeakMonthMultiplier:              1.6,
		GrowthRatePercent:                0,
	}
}

// Get returns the value stored under key
func (a Assumptions) Get(key AssumptionKey) (float64, error) {
	ptr, err := a.field(key)
	if err != nil {
		return 0, err
	}
	return *ptr, nil
}

// Set stores value under key
func (a *Assumptions) Set(key AssumptionKey, value float64) error {
	ptr, err := a.field(key)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

func (a *Assumptions) field(key AssumptionKey) (*float64, error) {
	switch key {
	case QuarterlyProjectCount:
		return &a.QuarterlyProjectCount, nil
	case ClinicalHoursPerProject:
		return &a.ClinicalHoursPerProject, nil
	case AvailabilityFactorPercent:
		return &a.AvailabilityFactorPercent, nil
	case MaxConcurrentProjectsPerResource:
		return &a.MaxConcurrentProjectsPerResource, nil
	case WorkingHoursPerYear:
		return &a.WorkingHoursPerYear, nil
	case SafetyBufferPercent:
		return &a.SafetyBufferPercent, nil
	case AvgProjectDurationWeeks:
		return &a.AvgProjectDurationWeeks, nil
	case PeakMonthMultiplier:
		return &a.PeakMonthMultiplier, nil
	case GrowthRatePercent:
		return &a.GrowthRatePercent, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssumption, string(key))
	}
}
