package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

// UtilizationBand classifies a month's utilization for display
type UtilizationBand string

const (
	BandGreen  UtilizationBand = "green"
	BandOrange UtilizationBand = "orange"
	BandRed    UtilizationBand = "red"
	// BandNone is used when recommended staffing is zero and utilization is undefined
	BandNone UtilizationBand = "none"
)

var (
	orangeThreshold = decimal.NewFromInt(75)
	redThreshold    = decimal.NewFromInt(90)
	half            = decimal.New(5, -1)
)

// BandFor returns green up to 75%, orange up to 90%, red above
func BandFor(utilizationPercent decimal.Decimal) UtilizationBand {
	switch {
	case utilizationPercent.GreaterThan(redThreshold):
		return BandRed
	case utilizationPercent.GreaterThan(orangeThreshold):
		return BandOrange
	default:
		return BandGreen
	}
}

// SummaryTiles are the four headline figures
type SummaryTiles struct {
	FinalRecommendation   int64           `json:"finalRecommendation"`
	AnnualProjectCount    int64           `json:"annualProjectCount"`
	TotalAnnualHours      decimal.Decimal `json:"totalAnnualHours"`
	AvgProjectsInProgress decimal.Decimal `json:"avgProjectsInProgress"`
}

// MethodTiles compare the three estimation methods
type MethodTiles struct {
	HoursBased       int64 `json:"hoursBased"`
	ConcurrencyBased int64 `json:"concurrencyBased"`
	PeakBased        int64 `json:"peakBased"`
	BaseRequirement  int64 `json:"baseRequirement"`
	SafetyBuffer     int64 `json:"safetyBuffer"`
	// BindingMethod names the estimate that set the base requirement
	BindingMethod string `json:"bindingMethod"`
}

// MonthlyReportRow is a monthly row plus its derived utilization
type MonthlyReportRow struct {
	entities.MonthlyRow
	UtilizationPercent *decimal.Decimal `json:"utilizationPercent"`
	Band               UtilizationBand  `json:"band"`
}

// DemandReport is the presentation view of a result bundle
type DemandReport struct {
	Scenario string                 `json:"scenario,omitempty"`
	Summary  SummaryTiles           `json:"summary"`
	Methods  MethodTiles            `json:"methods"`
	Months   []MonthlyReportRow     `json:"months"`
	Details  *entities.ResultBundle `json:"details"`
	Warnings []string               `json:"warnings,omitempty"`
}

// NewDemandReport derives the display figures from a result bundle
func NewDemandReport(bundle *entities.ResultBundle) *DemandReport {
	report := &DemandReport{
		Summary: SummaryTiles{
			FinalRecommendation:   bundle.FinalRecommendation,
			AnnualProjectCount:    bundle.AnnualProjectCount.Add(half).Floor().IntPart(),
			TotalAnnualHours:      bundle.TotalAnnualHours,
			AvgProjectsInProgress: bundle.AvgProjectsInProgress.Round(1),
		},
		Methods: MethodTiles{
			HoursBased:       bundle.HoursBasedResources,
			ConcurrencyBased: bundle.ConcurrencyBasedResources,
			PeakBased:        bundle.PeakBasedResources,
			BaseRequirement:  bundle.BaseRequirement,
			SafetyBuffer:     bundle.SafetyBuffer,
			BindingMethod:    bindingMethod(bundle),
		},
		Months:  make([]MonthlyReportRow, 0, entities.MonthsPerYear),
		Details: bundle,
	}

	for _, row := range bundle.MonthlyRows {
		reportRow := MonthlyReportRow{MonthlyRow: row, Band: BandNone}
		if pct, err := row.UtilizationPercent(); err == nil {
			// the band uses the exact percentage; only the displayed value is rounded
			rounded := pct.Round(1)
			reportRow.UtilizationPercent = &rounded
			reportRow.Band = BandFor(pct)
		}
		report.Months = append(report.Months, reportRow)
	}

	return report
}

// bindingMethod names the first method, in peak/concurrency/hours order, that equals the base requirement
func bindingMethod(bundle *entities.ResultBundle) string {
	switch bundle.BaseRequirement {
	case bundle.PeakBasedResources:
		return "peak"
	case bundle.ConcurrencyBasedResources:
		return "concurrency"
	default:
		return "hours"
	}
}
