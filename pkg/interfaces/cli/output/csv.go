package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
)

var csvHeader = []string{
	"month",
	"projected_projects",
	"clinical_hours",
	"resources_needed",
	"recommended_staffing",
	"utilization_percent",
	"band",
}

// renderCSV writes one row per month; utilization is empty when undefined
func renderCSV(w io.Writer, report *dto.DemandReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range report.Months {
		utilization := ""
		if row.UtilizationPercent != nil {
			utilization = row.UtilizationPercent.StringFixed(1)
		}
		record := []string{
			row.Label,
			strconv.FormatInt(row.ProjectedProjects, 10),
			row.ClinicalHours.String(),
			strconv.FormatInt(row.ResourcesNeeded, 10),
			strconv.FormatInt(row.RecommendedStaffing, 10),
			utilization,
			string(row.Band),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", row.Label, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
