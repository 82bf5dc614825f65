package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	bindingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	tileStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(28)
	tileLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	tileValue    = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	bandStyles   = map[dto.UtilizationBand]lipgloss.Style{
		dto.BandGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		dto.BandOrange: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800")),
		dto.BandRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		dto.BandNone:   lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
	}
)

func renderText(w io.Writer, report *dto.DemandReport, config Config) error {
	var out strings.Builder

	title := "📊 Clinical Resource Demand"
	if report.Scenario != "" {
		title += " - " + report.Scenario
	}
	out.WriteString(titleStyle.Render(title) + "\n\n")

	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Final Recommendation", fmt.Sprintf("%d resources", report.Summary.FinalRecommendation)),
		tile("Annual Projects", fmt.Sprintf("%d", report.Summary.AnnualProjectCount)),
		tile("Total Clinical Hours", report.Summary.TotalAnnualHours.StringFixed(0)),
		tile("Avg Projects In Progress", report.Summary.AvgProjectsInProgress.StringFixed(1)),
	))
	out.WriteString("\n\n")

	out.WriteString(headerStyle.Render("🧮 Estimation Methods") + "\n")
	methods := []struct {
		name  string
		key   string
		value int64
	}{
		{"Hours-based", "hours", report.Methods.HoursBased},
		{"Concurrency-based", "concurrency", report.Methods.ConcurrencyBased},
		{"Peak-based", "peak", report.Methods.PeakBased},
	}
	for _, method := range methods {
		line := fmt.Sprintf("  %-20s %4d", method.name, method.value)
		if method.key == report.Methods.BindingMethod {
			line = bindingStyle.Render(line + "  ← binding")
		}
		out.WriteString(line + "\n")
	}
	out.WriteString(fmt.Sprintf("  %-20s %4d\n", "Base requirement", report.Methods.BaseRequirement))
	out.WriteString(fmt.Sprintf("  %-20s %+4d\n", "Safety buffer", report.Methods.SafetyBuffer))
	out.WriteString(fmt.Sprintf("  %-20s %4d\n\n", "Recommended", report.Summary.FinalRecommendation))

	out.WriteString(headerStyle.Render("📅 Monthly Breakdown") + "\n")
	out.WriteString(fmt.Sprintf("%-6s %9s %10s %8s %9s %12s\n",
		"Month", "Projects", "Hours", "Needed", "Staffing", "Utilization"))
	out.WriteString(mutedStyle.Render(fmt.Sprintf("%-6s %9s %10s %8s %9s %12s",
		"------", "---------", "----------", "--------", "---------", "------------")) + "\n")
	for _, row := range report.Months {
		utilization := bandStyles[row.Band].Render(fmt.Sprintf("%12s", formatUtilization(row)))
		out.WriteString(fmt.Sprintf("%-6s %9d %10s %8d %9d %s\n",
			row.Label,
			row.ProjectedProjects,
			row.ClinicalHours.StringFixed(0),
			row.ResourcesNeeded,
			row.RecommendedStaffing,
			utilization))
	}

	if len(report.Warnings) > 0 {
		out.WriteString("\n")
		for _, warning := range report.Warnings {
			out.WriteString(warningStyle.Render("⚠️  "+warning) + "\n")
		}
	}

	if config.Verbose {
		out.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Computed in %s", formatDuration(config.ComputeTime))) + "\n")
		for name, path := range config.InputFiles {
			out.WriteString(mutedStyle.Render(fmt.Sprintf("  %s: %s", name, path)) + "\n")
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func tile(label, value string) string {
	return tileStyle.Render(tileLabel.Render(label) + "\n" + tileValue.Render(value))
}
