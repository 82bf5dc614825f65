package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
)

// DemandChart draws the monthly breakdown as an SVG: bars for projected projects,
// lines for resources needed and recommended staffing
type DemandChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
}

// Series colours
const (
	projectsColor = "#90CAF9"
	neededColor   = "#FF9800"
	staffingColor = "#4CAF50"
)

// NewDemandChart creates a chart with the default layout
func NewDemandChart() *DemandChart {
	return &DemandChart{
		Width:        900,
		Height:       420,
		MarginLeft:   60,
		MarginTop:    60,
		MarginRight:  60,
		MarginBottom: 80,
	}
}

func (dc *DemandChart) plotWidth() int {
	return dc.Width - dc.MarginLeft - dc.MarginRight
}

func (dc *DemandChart) plotHeight() int {
	return dc.Height - dc.MarginTop - dc.MarginBottom
}

// GenerateSVG creates an SVG representation of the monthly breakdown
func (dc *DemandChart) GenerateSVG(report *dto.DemandReport) string {
	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, dc.Width, dc.Height))
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.axis-label { font-family: Arial, sans-serif; font-size: 11px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.legend-text { font-family: Arial, sans-serif; font-size: 11px; fill: #333; }`)
	svg.WriteString(`</style></defs>`)
	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, dc.Width, dc.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Seasonal Demand vs Recommended Staffing</text>`, dc.Width/2))

	if len(report.Months) == 0 {
		svg.WriteString(`</svg>`)
		return svg.String()
	}

	scale := dc.scaleMax(report)
	dc.drawGrid(&svg, scale)
	dc.drawBars(&svg, report, scale)
	dc.drawLine(&svg, report, scale, neededColor, func(row dto.MonthlyReportRow) int64 { return row.ResourcesNeeded })
	dc.drawLine(&svg, report, scale, staffingColor, func(row dto.MonthlyReportRow) int64 { return row.RecommendedStaffing })
	dc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

// scaleMax returns the largest plotted value rounded up to a multiple of 5
func (dc *DemandChart) scaleMax(report *dto.DemandReport) int64 {
	var largest int64
	for _, row := range report.Months {
		largest = max(largest, row.ProjectedProjects, row.ResourcesNeeded, row.RecommendedStaffing)
	}
	if largest <= 0 {
		return 5
	}
	return (largest + 4) / 5 * 5
}

func (dc *DemandChart) y(value, scale int64) int {
	return dc.MarginTop + dc.plotHeight() - int(float64(value)/float64(scale)*float64(dc.plotHeight()))
}

func (dc *DemandChart) slot(count int) float64 {
	return float64(dc.plotWidth()) / float64(count)
}

func (dc *DemandChart) drawGrid(svg *strings.Builder, scale int64) {
	step := scale / 5
	for v := int64(0); v <= scale; v += step {
		y := dc.y(v, scale)
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			dc.MarginLeft, y, dc.Width-dc.MarginRight, y))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" text-anchor="end">%d</text>`,
			dc.MarginLeft-8, y+4, v))
	}
}

func (dc *DemandChart) drawBars(svg *strings.Builder, report *dto.DemandReport, scale int64) {
	slot := dc.slot(len(report.Months))
	barWidth := int(slot * 0.6)
	base := dc.y(0, scale)

	for i, row := range report.Months {
		center := dc.MarginLeft + int(slot*(float64(i)+0.5))
		top := dc.y(row.ProjectedProjects, scale)
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"><title>%s: %d projects</title></rect>`,
			center-barWidth/2, top, barWidth, base-top, projectsColor, html.EscapeString(row.Label), row.ProjectedProjects))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" text-anchor="middle">%s</text>`,
			center, base+18, html.EscapeString(row.Label)))
	}
}

func (dc *DemandChart) drawLine(
	svg *strings.Builder,
	report *dto.DemandReport,
	scale int64,
	color string,
	value func(dto.MonthlyReportRow) int64,
) {
	slot := dc.slot(len(report.Months))
	points := make([]string, 0, len(report.Months))
	for i, row := range report.Months {
		x := dc.MarginLeft + int(slot*(float64(i)+0.5))
		points = append(points, fmt.Sprintf("%d,%d", x, dc.y(value(row), scale)))
	}
	svg.WriteString(fmt.Sprintf(`<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`,
		strings.Join(points, " "), color))
}

func (dc *DemandChart) drawLegend(svg *strings.Builder) {
	legendY := dc.Height - 30
	items := []struct {
		color string
		label string
	}{
		{projectsColor, "Projected projects"},
		{neededColor, "Resources needed"},
		{staffingColor, "Recommended staffing"},
	}

	for i, item := range items {
		x := dc.MarginLeft + i*180
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="15" height="10" fill="%s"/>`,
			x, legendY-9, item.color))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="legend-text">%s</text>`,
			x+20, legendY, item.label))
	}
}
