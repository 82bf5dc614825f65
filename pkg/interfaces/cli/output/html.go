package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html").
		Funcs(template.FuncMap{"utilization": formatUtilization}).
		ParseFS(templateFS, "templates/report.html"),
)

type methodRow struct {
	Name    string
	Value   int64
	Binding bool
}

// templateData contains all data for rendering the HTML report
type templateData struct {
	Report      *dto.DemandReport
	Methods     []methodRow
	Chart       template.HTML
	GeneratedAt string
	ComputeTime string
}

func renderHTML(w io.Writer, report *dto.DemandReport, config Config) error {
	data := templateData{
		Report: report,
		Methods: []methodRow{
			{"Hours-based", report.Methods.HoursBased, report.Methods.BindingMethod == "hours"},
			{"Concurrency-based", report.Methods.ConcurrencyBased, report.Methods.BindingMethod == "concurrency"},
			{"Peak-based", report.Methods.PeakBased, report.Methods.BindingMethod == "peak"},
		},
		// GenerateSVG escapes every label it writes
		Chart:       template.HTML(NewDemandChart().GenerateSVG(report)),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	if config.ComputeTime > 0 {
		data.ComputeTime = formatDuration(config.ComputeTime)
	}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
