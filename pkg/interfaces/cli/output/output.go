package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
)

// Formats lists the supported output formats
var Formats = []string{"text", "json", "csv", "html", "svg"}

// Config holds configuration for output generation
type Config struct {
	Format string
	// OutputPath is the file to write; empty writes to stdout
	OutputPath  string
	Verbose     bool
	ComputeTime time.Duration
	InputFiles  map[string]string
}

// Generate renders the report and writes it to the configured destination
func Generate(report *dto.DemandReport, config Config) error {
	var buf bytes.Buffer
	if err := Render(&buf, report, config); err != nil {
		return err
	}

	if config.OutputPath == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	if dir := filepath.Dir(config.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(config.OutputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s output: %w", config.Format, err)
	}

	if config.Verbose {
		fmt.Printf("💾 %s report saved to: %s (%d bytes)\n", config.Format, config.OutputPath, buf.Len())
	}
	return nil
}

// Render writes the report to w in the configured format
func Render(w io.Writer, report *dto.DemandReport, config Config) error {
	switch config.Format {
	case "", "text":
		return renderText(w, report, config)
	case "json":
		return renderJSON(w, report)
	case "csv":
		return renderCSV(w, report)
	case "html":
		return renderHTML(w, report, config)
	case "svg":
		_, err := io.WriteString(w, NewDemandChart().GenerateSVG(report))
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func renderJSON(w io.Writer, report *dto.DemandReport) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(jsonData); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// formatUtilization renders a utilization percentage, or n/a when staffing is zero
func formatUtilization(row dto.MonthlyReportRow) string {
	if row.UtilizationPercent == nil {
		return "n/a"
	}
	return row.UtilizationPercent.StringFixed(1) + "%"
}

// formatDuration formats a duration into a short human-readable form
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
