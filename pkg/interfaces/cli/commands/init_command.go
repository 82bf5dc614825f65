package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/yaml"
)

// InitConfig holds configuration for writing starter input files
type InitConfig struct {
	Path    string // Scenario YAML file to create
	WithCSV bool   // Also write distribution.csv and assumptions.csv next to it
	Verbose bool
}

// InitCommand writes a default scenario template
type InitCommand struct {
	config InitConfig
}

// NewInitCommand creates a new init command
func NewInitCommand(config InitConfig) *InitCommand {
	return &InitCommand{config: config}
}

// Execute runs the init command
func (cmd *InitCommand) Execute(ctx context.Context) error {
	if cmd.config.Path == "" {
		return fmt.Errorf("init requires a target file")
	}

	if err := yaml.WriteTemplate(cmd.config.Path); err != nil {
		return err
	}
	fmt.Printf("✅ Scenario template written to %s\n", cmd.config.Path)

	if !cmd.config.WithCSV {
		return nil
	}

	dir := filepath.Dir(cmd.config.Path)
	input := entities.DefaultModelInput()

	if cmd.config.Verbose {
		fmt.Println("📅 Generating distribution.csv...")
	}
	if err := cmd.writeDistribution(filepath.Join(dir, "distribution.csv"), input.Distribution); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Println("🧮 Generating assumptions.csv...")
	}
	if err := cmd.writeAssumptions(filepath.Join(dir, "assumptions.csv"), input.Assumptions); err != nil {
		return err
	}

	fmt.Printf("✅ CSV inputs written to %s\n", dir)
	return nil
}

func (cmd *InitCommand) writeDistribution(filePath string, distribution entities.MonthlyDistribution) error {
	file, err := createNew(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "month,factor")
	for _, month := range distribution {
		fmt.Fprintf(file, "%s,%s\n", month.Label, strconv.FormatFloat(month.Factor, 'g', -1, 64))
	}
	return nil
}

func (cmd *InitCommand) writeAssumptions(filePath string, assumptions entities.Assumptions) error {
	file, err := createNew(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "assumption,value")
	for _, key := range entities.AssumptionKeys {
		value, err := assumptions.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(file, "%s,%s\n", key, strconv.FormatFloat(value, 'g', -1, 64))
	}
	return nil
}

// createNew creates filePath, failing if it already exists
func createNew(filePath string) (*os.File, error) {
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	return file, nil
}
