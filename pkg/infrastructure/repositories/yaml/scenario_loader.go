package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

// SchemaVersion is the only scenario file version understood by the loader
const SchemaVersion = 1

// DefaultScenarioYAML is the template written by `demand -init`
const DefaultScenarioYAML = `# clinical resource demand scenario
version: 1
name: default
description: Reference scenario, one representative quarter annualized

# Any assumption left out keeps its default value.
assumptions:
  quarterlyProjectCount: 16
  clinicalHoursPerProject: 113
  availabilityFactor: 50        # percent of working hours billable to projects
  maxConcurrentProjects: 3
  workingHoursPerYear: 2080
  safetyBufferPercent: 15
  avgProjectDurationWeeks: 16
  peakMonthMultiplier: 1.6
  growthRate: 0                 # percent, may be negative

# Exactly twelve months in calendar order. Factors are not normalized.
distribution:
  - {month: Jan, factor: 0.8}
  - {month: Feb, factor: 0.8}
  - {month: Mar, factor: 1.0}
  - {month: Apr, factor: 0.8}
  - {month: May, factor: 0.8}
  - {month: Jun, factor: 1.0}
  - {month: Jul, factor: 0.8}
  - {month: Aug, factor: 1.6}
  - {month: Sep, factor: 1.6}
  - {month: Oct, factor: 0.8}
  - {month: Nov, factor: 1.0}
  - {month: Dec, factor: 0.8}
`

// NumberParser converts one raw scalar into a number
type NumberParser func(raw string) (float64, error)

// scenarioFile models a scenario YAML document. Numbers are kept as raw
// scalars so they pass through the same parser as any other user input.
type scenarioFile struct {
	Version      int               `yaml:"version"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Assumptions  map[string]string `yaml:"assumptions"`
	Distribution []monthEntry      `yaml:"distribution"`
}

type monthEntry struct {
	Month  string `yaml:"month"`
	Factor string `yaml:"factor"`
}

// Loader reads scenario files
type Loader struct {
	parse NumberParser
}

// NewLoader creates a new scenario loader. A nil parser accepts only finite numbers.
func NewLoader(parse NumberParser) *Loader {
	if parse == nil {
		parse = parseFinite
	}
	return &Loader{parse: parse}
}

// parseFinite is the default parser: plain decimal numbers only, never NaN or Inf
func parseFinite(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", entities.ErrNonFiniteValue, raw)
	}
	return value, nil
}

// LoadScenario reads one scenario file. The name defaults to the file's base name.
func (l *Loader) LoadScenario(path string) (*entities.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	scenario, err := l.ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario file %s: %w", path, err)
	}
	if scenario.Name == "" {
		base := filepath.Base(path)
		scenario.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return scenario, nil
}

// ParseScenario decodes a scenario document
func (l *Loader) ParseScenario(data []byte) (*entities.Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if file.Version != 0 && file.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported scenario version %d (expected %d)", file.Version, SchemaVersion)
	}

	input := entities.DefaultModelInput()

	// Sorted so the first reported error does not depend on map order
	names := make([]string, 0, len(file.Assumptions))
	for name := range file.Assumptions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key, err := entities.ParseAssumptionKey(name)
		if err != nil {
			return nil, err
		}
		value, err := l.parse(file.Assumptions[name])
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if err := input.Assumptions.Set(key, value); err != nil {
			return nil, err
		}
	}

	if file.Distribution != nil {
		entries := make([]entities.MonthFactor, 0, len(file.Distribution))
		for i, month := range file.Distribution {
			if strings.TrimSpace(month.Month) == "" {
				return nil, fmt.Errorf("distribution entry %d: month cannot be empty", i+1)
			}
			factor, err := l.parse(month.Factor)
			if err != nil {
				return nil, fmt.Errorf("distribution entry %d (%s): invalid factor: %w", i+1, month.Month, err)
			}
			entries = append(entries, entities.MonthFactor{Label: month.Month, Factor: factor})
		}

		distribution, err := entities.NewMonthlyDistribution(entries)
		if err != nil {
			return nil, err
		}
		input.Distribution = distribution
	}

	return &entities.Scenario{
		Name:        file.Name,
		Description: file.Description,
		Input:       input,
	}, nil
}

// LoadScenarioDir reads every *.yaml and *.yml file in dir, sorted by file name
func (l *Loader) LoadScenarioDir(dir string) ([]*entities.Scenario, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory %s: %w", dir, err)
	}

	var scenarios []*entities.Scenario
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		scenario, err := l.LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// WriteTemplate writes DefaultScenarioYAML to path, refusing to overwrite an existing file
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("scenario file %s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(DefaultScenarioYAML), 0644); err != nil {
		return fmt.Errorf("failed to write scenario template: %w", err)
	}
	return nil
}
