package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

// NumberParser converts one raw CSV cell into a number
type NumberParser func(raw string) (float64, error)

// Loader handles loading model inputs from CSV files
type Loader struct {
	parse NumberParser
}

// NewLoader creates a new CSV loader. A nil parser accepts only finite numbers.
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

// LoadDistribution loads a twelve-month distribution from a CSV file
func (l *Loader) LoadDistribution(filename string) (entities.MonthlyDistribution, error) {
	file, err := os.Open(filename)
	if err != nil {
		return entities.MonthlyDistribution{}, fmt.Errorf("failed to open distribution file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadDistribution(file)
}

// ReadDistribution reads `month,factor` rows in calendar order
func (l *Loader) ReadDistribution(r io.Reader) (entities.MonthlyDistribution, error) {
	records, err := readRecords(r, []string{"month", "factor"}, "distribution")
	if err != nil {
		return entities.MonthlyDistribution{}, err
	}

	entries := make([]entities.MonthFactor, 0, len(records))
	for i, record := range records {
		label := strings.TrimSpace(record[0])
		if label == "" {
			return entities.MonthlyDistribution{}, fmt.Errorf("distribution CSV row %d: month cannot be empty", i+2)
		}
		factor, err := l.parse(record[1])
		if err != nil {
			return entities.MonthlyDistribution{}, fmt.Errorf("distribution CSV row %d: invalid factor: %w", i+2, err)
		}
		entries = append(entries, entities.MonthFactor{Label: label, Factor: factor})
	}

	distribution, err := entities.NewMonthlyDistribution(entries)
	if err != nil {
		return entities.MonthlyDistribution{}, fmt.Errorf("distribution CSV: %w", err)
	}
	return distribution, nil
}

// LoadAssumptions loads assumption overrides from a CSV file on top of base
func (l *Loader) LoadAssumptions(filename string, base entities.Assumptions) (entities.Assumptions, error) {
	file, err := os.Open(filename)
	if err != nil {
		return base, fmt.Errorf("failed to open assumptions file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadAssumptions(file, base)
}

// ReadAssumptions reads `assumption,value` rows; keys not listed keep their value from base
func (l *Loader) ReadAssumptions(r io.Reader, base entities.Assumptions) (entities.Assumptions, error) {
	records, err := readRecords(r, []string{"assumption", "value"}, "assumptions")
	if err != nil {
		return base, err
	}

	result := base
	for i, record := range records {
		key, err := entities.ParseAssumptionKey(record[0])
		if err != nil {
			return base, fmt.Errorf("assumptions CSV row %d: %w", i+2, err)
		}
		value, err := l.parse(record[1])
		if err != nil {
			return base, fmt.Errorf("assumptions CSV row %d: invalid value for %s: %w", i+2, key, err)
		}
		if err := result.Set(key, value); err != nil {
			return base, fmt.Errorf("assumptions CSV row %d: %w", i+2, err)
		}
	}
	return result, nil
}

func readRecords(r io.Reader, expectedHeader []string, name string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}
