package entities

import "fmt"

// MonthsPerYear is the fixed length of every monthly distribution
const MonthsPerYear = 12

// MonthFactor scales one calendar month's share of the average monthly project count
type MonthFactor struct {
	Label  string  `json:"month" yaml:"month"`
	Factor float64 `json:"factor" yaml:"factor"`
}

// MonthlyDistribution holds exactly twelve month factors in calendar order.
// Factors are not normalized: a mean other than 1.0 shifts the monthly totals away from the annual count.
type MonthlyDistribution [MonthsPerYear]MonthFactor

// DefaultDistribution returns the reference seasonal pattern (August and September peaks)
func DefaultDistribution() MonthlyDistribution {
	return MonthlyDistribution{
		{Label: "Jan", Factor: 0.8},
		{Label: "Feb", Factor: 0.8},
		{Label: "Mar", Factor: 1.0},
		{Label: "Apr", Factor: 0.8},
		{Label: "May", Factor: 0.8},
		{Label: "Jun", Factor: 1.0},
		{Label: "Jul", Factor: 0.8},
		{Label: "Aug", Factor: 1.6},
		{Label: "Sep", Factor: 1.6},
		{Label: "Oct", Factor: 0.8},
		{Label: "Nov", Factor: 1.0},
		{Label: "Dec", Factor: 0.8},
	}
}

// FlatDistribution returns the calendar months with every factor set to 1.0
func FlatDistribution() MonthlyDistribution {
	d := DefaultDistribution()
	for i := range d {
		d[i].Factor = 1.0
	}
	return d
}

// NewMonthlyDistribution builds a distribution from an ordered slice of entries
func NewMonthlyDistribution(entries []MonthFactor) (MonthlyDistribution, error) {
	var d MonthlyDistribution
	if len(entries) != MonthsPerYear {
		return d, fmt.Errorf("%w: expected %d months, got %d", ErrInvalidDistribution, MonthsPerYear, len(entries))
	}
	copy(d[:], entries)
	return d, nil
}

// Entries returns the months as a slice
func (d MonthlyDistribution) Entries() []MonthFactor {
	entries := make([]MonthFactor, MonthsPerYear)
	copy(entries, d[:])
	return entries
}

// SetFactor replaces the factor of the month at index (0 = first month)
func (d *MonthlyDistribution) SetFactor(index int, factor float64) error {
	if index < 0 || index >= MonthsPerYear {
		return fmt.Errorf("%w: month index %d out of range", ErrInvalidDistribution, index)
	}
	d[index].Factor = factor
	return nil
}

// IndexOf returns the position of the month with the given label, or -1
func (d MonthlyDistribution) IndexOf(label string) int {
	for i, m := range d {
		if m.Label == label {
			return i
		}
	}
	return -1
}

// MeanFactor returns the arithmetic mean of the twelve factors
func (d MonthlyDistribution) MeanFactor() float64 {
	var sum float64
	for _, m := range d {
		sum += m.Factor
	}
	return sum / MonthsPerYear
}

// ModelInput pairs the two caller-owned inputs of a computation.
// It is comparable, so structurally equal inputs can key a memo cache.
type ModelInput struct {
	Assumptions  Assumptions
	Distribution MonthlyDistribution
}

// DefaultModelInput returns the default assumptions with the default distribution
func DefaultModelInput() ModelInput {
	return ModelInput{
		Assumptions:  DefaultAssumptions(),
		Distribution: DefaultDistribution(),
	}
}

// Scenario is a named, described model input
type Scenario struct {
	Name        string
	Description string
	Input       ModelInput
}
