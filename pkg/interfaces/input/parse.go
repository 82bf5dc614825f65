// Package input turns raw user text into model inputs.
//
// Every raw value goes through ParseNumber with an explicit CoercionPolicy, so
// the demand model only ever sees numbers that were deliberately accepted.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

// ErrMalformedNumber is returned when raw text is not a finite number
var ErrMalformedNumber = errors.New("malformed number")

// CoercionPolicy decides what happens to text that does not parse
type CoercionPolicy int

const (
	// Reject returns ErrMalformedNumber for unparseable text
	Reject CoercionPolicy = iota
	// DefaultToZero substitutes 0 for unparseable text
	DefaultToZero
)

// String method for CoercionPolicy enum
func (p CoercionPolicy) String() string {
	switch p {
	case Reject:
		return "strict"
	case DefaultToZero:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseCoercionPolicy accepts "strict" (or "") and "lenient"
func ParseCoercionPolicy(name string) (CoercionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict", "reject":
		return Reject, nil
	case "lenient", "zero", "default-to-zero":
		return DefaultToZero, nil
	default:
		return Reject, fmt.Errorf("unknown coercion policy %q (expected strict or lenient)", name)
	}
}

// ParseNumber converts raw text to a float64 under the given policy.
// NaN and infinities are malformed under both policies.
func ParseNumber(raw string, policy CoercionPolicy) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(trimmed, 64)
	if err == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
		return value, nil
	}

	if policy == DefaultToZero {
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
}

// ApplyAssumption parses raw and stores it under the named assumption
func ApplyAssumption(a *entities.Assumptions, name, raw string, policy CoercionPolicy) error {
	key, err := entities.ParseAssumptionKey(name)
	if err != nil {
		return err
	}
	value, err := ParseNumber(raw, policy)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return a.Set(key, value)
}

// ApplyAssumptions applies every name/raw pair; the first failure stops and leaves a unchanged
func ApplyAssumptions(a *entities.Assumptions, values map[string]string, policy CoercionPolicy) error {
	updated := *a
	for name, raw := range values {
		if err := ApplyAssumption(&updated, name, raw, policy); err != nil {
			return err
		}
	}
	*a = updated
	return nil
}

// ApplyFactor parses raw and stores it as the factor of the month at index
func ApplyFactor(d *entities.MonthlyDistribution, index int, raw string, policy CoercionPolicy) error {
	if index < 0 || index >= entities.MonthsPerYear {
		return fmt.Errorf("%w: month index %d out of range", entities.ErrInvalidDistribution, index)
	}
	value, err := ParseNumber(raw, policy)
	if err != nil {
		return fmt.Errorf("factor for %s: %w", d[index].Label, err)
	}
	return d.SetFactor(index, value)
}
