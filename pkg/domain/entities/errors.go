package entities

import "errors"

var (
	// ErrNonPositiveDivisor is returned when a quantity used as a division base is zero or negative
	ErrNonPositiveDivisor = errors.New("division base must be positive")

	// ErrNonFiniteValue is returned when an input is NaN or infinite
	ErrNonFiniteValue = errors.New("value must be a finite number")

	// ErrResultOutOfRange is returned when an integer result does not fit in an int64
	ErrResultOutOfRange = errors.New("result out of range")

	// ErrUnknownAssumption is returned for an assumption key that does not exist
	ErrUnknownAssumption = errors.New("unknown assumption")

	// ErrInvalidDistribution is returned when a monthly distribution does not have exactly 12 entries
	ErrInvalidDistribution = errors.New("invalid monthly distribution")

	// ErrScenarioNotFound is returned when a named scenario is not in the catalog
	ErrScenarioNotFound = errors.New("scenario not found")
)
