package input

import (
	"errors"
	"testing"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		policy    CoercionPolicy
		expected  float64
		expectErr bool
	}{
		{"integer", "16", Reject, 16, false},
		{"decimal with spaces", "  1.6 ", Reject, 1.6, false},
		{"negative", "-12.5", Reject, -12.5, false},
		{"exponent", "2e3", Reject, 2000, false},
		{"empty strict", "", Reject, 0, true},
		{"garbage strict", "sixteen", Reject, 0, true},
		{"trailing text strict", "16 projects", Reject, 0, true},
		{"nan strict", "NaN", Reject, 0, true},
		{"inf strict", "+Inf", Reject, 0, true},
		{"empty lenient", "", DefaultToZero, 0, false},
		{"garbage lenient", "abc", DefaultToZero, 0, false},
		{"nan lenient", "NaN", DefaultToZero, 0, false},
		{"valid lenient", "50", DefaultToZero, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.raw, tt.policy)
			if tt.expectErr {
				if !errors.Is(err, ErrMalformedNumber) {
					t.Fatalf("Expected ErrMalformedNumber, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNumber failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %g, got %g", tt.expected, got)
			}
		})
	}
}

func TestParseCoercionPolicy(t *testing.T) {
	for raw, expected := range map[string]CoercionPolicy{
		"":        Reject,
		"strict":  Reject,
		"LENIENT": DefaultToZero,
	} {
		got, err := ParseCoercionPolicy(raw)
		if err != nil {
			t.Fatalf("ParseCoercionPolicy(%q) failed: %v", raw, err)
		}
		if got != expected {
			t.Errorf("ParseCoercionPolicy(%q): expected %s, got %s", raw, expected, got)
		}
	}

	if _, err := ParseCoercionPolicy("sometimes"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}

func TestApplyAssumption(t *testing.T) {
	a := entities.DefaultAssumptions()

	if err := ApplyAssumption(&a, "q3ProjectCount", "20", Reject); err != nil {
		t.Fatalf("ApplyAssumption failed: %v", err)
	}
	if a.QuarterlyProjectCount != 20 {
		t.Errorf("Expected quarterly count 20, got %g", a.QuarterlyProjectCount)
	}

	err := ApplyAssumption(&a, "availabilityFactor", "half", Reject)
	if !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("Expected ErrMalformedNumber, got %v", err)
	}
	if a.AvailabilityFactorPercent != 50 {
		t.Errorf("Expected rejected input to leave availability at 50, got %g", a.AvailabilityFactorPercent)
	}

	// Source-compatible behaviour: garbage becomes zero
	if err := ApplyAssumption(&a, "availabilityFactor", "half", DefaultToZero); err != nil {
		t.Fatalf("ApplyAssumption failed: %v", err)
	}
	if a.AvailabilityFactorPercent != 0 {
		t.Errorf("Expected availability coerced to 0, got %g", a.AvailabilityFactorPercent)
	}

	if err := ApplyAssumption(&a, "staffCount", "3", Reject); !errors.Is(err, entities.ErrUnknownAssumption) {
		t.Errorf("Expected ErrUnknownAssumption, got %v", err)
	}
}

func TestApplyAssumptions_AllOrNothing(t *testing.T) {
	a := entities.DefaultAssumptions()

	err := ApplyAssumptions(&a, map[string]string{
		"clinicalHoursPerProject": "120",
		"growthRate":              "ten",
	}, Reject)
	if err == nil {
		t.Fatal("Expected error for malformed growth rate")
	}
	if a != entities.DefaultAssumptions() {
		t.Errorf("Expected assumptions unchanged after a failed batch")
	}

	err = ApplyAssumptions(&a, map[string]string{
		"clinicalHoursPerProject": "120",
		"growthRate":              "10",
	}, Reject)
	if err != nil {
		t.Fatalf("ApplyAssumptions failed: %v", err)
	}
	if a.ClinicalHoursPerProject != 120 || a.GrowthRatePercent != 10 {
		t.Errorf("Expected both values applied, got %+v", a)
	}
}

func TestApplyFactor(t *testing.T) {
	d := entities.DefaultDistribution()

	if err := ApplyFactor(&d, 0, "1.25", Reject); err != nil {
		t.Fatalf("ApplyFactor failed: %v", err)
	}
	if d[0].Factor != 1.25 {
		t.Errorf("Expected Jan factor 1.25, got %g", d[0].Factor)
	}

	if err := ApplyFactor(&d, 1, "x", Reject); !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("Expected ErrMalformedNumber, got %v", err)
	}
	if err := ApplyFactor(&d, 1, "x", DefaultToZero); err != nil || d[1].Factor != 0 {
		t.Errorf("Expected Feb factor coerced to 0, got %g (err %v)", d[1].Factor, err)
	}
	if err := ApplyFactor(&d, 12, "1", Reject); !errors.Is(err, entities.ErrInvalidDistribution) {
		t.Errorf("Expected ErrInvalidDistribution, got %v", err)
	}
}
