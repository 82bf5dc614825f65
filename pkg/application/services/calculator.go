package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/vsinha/clinicaldemand/pkg/application/dto"
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	domainservices "github.com/vsinha/clinicaldemand/pkg/domain/services"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/cache"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/metrics"
)

// ValidationError is returned when strict validation rejects an input
type ValidationError struct {
	Result *domainservices.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Result.Errors, "; "))
}

// Calculator runs the demand model with optional memoization
type Calculator struct {
	model     *domainservices.DemandModel
	validator *domainservices.AssumptionValidator
	cache     *cache.ResultCache
}

// NewCalculator creates a calculator. A nil cache disables memoization.
func NewCalculator(resultCache *cache.ResultCache) *Calculator {
	return &Calculator{
		model:     domainservices.NewDemandModel(),
		validator: domainservices.NewAssumptionValidator(),
		cache:     resultCache,
	}
}

// Calculate computes the result bundle for input
func (c *Calculator) Calculate(ctx context.Context, input entities.ModelInput) (*entities.ResultBundle, error) {
	bundle, _, err := c.calculate(ctx, input)
	return bundle, err
}

func (c *Calculator) calculate(ctx context.Context, input entities.ModelInput) (*entities.ResultBundle, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	compute := func(in entities.ModelInput) (*entities.ResultBundle, error) {
		return c.model.Compute(in.Assumptions, in.Distribution)
	}

	var (
		bundle *entities.ResultBundle
		cached bool
		err    error
	)
	if c.cache != nil {
		bundle, cached, err = c.cache.GetOrCompute(input, compute)
	} else {
		bundle, err = compute(input)
	}
	elapsed := time.Since(start)

	if err != nil {
		metrics.ObserveComputation(metrics.OutcomeError, elapsed, 0)
		klog.V(2).InfoS("Demand computation failed", "err", err)
		return nil, false, fmt.Errorf("failed to compute demand: %w", err)
	}

	outcome := metrics.OutcomeOK
	if cached {
		outcome = metrics.OutcomeCached
	}
	metrics.ObserveComputation(outcome, elapsed, bundle.FinalRecommendation)
	klog.V(4).InfoS("Demand computed",
		"final", bundle.FinalRecommendation,
		"base", bundle.BaseRequirement,
		"cached", cached,
		"duration", elapsed)

	return bundle, cached, nil
}

// Validate runs the range checks without computing
func (c *Calculator) Validate(input entities.ModelInput) *domainservices.ValidationResult {
	return c.validator.Validate(input)
}

// Report computes input and builds its presentation view. In strict mode an input
// with validation errors is rejected with a *ValidationError before computing;
// warnings are attached to the report either way.
func (c *Calculator) Report(ctx context.Context, input entities.ModelInput, strict bool) (*dto.DemandReport, error) {
	validation := c.validator.Validate(input)
	if strict && !validation.Valid() {
		metrics.ObserveRejectedInput("validation")
		return nil, &ValidationError{Result: validation}
	}

	bundle, err := c.Calculate(ctx, input)
	if err != nil {
		return nil, err
	}

	report := dto.NewDemandReport(bundle)
	report.Warnings = validation.Warnings
	if !strict {
		report.Warnings = append(report.Warnings, validation.Errors...)
	}
	return report, nil
}
