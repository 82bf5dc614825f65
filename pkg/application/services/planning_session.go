package services

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/klog/v2"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/events"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/metrics"
)

// NumberParser turns raw user text into a number
type NumberParser func(raw string) (float64, error)

// PlanningSession holds one editable model input and its latest result.
// Every accepted edit recomputes in full; rejected text leaves the input untouched.
// Events reach the store in edit order. Subscribers may read the session but must not edit it.
type PlanningSession struct {
	id         string
	calculator *Calculator
	store      events.EventStore
	parse      NumberParser

	// publishMutex is taken before mutex is released, so each edit's events are appended together
	publishMutex sync.Mutex

	mutex   sync.Mutex
	input   entities.ModelInput
	result  *entities.ResultBundle
	lastErr error
	stale   bool
}

// NewPlanningSession creates a session starting from initial. store may be nil.
func NewPlanningSession(
	id string,
	calculator *Calculator,
	store events.EventStore,
	parse NumberParser,
	initial entities.ModelInput,
) *PlanningSession {
	return &PlanningSession{
		id:         id,
		calculator: calculator,
		store:      store,
		parse:      parse,
		input:      initial,
		stale:      true,
	}
}

// ID returns the session's event stream id
func (s *PlanningSession) ID() string {
	return s.id
}

// SetAssumption parses raw and stores it under the named assumption, then recomputes
func (s *PlanningSession) SetAssumption(ctx context.Context, name, raw string) (*entities.ResultBundle, error) {
	key, err := entities.ParseAssumptionKey(name)
	if err != nil {
		s.reject(name, raw, err)
		return nil, err
	}
	value, err := s.parse(raw)
	if err != nil {
		err = fmt.Errorf("%s: %w", key, err)
		s.reject(string(key), raw, err)
		return nil, err
	}

	s.mutex.Lock()
	old, _ := s.input.Assumptions.Get(key)
	if err := s.input.Assumptions.Set(key, value); err != nil {
		s.mutex.Unlock()
		return nil, err
	}
	pending := []events.Event{events.NewAssumptionChangedEvent(s.id, events.AssumptionChanged{
		Key:      key,
		OldValue: old,
		NewValue: value,
		Raw:      raw,
	})}
	bundle, outcome, err := s.recomputeLocked(ctx)
	s.unlockAndPublish(append(pending, outcome)...)
	return bundle, err
}

// SetMonthFactor parses raw and stores it as the factor of the month at index, then recomputes
func (s *PlanningSession) SetMonthFactor(ctx context.Context, index int, raw string) (*entities.ResultBundle, error) {
	field := fmt.Sprintf("distribution[%d]", index)
	if index < 0 || index >= entities.MonthsPerYear {
		err := fmt.Errorf("%w: month index %d out of range", entities.ErrInvalidDistribution, index)
		s.reject(field, raw, err)
		return nil, err
	}
	value, err := s.parse(raw)
	if err != nil {
		err = fmt.Errorf("factor for month %d: %w", index+1, err)
		s.reject(field, raw, err)
		return nil, err
	}

	s.mutex.Lock()
	month := s.input.Distribution[index]
	s.input.Distribution[index].Factor = value
	pending := []events.Event{events.NewDistributionChangedEvent(s.id, events.DistributionChanged{
		Month:     month.Label,
		Index:     index,
		OldFactor: month.Factor,
		NewFactor: value,
		Raw:       raw,
	})}
	bundle, outcome, err := s.recomputeLocked(ctx)
	s.unlockAndPublish(append(pending, outcome)...)
	return bundle, err
}

// Replace swaps the whole input, then recomputes
func (s *PlanningSession) Replace(ctx context.Context, input entities.ModelInput) (*entities.ResultBundle, error) {
	s.mutex.Lock()
	s.input = input
	pending := []events.Event{events.NewInputReplacedEvent(s.id, input)}
	bundle, outcome, err := s.recomputeLocked(ctx)
	s.unlockAndPublish(append(pending, outcome)...)
	return bundle, err
}

// Result returns the latest bundle, computing it first if nothing has been computed yet.
// After a failed recompute it returns the stored error.
func (s *PlanningSession) Result(ctx context.Context) (*entities.ResultBundle, error) {
	s.mutex.Lock()
	if !s.stale {
		bundle, err := s.result, s.lastErr
		s.mutex.Unlock()
		return bundle, err
	}
	bundle, outcome, err := s.recomputeLocked(ctx)
	s.unlockAndPublish(outcome)
	return bundle, err
}

// Snapshot returns a copy of the current input
func (s *PlanningSession) Snapshot() entities.ModelInput {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.input
}

// recomputeLocked runs the model on the current input. The edit stays in place on failure.
func (s *PlanningSession) recomputeLocked(ctx context.Context) (*entities.ResultBundle, events.Event, error) {
	bundle, cached, err := s.calculator.calculate(ctx, s.input)
	if err != nil {
		s.result, s.lastErr = nil, err
		// a cancelled context leaves the result to be computed on the next Result call
		s.stale = ctx.Err() != nil
		return nil, events.NewComputationFailedEvent(s.id, err), err
	}
	s.result, s.lastErr, s.stale = bundle, nil, false
	return bundle, events.NewResultComputedEvent(s.id, bundle, cached), nil
}

func (s *PlanningSession) reject(field, raw string, err error) {
	metrics.ObserveRejectedInput("parse")
	klog.V(2).InfoS("Rejected session input", "session", s.id, "field", field, "raw", raw, "err", err)

	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()
	s.publish(events.NewInputRejectedEvent(s.id, field, raw, err))
}

// unlockAndPublish releases the state lock and appends pending before any later edit can
func (s *PlanningSession) unlockAndPublish(pending ...events.Event) {
	s.publishMutex.Lock()
	s.mutex.Unlock()
	defer s.publishMutex.Unlock()
	s.publish(pending...)
}

func (s *PlanningSession) publish(pending ...events.Event) {
	if s.store == nil {
		return
	}
	for _, event := range pending {
		if _, err := s.store.AppendEvent(event); err != nil {
			klog.ErrorS(err, "Failed to append session event", "session", s.id, "type", event.Type)
		}
	}
}
