package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	domainservices "github.com/vsinha/clinicaldemand/pkg/domain/services"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/cache"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/events"
)

func strictParse(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

type eventRecorder struct {
	mutex sync.Mutex
	types []string
}

func (r *eventRecorder) Handle(event events.Event) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.types = append(r.types, event.Type)
	return nil
}

func (r *eventRecorder) take() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	types := r.types
	r.types = nil
	return types
}

func newTestSession(t *testing.T) (*PlanningSession, *eventRecorder) {
	t.Helper()
	store := events.NewInMemoryEventStore()
	recorder := &eventRecorder{}
	store.Subscribe(events.AllEventTypes, recorder)

	session := NewPlanningSession(
		"test-session",
		NewCalculator(cache.NewResultCache(32)),
		store,
		strictParse,
		entities.DefaultModelInput(),
	)
	return session, recorder
}

func assertEventTypes(t *testing.T, got []string, expected ...string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("Expected events %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Event %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestPlanningSession_InitialResult(t *testing.T) {
	session, recorder := newTestSession(t)

	bundle, err := session.Result(context.Background())
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if bundle.FinalRecommendation != 14 {
		t.Errorf("Expected final recommendation 14, got %d", bundle.FinalRecommendation)
	}
	assertEventTypes(t, recorder.take(), events.ResultComputedEvent)

	// A second read returns the stored bundle without recomputing
	again, err := session.Result(context.Background())
	if err != nil || again != bundle {
		t.Errorf("Expected the stored bundle, got %v / %v", again, err)
	}
	assertEventTypes(t, recorder.take())
}

func TestPlanningSession_SetAssumption(t *testing.T) {
	session, recorder := newTestSession(t)

	bundle, err := session.SetAssumption(context.Background(), "quarterlyProjectCount", " 32 ")
	if err != nil {
		t.Fatalf("SetAssumption failed: %v", err)
	}

	// 128 projects/year: peak month ceil(128*1.6/12) = 18 projects -> 24 resources, +4 buffer
	if bundle.PeakBasedResources != 24 || bundle.FinalRecommendation != 28 {
		t.Errorf("Expected peak 24 / final 28, got %d / %d", bundle.PeakBasedResources, bundle.FinalRecommendation)
	}
	if got := session.Snapshot().Assumptions.QuarterlyProjectCount; got != 32 {
		t.Errorf("Expected snapshot to hold 32, got %g", got)
	}
	assertEventTypes(t, recorder.take(), events.AssumptionChangedEvent, events.ResultComputedEvent)

	// Legacy alias resolves to the same assumption
	if _, err := session.SetAssumption(context.Background(), "q3ProjectCount", "16"); err != nil {
		t.Fatalf("Alias SetAssumption failed: %v", err)
	}
	if got := session.Snapshot().Assumptions.QuarterlyProjectCount; got != 16 {
		t.Errorf("Expected alias to set 16, got %g", got)
	}
}

func TestPlanningSession_RejectedInputLeavesStateUnchanged(t *testing.T) {
	session, recorder := newTestSession(t)
	before := session.Snapshot()

	tests := []struct {
		name     string
		apply    func() error
		sentinel error
	}{
		{
			name: "malformed number",
			apply: func() error {
				_, err := session.SetAssumption(context.Background(), "clinicalHoursPerProject", "abc")
				return err
			},
		},
		{
			name: "unknown assumption",
			apply: func() error {
				_, err := session.SetAssumption(context.Background(), "coffeeBudget", "10")
				return err
			},
			sentinel: entities.ErrUnknownAssumption,
		},
		{
			name: "month out of range",
			apply: func() error {
				_, err := session.SetMonthFactor(context.Background(), 12, "1.0")
				return err
			},
			sentinel: entities.ErrInvalidDistribution,
		},
		{
			name: "empty factor",
			apply: func() error {
				_, err := session.SetMonthFactor(context.Background(), 3, "")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.apply()
			if err == nil {
				t.Fatal("Expected rejection")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected %v, got %v", tt.sentinel, err)
			}
			if session.Snapshot() != before {
				t.Error("Rejected input must not change the session input")
			}
			assertEventTypes(t, recorder.take(), events.InputRejectedEvent)
		})
	}
}

func TestPlanningSession_FailedRecomputeKeepsEdit(t *testing.T) {
	session, recorder := newTestSession(t)
	ctx := context.Background()

	_, err := session.SetAssumption(ctx, "availabilityFactor", "0")
	if !errors.Is(err, entities.ErrNonPositiveDivisor) {
		t.Fatalf("Expected ErrNonPositiveDivisor, got %v", err)
	}
	if got := session.Snapshot().Assumptions.AvailabilityFactorPercent; got != 0 {
		t.Errorf("Expected the edit to be kept, got %g", got)
	}
	assertEventTypes(t, recorder.take(), events.AssumptionChangedEvent, events.ComputationFailedEvent)

	if _, err := session.Result(ctx); !errors.Is(err, entities.ErrNonPositiveDivisor) {
		t.Errorf("Result should report the stored failure, got %v", err)
	}

	bundle, err := session.SetAssumption(ctx, "availabilityFactor", "50")
	if err != nil {
		t.Fatalf("Recovery failed: %v", err)
	}
	if bundle.FinalRecommendation != 14 {
		t.Errorf("Expected recovery to final 14, got %d", bundle.FinalRecommendation)
	}
}

func TestPlanningSession_SetMonthFactor(t *testing.T) {
	session, recorder := newTestSession(t)

	bundle, err := session.SetMonthFactor(context.Background(), 0, "2.0")
	if err != nil {
		t.Fatalf("SetMonthFactor failed: %v", err)
	}
	// January: round(64*2/12) = 11 projects, 1243 hours -> ceil(14.34) = 15 resources
	jan := bundle.MonthlyRows[0]
	if jan.ProjectedProjects != 11 || jan.ResourcesNeeded != 15 {
		t.Errorf("Expected Jan 11 projects / 15 resources, got %d / %d", jan.ProjectedProjects, jan.ResourcesNeeded)
	}
	// Monthly factors never feed the headline estimates
	if bundle.FinalRecommendation != 14 {
		t.Errorf("Expected final recommendation to stay 14, got %d", bundle.FinalRecommendation)
	}
	assertEventTypes(t, recorder.take(), events.DistributionChangedEvent, events.ResultComputedEvent)
}

func TestPlanningSession_Replace(t *testing.T) {
	session, recorder := newTestSession(t)

	input := entities.DefaultModelInput()
	input.Assumptions.SafetyBufferPercent = 0
	bundle, err := session.Replace(context.Background(), input)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if bundle.FinalRecommendation != 12 {
		t.Errorf("Expected final recommendation 12 without buffer, got %d", bundle.FinalRecommendation)
	}
	if session.Snapshot() != input {
		t.Error("Snapshot should equal the replaced input")
	}
	assertEventTypes(t, recorder.take(), events.InputReplacedEvent, events.ResultComputedEvent)
}

func TestPlanningSession_CancelledResultRetries(t *testing.T) {
	session, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := session.Result(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	bundle, err := session.Result(context.Background())
	if err != nil {
		t.Fatalf("Result after cancellation failed: %v", err)
	}
	if bundle.FinalRecommendation != 14 {
		t.Errorf("Expected final recommendation 14, got %d", bundle.FinalRecommendation)
	}
}

func TestPlanningSession_ConcurrentEdits(t *testing.T) {
	session := NewPlanningSession("concurrent", NewCalculator(nil), nil, strictParse, entities.DefaultModelInput())

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(month int) {
			defer wg.Done()
			if _, err := session.SetMonthFactor(context.Background(), month, "1"); err != nil {
				t.Errorf("SetMonthFactor(%d) failed: %v", month, err)
			}
		}(i)
	}
	wg.Wait()

	if session.Snapshot().Distribution != entities.FlatDistribution() {
		t.Error("Expected every month to end at factor 1")
	}
}

func TestPlanningSession_ConcurrentEditsKeepEventPairs(t *testing.T) {
	store := events.NewInMemoryEventStore()
	session := NewPlanningSession("ordered", NewCalculator(nil), store, strictParse, entities.DefaultModelInput())
	ctx := context.Background()

	var wg sync.WaitGroup
	for count := 10; count < 30; count++ {
		wg.Add(1)
		go func(count int) {
			defer wg.Done()
			if _, err := session.SetAssumption(ctx, "quarterlyProjectCount", strconv.Itoa(count)); err != nil {
				t.Errorf("SetAssumption(%d) failed: %v", count, err)
			}
		}(count)
	}
	wg.Wait()

	stream, err := store.ReadEvents(session.ID(), 1)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(stream) != 40 {
		t.Fatalf("Expected 40 events, got %d", len(stream))
	}

	model := domainservices.NewDemandModel()
	for i := 0; i < len(stream); i += 2 {
		change, ok := stream[i].Data.(events.AssumptionChanged)
		if !ok {
			t.Fatalf("Event %d: expected assumption change, got %s", i, stream[i].Type)
		}
		computed, ok := stream[i+1].Data.(events.ResultComputed)
		if !ok {
			t.Fatalf("Event %d: expected result for the change before it, got %s", i+1, stream[i+1].Type)
		}

		a := entities.DefaultAssumptions()
		a.QuarterlyProjectCount = change.NewValue
		expected, err := model.Compute(a, entities.DefaultDistribution())
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if computed.FinalRecommendation != expected.FinalRecommendation {
			t.Errorf("Events %d-%d: result %d does not belong to quarterly count %g (expected %d)",
				i, i+1, computed.FinalRecommendation, change.NewValue, expected.FinalRecommendation)
		}
	}
}
