package events

import (
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

const (
	AssumptionChangedEvent   = "assumption.changed"
	DistributionChangedEvent = "distribution.changed"
	InputReplacedEvent       = "input.replaced"
	InputRejectedEvent       = "input.rejected"
	ResultComputedEvent      = "result.computed"
	ComputationFailedEvent   = "computation.failed"
)

// AllEventTypes lists every session event type
var AllEventTypes = []string{
	AssumptionChangedEvent,
	DistributionChangedEvent,
	InputReplacedEvent,
	InputRejectedEvent,
	ResultComputedEvent,
	ComputationFailedEvent,
}

type AssumptionChanged struct {
	Key      entities.AssumptionKey `json:"key"`
	OldValue float64                `json:"old_value"`
	NewValue float64                `json:"new_value"`
	Raw      string                 `json:"raw"`
}

type DistributionChanged struct {
	Month     string  `json:"month"`
	Index     int     `json:"index"`
	OldFactor float64 `json:"old_factor"`
	NewFactor float64 `json:"new_factor"`
	Raw       string  `json:"raw"`
}

type InputReplaced struct {
	Input entities.ModelInput `json:"input"`
}

type InputRejected struct {
	Field  string `json:"field"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

type ResultComputed struct {
	FinalRecommendation int64 `json:"final_recommendation"`
	BaseRequirement     int64 `json:"base_requirement"`
	Cached              bool  `json:"cached"`
}

type ComputationFailed struct {
	Reason string `json:"reason"`
}

func NewAssumptionChangedEvent(sessionID string, change AssumptionChanged) Event {
	return NewEvent(AssumptionChangedEvent, sessionID, change)
}

func NewDistributionChangedEvent(sessionID string, change DistributionChanged) Event {
	return NewEvent(DistributionChangedEvent, sessionID, change)
}

func NewInputReplacedEvent(sessionID string, input entities.ModelInput) Event {
	return NewEvent(InputReplacedEvent, sessionID, InputReplaced{Input: input})
}

func NewInputRejectedEvent(sessionID, field, raw string, err error) Event {
	return NewEvent(InputRejectedEvent, sessionID, InputRejected{
		Field:  field,
		Raw:    raw,
		Reason: err.Error(),
	})
}

func NewResultComputedEvent(sessionID string, bundle *entities.ResultBundle, cached bool) Event {
	return NewEvent(ResultComputedEvent, sessionID, ResultComputed{
		FinalRecommendation: bundle.FinalRecommendation,
		BaseRequirement:     bundle.BaseRequirement,
		Cached:              cached,
	})
}

func NewComputationFailedEvent(sessionID string, err error) Event {
	return NewEvent(ComputationFailedEvent, sessionID, ComputationFailed{Reason: err.Error()})
}
