package api

import (
	json "github.com/goccy/go-json"

	"github.com/vsinha/clinicaldemand/pkg/application/services"
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/cache"
)

// ComputeRequest is the body of POST /v1/compute. Assumption values and
// factors may be JSON numbers or strings; both go through the same parser.
type ComputeRequest struct {
	Assumptions  map[string]json.RawMessage `json:"assumptions"`
	Distribution []MonthRequest             `json:"distribution"`
	Coercion     string                     `json:"coercion"`
}

type MonthRequest struct {
	Month  string          `json:"month"`
	Factor json.RawMessage `json:"factor"`
}

type ErrorResponse struct {
	Status   int      `json:"status"`
	Message  string   `json:"message"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type DefaultsResponse struct {
	Assumptions  entities.Assumptions   `json:"assumptions"`
	Distribution []entities.MonthFactor `json:"distribution"`
}

type ScenarioListResponse struct {
	Scenarios []services.ScenarioSummary `json:"scenarios"`
}

type HealthResponse struct {
	Status string       `json:"status"`
	Cache  *cache.Stats `json:"cache,omitempty"`
}
