package api

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"k8s.io/klog/v2"

	"github.com/vsinha/clinicaldemand/pkg/application/services"
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/cache"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/metrics"
	"github.com/vsinha/clinicaldemand/pkg/interfaces/input"
)

const scenariosPrefix = "/v1/scenarios/"

// Handler serves the demand model over HTTP
type Handler struct {
	calculator *services.Calculator
	scenarios  *services.ScenarioService
	cache      *cache.ResultCache
	metrics    fasthttp.RequestHandler
}

// NewHandler creates a handler. scenarios and resultCache may be nil.
func NewHandler(
	calculator *services.Calculator,
	scenarios *services.ScenarioService,
	resultCache *cache.ResultCache,
) *Handler {
	return &Handler{
		calculator: calculator,
		scenarios:  scenarios,
		cache:      resultCache,
		metrics:    fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()),
	}
}

// HandleRequest routes one request and records its metrics
func (h *Handler) HandleRequest(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	route := h.route(ctx)

	elapsed := time.Since(start)
	code := ctx.Response.StatusCode()
	metrics.ObserveRequest(route, strconv.Itoa(code), elapsed)
	klog.V(3).InfoS("Handled request",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", code,
		"duration", elapsed)
}

// route dispatches the request and returns the route label used for metrics
func (h *Handler) route(ctx *fasthttp.RequestCtx) string {
	path := string(ctx.Path())

	switch {
	case path == "/v1/compute":
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			return path
		}
		h.handleCompute(ctx)
		return path
	case path == "/v1/defaults":
		if requireGet(ctx) {
			h.handleDefaults(ctx)
		}
		return path
	case path == "/v1/scenarios":
		if requireGet(ctx) {
			h.handleListScenarios(ctx)
		}
		return path
	case strings.HasPrefix(path, scenariosPrefix):
		if requireGet(ctx) {
			h.handleScenario(ctx, strings.TrimPrefix(path, scenariosPrefix))
		}
		return scenariosPrefix + "{name}"
	case path == "/healthz":
		h.handleHealth(ctx)
		return path
	case path == "/metrics":
		h.metrics(ctx)
		return path
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
		return "other"
	}
}

func (h *Handler) handleCompute(ctx *fasthttp.RequestCtx) {
	var req ComputeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	policy, err := input.ParseCoercionPolicy(req.Coercion)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	modelInput, err := buildInput(req, policy)
	if err != nil {
		metrics.ObserveRejectedInput("parse")
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	report, err := h.calculator.Report(ctx, modelInput, policy == input.Reject)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, report)
}

// buildInput applies the request on top of the default input
func buildInput(req ComputeRequest, policy input.CoercionPolicy) (entities.ModelInput, error) {
	modelInput := entities.DefaultModelInput()

	names := make([]string, 0, len(req.Assumptions))
	for name := range req.Assumptions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := input.ApplyAssumption(&modelInput.Assumptions, name, rawText(req.Assumptions[name]), policy); err != nil {
			return modelInput, err
		}
	}

	if req.Distribution == nil {
		return modelInput, nil
	}
	if len(req.Distribution) != entities.MonthsPerYear {
		return modelInput, fmt.Errorf("%w: expected %d months, got %d",
			entities.ErrInvalidDistribution, entities.MonthsPerYear, len(req.Distribution))
	}
	for i, month := range req.Distribution {
		label := strings.TrimSpace(month.Month)
		if label == "" {
			return modelInput, fmt.Errorf("%w: month %d has an empty label", entities.ErrInvalidDistribution, i+1)
		}
		modelInput.Distribution[i].Label = label
		if err := input.ApplyFactor(&modelInput.Distribution, i, rawText(month.Factor), policy); err != nil {
			return modelInput, err
		}
	}
	return modelInput, nil
}

// rawText unwraps a JSON string, or returns any other literal as written
func rawText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

func (h *Handler) handleDefaults(ctx *fasthttp.RequestCtx) {
	defaults := entities.DefaultModelInput()
	writeJSON(ctx, fasthttp.StatusOK, DefaultsResponse{
		Assumptions:  defaults.Assumptions,
		Distribution: defaults.Distribution.Entries(),
	})
}

func (h *Handler) handleListScenarios(ctx *fasthttp.RequestCtx) {
	response := ScenarioListResponse{Scenarios: []services.ScenarioSummary{}}
	if h.scenarios != nil {
		summaries, err := h.scenarios.List()
		if err != nil {
			writeFailure(ctx, err)
			return
		}
		response.Scenarios = summaries
	}
	writeJSON(ctx, fasthttp.StatusOK, response)
}

func (h *Handler) handleScenario(ctx *fasthttp.RequestCtx, name string) {
	if h.scenarios == nil || name == "" {
		writeError(ctx, fasthttp.StatusNotFound, entities.ErrScenarioNotFound.Error())
		return
	}

	policy, err := input.ParseCoercionPolicy(string(ctx.QueryArgs().Peek("coercion")))
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	report, err := h.scenarios.Evaluate(ctx, name, policy == input.Reject)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, report)
}

func (h *Handler) handleHealth(ctx *fasthttp.RequestCtx) {
	response := HealthResponse{Status: "ok"}
	if h.cache != nil {
		stats := h.cache.Stats()
		response.Cache = &stats
	}
	writeJSON(ctx, fasthttp.StatusOK, response)
}

func requireGet(ctx *fasthttp.RequestCtx) bool {
	if ctx.IsGet() {
		return true
	}
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// writeFailure maps service errors to status codes
func writeFailure(ctx *fasthttp.RequestCtx, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(ctx, fasthttp.StatusUnprocessableEntity, ErrorResponse{
			Status:   fasthttp.StatusUnprocessableEntity,
			Message:  "Input failed validation",
			Errors:   validationErr.Result.Errors,
			Warnings: validationErr.Result.Warnings,
		})
	case errors.Is(err, entities.ErrNonPositiveDivisor),
		errors.Is(err, entities.ErrNonFiniteValue),
		errors.Is(err, entities.ErrResultOutOfRange):
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, entities.ErrScenarioNotFound):
		writeError(ctx, fasthttp.StatusNotFound, err.Error())
	case errors.Is(err, input.ErrMalformedNumber),
		errors.Is(err, entities.ErrUnknownAssumption),
		errors.Is(err, entities.ErrInvalidDistribution):
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	default:
		klog.ErrorS(err, "Request failed", "path", string(ctx.Path()))
		writeError(ctx, fasthttp.StatusInternalServerError, "Internal error")
	}
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{
		Status:  status,
		Message: message,
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		klog.ErrorS(err, "Failed to encode response")
		ctx.Error("Internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}
