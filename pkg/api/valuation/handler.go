package valuation

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"corpval/pkg/api/response"
	"corpval/pkg/core/calc"
	"corpval/pkg/core/projection"
	"corpval/pkg/core/scenario"
	"corpval/pkg/core/valuation"
	"corpval/pkg/models"
)

// Handler serves the valuation endpoints. It holds no per-request state.
type Handler struct {
	engine *scenario.Engine
}

// NewHandler creates a valuation handler around a configured engine.
func NewHandler(engine *scenario.Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes mounts the endpoints under r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/metrics", h.HandleMetrics)
	r.Post("/project", h.HandleProject)
	r.Post("/dcf", h.HandleDCF)
	r.Post("/sensitivity", h.HandleSensitivity)
	r.Post("/comps", h.HandleComps)
	r.Post("/transactions", h.HandleTransactions)
	r.Post("/lbo", h.HandleLBO)
	r.Post("/scenarios", h.HandleScenarios)
}

// MetricsRequest is the body for POST /metrics.
type MetricsRequest struct {
	Statements []models.StatementPeriod `json:"statements"`
}

// ProjectResponse carries the projection and where its ratios came from.
type ProjectResponse struct {
	Baseline    calc.MetricsRecord           `json:"baseline"`
	Ratios      projection.Ratios            `json:"ratios"`
	Projections []projection.ProjectedPeriod `json:"projections"`
}

// SensitivityRequest is a valuation case plus the two axes to sweep.
type SensitivityRequest struct {
	scenario.Request
	Model valuation.Kind `json:"model,omitempty"` // Default: dcf
	Axis1 valuation.Axis `json:"axis1"`
	Axis2 valuation.Axis `json:"axis2"`
}

func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if !decode(w, r, &req) {
		return
	}
	records, _, err := scenario.Baseline(req.Statements)
	if err != nil {
		response.Failure(w, err)
		return
	}
	response.OK(w, records)
}

func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	var req scenario.Request
	if !decode(w, r, &req) {
		return
	}
	_, baseline, err := scenario.Baseline(req.Statements)
	if err != nil {
		response.Failure(w, err)
		return
	}
	projections, err := projection.Project(baseline, req.Assumptions)
	if err != nil {
		response.Failure(w, err)
		return
	}
	ratios, err := projection.ResolveRatios(baseline, req.Assumptions)
	if err != nil {
		response.Failure(w, err)
		return
	}
	response.OK(w, ProjectResponse{Baseline: baseline, Ratios: ratios, Projections: projections})
}

func (h *Handler) HandleDCF(w http.ResponseWriter, r *http.Request) {
	h.value(w, r, valuation.KindDCF, false)
}

func (h *Handler) HandleComps(w http.ResponseWriter, r *http.Request) {
	h.value(w, r, valuation.KindMultiples, false)
}

func (h *Handler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	h.value(w, r, valuation.KindMultiples, true)
}

func (h *Handler) HandleLBO(w http.ResponseWriter, r *http.Request) {
	h.value(w, r, valuation.KindLBO, false)
}

func (h *Handler) value(w http.ResponseWriter, r *http.Request, model valuation.Kind, transactions bool) {
	var req scenario.Request
	if !decode(w, r, &req) {
		return
	}
	req.Transactions = transactions
	res, err := h.engine.Value(req, model)
	if err != nil {
		response.Failure(w, err)
		return
	}
	response.OK(w, res)
}

func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req SensitivityRequest
	if !decode(w, r, &req) {
		return
	}
	model := req.Model
	if model == "" {
		model = valuation.KindDCF
	}
	grid, err := h.engine.Sensitivity(r.Context(), req.Request, model, req.Axis1, req.Axis2)
	if err != nil {
		response.Failure(w, err)
		return
	}
	response.OK(w, grid)
}

func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	var req scenario.Request
	if !decode(w, r, &req) {
		return
	}
	report, err := h.engine.Run(r.Context(), req)
	if err != nil {
		response.Failure(w, err)
		return
	}
	log.Printf("[API] Scenario report %s: %d scenario(s)", report.ID, len(report.Scenarios))
	response.OK(w, report)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
