package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"outlethr/internal/domain/payroll"
	"outlethr/internal/platform/jobs"
	"outlethr/internal/transport/http/api"
	"outlethr/internal/transport/http/middleware"
	"outlethr/internal/transport/http/shared"
)

// Computer runs the payroll engine, either over stored inputs or over inputs
// supplied by the caller.
type Computer interface {
	Compute(ctx context.Context, month payroll.Month, settings payroll.Settings) (payroll.Result, error)
	ComputeInputs(inputs payroll.Inputs, settings payroll.Settings) (payroll.Result, error)
}

type RunQueue interface {
	Enqueue(ctx context.Context, jobType, month string, run jobs.Func) (jobs.Run, error)
	RunNow(ctx context.Context, jobType, month string, run jobs.Func) (any, error)
	ListRuns(ctx context.Context, limit int) ([]jobs.Run, error)
	GetRun(ctx context.Context, id string) (jobs.Run, error)
}

type Handler struct {
	Service  Computer
	Runs     RunQueue
	Defaults payroll.Settings
}

func NewHandler(service Computer, runs RunQueue, defaults payroll.Settings) *Handler {
	return &Handler{Service: service, Runs: runs, Defaults: defaults}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/compute", h.handleComputeInputs)
		if h.Runs != nil {
			r.Get("/runs", h.handleListRuns)
			r.Post("/runs", h.handleCreateRun)
			r.Get("/runs/{runID}", h.handleGetRun)
		}
		r.Get("/{month}", h.handleMonth)
		r.Get("/{month}/staff/{staffID}", h.handleStaffEntry)
	})
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	month, err := payroll.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be YYYY-MM", requestID)
		return
	}
	validator := shared.NewValidator()
	settings := settingsFromQuery(r.URL.Query(), h.Defaults, validator)
	if validator.Reject(w, requestID) {
		return
	}

	result, err := h.Service.Compute(r.Context(), month, settings)
	if err != nil {
		writeComputeError(w, r, err)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleStaffEntry(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	month, err := payroll.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be YYYY-MM", requestID)
		return
	}
	validator := shared.NewValidator()
	settings := settingsFromQuery(r.URL.Query(), h.Defaults, validator)
	if validator.Reject(w, requestID) {
		return
	}

	result, err := h.Service.Compute(r.Context(), month, settings)
	if err != nil {
		writeComputeError(w, r, err)
		return
	}

	staffID := chi.URLParam(r, "staffID")
	entry, err := result.Entry(staffID)
	if err == nil {
		api.Success(w, entry, requestID)
		return
	}
	for _, failure := range result.Failures {
		if failure.StaffID == staffID {
			api.FailWithDetails(w, http.StatusUnprocessableEntity, "entry_failed", "payroll could not be computed for staff", failure, requestID)
			return
		}
	}
	api.Fail(w, http.StatusNotFound, "not_found", "staff not in payroll for month", requestID)
}

func (h *Handler) handleComputeInputs(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload computeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	validator := shared.NewValidator()
	payload.validate(validator)
	if validator.Reject(w, requestID) {
		return
	}
	month, err := payroll.ParseMonth(payload.Month)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be YYYY-MM", requestID)
		return
	}

	result, err := h.Service.ComputeInputs(payload.inputs(month), payload.Settings.apply(h.Defaults))
	if err != nil {
		writeComputeError(w, r, err)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload runRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, requestID) {
		return
	}
	month, err := payroll.ParseMonth(payload.Month)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be YYYY-MM", requestID)
		return
	}
	settings := payload.Settings.apply(h.Defaults)
	if err := settings.Validate(); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_settings", err.Error(), requestID)
		return
	}

	work := func(ctx context.Context) (any, error) {
		result, err := h.Service.Compute(ctx, month, settings)
		if err != nil {
			return nil, err
		}
		return runDetails{Summary: result.Summary, Failures: result.Failures}, nil
	}

	// wait=true runs inside the request and answers with the run details.
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		details, err := h.Runs.RunNow(r.Context(), jobs.JobPayrollRun, month.String(), work)
		if err != nil {
			writeComputeError(w, r, err)
			return
		}
		api.Success(w, details, requestID)
		return
	}

	run, err := h.Runs.Enqueue(r.Context(), jobs.JobPayrollRun, month.String(), work)
	if errors.Is(err, jobs.ErrQueueFull) {
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "payroll run queue is full", requestID)
		return
	}
	if errors.Is(err, jobs.ErrStopped) {
		api.Fail(w, http.StatusServiceUnavailable, "shutting_down", "server is shutting down", requestID)
		return
	}
	if err != nil {
		slog.Error("payroll run enqueue failed", "month", month.String(), "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_run_failed", "failed to queue payroll run", requestID)
		return
	}
	api.Accepted(w, run, requestID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	runs, err := h.Runs.ListRuns(r.Context(), page.Limit)
	if err != nil {
		slog.Error("payroll run list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_runs_failed", "failed to list payroll runs", requestID)
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs, requestID)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	run, err := h.Runs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", requestID)
		return
	}
	if err != nil {
		slog.Error("payroll run lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_runs_failed", "failed to load payroll run", requestID)
		return
	}
	api.Success(w, run, requestID)
}

func writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrInvalidSettings):
		api.Fail(w, http.StatusBadRequest, "invalid_settings", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidMonth):
		api.Fail(w, http.StatusBadRequest, "invalid_month", err.Error(), requestID)
	default:
		slog.Error("payroll compute failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "failed to compute payroll", requestID)
	}
}
