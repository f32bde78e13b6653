package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stayshare/internal/delivery/http/helpers"
	"stayshare/internal/delivery/http/middleware"
	"stayshare/internal/domain"
)

type AvailabilityController struct {
	Logger   *slog.Logger
	Service  domain.AvailabilityService
	HostRepo domain.HostRepository
}

func NewAvailabilityController(logger *slog.Logger, svc domain.AvailabilityService, hostRepo domain.HostRepository) *AvailabilityController {
	return &AvailabilityController{
		Logger:   logger,
		Service:  svc,
		HostRepo: hostRepo,
	}
}

// AddIntervalRequest is the request body for POST /hosts/{hostID}/availability.
type AddIntervalRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

// AddInterval godoc
// @Summary Add an availability interval to a host calendar
// @Description Inserts a date-ranged interval. No overlap check is performed; overlapping intervals of different status may coexist.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param hostID path string true "Host ID (UUID)"
// @Param body body controllers.AddIntervalRequest true "Interval payload (dates as YYYY-MM-DD)"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts/{hostID}/availability [post]
func (c *AvailabilityController) AddInterval(w http.ResponseWriter, r *http.Request) {
	hostID := r.PathValue("hostID")
	if !uuidRegex.MatchString(hostID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid hostID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req AddIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	// Interval edits are reserved to the host owner.
	host, err := c.HostRepo.GetByID(r.Context(), hostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "host not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "lookup failed")
		return
	}
	if host.OwnerID != userID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		return
	}

	interval, err := c.Service.AddInterval(r.Context(), hostID, start, end, domain.IntervalStatus(req.Status), req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) || errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "create failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, interval)
}

// ListByHost godoc
// @Summary List a host's availability intervals
// @Description Returns the host's intervals ordered ascending by start date.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param hostID path string true "Host ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts/{hostID}/availability [get]
func (c *AvailabilityController) ListByHost(w http.ResponseWriter, r *http.Request) {
	hostID := r.PathValue("hostID")
	if !uuidRegex.MatchString(hostID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid hostID")
		return
	}
	intervals, err := c.Service.ListByHost(r.Context(), hostID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "list failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, intervals)
}

// AvailableDatesResponse is the success payload for GET /availability/dates.
type AvailableDatesResponse struct {
	Dates []string `json:"dates"`
}

// EnumerateDates godoc
// @Summary Enumerate open calendar days in a window
// @Description Returns the sorted, deduplicated days in [start, end] covered by at least one available interval.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param start query string true "Window start (YYYY-MM-DD)"
// @Param end query string true "Window end (YYYY-MM-DD)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /availability/dates [get]
func (c *AvailabilityController) EnumerateDates(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be YYYY-MM-DD")
		return
	}

	days, err := c.Service.EnumerateAvailableDates(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "enumerate failed")
		return
	}

	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(time.DateOnly))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AvailableDatesResponse{Dates: out})
}

// SearchHosts godoc
// @Summary Search hosts with availability in a window
// @Description Returns hosts holding at least one available interval overlapping [start, end] and matching q against name, description, or location. One row per host, ordered by name.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param start query string true "Window start (YYYY-MM-DD)"
// @Param end query string true "Window end (YYYY-MM-DD)"
// @Param q query string false "Text filter"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts/search [get]
func (c *AvailabilityController) SearchHosts(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be YYYY-MM-DD")
		return
	}

	hosts, err := c.Service.SearchAvailableHosts(r.Context(), start, end, r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "search failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, hosts)
}
