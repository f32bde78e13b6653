package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"stayshare/internal/delivery/http/helpers"
	"stayshare/internal/delivery/http/middleware"
	"stayshare/internal/domain"
)

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBookingRequest is the request body for POST /hosts/{hostID}/bookings.
type CreateBookingRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Guests    int    `json:"guests"`
	Message   string `json:"message"`
}

// Create godoc
// @Summary Request a stay at a host
// @Description Creates a pending booking request for the authenticated user.
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param hostID path string true "Host ID (UUID)"
// @Param body body controllers.CreateBookingRequest true "Booking payload (dates as YYYY-MM-DD)"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts/{hostID}/bookings [post]
func (c *BookingController) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateBookingRequest
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

	booking, err := c.Service.Create(r.Context(), hostID, userID, start, end, req.Guests, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidGuestCount):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "host not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "create failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// UpdateBookingStatusRequest is the request body for PATCH /bookings/{bookingID}/status.
type UpdateBookingStatusRequest struct {
	Status          string `json:"status"`
	ResponseMessage string `json:"response_message"`
}

// UpdateStatus godoc
// @Summary Respond to a booking request
// @Description Moves a pending booking to approved, declined, or cancelled. Approval reconciles the host calendar; declining and cancelling never touch it. Host owner only.
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking request ID (UUID)"
// @Param body body controllers.UpdateBookingStatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID}/status [patch]
func (c *BookingController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if !uuidRegex.MatchString(bookingID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bookingID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON body")
		return
	}

	booking, err := c.Service.UpdateStatus(r.Context(), bookingID, userID, domain.BookingStatus(req.Status), req.ResponseMessage)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking request not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "update failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// ListForHost godoc
// @Summary List booking requests for a host
// @Description Returns the host's booking inbox, newest first. Host owner only.
// @Tags booking
// @Produce json
// @Security BearerAuth
// @Param hostID path string true "Host ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts/{hostID}/bookings [get]
func (c *BookingController) ListForHost(w http.ResponseWriter, r *http.Request) {
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

	bookings, err := c.Service.ListForHost(r.Context(), hostID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "host not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "list failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// ListMine godoc
// @Summary List my booking requests
// @Description Returns the authenticated user's outgoing booking requests, newest first.
// @Tags booking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/mine [get]
func (c *BookingController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bookings, err := c.Service.ListByRequester(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "list failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}
