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

type ConnectionController struct {
	Logger  *slog.Logger
	Service domain.ConnectionService
}

func NewConnectionController(logger *slog.Logger, svc domain.ConnectionService) *ConnectionController {
	return &ConnectionController{
		Logger:  logger,
		Service: svc,
	}
}

// RequestConnectionRequest is the request body for POST /connections.
type RequestConnectionRequest struct {
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

// Request godoc
// @Summary Request a connection
// @Description Sends a pending connection request to the user registered under the given email. A pair can hold at most one edge in any status.
// @Tags connection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.RequestConnectionRequest true "Target email and relationship"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /connections [post]
func (c *ConnectionController) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req RequestConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email is required")
		return
	}

	conn, err := c.Service.Request(r.Context(), userID, req.Email, req.Relationship)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no user with that email")
		case errors.Is(err, domain.ErrSelfConnection):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrAlreadyConnected):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "connection already exists")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "request failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, conn)
}

// UpdateConnectionStatusRequest is the request body for PATCH /connections/{connectionID}/status.
type UpdateConnectionStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus godoc
// @Summary Respond to a connection request
// @Description Moves a pending connection to accepted, declined, blocked, or cancelled. Either endpoint may respond.
// @Tags connection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param connectionID path string true "Connection ID (UUID)"
// @Param body body controllers.UpdateConnectionStatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /connections/{connectionID}/status [patch]
func (c *ConnectionController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	connectionID := r.PathValue("connectionID")
	if !uuidRegex.MatchString(connectionID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid connectionID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateConnectionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON body")
		return
	}

	conn, err := c.Service.UpdateStatus(r.Context(), connectionID, userID, domain.ConnectionStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "connection not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "update failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conn)
}

// DeleteResult reports whether a delete removed anything.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// Delete godoc
// @Summary Remove an accepted connection
// @Description Deletes an accepted connection. A connection that is already gone reports deleted=false without an error.
// @Tags connection
// @Produce json
// @Security BearerAuth
// @Param connectionID path string true "Connection ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /connections/{connectionID} [delete]
func (c *ConnectionController) Delete(w http.ResponseWriter, r *http.Request) {
	connectionID := r.PathValue("connectionID")
	if !uuidRegex.MatchString(connectionID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid connectionID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	deleted, err := c.Service.Delete(r.Context(), connectionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "only accepted connections can be deleted")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "delete failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResult{Deleted: deleted})
}

// List godoc
// @Summary List my accepted connections
// @Description Returns the authenticated user's accepted connections, either storage direction.
// @Tags connection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /connections [get]
func (c *ConnectionController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	conns, err := c.Service.ConnectionsOf(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "list failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conns)
}

// ListPending godoc
// @Summary List connection requests awaiting my response
// @Description Returns pending connections where the authenticated user is the target, not the initiator.
// @Tags connection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /connections/pending [get]
func (c *ConnectionController) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	conns, err := c.Service.PendingRequestsTo(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "list failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conns)
}
