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

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateInvitationRequest is the request body for POST /invitations.
type CreateInvitationRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Create godoc
// @Summary Invite someone by email
// @Description Invites an email address to join and connect. If the email already belongs to a member, a connection request is sent instead and the result carries status connection-sent.
// @Tags invitation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateInvitationRequest true "Invitee email and optional message"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email is required")
		return
	}

	inv, err := c.Service.Create(r.Context(), userID, req.Email, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyConnected):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "connection already exists")
		case errors.Is(err, domain.ErrDuplicateInvitation):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "a pending invitation already exists")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "create failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// AcceptInvitationRequest is the request body for POST /invitations/accept.
type AcceptInvitationRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Accept godoc
// @Summary Accept an invitation
// @Description Redeems an invitation token under the given identity. Creates the account when needed and connects invitee and inviter.
// @Tags invitation
// @Accept json
// @Produce json
// @Param body body controllers.AcceptInvitationRequest true "Token and accepting identity"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/accept [post]
func (c *InvitationController) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Token == "" || req.Email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "token and email are required")
		return
	}

	inv, err := c.Service.Accept(r.Context(), req.Token, req.Email, req.Name, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		case errors.Is(err, domain.ErrInvitationUsed):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "invitation is no longer pending")
		case errors.Is(err, domain.ErrInvitationExpired):
			helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeGone, "invitation has expired")
		case errors.Is(err, domain.ErrEmailMismatch):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invitation was issued for a different email")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "accept failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Cancel godoc
// @Summary Cancel an invitation
// @Description Cancels a previously sent invitation. Inviter only.
// @Tags invitation
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 204 "No content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/cancel [post]
func (c *InvitationController) Cancel(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if !uuidRegex.MatchString(invitationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Cancel(r.Context(), invitationID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "cancel failed")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete godoc
// @Summary Delete an invitation
// @Description Removes a pending or cancelled invitation. Accepted and expired invitations are kept as an audit trail. Inviter only.
// @Tags invitation
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) Delete(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if !uuidRegex.MatchString(invitationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	deleted, err := c.Service.Delete(r.Context(), invitationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "only pending or cancelled invitations can be deleted")
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
// @Summary List my invitations
// @Description Returns invitations the authenticated user has sent, newest first, with expiry derived at read time.
// @Tags invitation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invs, err := c.Service.ListByInviter(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "list failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invs)
}
