package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for invitation operations.
var (
	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this email")
	ErrInvalidToken        = errors.New("invitation token does not match any invitation")
	ErrInvitationUsed      = errors.New("invitation is no longer pending")
	ErrInvitationExpired   = errors.New("invitation has expired")
	ErrEmailMismatch       = errors.New("invitation was issued for a different email")
	ErrInvalidState        = errors.New("operation not allowed in current state")
)

// InvitationStatus is the lifecycle status of an invitation.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"

	// InvitationConnectionSent marks the synthetic result returned when the
	// invitee was already a member and a connection request was sent
	// instead. Never persisted.
	InvitationConnectionSent InvitationStatus = "connection-sent"
)

// SentinelToken is the non-redeemable token carried by connection-sent
// results. Real tokens are 64 hex characters, so this can never collide.
const SentinelToken = "connection-sent"

// Invitation is a token-bearing offer to a non-member email address to join
// and connect with the inviter.
// swagger:model Invitation
type Invitation struct {
	ID           string           `json:"id"`
	InviterID    string           `json:"inviter_id"`
	InviteeEmail string           `json:"invitee_email"`
	Message      string           `json:"message"`
	Token        string           `json:"token"`
	Status       InvitationStatus `json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	AcceptedAt   *time.Time       `json:"accepted_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewInvitation returns a new pending Invitation. ID is typically set by the repository on create.
func NewInvitation(inviterID, inviteeEmail, message, token string, expiresAt, createdAt time.Time) *Invitation {
	return &Invitation{
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		Message:      message,
		Token:        token,
		Status:       InvitationPending,
		ExpiresAt:    expiresAt,
		CreatedAt:    createdAt,
	}
}

// EffectiveStatus derives the status as seen at time now. A pending
// invitation past its expiry reads as expired without any write; storage is
// only marked expired when a later duplicate-create attempt discovers the
// stale row.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	// FindPendingByInviterEmail returns the pending invitation for the
	// (inviterID, inviteeEmail) pair, expired or not.
	FindPendingByInviterEmail(ctx context.Context, inviterID, inviteeEmail string) (*Invitation, error)
	UpdateStatus(ctx context.Context, id string, status InvitationStatus) error
	// AcceptExisting marks the invitation accepted and inserts conn, in one
	// transaction. Used when the invitee registered through another path
	// before accepting.
	AcceptExisting(ctx context.Context, id string, acceptedAt time.Time, conn *Connection) error
	// AcceptNew inserts newUser (filling its ID), creates an accepted edge
	// between inviterID and the new user, and marks the invitation
	// accepted, all in one transaction.
	AcceptNew(ctx context.Context, id string, acceptedAt time.Time, newUser *User, inviterID, relationship string) error
	// Delete removes the row and reports whether anything was deleted.
	Delete(ctx context.Context, id string) (bool, error)
	ListByInviter(ctx context.Context, inviterID string) ([]*Invitation, error)
}

// InvitationService defines the business logic for the invitation lifecycle.
type InvitationService interface {
	Create(ctx context.Context, inviterID, inviteeEmail, message string) (*Invitation, error)
	Accept(ctx context.Context, token, identityEmail, name, image string) (*Invitation, error)
	Cancel(ctx context.Context, invitationID, callerID string) error
	Delete(ctx context.Context, invitationID, callerID string) (bool, error)
	ListByInviter(ctx context.Context, inviterID string) ([]*Invitation, error)
}
