package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayshare/internal/domain"
)

const (
	invitationTTL = 30 * 24 * time.Hour

	// inviteTokenBytes is the entropy of an invitation token; hex encoding
	// renders it as 64 characters.
	inviteTokenBytes = 32

	defaultRelationship = "friend"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	connections    domain.ConnectionService
	emails         domain.EmailService
	clock          domain.Clock
}

// NewInvitationService creates an InvitationService with the given
// repositories and collaborating services.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	connections domain.ConnectionService,
	emails domain.EmailService,
	clock domain.Clock,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		connections:    connections,
		emails:         emails,
		clock:          clock,
	}
}

// Create invites inviteeEmail to join and connect with the inviter. When the
// email already belongs to a member, the invitation collapses into a plain
// connection request and the returned value is a synthetic, non-persisted
// invitation with status connection-sent and a non-redeemable token, so the
// calling layer can render one shape for both paths.
func (s *invitationService) Create(ctx context.Context, inviterID, inviteeEmail, message string) (*domain.Invitation, error) {
	inviteeEmail = strings.TrimSpace(strings.ToLower(inviteeEmail))
	message = strings.TrimSpace(message)
	now := s.clock.Now()

	existing, err := s.userRepo.GetByEmail(ctx, inviteeEmail)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("resolve invitee email: %w", err)
	}
	if err == nil {
		if _, err := s.connections.Request(ctx, inviterID, existing.Email, defaultRelationship); err != nil {
			if errors.Is(err, domain.ErrAlreadyConnected) {
				return nil, domain.ErrAlreadyConnected
			}
			return nil, fmt.Errorf("request connection: %w", err)
		}
		return &domain.Invitation{
			ID:           uuid.NewString(),
			InviterID:    inviterID,
			InviteeEmail: inviteeEmail,
			Message:      message,
			Token:        domain.SentinelToken,
			Status:       domain.InvitationConnectionSent,
			ExpiresAt:    now.Add(invitationTTL),
			CreatedAt:    now,
		}, nil
	}

	pending, err := s.invitationRepo.FindPendingByInviterEmail(ctx, inviterID, inviteeEmail)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find pending invitation: %w", err)
	}
	if err == nil {
		if pending.EffectiveStatus(now) == domain.InvitationPending {
			return nil, domain.ErrDuplicateInvitation
		}
		// Stale pending row discovered: record the expiry before issuing a
		// fresh invitation. This is the only write path for expired status.
		if err := s.invitationRepo.UpdateStatus(ctx, pending.ID, domain.InvitationExpired); err != nil {
			return nil, fmt.Errorf("mark invitation expired: %w", err)
		}
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}
	inv := domain.NewInvitation(inviterID, inviteeEmail, message, token, now.Add(invitationTTL), now)
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvitation) {
			return nil, domain.ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.sendInvitationEmail(ctx, inviterID, inv)
	return inv, nil
}

// Accept redeems a token. If the invitee registered through another path
// while the invitation was outstanding, the existing account is connected to
// the inviter with a fresh pending edge; otherwise the account is created
// and the edge goes straight to accepted, the invitation acceptance itself
// being the mutual consent.
func (s *invitationService) Accept(ctx context.Context, token, identityEmail, name, image string) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrInvitationUsed
	}

	now := s.clock.Now()
	if now.After(inv.ExpiresAt) {
		// Left pending in storage; a later duplicate-create marks it.
		return nil, domain.ErrInvitationExpired
	}
	if strings.TrimSpace(strings.ToLower(identityEmail)) != inv.InviteeEmail {
		return nil, domain.ErrEmailMismatch
	}

	existing, err := s.userRepo.GetByEmail(ctx, inv.InviteeEmail)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("resolve invitee email: %w", err)
	}
	if err == nil {
		conn := domain.NewConnection(inv.InviterID, existing.ID, defaultRelationship, domain.ConnectionPending, now, now)
		if err := s.invitationRepo.AcceptExisting(ctx, inv.ID, now, conn); err != nil {
			return nil, fmt.Errorf("accept invitation: %w", err)
		}
	} else {
		newUser := domain.NewUser(inv.InviteeEmail, strings.TrimSpace(name), strings.TrimSpace(image), now, now)
		if err := s.invitationRepo.AcceptNew(ctx, inv.ID, now, newUser, inv.InviterID, defaultRelationship); err != nil {
			return nil, fmt.Errorf("accept invitation: %w", err)
		}
	}

	inv.Status = domain.InvitationAccepted
	inv.AcceptedAt = &now
	return inv, nil
}

// Cancel withdraws a pending invitation. Accepted, expired and cancelled
// invitations are terminal and cannot be cancelled.
func (s *invitationService) Cancel(ctx context.Context, invitationID, callerID string) error {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	if inv.InviterID != callerID {
		return domain.ErrForbidden
	}
	if inv.EffectiveStatus(s.clock.Now()) != domain.InvitationPending {
		return domain.ErrInvalidState
	}
	if err := s.invitationRepo.UpdateStatus(ctx, invitationID, domain.InvitationCancelled); err != nil {
		return fmt.Errorf("cancel invitation: %w", err)
	}
	return nil
}

// Delete removes a pending or cancelled invitation. Accepted and expired
// invitations are kept as an audit trail.
func (s *invitationService) Delete(ctx context.Context, invitationID, callerID string) (bool, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get invitation: %w", err)
	}
	if inv.InviterID != callerID {
		return false, domain.ErrForbidden
	}
	if inv.Status != domain.InvitationPending && inv.Status != domain.InvitationCancelled {
		return false, domain.ErrInvalidState
	}

	deleted, err := s.invitationRepo.Delete(ctx, invitationID)
	if err != nil {
		return false, fmt.Errorf("delete invitation: %w", err)
	}
	return deleted, nil
}

func (s *invitationService) ListByInviter(ctx context.Context, inviterID string) ([]*domain.Invitation, error) {
	invs, err := s.invitationRepo.ListByInviter(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	now := s.clock.Now()
	for _, inv := range invs {
		inv.Status = inv.EffectiveStatus(now)
	}
	return invs, nil
}

// sendInvitationEmail delivers the invite email on a best-effort basis; a
// delivery failure never invalidates the stored invitation.
func (s *invitationService) sendInvitationEmail(ctx context.Context, inviterID string, inv *domain.Invitation) {
	inviterName := ""
	if inviter, err := s.userRepo.GetByID(ctx, inviterID); err == nil {
		inviterName = inviter.Name
	}
	data := &domain.InvitationEmailData{
		InviteeEmail:  inv.InviteeEmail,
		InviterName:   inviterName,
		Message:       inv.Message,
		Token:         inv.Token,
		ExpiresInDays: int(invitationTTL / (24 * time.Hour)),
	}
	if err := s.emails.SendInvitation(ctx, data); err != nil {
		log.Printf("[INVITATION] email to %s not sent: %v", inv.InviteeEmail, err)
	}
}

func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
