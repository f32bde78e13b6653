package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stayshare/internal/domain"
)

type connectionService struct {
	connectionRepo domain.ConnectionRepository
	userRepo       domain.UserRepository
	clock          domain.Clock
}

// NewConnectionService creates a ConnectionService with the given repositories and clock.
func NewConnectionService(connectionRepo domain.ConnectionRepository, userRepo domain.UserRepository, clock domain.Clock) domain.ConnectionService {
	return &connectionService{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
		clock:          clock,
	}
}

// Request creates a pending edge toward the user registered under
// targetEmail. A pair can hold at most one edge in any status; re-requesting
// after a decline requires an explicit delete first.
func (s *connectionService) Request(ctx context.Context, userID, targetEmail, relationship string) (*domain.Connection, error) {
	targetEmail = strings.TrimSpace(strings.ToLower(targetEmail))
	target, err := s.userRepo.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve target email: %w", err)
	}
	if target.ID == userID {
		return nil, domain.ErrSelfConnection
	}

	if _, err := s.connectionRepo.GetByPair(ctx, userID, target.ID); err == nil {
		return nil, domain.ErrAlreadyConnected
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get connection by pair: %w", err)
	}

	now := s.clock.Now()
	conn := domain.NewConnection(userID, target.ID, strings.TrimSpace(relationship), domain.ConnectionPending, now, now)
	if err := s.connectionRepo.Create(ctx, conn); err != nil {
		// The unique pair constraint may still fire under a concurrent request.
		if errors.Is(err, domain.ErrAlreadyConnected) {
			return nil, domain.ErrAlreadyConnected
		}
		return nil, fmt.Errorf("create connection: %w", err)
	}
	return conn, nil
}

func (s *connectionService) UpdateStatus(ctx context.Context, connectionID, callerID string, newStatus domain.ConnectionStatus) (*domain.Connection, error) {
	if !domain.ValidConnectionStatus(newStatus) || newStatus == domain.ConnectionPending {
		return nil, domain.ErrInvalidState
	}

	conn, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}
	if !conn.Involves(callerID) {
		return nil, domain.ErrForbidden
	}
	if conn.Status != domain.ConnectionPending {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	if err := s.connectionRepo.UpdateStatus(ctx, connectionID, newStatus, now); err != nil {
		return nil, fmt.Errorf("update connection status: %w", err)
	}
	conn.Status = newStatus
	conn.UpdatedAt = now
	return conn, nil
}

// Delete removes an accepted edge. A row that is already gone reports
// deleted == false without an error, so repeated deletes are harmless.
func (s *connectionService) Delete(ctx context.Context, connectionID, callerID string) (bool, error) {
	conn, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get connection: %w", err)
	}
	if !conn.Involves(callerID) {
		return false, domain.ErrForbidden
	}
	if conn.Status != domain.ConnectionAccepted {
		return false, domain.ErrInvalidState
	}

	deleted, err := s.connectionRepo.Delete(ctx, connectionID)
	if err != nil {
		return false, fmt.Errorf("delete connection: %w", err)
	}
	return deleted, nil
}

func (s *connectionService) ConnectionsOf(ctx context.Context, userID string) ([]*domain.Connection, error) {
	conns, err := s.connectionRepo.ListAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return conns, nil
}

func (s *connectionService) PendingRequestsTo(ctx context.Context, userID string) ([]*domain.Connection, error) {
	conns, err := s.connectionRepo.ListPendingTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return conns, nil
}
