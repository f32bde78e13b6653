package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayshare/internal/domain"
)

type bookingService struct {
	bookingRepo domain.BookingRepository
	hostRepo    domain.HostRepository
	clock       domain.Clock
}

// NewBookingService creates a BookingService with the given repositories and clock.
func NewBookingService(bookingRepo domain.BookingRepository, hostRepo domain.HostRepository, clock domain.Clock) domain.BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		hostRepo:    hostRepo,
		clock:       clock,
	}
}

func (s *bookingService) Create(ctx context.Context, hostID, requesterID string, start, end time.Time, guests int, message string) (*domain.BookingRequest, error) {
	start, end = dayOf(start), dayOf(end)
	if start.After(end) {
		return nil, domain.ErrInvalidRange
	}
	// Host capacity is validated by the listing CRUD layer, not here.
	if guests < 1 {
		return nil, domain.ErrInvalidGuestCount
	}
	if _, err := s.hostRepo.GetByID(ctx, hostID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get host: %w", err)
	}

	req := domain.NewBookingRequest(hostID, requesterID, start, end, guests, strings.TrimSpace(message), s.clock.Now())
	if err := s.bookingRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create booking request: %w", err)
	}
	return req, nil
}

// UpdateStatus moves a pending request into one of its terminal states. Only
// the owner of the target host may respond. Approval additionally reconciles
// the host calendar; declining and cancelling never touch it.
func (s *bookingService) UpdateStatus(ctx context.Context, requestID, callerID string, newStatus domain.BookingStatus, responseMessage string) (*domain.BookingRequest, error) {
	if !domain.ValidBookingStatus(newStatus) || newStatus == domain.BookingPending {
		return nil, domain.ErrInvalidStatus
	}

	req, err := s.bookingRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking request: %w", err)
	}

	host, err := s.hostRepo.GetByID(ctx, req.HostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get host: %w", err)
	}
	if host.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}

	// Every non-pending status is terminal.
	if req.Status != domain.BookingPending {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now()
	responseMessage = strings.TrimSpace(responseMessage)
	if newStatus == domain.BookingApproved {
		if _, _, err := s.bookingRepo.ApproveAndReconcile(ctx, req, responseMessage, now); err != nil {
			return nil, fmt.Errorf("approve booking request: %w", err)
		}
	} else {
		if err := s.bookingRepo.UpdateStatus(ctx, requestID, newStatus, responseMessage, now); err != nil {
			return nil, fmt.Errorf("update booking status: %w", err)
		}
	}

	req.Status = newStatus
	req.ResponseMessage = responseMessage
	req.RespondedAt = &now
	return req, nil
}

func (s *bookingService) ListForHost(ctx context.Context, hostID, callerID string) ([]*domain.BookingRequest, error) {
	host, err := s.hostRepo.GetByID(ctx, hostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get host: %w", err)
	}
	if host.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	reqs, err := s.bookingRepo.ListByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	return reqs, nil
}

func (s *bookingService) ListByRequester(ctx context.Context, requesterID string) ([]*domain.BookingRequest, error) {
	reqs, err := s.bookingRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	return reqs, nil
}
