package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for booking operations.
var (
	ErrInvalidGuestCount = errors.New("guest count must be a positive integer")
	ErrInvalidStatus     = errors.New("invalid booking status transition")
)

// BookingStatus is the lifecycle status of a booking request.
// Every status other than pending is terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingDeclined  BookingStatus = "declined"
	BookingCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is one of the known booking statuses.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingApproved, BookingDeclined, BookingCancelled:
		return true
	}
	return false
}

// BookingRequest is a requester's ask to stay at a host within a date range.
// swagger:model BookingRequest
type BookingRequest struct {
	ID              string        `json:"id"`
	HostID          string        `json:"host_id"`
	RequesterID     string        `json:"requester_id"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	Guests          int           `json:"guests"`
	Message         string        `json:"message"`
	Status          BookingStatus `json:"status"`
	ResponseMessage string        `json:"response_message"`
	RespondedAt     *time.Time    `json:"responded_at"`
	CreatedAt       time.Time     `json:"created_at"`
}

// NewBookingRequest returns a new pending BookingRequest. ID is typically set by the repository on create.
func NewBookingRequest(hostID, requesterID string, startDate, endDate time.Time, guests int, message string, createdAt time.Time) *BookingRequest {
	return &BookingRequest{
		HostID:      hostID,
		RequesterID: requesterID,
		StartDate:   startDate,
		EndDate:     endDate,
		Guests:      guests,
		Message:     message,
		Status:      BookingPending,
		CreatedAt:   createdAt,
	}
}

// BookingRepository defines storage operations for booking requests.
type BookingRepository interface {
	Create(ctx context.Context, req *BookingRequest) error
	GetByID(ctx context.Context, id string) (*BookingRequest, error)
	// UpdateStatus records a non-approval transition. It never touches
	// availability intervals.
	UpdateStatus(ctx context.Context, id string, status BookingStatus, responseMessage string, respondedAt time.Time) error
	// ApproveAndReconcile marks the request approved and reconciles the
	// host calendar in one transaction: an available interval exactly
	// bracketing the booking range is flipped to booked, otherwise a new
	// booked interval is inserted for exactly that range. Partially
	// overlapping available intervals are left untouched. The returned
	// flag is true when a new interval was inserted.
	ApproveAndReconcile(ctx context.Context, req *BookingRequest, responseMessage string, respondedAt time.Time) (*AvailabilityInterval, bool, error)
	ListByHost(ctx context.Context, hostID string) ([]*BookingRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*BookingRequest, error)
}

// BookingService defines the business logic for the booking lifecycle.
type BookingService interface {
	Create(ctx context.Context, hostID, requesterID string, start, end time.Time, guests int, message string) (*BookingRequest, error)
	UpdateStatus(ctx context.Context, requestID, callerID string, newStatus BookingStatus, responseMessage string) (*BookingRequest, error)
	ListForHost(ctx context.Context, hostID, callerID string) ([]*BookingRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*BookingRequest, error)
}
