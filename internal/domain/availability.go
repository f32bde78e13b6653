package domain

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRange is returned when a date range has start after end.
var ErrInvalidRange = errors.New("start date is after end date")

// IntervalStatus is the lifecycle status of an availability interval.
type IntervalStatus string

const (
	IntervalAvailable IntervalStatus = "available"
	IntervalBooked    IntervalStatus = "booked"
	IntervalBlocked   IntervalStatus = "blocked"
)

// ValidIntervalStatus reports whether s is one of the known interval statuses.
func ValidIntervalStatus(s IntervalStatus) bool {
	switch s {
	case IntervalAvailable, IntervalBooked, IntervalBlocked:
		return true
	}
	return false
}

// AvailabilityInterval is a contiguous date range on a host's calendar.
// Both boundary dates are inclusive; StartDate == EndDate is a single day.
// swagger:model AvailabilityInterval
type AvailabilityInterval struct {
	ID        string         `json:"id"`
	HostID    string         `json:"host_id"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Status    IntervalStatus `json:"status"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewAvailabilityInterval returns a new AvailabilityInterval. ID is typically set by the repository on create.
func NewAvailabilityInterval(hostID string, startDate, endDate time.Time, status IntervalStatus, notes string, createdAt, updatedAt time.Time) *AvailabilityInterval {
	return &AvailabilityInterval{
		HostID:    hostID,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    status,
		Notes:     notes,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ContainsDay reports whether day falls inside the interval, boundaries inclusive.
func (i *AvailabilityInterval) ContainsDay(day time.Time) bool {
	return !day.Before(i.StartDate) && !day.After(i.EndDate)
}

// Overlaps reports whether the interval shares at least one day with [start, end].
func (i *AvailabilityInterval) Overlaps(start, end time.Time) bool {
	return !i.StartDate.After(end) && !i.EndDate.Before(start)
}

// AvailabilityRepository defines storage operations for availability intervals.
type AvailabilityRepository interface {
	Create(ctx context.Context, interval *AvailabilityInterval) error
	ListByHost(ctx context.Context, hostID string) ([]*AvailabilityInterval, error)
	// ListAvailableOverlapping returns every interval with status available
	// whose range shares at least one day with [start, end], any host.
	ListAvailableOverlapping(ctx context.Context, start, end time.Time) ([]*AvailabilityInterval, error)
	// SearchAvailableHosts returns hosts holding at least one available
	// interval overlapping [start, end] and matching textFilter against
	// name, description, or location. One row per host, ordered by name.
	SearchAvailableHosts(ctx context.Context, start, end time.Time, textFilter string) ([]*Host, error)
}

// AvailabilityService defines the business logic for the availability calendar.
type AvailabilityService interface {
	AddInterval(ctx context.Context, hostID string, start, end time.Time, status IntervalStatus, notes string) (*AvailabilityInterval, error)
	ListByHost(ctx context.Context, hostID string) ([]*AvailabilityInterval, error)
	EnumerateAvailableDates(ctx context.Context, rangeStart, rangeEnd time.Time) ([]time.Time, error)
	SearchAvailableHosts(ctx context.Context, start, end time.Time, textFilter string) ([]*Host, error)
}
