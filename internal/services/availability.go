package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayshare/internal/domain"
)

type availabilityService struct {
	availabilityRepo domain.AvailabilityRepository
	clock            domain.Clock
}

// NewAvailabilityService creates an AvailabilityService with the given repository and clock.
func NewAvailabilityService(availabilityRepo domain.AvailabilityRepository, clock domain.Clock) domain.AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		clock:            clock,
	}
}

func (s *availabilityService) AddInterval(ctx context.Context, hostID string, start, end time.Time, status domain.IntervalStatus, notes string) (*domain.AvailabilityInterval, error) {
	start, end = dayOf(start), dayOf(end)
	if start.After(end) {
		return nil, domain.ErrInvalidRange
	}
	if !domain.ValidIntervalStatus(status) {
		return nil, fmt.Errorf("unknown interval status %q: %w", status, domain.ErrInvalidInput)
	}

	// No overlap check on insert: overlapping intervals of different status
	// may coexist, representing successive host edits.
	now := s.clock.Now()
	interval := domain.NewAvailabilityInterval(hostID, start, end, status, strings.TrimSpace(notes), now, now)
	if err := s.availabilityRepo.Create(ctx, interval); err != nil {
		return nil, fmt.Errorf("create interval: %w", err)
	}
	return interval, nil
}

func (s *availabilityService) ListByHost(ctx context.Context, hostID string) ([]*domain.AvailabilityInterval, error) {
	intervals, err := s.availabilityRepo.ListByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list intervals: %w", err)
	}
	return intervals, nil
}

// EnumerateAvailableDates returns the sorted, deduplicated calendar days in
// [rangeStart, rangeEnd] covered by at least one available interval. The
// walk visits each day of the window once, so overlapping available
// intervals contribute a day at most once; intervals are tolerated as-is,
// never merged.
func (s *availabilityService) EnumerateAvailableDates(ctx context.Context, rangeStart, rangeEnd time.Time) ([]time.Time, error) {
	rangeStart, rangeEnd = dayOf(rangeStart), dayOf(rangeEnd)
	if rangeStart.After(rangeEnd) {
		return nil, domain.ErrInvalidRange
	}

	intervals, err := s.availabilityRepo.ListAvailableOverlapping(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("list available intervals: %w", err)
	}

	days := []time.Time{}
	for day := rangeStart; !day.After(rangeEnd); day = day.AddDate(0, 0, 1) {
		for _, iv := range intervals {
			if iv.ContainsDay(day) {
				days = append(days, day)
				break
			}
		}
	}
	return days, nil
}

func (s *availabilityService) SearchAvailableHosts(ctx context.Context, start, end time.Time, textFilter string) ([]*domain.Host, error) {
	start, end = dayOf(start), dayOf(end)
	if start.After(end) {
		return nil, domain.ErrInvalidRange
	}
	hosts, err := s.availabilityRepo.SearchAvailableHosts(ctx, start, end, strings.TrimSpace(textFilter))
	if err != nil {
		return nil, fmt.Errorf("search available hosts: %w", err)
	}
	return hosts, nil
}
