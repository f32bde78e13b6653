package services

import (
	"time"

	"stayshare/internal/domain"
)

type realClock struct{}

// NewClock returns a Clock backed by time.Now.
func NewClock() domain.Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// dayOf truncates t to a calendar day in UTC. All interval and booking
// boundaries are whole days.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
