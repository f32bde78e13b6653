package domain

import (
	"context"
	"time"
)

// Host represents a shareable living space owned by one user.
// swagger:model Host
type Host struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewHost returns a new Host with the given fields. ID is typically set by the repository on create.
func NewHost(ownerID, name, description, location string, capacity int, createdAt, updatedAt time.Time) *Host {
	return &Host{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Location:    location,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// HostRepository defines the interface for host storage
type HostRepository interface {
	Create(ctx context.Context, host *Host) error
	GetByID(ctx context.Context, id string) (*Host, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Host, error)
}
