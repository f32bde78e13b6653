package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for connection operations.
var (
	ErrSelfConnection   = errors.New("cannot connect to yourself")
	ErrAlreadyConnected = errors.New("connection already exists for this pair")
)

// ConnectionStatus is the lifecycle status of a connection.
// Every status other than pending is terminal.
type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionAccepted  ConnectionStatus = "accepted"
	ConnectionDeclined  ConnectionStatus = "declined"
	ConnectionBlocked   ConnectionStatus = "blocked"
	ConnectionCancelled ConnectionStatus = "cancelled"
)

// ValidConnectionStatus reports whether s is one of the known connection statuses.
func ValidConnectionStatus(s ConnectionStatus) bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionDeclined, ConnectionBlocked, ConnectionCancelled:
		return true
	}
	return false
}

// Connection is an undirected trust edge between two users, stored once
// under the canonical ordering UserAID < UserBID. RequesterID records which
// endpoint initiated the edge.
// swagger:model Connection
type Connection struct {
	ID           string           `json:"id"`
	UserAID      string           `json:"user_a_id"`
	UserBID      string           `json:"user_b_id"`
	RequesterID  string           `json:"requester_id"`
	Relationship string           `json:"relationship"`
	Status       ConnectionStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CanonicalPair returns the two user ids in storage order.
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// NewConnection returns a new Connection keyed on the canonical ordering of
// requesterID and targetID. ID is typically set by the repository on create.
func NewConnection(requesterID, targetID, relationship string, status ConnectionStatus, createdAt, updatedAt time.Time) *Connection {
	a, b := CanonicalPair(requesterID, targetID)
	return &Connection{
		UserAID:      a,
		UserBID:      b,
		RequesterID:  requesterID,
		Relationship: relationship,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Involves reports whether userID is one of the two endpoints.
func (c *Connection) Involves(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherEndpoint returns the endpoint opposite to userID. Empty when userID
// is not part of the edge.
func (c *Connection) OtherEndpoint(userID string) string {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	}
	return ""
}

// ConnectionRepository defines storage operations for connections.
// All pair lookups are single-sided thanks to the canonical ordering.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *Connection) error
	GetByID(ctx context.Context, id string) (*Connection, error)
	// GetByPair looks up the edge for the unordered pair {a, b} in any status.
	GetByPair(ctx context.Context, a, b string) (*Connection, error)
	UpdateStatus(ctx context.Context, id string, status ConnectionStatus, updatedAt time.Time) error
	// Delete removes the row and reports whether anything was deleted.
	// A missing row is not an error.
	Delete(ctx context.Context, id string) (bool, error)
	ListAcceptedByUser(ctx context.Context, userID string) ([]*Connection, error)
	// ListPendingTo returns pending edges where userID is the endpoint that
	// did not initiate the request.
	ListPendingTo(ctx context.Context, userID string) ([]*Connection, error)
}

// ConnectionService defines the business logic for the social edge lifecycle.
type ConnectionService interface {
	Request(ctx context.Context, userID, targetEmail, relationship string) (*Connection, error)
	UpdateStatus(ctx context.Context, connectionID, callerID string, newStatus ConnectionStatus) (*Connection, error)
	Delete(ctx context.Context, connectionID, callerID string) (bool, error)
	ConnectionsOf(ctx context.Context, userID string) ([]*Connection, error)
	PendingRequestsTo(ctx context.Context, userID string) ([]*Connection, error)
}
