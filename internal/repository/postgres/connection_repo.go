package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stayshare/internal/domain"
)

type connectionRepository struct {
	DB *sql.DB
}

func NewConnectionRepository(db *sql.DB) domain.ConnectionRepository {
	return &connectionRepository{DB: db}
}

func (r *connectionRepository) Create(ctx context.Context, c *domain.Connection) error {
	query := `
		INSERT INTO connections (user_a_id, user_b_id, requester_id, relationship, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.UserAID, c.UserBID, c.RequesterID, c.Relationship, string(c.Status), c.CreatedAt, c.UpdatedAt).
		Scan(&c.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyConnected
	}
	return err
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	query := `
		SELECT id, user_a_id, user_b_id, requester_id, relationship, status, created_at, updated_at
		FROM connections
		WHERE id = $1
	`
	return scanConnection(r.DB.QueryRowContext(ctx, query, id))
}

func (r *connectionRepository) GetByPair(ctx context.Context, a, b string) (*domain.Connection, error) {
	ca, cb := domain.CanonicalPair(a, b)
	query := `
		SELECT id, user_a_id, user_b_id, requester_id, relationship, status, created_at, updated_at
		FROM connections
		WHERE user_a_id = $1 AND user_b_id = $2
	`
	return scanConnection(r.DB.QueryRowContext(ctx, query, ca, cb))
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus, updatedAt time.Time) error {
	query := `
		UPDATE connections
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *connectionRepository) ListAcceptedByUser(ctx context.Context, userID string) ([]*domain.Connection, error) {
	query := `
		SELECT id, user_a_id, user_b_id, requester_id, relationship, status, created_at, updated_at
		FROM connections
		WHERE status = 'accepted' AND (user_a_id = $1 OR user_b_id = $1)
		ORDER BY created_at DESC
	`
	return r.listConnections(ctx, query, userID)
}

func (r *connectionRepository) ListPendingTo(ctx context.Context, userID string) ([]*domain.Connection, error) {
	// The target of a pending request is the endpoint that is not the
	// initiator.
	query := `
		SELECT id, user_a_id, user_b_id, requester_id, relationship, status, created_at, updated_at
		FROM connections
		WHERE status = 'pending' AND requester_id <> $1 AND (user_a_id = $1 OR user_b_id = $1)
		ORDER BY created_at DESC
	`
	return r.listConnections(ctx, query, userID)
}

func (r *connectionRepository) listConnections(ctx context.Context, query string, arg any) ([]*domain.Connection, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*domain.Connection
	for rows.Next() {
		c := &domain.Connection{}
		var status string
		if err := rows.Scan(&c.ID, &c.UserAID, &c.UserBID, &c.RequesterID, &c.Relationship, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Status = domain.ConnectionStatus(status)
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []*domain.Connection{}
	}
	return conns, nil
}

func scanConnection(row *sql.Row) (*domain.Connection, error) {
	c := &domain.Connection{}
	var status string
	err := row.Scan(&c.ID, &c.UserAID, &c.UserBID, &c.RequesterID, &c.Relationship, &status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.ConnectionStatus(status)
	return c, nil
}
