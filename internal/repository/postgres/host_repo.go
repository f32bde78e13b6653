package postgres

import (
	"context"
	"database/sql"
	"errors"

	"stayshare/internal/domain"
)

type hostRepository struct {
	DB *sql.DB
}

func NewHostRepository(db *sql.DB) domain.HostRepository {
	return &hostRepository{DB: db}
}

func (r *hostRepository) Create(ctx context.Context, h *domain.Host) error {
	query := `
		INSERT INTO hosts (owner_id, name, description, location, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, h.OwnerID, h.Name, h.Description, h.Location, h.Capacity, h.CreatedAt, h.UpdatedAt).
		Scan(&h.ID)
}

func (r *hostRepository) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	query := `
		SELECT id, owner_id, name, description, location, capacity, created_at, updated_at
		FROM hosts
		WHERE id = $1
	`
	h := &domain.Host{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Location, &h.Capacity, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *hostRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Host, error) {
	query := `
		SELECT id, owner_id, name, description, location, capacity, created_at, updated_at
		FROM hosts
		WHERE owner_id = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hosts []*domain.Host
	for rows.Next() {
		h := &domain.Host{}
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Location, &h.Capacity, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if hosts == nil {
		hosts = []*domain.Host{}
	}
	return hosts, nil
}
