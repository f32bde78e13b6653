package postgres

import (
	"context"
	"database/sql"
	"time"

	"stayshare/internal/domain"
)

type availabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) domain.AvailabilityRepository {
	return &availabilityRepository{DB: db}
}

func (r *availabilityRepository) Create(ctx context.Context, iv *domain.AvailabilityInterval) error {
	query := `
		INSERT INTO availability_intervals (host_id, start_date, end_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, iv.HostID, iv.StartDate, iv.EndDate, string(iv.Status), iv.Notes, iv.CreatedAt, iv.UpdatedAt).
		Scan(&iv.ID)
}

func (r *availabilityRepository) ListByHost(ctx context.Context, hostID string) ([]*domain.AvailabilityInterval, error) {
	query := `
		SELECT id, host_id, start_date, end_date, status, notes, created_at, updated_at
		FROM availability_intervals
		WHERE host_id = $1
		ORDER BY start_date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntervals(rows)
}

func (r *availabilityRepository) ListAvailableOverlapping(ctx context.Context, start, end time.Time) ([]*domain.AvailabilityInterval, error) {
	// Inclusive on both boundaries: an interval overlaps the window when it
	// starts no later than the window end and ends no earlier than the
	// window start.
	query := `
		SELECT id, host_id, start_date, end_date, status, notes, created_at, updated_at
		FROM availability_intervals
		WHERE status = 'available' AND start_date <= $2 AND end_date >= $1
		ORDER BY start_date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntervals(rows)
}

func (r *availabilityRepository) SearchAvailableHosts(ctx context.Context, start, end time.Time, textFilter string) ([]*domain.Host, error) {
	// DISTINCT collapses hosts with several overlapping available intervals
	// to a single row.
	query := `
		SELECT DISTINCT h.id, h.owner_id, h.name, h.description, h.location, h.capacity, h.created_at, h.updated_at
		FROM hosts h
		JOIN availability_intervals ai ON ai.host_id = h.id
		WHERE ai.status = 'available'
		  AND ai.start_date <= $2 AND ai.end_date >= $1
		  AND (h.name ILIKE $3 OR h.description ILIKE $3 OR h.location ILIKE $3)
		ORDER BY h.name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, start, end, "%"+textFilter+"%")
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

func scanIntervals(rows *sql.Rows) ([]*domain.AvailabilityInterval, error) {
	var intervals []*domain.AvailabilityInterval
	for rows.Next() {
		iv := &domain.AvailabilityInterval{}
		var status string
		if err := rows.Scan(&iv.ID, &iv.HostID, &iv.StartDate, &iv.EndDate, &status, &iv.Notes, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
			return nil, err
		}
		iv.Status = domain.IntervalStatus(status)
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if intervals == nil {
		intervals = []*domain.AvailabilityInterval{}
	}
	return intervals, nil
}
