package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stayshare/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{DB: db}
}

func (r *bookingRepository) Create(ctx context.Context, req *domain.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (host_id, requester_id, start_date, end_date, guests, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, req.HostID, req.RequesterID, req.StartDate, req.EndDate, req.Guests, req.Message, string(req.Status), req.CreatedAt).
		Scan(&req.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	query := `
		SELECT id, host_id, requester_id, start_date, end_date, guests, message, status, response_message, responded_at, created_at
		FROM booking_requests
		WHERE id = $1
	`
	return scanBooking(r.DB.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, responseMessage string, respondedAt time.Time) error {
	query := `
		UPDATE booking_requests
		SET status = $2, response_message = $3, responded_at = $4
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, string(status), responseMessage, respondedAt)
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

// ApproveAndReconcile runs the approval transition and the calendar side
// effect as one transaction. Only an available interval whose range exactly
// brackets the booking is flipped to booked; any partially overlapping
// interval is deliberately left alone, so a wider available window keeps
// advertising the booked days.
func (r *bookingRepository) ApproveAndReconcile(ctx context.Context, req *domain.BookingRequest, responseMessage string, respondedAt time.Time) (*domain.AvailabilityInterval, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin approval transaction: %w", err)
	}
	defer tx.Rollback()

	updateReq := `
		UPDATE booking_requests
		SET status = $2, response_message = $3, responded_at = $4
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, updateReq, req.ID, string(domain.BookingApproved), responseMessage, respondedAt)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, domain.ErrNotFound
	}

	findExact := `
		SELECT id, host_id, start_date, end_date, status, notes, created_at, updated_at
		FROM availability_intervals
		WHERE host_id = $1 AND start_date = $2 AND end_date = $3 AND status = 'available'
		LIMIT 1
		FOR UPDATE
	`
	iv := &domain.AvailabilityInterval{}
	var status string
	err = tx.QueryRowContext(ctx, findExact, req.HostID, req.StartDate, req.EndDate).
		Scan(&iv.ID, &iv.HostID, &iv.StartDate, &iv.EndDate, &status, &iv.Notes, &iv.CreatedAt, &iv.UpdatedAt)
	switch {
	case err == nil:
		iv.Status = domain.IntervalBooked
		iv.Notes = annotateBooked(iv.Notes, req.RequesterID)
		iv.UpdatedAt = respondedAt
		flip := `
			UPDATE availability_intervals
			SET status = $2, notes = $3, updated_at = $4
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, flip, iv.ID, string(iv.Status), iv.Notes, iv.UpdatedAt); err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("commit approval transaction: %w", err)
		}
		return iv, false, nil
	case errors.Is(err, sql.ErrNoRows):
		iv = domain.NewAvailabilityInterval(req.HostID, req.StartDate, req.EndDate, domain.IntervalBooked, annotateBooked("", req.RequesterID), respondedAt, respondedAt)
		insert := `
			INSERT INTO availability_intervals (host_id, start_date, end_date, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, insert, iv.HostID, iv.StartDate, iv.EndDate, string(iv.Status), iv.Notes, iv.CreatedAt, iv.UpdatedAt).Scan(&iv.ID); err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("commit approval transaction: %w", err)
		}
		return iv, true, nil
	default:
		return nil, false, err
	}
}

func (r *bookingRepository) ListByHost(ctx context.Context, hostID string) ([]*domain.BookingRequest, error) {
	query := `
		SELECT id, host_id, requester_id, start_date, end_date, guests, message, status, response_message, responded_at, created_at
		FROM booking_requests
		WHERE host_id = $1
		ORDER BY created_at DESC
	`
	return r.listBookings(ctx, query, hostID)
}

func (r *bookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.BookingRequest, error) {
	query := `
		SELECT id, host_id, requester_id, start_date, end_date, guests, message, status, response_message, responded_at, created_at
		FROM booking_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`
	return r.listBookings(ctx, query, requesterID)
}

func (r *bookingRepository) listBookings(ctx context.Context, query string, arg any) ([]*domain.BookingRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.BookingRequest
	for rows.Next() {
		req := &domain.BookingRequest{}
		var status string
		var responseMessage sql.NullString
		var respondedAt sql.NullTime
		if err := rows.Scan(&req.ID, &req.HostID, &req.RequesterID, &req.StartDate, &req.EndDate, &req.Guests, &req.Message, &status, &responseMessage, &respondedAt, &req.CreatedAt); err != nil {
			return nil, err
		}
		req.Status = domain.BookingStatus(status)
		req.ResponseMessage = responseMessage.String
		if respondedAt.Valid {
			t := respondedAt.Time
			req.RespondedAt = &t
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []*domain.BookingRequest{}
	}
	return reqs, nil
}

func scanBooking(row *sql.Row) (*domain.BookingRequest, error) {
	req := &domain.BookingRequest{}
	var status string
	var responseMessage sql.NullString
	var respondedAt sql.NullTime
	err := row.Scan(&req.ID, &req.HostID, &req.RequesterID, &req.StartDate, &req.EndDate, &req.Guests, &req.Message, &status, &responseMessage, &respondedAt, &req.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	req.Status = domain.BookingStatus(status)
	req.ResponseMessage = responseMessage.String
	if respondedAt.Valid {
		t := respondedAt.Time
		req.RespondedAt = &t
	}
	return req, nil
}

// annotateBooked appends the requester identity to the interval notes.
func annotateBooked(notes, requesterID string) string {
	if notes == "" {
		return "booked for " + requesterID
	}
	return notes + " | booked for " + requesterID
}
