package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayshare/internal/domain"
)

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 1)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := domain.NewBookingRequest("host-1", "guest-1", utcDay(2025, time.December, 1), utcDay(2025, time.December, 7), 2, "please", now)
	mock.ExpectQuery(`INSERT INTO booking_requests`).
		WithArgs("host-1", "guest-1", req.StartDate, req.EndDate, 2, "please", "pending", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("booking-uuid-1"))

	repo := NewBookingRepository(db)
	require.NoError(t, repo.Create(ctx, req))
	assert.Equal(t, "booking-uuid-1", req.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 1)
	cols := []string{"id", "host_id", "requester_id", "start_date", "end_date", "guests", "message", "status", "response_message", "responded_at", "created_at"}

	t.Run("success with null response fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(cols).
			AddRow("booking-1", "host-1", "guest-1", utcDay(2025, time.December, 1), utcDay(2025, time.December, 7), 2, "please", "pending", nil, nil, now)
		mock.ExpectQuery(`FROM booking_requests`).WithArgs("booking-1").WillReturnRows(rows)

		repo := NewBookingRepository(db)
		req, err := repo.GetByID(ctx, "booking-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingPending, req.Status)
		assert.Empty(t, req.ResponseMessage)
		assert.Nil(t, req.RespondedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM booking_requests`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		repo := NewBookingRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.December, 1)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE booking_requests`).
			WithArgs("booking-1", "declined", "sorry", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewBookingRepository(db)
		require.NoError(t, repo.UpdateStatus(ctx, "booking-1", domain.BookingDeclined, "sorry", now))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE booking_requests`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewBookingRepository(db)
		err = repo.UpdateStatus(ctx, "missing", domain.BookingCancelled, "", now)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingRepository_ApproveAndReconcile(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.December, 1)
	ivCols := []string{"id", "host_id", "start_date", "end_date", "status", "notes", "created_at", "updated_at"}

	pendingReq := func() *domain.BookingRequest {
		return &domain.BookingRequest{
			ID:          "booking-1",
			HostID:      "host-1",
			RequesterID: "guest-1",
			StartDate:   utcDay(2025, time.December, 10),
			EndDate:     utcDay(2025, time.December, 14),
			Guests:      2,
			Status:      domain.BookingPending,
			CreatedAt:   now,
		}
	}

	t.Run("exact match flips the interval in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		req := pendingReq()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE booking_requests`).
			WithArgs("booking-1", "approved", "welcome", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("host-1", req.StartDate, req.EndDate).
			WillReturnRows(sqlmock.NewRows(ivCols).
				AddRow("iv-1", "host-1", req.StartDate, req.EndDate, "available", "spare room", now, now))
		mock.ExpectExec(`UPDATE availability_intervals`).
			WithArgs("iv-1", "booked", "spare room | booked for guest-1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewBookingRepository(db)
		iv, inserted, err := repo.ApproveAndReconcile(ctx, req, "welcome", now)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, "iv-1", iv.ID)
		assert.Equal(t, domain.IntervalBooked, iv.Status)
		assert.Equal(t, "spare room | booked for guest-1", iv.Notes)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no exact match inserts a booked interval", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		req := pendingReq()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE booking_requests`).
			WithArgs("booking-1", "approved", "", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("host-1", req.StartDate, req.EndDate).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO availability_intervals`).
			WithArgs("host-1", req.StartDate, req.EndDate, "booked", "booked for guest-1", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("iv-new"))
		mock.ExpectCommit()

		repo := NewBookingRepository(db)
		iv, inserted, err := repo.ApproveAndReconcile(ctx, req, "", now)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, "iv-new", iv.ID)
		assert.True(t, iv.StartDate.Equal(req.StartDate))
		assert.True(t, iv.EndDate.Equal(req.EndDate))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing request rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		req := pendingReq()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE booking_requests`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewBookingRepository(db)
		_, _, err = repo.ApproveAndReconcile(ctx, req, "", now)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("interval update failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		req := pendingReq()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE booking_requests`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(ivCols).
				AddRow("iv-1", "host-1", req.StartDate, req.EndDate, "available", "", now, now))
		mock.ExpectExec(`UPDATE availability_intervals`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewBookingRepository(db)
		_, _, err = repo.ApproveAndReconcile(ctx, req, "", now)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ListByRequester(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 1)
	cols := []string{"id", "host_id", "requester_id", "start_date", "end_date", "guests", "message", "status", "response_message", "responded_at", "created_at"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	respondedAt := utcDay(2025, time.November, 2)
	rows := sqlmock.NewRows(cols).
		AddRow("booking-2", "host-2", "guest-1", now, now, 1, "", "approved", "welcome", respondedAt, now).
		AddRow("booking-1", "host-1", "guest-1", now, now, 2, "hi", "pending", nil, nil, now)
	mock.ExpectQuery(`WHERE requester_id = \$1`).WithArgs("guest-1").WillReturnRows(rows)

	repo := NewBookingRepository(db)
	reqs, err := repo.ListByRequester(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "welcome", reqs[0].ResponseMessage)
	require.NotNil(t, reqs[0].RespondedAt)
	assert.Nil(t, reqs[1].RespondedAt)
}
