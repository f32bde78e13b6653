package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayshare/internal/domain"
)

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 1)
	expires := now.Add(30 * 24 * time.Hour)

	t.Run("assigns generated id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		inv := domain.NewInvitation("inviter-1", "guest@example.com", "hi", "aabbcc", expires, now)
		mock.ExpectQuery(`INSERT INTO invitations`).
			WithArgs("inviter-1", "guest@example.com", "hi", "aabbcc", "pending", expires, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-uuid-1"))

		repo := NewInvitationRepository(db)
		require.NoError(t, repo.Create(ctx, inv))
		assert.Equal(t, "inv-uuid-1", inv.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO invitations`).
			WillReturnError(&pq.Error{Code: "23505"})

		repo := NewInvitationRepository(db)
		inv := domain.NewInvitation("inviter-1", "guest@example.com", "", "aabbcc", expires, now)
		err = repo.Create(ctx, inv)
		assert.ErrorIs(t, err, domain.ErrDuplicateInvitation)
	})
}

func TestInvitationRepository_GetByToken(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 1)
	cols := []string{"id", "inviter_id", "invitee_email", "message", "token", "status", "expires_at", "accepted_at", "created_at"}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(cols).
			AddRow("inv-1", "inviter-1", "guest@example.com", "hi", "aabbcc", "pending", now.Add(time.Hour), nil, now)
		mock.ExpectQuery(`WHERE token = \$1`).WithArgs("aabbcc").WillReturnRows(rows)

		repo := NewInvitationRepository(db)
		inv, err := repo.GetByToken(ctx, "aabbcc")
		require.NoError(t, err)
		assert.Equal(t, "inv-1", inv.ID)
		assert.Equal(t, domain.InvitationPending, inv.Status)
		assert.Nil(t, inv.AcceptedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE token = \$1`).WillReturnError(sql.ErrNoRows)

		repo := NewInvitationRepository(db)
		_, err = repo.GetByToken(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationRepository_AcceptExisting(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 10)

	t.Run("marks accepted and inserts the edge in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		conn := domain.NewConnection("inviter-1", "member-9", "friend", domain.ConnectionPending, now, now)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE invitations`).
			WithArgs("inv-1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO connections`).
			WithArgs("inviter-1", "member-9", "inviter-1", "friend", "pending", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conn-uuid-1"))
		mock.ExpectCommit()

		repo := NewInvitationRepository(db)
		require.NoError(t, repo.AcceptExisting(ctx, "inv-1", now, conn))
		assert.Equal(t, "conn-uuid-1", conn.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate edge rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		conn := domain.NewConnection("inviter-1", "member-9", "friend", domain.ConnectionPending, now, now)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE invitations`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO connections`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		repo := NewInvitationRepository(db)
		err = repo.AcceptExisting(ctx, "inv-1", now, conn)
		assert.ErrorIs(t, err, domain.ErrAlreadyConnected)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvitationRepository_AcceptNew(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 10)

	t.Run("creates the account, the accepted edge, and the acceptance", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		newUser := domain.NewUser("guest@example.com", "Gia", "", now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("guest@example.com", "Gia", "", "", "", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-new"))
		// inviter-1 < user-new, so the canonical pair keeps the inviter first.
		mock.ExpectQuery(`INSERT INTO connections`).
			WithArgs("inviter-1", "user-new", "inviter-1", "friend", "accepted", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conn-uuid-1"))
		mock.ExpectExec(`UPDATE invitations`).
			WithArgs("inv-1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewInvitationRepository(db)
		require.NoError(t, repo.AcceptNew(ctx, "inv-1", now, newUser, "inviter-1", "friend"))
		assert.Equal(t, "user-new", newUser.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		newUser := domain.NewUser("guest@example.com", "Gia", "", now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		repo := NewInvitationRepository(db)
		err = repo.AcceptNew(ctx, "inv-1", now, newUser, "inviter-1", "friend")
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvitationRepository_ListByInviter(t *testing.T) {
	ctx := context.Background()
	now := utcDay(2025, time.November, 1)
	cols := []string{"id", "inviter_id", "invitee_email", "message", "token", "status", "expires_at", "accepted_at", "created_at"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	acceptedAt := now.Add(48 * time.Hour)
	rows := sqlmock.NewRows(cols).
		AddRow("inv-2", "inviter-1", "two@example.com", "", "ddeeff", "accepted", now.Add(30*24*time.Hour), acceptedAt, now).
		AddRow("inv-1", "inviter-1", "one@example.com", "", "aabbcc", "pending", now.Add(30*24*time.Hour), nil, now)
	mock.ExpectQuery(`WHERE inviter_id = \$1`).WithArgs("inviter-1").WillReturnRows(rows)

	repo := NewInvitationRepository(db)
	invs, err := repo.ListByInviter(ctx, "inviter-1")
	require.NoError(t, err)
	require.Len(t, invs, 2)
	require.NotNil(t, invs[0].AcceptedAt)
	assert.True(t, invs[0].AcceptedAt.Equal(acceptedAt))
	assert.Nil(t, invs[1].AcceptedAt)
}
