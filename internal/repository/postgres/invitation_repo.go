package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stayshare/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (inviter_id, invitee_email, message, token, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.InviterID, inv.InviteeEmail, inv.Message, inv.Token, string(inv.Status), inv.ExpiresAt, inv.CreatedAt).
		Scan(&inv.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInvitation
	}
	return err
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `
		SELECT id, inviter_id, invitee_email, message, token, status, expires_at, accepted_at, created_at
		FROM invitations
		WHERE id = $1
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `
		SELECT id, inviter_id, invitee_email, message, token, status, expires_at, accepted_at, created_at
		FROM invitations
		WHERE token = $1
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, token))
}

func (r *invitationRepository) FindPendingByInviterEmail(ctx context.Context, inviterID, inviteeEmail string) (*domain.Invitation, error) {
	query := `
		SELECT id, inviter_id, invitee_email, message, token, status, expires_at, accepted_at, created_at
		FROM invitations
		WHERE inviter_id = $1 AND invitee_email = $2 AND status = 'pending'
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, inviterID, inviteeEmail))
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	query := `
		UPDATE invitations
		SET status = $2
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, string(status))
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

// AcceptExisting marks the invitation accepted and creates the pending edge
// toward the already-registered invitee in one transaction.
func (r *invitationRepository) AcceptExisting(ctx context.Context, id string, acceptedAt time.Time, conn *domain.Connection) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin acceptance transaction: %w", err)
	}
	defer tx.Rollback()

	if err := acceptInvitation(ctx, tx, id, acceptedAt); err != nil {
		return err
	}
	if err := insertConnection(ctx, tx, conn); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit acceptance transaction: %w", err)
	}
	return nil
}

// AcceptNew materializes the invitee's account, connects it to the inviter
// with an already-accepted edge, and marks the invitation accepted, all in
// one transaction.
func (r *invitationRepository) AcceptNew(ctx context.Context, id string, acceptedAt time.Time, newUser *domain.User, inviterID, relationship string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin acceptance transaction: %w", err)
	}
	defer tx.Rollback()

	insertUser := `
		INSERT INTO users (email, name, image, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insertUser, newUser.Email, newUser.Name, newUser.Image, newUser.PasswordHash, newUser.Salt, newUser.CreatedAt, newUser.UpdatedAt).
		Scan(&newUser.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	// Acceptance of the invitation is itself the mutual consent, so the
	// edge skips the pending handshake.
	conn := domain.NewConnection(inviterID, newUser.ID, relationship, domain.ConnectionAccepted, acceptedAt, acceptedAt)
	if err := insertConnection(ctx, tx, conn); err != nil {
		return err
	}
	if err := acceptInvitation(ctx, tx, id, acceptedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit acceptance transaction: %w", err)
	}
	return nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *invitationRepository) ListByInviter(ctx context.Context, inviterID string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, inviter_id, invitee_email, message, token, status, expires_at, accepted_at, created_at
		FROM invitations
		WHERE inviter_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, inviterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv := &domain.Invitation{}
		var status string
		var acceptedAt sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.InviterID, &inv.InviteeEmail, &inv.Message, &inv.Token, &status, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Status = domain.InvitationStatus(status)
		if acceptedAt.Valid {
			t := acceptedAt.Time
			inv.AcceptedAt = &t
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func acceptInvitation(ctx context.Context, tx *sql.Tx, id string, acceptedAt time.Time) error {
	query := `
		UPDATE invitations
		SET status = 'accepted', accepted_at = $2
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, id, acceptedAt)
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

func insertConnection(ctx context.Context, tx *sql.Tx, c *domain.Connection) error {
	query := `
		INSERT INTO connections (user_a_id, user_b_id, requester_id, relationship, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := tx.QueryRowContext(ctx, query, c.UserAID, c.UserBID, c.RequesterID, c.Relationship, string(c.Status), c.CreatedAt, c.UpdatedAt).
		Scan(&c.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyConnected
	}
	return err
}

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var status string
	var acceptedAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.InviterID, &inv.InviteeEmail, &inv.Message, &inv.Token, &status, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.Status = domain.InvitationStatus(status)
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	return inv, nil
}
