package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// maxTxAttempts bounds retries of the login-state transaction on
// serialization failures and deadlocks.
const maxTxAttempts = 3

type Repository struct {
	db *sql.DB
}

type CleanupResult struct {
	DeletedLoginAttempts int64 `json:"deleted_login_attempts"`
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status, failed_attempts, locked_until
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Status,
		&user.LoginState.FailedAttempts, &lockedUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user by email: %w", err)
	}
	if lockedUntil.Valid {
		value := lockedUntil.Time.UTC()
		user.LoginState.LockedUntil = &value
	}

	return user, nil
}

func (r *Repository) UpdateLoginState(ctx context.Context, userID string, mutate func(*LoginState) error) (LoginState, error) {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		state, err := r.updateLoginStateOnce(ctx, userID, mutate)
		if err == nil || !isRetryable(err) {
			return state, err
		}
		lastErr = err
	}
	return LoginState{}, fmt.Errorf("%w: %v", ErrTransient, lastErr)
}

func (r *Repository) updateLoginStateOnce(ctx context.Context, userID string, mutate func(*LoginState) error) (LoginState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return LoginState{}, fmt.Errorf("begin login state tx: %w", err)
	}
	defer tx.Rollback()

	var state LoginState
	var lockedUntil sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT failed_attempts, locked_until
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&state.FailedAttempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginState{}, ErrUserNotFound
		}
		return LoginState{}, fmt.Errorf("lock user row: %w", err)
	}
	if lockedUntil.Valid {
		value := lockedUntil.Time.UTC()
		state.LockedUntil = &value
	}

	before := state
	if err := mutate(&state); err != nil {
		return LoginState{}, err
	}
	if state.FailedAttempts < 0 {
		state.FailedAttempts = 0
	}

	if !state.Equal(before) {
		var nextLock any
		if state.LockedUntil != nil {
			nextLock = state.LockedUntil.UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET failed_attempts = $2, locked_until = $3, updated_at = $4
			WHERE id = $1
		`, userID, state.FailedAttempts, nextLock, time.Now().UTC()); err != nil {
			return LoginState{}, fmt.Errorf("update login state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return LoginState{}, fmt.Errorf("commit login state tx: %w", err)
	}

	return state, nil
}

// AppendLoginAttempt writes outside any login-state transaction so a failed
// audit insert never rolls back a lockout change.
func (r *Repository) AppendLoginAttempt(ctx context.Context, attempt LoginAttempt) error {
	if attempt.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate login attempt id: %w", err)
		}
		attempt.ID = id.String()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts (id, user_id, email, outcome, ip_address, remaining_attempts, attempted_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`, attempt.ID, attempt.UserID, attempt.Email, string(attempt.Outcome), attempt.IPAddress, attempt.RemainingAttempts, attempt.AttemptedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}

	return nil
}

func (r *Repository) UpsertAdmin(ctx context.Context, email, passwordHash string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, status, failed_attempts, locked_until, created_at, updated_at)
		VALUES ($1, 'Administrator', $2, $3, $4, $5, 0, NULL, $6, $6)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			failed_attempts = 0,
			locked_until = NULL,
			updated_at = EXCLUDED.updated_at
	`, id.String(), email, passwordHash, string(RoleAdmin), string(StatusActive), now)
	if err != nil {
		return fmt.Errorf("upsert admin user: %w", err)
	}

	return nil
}

// PurgeLoginAttempts deletes audit records older than retention, at most
// batchSize rows per call.
func (r *Repository) PurgeLoginAttempts(ctx context.Context, retention time.Duration, batchSize int) (CleanupResult, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if retention <= 0 {
		retention = 365 * 24 * time.Hour
	}
	cutoff := time.Now().UTC().Add(-retention)

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM login_attempts
			WHERE attempted_at < $1
			ORDER BY attempted_at ASC
			LIMIT $2
		)
		DELETE FROM login_attempts t
		USING stale
		WHERE t.id = stale.id
	`, cutoff, batchSize)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("delete stale login attempts: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return CleanupResult{}, fmt.Errorf("stale login attempts rows affected: %w", err)
	}

	return CleanupResult{DeletedLoginAttempts: affected}, nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

var (
	_ CredentialStore = (*Repository)(nil)
	_ AdminStore      = (*Repository)(nil)
)
