package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"employee-service/internal/notify"
	"employee-service/internal/observability"
)

const (
	defaultAccessTTL   = 5 * time.Minute
	defaultMaxAttempts = 5
	defaultLockWindow  = 15 * time.Minute
)

// CredentialStore persists user credentials, lockout state and the login audit trail.
type CredentialStore interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	// UpdateLoginState applies mutate to the current state of userID as one
	// atomic read-modify-write and returns the stored result.
	UpdateLoginState(ctx context.Context, userID string, mutate func(*LoginState) error) (LoginState, error)
	AppendLoginAttempt(ctx context.Context, attempt LoginAttempt) error
}

type Notifier interface {
	SendAccountLocked(ctx context.Context, to notify.Recipient, until time.Time) error
	SendAccountRestored(ctx context.Context, to notify.Recipient) error
}

type Service struct {
	store        CredentialStore
	hasher       PasswordHasher
	tokens       TokenIssuer
	notifier     Notifier
	dispatcher   *notify.Dispatcher
	logger       *observability.Logger
	maxAttempts  int
	lockDuration time.Duration
	now          func() time.Time
}

func NewService(
	store CredentialStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	notifier Notifier,
	dispatcher *notify.Dispatcher,
	logger *observability.Logger,
) *Service {
	return &Service{
		store:        store,
		hasher:       hasher,
		tokens:       tokens,
		notifier:     notifier,
		dispatcher:   dispatcher,
		logger:       logger,
		maxAttempts:  defaultMaxAttempts,
		lockDuration: defaultLockWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithSecurityConfig(maxAttempts int, lockDuration time.Duration) {
	if maxAttempts > 0 {
		s.maxAttempts = maxAttempts
	}
	if lockDuration > 0 {
		s.lockDuration = lockDuration
	}
}

func (s *Service) LockWindow() time.Duration {
	return s.lockDuration
}

// Authenticate runs one sign-in attempt. Every call appends exactly one audit
// record. Wrong passwords for unknown and known emails both match
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password, sourceIP string) (Token, error) {
	email = normalizeEmail(email)
	now := s.now()

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.recordAttempt(ctx, LoginAttempt{Email: email, Outcome: OutcomeNotFound, IPAddress: sourceIP, AttemptedAt: now})
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("find user: %w", err)
	}

	if user.Status != StatusActive {
		s.recordAttempt(ctx, s.attemptFor(user, OutcomeNotFound, sourceIP, now))
		return Token{}, ErrInvalidCredentials
	}

	if user.LoginState.LockedAt(now) {
		s.recordAttempt(ctx, s.attemptFor(user, OutcomeLocked, sourceIP, now))
		return Token{}, s.lockedError(*user.LoginState.LockedUntil, false)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return Token{}, s.registerFailure(ctx, user, sourceIP, now)
	}

	return s.completeLogin(ctx, user, sourceIP, now)
}

func (s *Service) registerFailure(ctx context.Context, user User, sourceIP string, now time.Time) error {
	var outcome Outcome
	state, err := s.store.UpdateLoginState(ctx, user.ID, func(state *LoginState) error {
		if state.LockedAt(now) {
			outcome = OutcomeLocked
			return nil
		}
		state.FailedAttempts++
		if state.FailedAttempts >= s.maxAttempts {
			until := now.Add(s.lockDuration)
			state.LockedUntil = &until
			outcome = OutcomeLockTriggered
			return nil
		}
		outcome = OutcomeWrongPassword
		return nil
	})
	if err != nil {
		return fmt.Errorf("register failed attempt: %w", err)
	}

	switch outcome {
	case OutcomeLocked:
		s.recordAttempt(ctx, s.attemptFor(user, OutcomeLocked, sourceIP, now))
		return s.lockedError(*state.LockedUntil, false)
	case OutcomeLockTriggered:
		until := *state.LockedUntil
		s.recordAttempt(ctx, s.attemptFor(user, OutcomeLockTriggered, sourceIP, now))
		s.logger.Warn("account_locked", map[string]any{
			"user_id":      user.ID,
			"ip":           sourceIP,
			"locked_until": until.Format(time.RFC3339),
		})
		s.notifyAsync("account_locked", user, func(ctx context.Context, to notify.Recipient) error {
			return s.notifier.SendAccountLocked(ctx, to, until)
		})
		return s.lockedError(until, true)
	default:
		remaining := s.maxAttempts - state.FailedAttempts
		attempt := s.attemptFor(user, OutcomeWrongPassword, sourceIP, now)
		attempt.RemainingAttempts = &remaining
		s.recordAttempt(ctx, attempt)
		return ErrWrongPassword{Remaining: remaining}
	}
}

func (s *Service) completeLogin(ctx context.Context, user User, sourceIP string, now time.Time) (Token, error) {
	if user.LoginState.Dirty() {
		var lockedUntil *time.Time
		var wasLocked bool
		_, err := s.store.UpdateLoginState(ctx, user.ID, func(state *LoginState) error {
			if state.LockedAt(now) {
				lockedUntil = state.LockedUntil
				return nil
			}
			wasLocked = state.LockedUntil != nil
			state.FailedAttempts = 0
			state.LockedUntil = nil
			return nil
		})
		if err != nil {
			return Token{}, fmt.Errorf("reset login state: %w", err)
		}
		// A concurrent attempt locked the account after our first read.
		if lockedUntil != nil {
			s.recordAttempt(ctx, s.attemptFor(user, OutcomeLocked, sourceIP, now))
			return Token{}, s.lockedError(*lockedUntil, false)
		}
		if wasLocked {
			s.notifyAsync("account_restored", user, func(ctx context.Context, to notify.Recipient) error {
				return s.notifier.SendAccountRestored(ctx, to)
			})
		}
	}

	s.recordAttempt(ctx, s.attemptFor(user, OutcomeSuccess, sourceIP, now))

	token, err := s.tokens.Issue(Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return Token{}, err
	}
	return token, nil
}

func (s *Service) attemptFor(user User, outcome Outcome, sourceIP string, now time.Time) LoginAttempt {
	userID := user.ID
	return LoginAttempt{
		UserID:      &userID,
		Email:       user.Email,
		Outcome:     outcome,
		IPAddress:   sourceIP,
		AttemptedAt: now,
	}
}

// recordAttempt appends to the audit trail. A failed append is logged and
// reported but never changes the authentication result.
func (s *Service) recordAttempt(ctx context.Context, attempt LoginAttempt) {
	if attempt.ID == "" {
		if id, err := uuid.NewV7(); err == nil {
			attempt.ID = id.String()
		}
	}

	if err := s.store.AppendLoginAttempt(ctx, attempt); err != nil {
		sentry.CaptureException(err)
		s.logger.Error("login_audit_failed", map[string]any{
			"error":   err.Error(),
			"email":   attempt.Email,
			"outcome": string(attempt.Outcome),
		})
	}
}

func (s *Service) notifyAsync(event string, user User, send func(ctx context.Context, to notify.Recipient) error) {
	if s.notifier == nil || s.dispatcher == nil {
		return
	}
	to := notify.Recipient{Name: user.Name, Email: user.Email}
	s.dispatcher.Go(event, map[string]any{"user_id": user.ID}, func(ctx context.Context) error {
		return send(ctx, to)
	})
}

func (s *Service) lockedError(until time.Time, triggered bool) error {
	return ErrAccountLocked{Until: until, Window: s.lockDuration, Triggered: triggered}
}

// AdminStore creates or refreshes the bootstrap administrator.
type AdminStore interface {
	UpsertAdmin(ctx context.Context, email, passwordHash string) error
}

// BootstrapFromEnv makes sure an Admin account exists for the given
// credentials. Both values empty is a no-op.
func BootstrapFromEnv(ctx context.Context, store AdminStore, hasher PasswordHasher, adminEmail, adminPassword string) error {
	adminEmail = normalizeEmail(adminEmail)
	adminPassword = strings.TrimSpace(adminPassword)

	if adminEmail == "" && adminPassword == "" {
		return nil
	}
	if adminEmail == "" || adminPassword == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required together")
	}

	hash, err := hasher.Hash(adminPassword)
	if err != nil {
		return err
	}
	return store.UpsertAdmin(ctx, adminEmail, hash)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
