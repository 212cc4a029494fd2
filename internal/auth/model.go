package auth

import "time"

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// LoginState is the lockout part of a user record. It is only ever changed
// through CredentialStore.UpdateLoginState.
type LoginState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// LockedAt reports whether the lock is enforced at now. A lock past its
// expiry is not enforced but stays on the record until the next update.
func (s LoginState) LockedAt(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

func (s LoginState) Dirty() bool {
	return s.FailedAttempts != 0 || s.LockedUntil != nil
}

func (s LoginState) Equal(other LoginState) bool {
	if s.FailedAttempts != other.FailedAttempts {
		return false
	}
	if s.LockedUntil == nil || other.LockedUntil == nil {
		return s.LockedUntil == nil && other.LockedUntil == nil
	}
	return s.LockedUntil.Equal(*other.LockedUntil)
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       Status
	LoginState   LoginState
}

type Outcome string

const (
	OutcomeSuccess       Outcome = "Success"
	OutcomeNotFound      Outcome = "Failed-NotFound"
	OutcomeWrongPassword Outcome = "Failed-WrongPassword"
	OutcomeLocked        Outcome = "Failed-Locked"
	OutcomeLockTriggered Outcome = "Failed-LockTriggered"
)

// LoginAttempt is one append-only audit record. UserID is nil when the email
// did not resolve to a user.
type LoginAttempt struct {
	ID                string
	UserID            *string
	Email             string
	Outcome           Outcome
	IPAddress         string
	RemainingAttempts *int
	AttemptedAt       time.Time
}

// Claims is the identity carried by an access token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
	ExpiresAt   time.Time
}
