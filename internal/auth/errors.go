package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTransient          = errors.New("credential store busy, retry later")
)

// ErrWrongPassword is returned for a wrong password that did not lock the
// account. It matches ErrInvalidCredentials.
type ErrWrongPassword struct {
	Remaining int
}

func (e ErrWrongPassword) Error() string {
	return fmt.Sprintf("Invalid credentials. Attempts remaining: %d", e.Remaining)
}

func (e ErrWrongPassword) Is(target error) bool {
	return target == ErrInvalidCredentials
}

type ErrAccountLocked struct {
	Until  time.Time
	Window time.Duration
	// Triggered is set when this attempt caused the lock.
	Triggered bool
}

func (e ErrAccountLocked) Error() string {
	if e.Triggered {
		return fmt.Sprintf("Too many failed attempts. Account locked for %s.", humanizeWindow(e.Window))
	}
	return fmt.Sprintf("Account is temporarily locked. Try again in %s.", humanizeWindow(e.Window))
}

func humanizeWindow(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
