package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// memoryStore mirrors Repository semantics: UpdateLoginState holds the lock
// for the whole read-modify-write.
type memoryStore struct {
	mu        sync.Mutex
	users     map[string]*User
	attempts  []LoginAttempt
	appendErr error
	updateErr error
	updates   int
	admins    map[string]string
}

func newMemoryStore(users ...User) *memoryStore {
	s := &memoryStore{users: make(map[string]*User), admins: make(map[string]string)}
	for i := range users {
		u := users[i]
		s.users[u.Email] = &u
	}
	return s
}

func (s *memoryStore) FindUserByEmail(_ context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return copyUser(*u), nil
}

func (s *memoryStore) UpdateLoginState(_ context.Context, userID string, mutate func(*LoginState) error) (LoginState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return LoginState{}, s.updateErr
	}
	for _, u := range s.users {
		if u.ID != userID {
			continue
		}
		state := copyState(u.LoginState)
		before := copyState(state)
		if err := mutate(&state); err != nil {
			return LoginState{}, err
		}
		if !state.Equal(before) {
			s.updates++
			u.LoginState = copyState(state)
		}
		return state, nil
	}
	return LoginState{}, ErrUserNotFound
}

func (s *memoryStore) AppendLoginAttempt(_ context.Context, attempt LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *memoryStore) UpsertAdmin(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email == "" {
		return errors.New("empty email")
	}
	s.admins[email] = passwordHash
	return nil
}

func (s *memoryStore) state(email string) LoginState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.users[email].LoginState)
}

func (s *memoryStore) setState(email string, state LoginState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email].LoginState = copyState(state)
}

func (s *memoryStore) outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Outcome, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, a.Outcome)
	}
	return out
}

func (s *memoryStore) lastAttempt() LoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[len(s.attempts)-1]
}

func copyUser(u User) User {
	u.LoginState = copyState(u.LoginState)
	return u
}

func copyState(state LoginState) LoginState {
	if state.LockedUntil != nil {
		until := *state.LockedUntil
		state.LockedUntil = &until
	}
	return state
}

func timePtr(t time.Time) *time.Time {
	return &t
}
