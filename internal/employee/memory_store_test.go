package employee

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu        sync.Mutex
	seq       int
	employees map[string]Employee
	hashes    map[string]string
	created   time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		employees: make(map[string]Employee),
		hashes:    make(map[string]string),
		created:   time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) Create(_ context.Context, input NewEmployee) (Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.employees {
		if e.Email == input.Email {
			return Employee{}, ErrEmailTaken
		}
		if input.Mobile != "" && e.Mobile == input.Mobile {
			return Employee{}, ErrMobileTaken
		}
	}

	s.seq++
	at := s.created.Add(time.Duration(s.seq) * time.Minute)
	e := Employee{
		ID:          fmt.Sprintf("0190c0de-0000-7000-8000-%012d", s.seq),
		Name:        input.Name,
		Email:       input.Email,
		Mobile:      input.Mobile,
		Role:        input.Role,
		Status:      input.Status,
		Address:     copyAddress(input.Address),
		BankDetails: copyBank(input.BankDetails),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	s.employees[e.ID] = e
	s.hashes[e.ID] = input.PasswordHash
	return e, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (s *memoryStore) List(_ context.Context, q ListQuery) ([]Employee, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Employee
	search := strings.ToLower(q.Search)
	for _, e := range s.sorted(true) {
		if q.Role != "" && e.Role != q.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Name+" "+e.Email+" "+e.Mobile), search) {
			continue
		}
		matched = append(matched, e)
	}

	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (s *memoryStore) ListAll(_ context.Context) ([]Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(false), nil
}

func (s *memoryStore) Update(_ context.Context, id string, p Patch) (Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	if p.Mobile != nil {
		for otherID, other := range s.employees {
			if otherID != id && other.Mobile == *p.Mobile {
				return Employee{}, ErrMobileTaken
			}
		}
		e.Mobile = *p.Mobile
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Address != nil {
		e.Address = copyAddress(p.Address)
	}
	if p.BankDetails != nil {
		e.BankDetails = copyBank(p.BankDetails)
	}
	s.employees[id] = e
	return e, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return ErrNotFound
	}
	delete(s.employees, id)
	delete(s.hashes, id)
	return nil
}

func (s *memoryStore) hash(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashes[id]
}

func (s *memoryStore) sorted(newestFirst bool) []Employee {
	out := make([]Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func copyAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	value := *a
	return &value
}

func copyBank(b *BankDetails) *BankDetails {
	if b == nil {
		return nil
	}
	value := *b
	return &value
}
