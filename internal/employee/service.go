package employee

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"employee-service/internal/auth"
	"employee-service/internal/notify"
	"employee-service/internal/observability"
)

const (
	generatedPasswordLength = 10
	passwordAlphabet        = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789@#$%"
)

// privilegedRoles may manage other users' records.
var privilegedRoles = []auth.Role{auth.RoleAdmin, auth.RoleManager}

type Store interface {
	Create(ctx context.Context, input NewEmployee) (Employee, error)
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, q ListQuery) ([]Employee, int, error)
	ListAll(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, id string, p Patch) (Employee, error)
	Delete(ctx context.Context, id string) error
}

type Notifier interface {
	SendWelcome(ctx context.Context, to notify.Recipient, creds notify.Credentials) error
}

type Service struct {
	store      Store
	hasher     auth.PasswordHasher
	notifier   Notifier
	dispatcher *notify.Dispatcher
	logger     *observability.Logger
	passwords  func() (string, error)
}

func NewService(store Store, hasher auth.PasswordHasher, notifier Notifier, dispatcher *notify.Dispatcher, logger *observability.Logger) *Service {
	return &Service{
		store:      store,
		hasher:     hasher,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		passwords:  generatePassword,
	}
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (Employee, error) {
	status := auth.Status(req.Status)
	if status == "" {
		status = auth.StatusActive
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return Employee{}, err
	}

	e, err := s.store.Create(ctx, NewEmployee{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Role:         auth.Role(req.Role),
		Status:       status,
	})
	if err != nil {
		return Employee{}, err
	}

	s.logger.Info("user_registered", map[string]any{"user_id": e.ID, "role": string(e.Role)})
	return e, nil
}

// AddEmployee creates a fully populated employee record and mails the
// credentials to the new user after the record is committed.
func (s *Service) AddEmployee(ctx context.Context, actor auth.Claims, req AddEmployeeRequest) (Employee, error) {
	if err := auth.Authorize(actor, privilegedRoles...); err != nil {
		return Employee{}, err
	}

	password := req.Password
	if password == "" {
		generated, err := s.passwords()
		if err != nil {
			return Employee{}, fmt.Errorf("generate password: %w", err)
		}
		password = generated
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Employee{}, err
	}

	e, err := s.store.Create(ctx, NewEmployee{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Role:         auth.Role(req.Role),
		Status:       auth.StatusActive,
		Address:      req.Address.model(),
		BankDetails:  req.BankDetails.model(),
	})
	if err != nil {
		return Employee{}, err
	}

	s.logger.Info("employee_added", map[string]any{"user_id": e.ID, "added_by": actor.UserID, "role": string(e.Role)})

	if s.notifier != nil && s.dispatcher != nil {
		to := notify.Recipient{Name: e.Name, Email: e.Email}
		creds := notify.Credentials{Email: e.Email, Password: password, Mobile: e.Mobile, Role: string(e.Role)}
		s.dispatcher.Go("welcome", map[string]any{"user_id": e.ID}, func(ctx context.Context) error {
			return s.notifier.SendWelcome(ctx, to, creds)
		})
	}

	return e, nil
}

func (s *Service) Profile(ctx context.Context, actor auth.Claims) (Employee, error) {
	return s.store.Get(ctx, actor.UserID)
}

func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Employee, error) {
	if err := auth.AuthorizeOwner(actor, id, privilegedRoles...); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, actor auth.Claims, q ListQuery) (Page, error) {
	if err := auth.Authorize(actor, privilegedRoles...); err != nil {
		return Page{}, err
	}

	employees, total, err := s.store.List(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return newPage(employees, total, q), nil
}

func (s *Service) ListAll(ctx context.Context, actor auth.Claims) ([]Employee, error) {
	if err := auth.Authorize(actor, privilegedRoles...); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx)
}

// Update lets owners edit their own details. Role and status changes are
// reserved for privileged roles.
func (s *Service) Update(ctx context.Context, actor auth.Claims, id string, p Patch) (Employee, error) {
	if err := auth.AuthorizeOwner(actor, id, privilegedRoles...); err != nil {
		return Employee{}, err
	}
	if p.ChangesAccess() {
		if err := auth.Authorize(actor, privilegedRoles...); err != nil {
			return Employee{}, err
		}
	}

	e, err := s.store.Update(ctx, id, p)
	if err != nil {
		return Employee{}, err
	}

	s.logger.Info("user_updated", map[string]any{"user_id": id, "updated_by": actor.UserID})
	return e, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Claims, id string) error {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Warn("user_deleted", map[string]any{"user_id": id, "deleted_by": actor.UserID})
	return nil
}

func generatePassword() (string, error) {
	limit := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, generatedPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
