package employee

import (
	"errors"
	"time"

	"employee-service/internal/auth"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email already exists")
	ErrMobileTaken = errors.New("mobile already exists")
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	BranchName    string `json:"branch_name"`
}

// Employee is a user record without credentials, joined with its optional
// address and bank details.
type Employee struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Mobile      string       `json:"mobile"`
	Role        auth.Role    `json:"role"`
	Status      auth.Status  `json:"status"`
	Address     *Address     `json:"address,omitempty"`
	BankDetails *BankDetails `json:"bank_details,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type NewEmployee struct {
	Name         string
	Email        string
	PasswordHash string
	Mobile       string
	Role         auth.Role
	Status       auth.Status
	Address      *Address
	BankDetails  *BankDetails
}

// Patch carries a partial update. Nil fields are left unchanged; a non-nil
// Address or BankDetails replaces the stored one.
type Patch struct {
	Name        *string
	Mobile      *string
	Role        *auth.Role
	Status      *auth.Status
	Address     *Address
	BankDetails *BankDetails
}

func (p Patch) ChangesAccess() bool {
	return p.Role != nil || p.Status != nil
}

type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Role   auth.Role
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Page struct {
	Data []Employee `json:"data"`
	Meta PageMeta   `json:"meta"`
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func newPage(data []Employee, total int, q ListQuery) Page {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	if data == nil {
		data = []Employee{}
	}
	return Page{
		Data: data,
		Meta: PageMeta{Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages},
	}
}
