package employee

import (
	"strconv"
	"strings"

	"employee-service/internal/auth"
)

const defaultPageLimit = 10

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=12"`
	Mobile   string `json:"mobile" validate:"required,len=10,number"`
	Role     string `json:"role" validate:"required,oneof=Admin Manager"`
	Status   string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type BankInput struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSCCode      string `json:"ifsc_code" validate:"required"`
	BranchName    string `json:"branch_name" validate:"required"`
}

type AddEmployeeRequest struct {
	Name        string        `json:"name" validate:"required,max=150"`
	Email       string        `json:"email" validate:"required,email"`
	Password    string        `json:"password" validate:"omitempty,min=8,max=64"`
	Mobile      string        `json:"mobile" validate:"required,len=10,number"`
	Role        string        `json:"role" validate:"required,oneof=Admin Manager Employee"`
	Address     *AddressInput `json:"address" validate:"required"`
	BankDetails *BankInput    `json:"bank_details" validate:"required"`
}

type UpdateRequest struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=150"`
	Mobile      *string       `json:"mobile" validate:"omitempty,len=10,number"`
	Role        *string       `json:"role" validate:"omitempty,oneof=Admin Manager Employee"`
	Status      *string       `json:"status" validate:"omitempty,oneof=Active Inactive"`
	Address     *AddressInput `json:"address" validate:"omitempty"`
	BankDetails *BankInput    `json:"bank_details" validate:"omitempty"`
}

func (r *SignUpRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Mobile = strings.TrimSpace(r.Mobile)
}

func (r *AddEmployeeRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Mobile = strings.TrimSpace(r.Mobile)
	r.Address.trim()
	r.BankDetails.trim()
}

func (r *UpdateRequest) normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Mobile != nil {
		mobile := strings.TrimSpace(*r.Mobile)
		r.Mobile = &mobile
	}
	r.Address.trim()
	r.BankDetails.trim()
}

func (r UpdateRequest) patch() Patch {
	p := Patch{
		Name:        r.Name,
		Mobile:      r.Mobile,
		Address:     r.Address.model(),
		BankDetails: r.BankDetails.model(),
	}
	if r.Role != nil {
		role := auth.Role(*r.Role)
		p.Role = &role
	}
	if r.Status != nil {
		status := auth.Status(*r.Status)
		p.Status = &status
	}
	return p
}

func (a *AddressInput) trim() {
	if a == nil {
		return
	}
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
}

func (a *AddressInput) model() *Address {
	if a == nil {
		return nil
	}
	return &Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
}

func (b *BankInput) trim() {
	if b == nil {
		return
	}
	b.BankName = strings.TrimSpace(b.BankName)
	b.AccountNumber = strings.TrimSpace(b.AccountNumber)
	b.IFSCCode = strings.ToUpper(strings.TrimSpace(b.IFSCCode))
	b.BranchName = strings.TrimSpace(b.BranchName)
}

func (b *BankInput) model() *BankDetails {
	if b == nil {
		return nil
	}
	return &BankDetails{BankName: b.BankName, AccountNumber: b.AccountNumber, IFSCCode: b.IFSCCode, BranchName: b.BranchName}
}

// listQueryParams mirrors the query string of GET /auth/users.
type listQueryParams struct {
	Page   int    `validate:"min=1"`
	Limit  int    `validate:"min=1,max=100"`
	Search string `validate:"max=100"`
	Role   string `validate:"omitempty,oneof=Admin Manager Employee"`
}

// parseListQuery applies defaults; a non-numeric page or limit yields 0 so
// validation rejects it.
func parseListQuery(get func(string) string) listQueryParams {
	params := listQueryParams{Page: 1, Limit: defaultPageLimit}
	if raw := strings.TrimSpace(get("page")); raw != "" {
		params.Page, _ = strconv.Atoi(raw)
	}
	if raw := strings.TrimSpace(get("limit")); raw != "" {
		params.Limit, _ = strconv.Atoi(raw)
	}
	params.Search = strings.TrimSpace(get("search"))
	params.Role = strings.TrimSpace(get("role"))
	return params
}

func (p listQueryParams) query() ListQuery {
	return ListQuery{Page: p.Page, Limit: p.Limit, Search: p.Search, Role: auth.Role(p.Role)}
}
