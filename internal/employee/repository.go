package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectEmployee = `
	SELECT u.id, u.name, u.email, COALESCE(u.mobile, ''), u.role, u.status, u.created_at, u.updated_at,
		a.street, a.city, a.state, a.zip_code, a.country,
		b.bank_name, b.account_number, b.ifsc_code, b.branch_name
	FROM users u
	LEFT JOIN employee_address a ON a.user_id = u.id
	LEFT JOIN employee_bank_details b ON b.user_id = u.id
`

// Create inserts the user and its optional address and bank details in one
// transaction.
func (r *Repository) Create(ctx context.Context, input NewEmployee) (Employee, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Employee{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	e := Employee{
		ID:          id.String(),
		Name:        input.Name,
		Email:       input.Email,
		Mobile:      input.Mobile,
		Role:        input.Role,
		Status:      input.Status,
		Address:     input.Address,
		BankDetails: input.BankDetails,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Employee{}, fmt.Errorf("begin create employee tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, mobile, role, status, failed_attempts, locked_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, 0, NULL, $8, $8)
	`, e.ID, e.Name, e.Email, input.PasswordHash, e.Mobile, string(e.Role), string(e.Status), now)
	if err != nil {
		return Employee{}, mapConstraintError("insert user", err)
	}

	if e.Address != nil {
		if err := upsertAddress(ctx, tx, e.ID, *e.Address); err != nil {
			return Employee{}, err
		}
	}
	if e.BankDetails != nil {
		if err := upsertBankDetails(ctx, tx, e.ID, *e.BankDetails); err != nil {
			return Employee{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Employee{}, fmt.Errorf("commit create employee tx: %w", err)
	}

	return e, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, selectEmployee+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, fmt.Errorf("query employee: %w", err)
	}
	return e, nil
}

func (r *Repository) List(ctx context.Context, q ListQuery) ([]Employee, int, error) {
	where, args := listFilter(q)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	args = append(args, q.Limit, q.Offset())
	query := selectEmployee + where + fmt.Sprintf(` ORDER BY u.created_at DESC, u.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	employees, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]Employee, error) {
	return r.query(ctx, selectEmployee+` ORDER BY u.created_at ASC, u.id ASC`)
}

// Update applies p to the user and replaces address and bank details when
// given, all in one transaction.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (Employee, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Employee{}, fmt.Errorf("begin update employee tx: %w", err)
	}
	defer tx.Rollback()

	var role, status *string
	if p.Role != nil {
		value := string(*p.Role)
		role = &value
	}
	if p.Status != nil {
		value := string(*p.Status)
		status = &value
	}

	var updatedID string
	err = tx.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
			mobile = COALESCE(NULLIF($3, ''), mobile),
			role = COALESCE($4, role),
			status = COALESCE($5, status),
			updated_at = $6
		WHERE id = $1
		RETURNING id
	`, id, p.Name, p.Mobile, role, status, time.Now().UTC()).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, mapConstraintError("update user", err)
	}

	if p.Address != nil {
		if err := upsertAddress(ctx, tx, id, *p.Address); err != nil {
			return Employee{}, err
		}
	}
	if p.BankDetails != nil {
		if err := upsertBankDetails(ctx, tx, id, *p.BankDetails); err != nil {
			return Employee{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Employee{}, fmt.Errorf("commit update employee tx: %w", err)
	}

	return r.Get(ctx, id)
}

// Delete removes the user; address, bank details and audit rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	employees := make([]Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}

	return employees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (Employee, error) {
	var e Employee
	var street, city, state, zip, country sql.NullString
	var bankName, account, ifsc, branch sql.NullString
	err := row.Scan(
		&e.ID, &e.Name, &e.Email, &e.Mobile, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		&street, &city, &state, &zip, &country,
		&bankName, &account, &ifsc, &branch,
	)
	if err != nil {
		return Employee{}, err
	}

	if street.Valid {
		e.Address = &Address{Street: street.String, City: city.String, State: state.String, ZipCode: zip.String, Country: country.String}
	}
	if bankName.Valid {
		e.BankDetails = &BankDetails{BankName: bankName.String, AccountNumber: account.String, IFSCCode: ifsc.String, BranchName: branch.String}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()

	return e, nil
}

func listFilter(q ListQuery) (string, []any) {
	var clauses []string
	var args []any

	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(`(u.name ILIKE $%d OR u.email ILIKE $%d OR u.mobile ILIKE $%d)`, n, n, n))
	}
	if q.Role != "" {
		args = append(args, string(q.Role))
		clauses = append(clauses, fmt.Sprintf(`u.role = $%d`, len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func upsertAddress(ctx context.Context, tx *sql.Tx, userID string, a Address) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO employee_address (id, user_id, street, city, state, zip_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			country = EXCLUDED.country
	`, id.String(), userID, a.Street, a.City, a.State, a.ZipCode, a.Country)
	if err != nil {
		return fmt.Errorf("upsert employee address: %w", err)
	}
	return nil
}

func upsertBankDetails(ctx context.Context, tx *sql.Tx, userID string, b BankDetails) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO employee_bank_details (id, user_id, bank_name, account_number, ifsc_code, branch_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			bank_name = EXCLUDED.bank_name,
			account_number = EXCLUDED.account_number,
			ifsc_code = EXCLUDED.ifsc_code,
			branch_name = EXCLUDED.branch_name
	`, id.String(), userID, b.BankName, b.AccountNumber, b.IFSCCode, b.BranchName)
	if err != nil {
		return fmt.Errorf("upsert employee bank details: %w", err)
	}
	return nil
}

// mapConstraintError turns unique violations on users into ErrEmailTaken or
// ErrMobileTaken.
func mapConstraintError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailTaken
		case "users_mobile_key":
			return ErrMobileTaken
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ Store = (*Repository)(nil)
