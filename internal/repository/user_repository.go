package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/motoshop/auth-service/internal/model"
)

const userColumns = "id,email,name,password_hash,role,active,created_at,updated_at"

// UserRepo reads and writes the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts the user and fills in its ID.  Email is normalized to
// lower case; the unique index enforces case-insensitive uniqueness.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, role, active) VALUES (?,?,?,?,?)",
		u.Email, u.Name, u.PasswordHash, u.Role, u.Active)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// filterClause renders the WHERE fragment shared by List and Count.
func filterClause(f model.UserFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Active != nil {
		where = append(where, "active=?")
		args = append(args, *f.Active)
	}
	if f.Role != nil {
		where = append(where, "role=?")
		args = append(args, *f.Role)
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR email LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// List returns one page of users ordered by name.  Active flag, role and a
// name/email substring narrow the result; Limit of 0 means everything.
func (r *UserRepo) List(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	clause, args := filterClause(f)
	q := "SELECT " + userColumns + " FROM users" + clause + " ORDER BY name ASC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns how many users match the filter, ignoring pagination.
func (r *UserRepo) Count(ctx context.Context, f model.UserFilter) (int, error) {
	clause, args := filterClause(f)
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users"+clause, args...).Scan(&n)
	return n, err
}

// Update rewrites email, name and role.  Callers are expected to have
// loaded the user first; a missing id is a silent no-op here.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, name=?, role=? WHERE id=?",
		u.Email, u.Name, u.Role, u.ID)
	if isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// SetActive flips the soft-delete flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET active=? WHERE id=?", active, id)
	return err
}

// CountByRole aggregates totals for the stats endpoint in a single query.
// Per-role counts cover every user; only the active/inactive split looks at
// the flag.
func (r *UserRepo) CountByRole(ctx context.Context) (model.UserStats, error) {
	stats := model.UserStats{ByRole: make(map[string]int)}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role, active, COUNT(*) FROM users GROUP BY role, active")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role   model.Role
			active bool
			n      int
		)
		if err := rows.Scan(&role, &active, &n); err != nil {
			return stats, err
		}
		stats.Total += n
		stats.ByRole[role.String()] += n
		if active {
			stats.Active += n
		} else {
			stats.Inactive += n
		}
	}
	return stats, rows.Err()
}

// isDuplicateKey detects MySQL error 1062 without importing driver types.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
