package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role is the closed set of authorization tiers a user can hold.  Roles are
// stored as strings in the database but handled as a typed enumeration in
// code so that role checks can switch exhaustively: adding a role is a
// compile-visible change, not a scattered string comparison.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleManager
	RoleOperator
	RoleMechanic
)

// AllRoles lists every valid role in display order.  Used by the role
// catalog endpoint and by tests that assert the enumeration is closed.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleOperator, RoleMechanic}
}

// ParseRole converts the wire/database representation into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "operator":
		return RoleOperator, nil
	case "mechanic":
		return RoleMechanic, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	case RoleOperator:
		return "operator"
	case RoleMechanic:
		return "mechanic"
	}
	return "unknown"
}

// Label returns the human-readable name shown in management UIs.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleManager:
		return "Manager"
	case RoleOperator:
		return "Operator"
	case RoleMechanic:
		return "Mechanic"
	}
	return "Unknown"
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator, RoleMechanic:
		return true
	}
	return false
}

// Value implements driver.Valuer so a Role can be written with database/sql.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role value %d", r)
	}
	return r.String(), nil
}

// Scan implements sql.Scanner.  MySQL returns the role column as []byte.
func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan role from %T", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User mirrors the 'users' table.  PasswordHash never serializes: handlers
// return the record as-is and rely on the json:"-" tag to strip the hash.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserFilter narrows List and Count queries.  Nil fields mean "no
// constraint"; Search matches name or email as a substring.  Limit and
// Offset page the result and are ignored by Count.
type UserFilter struct {
	Active *bool
	Role   *Role
	Search string
	Limit  int
	Offset int
}

// Pagination describes one page of a listed collection.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Paginate computes the envelope for a page of total rows.
func Paginate(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// UserStats aggregates user counts for the management dashboard.
type UserStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Inactive int            `json:"inactive"`
	ByRole   map[string]int `json:"by_role"`
}
