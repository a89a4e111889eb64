package account

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/delordemm1/dealer-dashboard/internal/validation"
)

// Roles. The first account ever created is granted RoleSuperAdmin.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
)

// Full name bounds, counted in characters after trimming.
const (
	FullNameMin = 1
	FullNameMax = 100
)

// Account is a dashboard user. Email is unique and compared exactly as stored.
type Account struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	FullName  string     `db:"full_name"`
	Roles     []string   `db:"roles"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// HasRole reports whether the account carries role.
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeFullName trims name and enforces the length bounds.
func NormalizeFullName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < FullNameMin || n > FullNameMax {
		return "", validation.NewFieldError("fullName", "must be between 1 and 100 characters")
	}
	return name, nil
}

func knownRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}
