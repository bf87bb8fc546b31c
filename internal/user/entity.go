// AngelaMos | 2026
// entity.go

package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/medassist/internal/core"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q: %w", s, core.ErrInvalidInput)
	}
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountDeleted     = errors.New("account deleted")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyDeleted     = errors.New("account already deleted")
	ErrNotDeleted         = errors.New("account is not deleted")
)

type User struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	Status       Status     `db:"status"`
	IsAdmin      bool       `db:"is_admin"`
	ApprovedAt   *time.Time `db:"approved_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}

// SetStatus moves the user to status and keeps approvedAt in step with it:
// set to now on approved, cleared on anything else.
func (u *User) SetStatus(status Status, now time.Time) {
	u.Status = status
	if status == StatusApproved {
		t := now
		u.ApprovedAt = &t
		return
	}
	u.ApprovedAt = nil
}

// Policy holds the account rules that depend on configuration.
type Policy struct {
	AdminEmail        string
	MinPasswordLength int
}

func (p Policy) IsDistinguishedAdmin(email string) bool {
	return p.AdminEmail != "" && NormalizeEmail(email) == p.AdminEmail
}

// ApplySignupRule sets the initial status, admin flag and approval time for
// a freshly created or recreated account.
func (p Policy) ApplySignupRule(u *User, now time.Time) {
	if p.IsDistinguishedAdmin(u.Email) {
		u.IsAdmin = true
		u.SetStatus(StatusApproved, now)
		return
	}
	u.IsAdmin = false
	u.SetStatus(StatusPending, now)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
