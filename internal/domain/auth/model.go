// Package auth provides user accounts, credentials and bearer tokens.
package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
)

// Role is a coarse access level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is an operator account.
type User struct {
	ID    id.ID  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`

	// PasswordHash is a bcrypt digest, never serialized.
	PasswordHash string `db:"password_hash" json:"-"`

	Role     Role `db:"role" json:"role"`
	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a user with a hashed password.
func NewUser(name, email, password string, role Role) (*User, error) {
	if role == "" {
		role = RoleStaff
	}
	now := time.Now().UTC()
	u := &User{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores a new password.
func (u *User) SetPassword(password string) error {
	if len(password) < 6 {
		return apperror.NewValidation("password must be at least 6 characters").
			WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Validate checks user invariants.
func (u *User) Validate(ctx context.Context) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	if u.Role != RoleAdmin && u.Role != RoleStaff {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", string(u.Role))
	}
	return nil
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, userID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*User], error)
}
