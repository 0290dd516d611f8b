package dto

import (
	"msana/internal/domain/auth"
)

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=6"`
	Role     auth.Role `json:"role"`
}

// UpdateUserRequest carries mutable user fields; nil leaves a field unchanged.
type UpdateUserRequest struct {
	Name     *string    `json:"name"`
	Role     *auth.Role `json:"role"`
	IsActive *bool      `json:"isActive"`
	Password *string    `json:"password"`
}

// ToUpdate converts the request to the service update contract.
func (r UpdateUserRequest) ToUpdate() auth.UserUpdate {
	return auth.UserUpdate{
		Name:     r.Name,
		Role:     r.Role,
		IsActive: r.IsActive,
		Password: r.Password,
	}
}
