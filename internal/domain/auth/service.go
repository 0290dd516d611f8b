package auth

import (
	"context"
	"fmt"
	"time"

	"msana/internal/core/apperror"
	"msana/internal/core/id"
	"msana/internal/domain"
	"msana/internal/domain/audit"
	"msana/pkg/logger"
)

// LoginResult bundles the issued token with its subject.
type LoginResult struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserUpdate carries the mutable user fields. Nil means "leave unchanged".
type UserUpdate struct {
	Name     *string `json:"name"`
	Role     *Role   `json:"role"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// Service provides authentication and user management.
type Service struct {
	repo    Repository
	jwt     *JWTService
	auditor *audit.Recorder
}

// NewService creates an auth service.
func NewService(repo Repository, jwt *JWTService, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, jwt: jwt, auditor: auditor}
}

// Login verifies credentials and issues an access token. Both the unknown-email
// and bad-password paths return the same error so the response does not leak
// which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil || u == nil || !u.CheckPassword(password) {
		s.auditor.Record(ctx, audit.ActionLoginFailed, audit.ResourceAuth, nil, map[string]any{
			"email": email,
		})
		return nil, apperror.NewUnauthorized("invalid email or password")
	}
	if !u.IsActive {
		s.auditor.Record(ctx, audit.ActionLoginFailed, audit.ResourceAuth, &u.ID, map[string]any{
			"email":  email,
			"reason": "account disabled",
		})
		return nil, apperror.NewForbidden("account is disabled")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "email", u.Email)
	s.auditor.Record(ctx, audit.ActionLoginSuccess, audit.ResourceAuth, &u.ID, map[string]any{
		"email": u.Email,
	})

	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", email)
	}

	u, err := NewUser(name, email, password, role)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.auditor.Record(ctx, audit.ActionUserCreated, audit.ResourceUser, &u.ID, map[string]any{
		"email": u.Email,
		"role":  u.Role,
	})
	return u, nil
}

// GetByID retrieves a user.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*User], error) {
	return s.repo.List(ctx, filter)
}

// ApplyUpdate mutates a user with the provided fields.
func (s *Service) ApplyUpdate(ctx context.Context, userID id.ID, upd UserUpdate) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Name != nil {
		u.Name = *upd.Name
		changes["name"] = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
		changes["role"] = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
		changes["isActive"] = *upd.IsActive
	}
	if upd.Password != nil {
		if err := u.SetPassword(*upd.Password); err != nil {
			return nil, err
		}
		changes["password"] = "changed"
	}

	if err := u.Validate(ctx); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.auditor.Record(ctx, audit.ActionUserUpdated, audit.ResourceUser, &u.ID, changes)
	return u, nil
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, userID id.ID) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.auditor.Record(ctx, audit.ActionUserDeleted, audit.ResourceUser, &userID, map[string]any{
		"email": u.Email,
	})
	return nil
}
