package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"autoparts/internal/auth"
	"autoparts/internal/models"
)

// UserPatch changes selected account fields; nil means unchanged.
type UserPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (s *Service) ListUsers(ctx context.Context, page models.Page) (models.PageResult[models.User], error) {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size <= 0 {
		page.Size = 50
	}
	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return models.PageResult[models.User]{}, models.Internal("identity.ListUsers", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return models.PageResult[models.User]{Count: total, Page: page.Number, PageSize: page.Size, Results: users}, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, p UserPatch) (*models.User, error) {
	const op = "identity.UpdateUser"

	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	changed := datatypes.JSONMap{}
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if name == "" {
			return nil, models.Invalid("username", "is required")
		}
		u.Username = name
		changed["username"] = u.Username
	}
	if p.Role != nil {
		role, err := models.ParseRole(*p.Role)
		if err != nil {
			return nil, err
		}
		u.Role = role
		u.IsStaff = role == models.RoleAdmin
		changed["role"] = role.String()
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
		changed["is_active"] = u.IsActive
	}
	if p.Password != nil {
		if err := auth.ValidatePassword(*p.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, models.Internal(op, err)
		}
		u.PasswordHash = hash
		changed["password"] = "changed"
	}
	if caller, ok := auth.FromContext(ctx); ok && caller.UserID == id && (!u.IsActive || u.Role != models.RoleAdmin) {
		return nil, fmt.Errorf("%w: admins cannot demote or deactivate themselves", models.ErrForbidden)
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, models.Internal(op, err)
	}
	changed["user_id"] = id.String()
	s.audit(ctx, models.ActionUserUpdate, &id, changed)
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if caller, ok := auth.FromContext(ctx); ok && caller.UserID == id {
		return fmt.Errorf("%w: admins cannot delete themselves", models.ErrForbidden)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return models.Internal("identity.DeleteUser", err)
	}
	s.audit(ctx, models.ActionUserDelete, &id, datatypes.JSONMap{"user_id": id.String()})
	return nil
}

// EnsureSuperuser creates the bootstrap admin when no account with email
// exists yet. It reports whether a user was created.
func (s *Service) EnsureSuperuser(ctx context.Context, email, username, password string) (bool, error) {
	const op = "identity.EnsureSuperuser"

	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.repo.UserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return false, models.Internal(op, err)
	}

	reg := Registration{Email: email, Username: username, Password: password, Role: models.RoleAdmin.String()}
	if _, err := reg.validate(); err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return false, models.Internal(op, err)
	}
	u := &models.User{
		Email:        reg.Email,
		Username:     reg.Username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsStaff:      true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return false, models.Internal(op, err)
	}
	s.lg.Infow("superuser created", "email", u.Email)
	return true, nil
}
