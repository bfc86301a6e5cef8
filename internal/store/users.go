package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"autoparts/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
		return fmt.Errorf("store.CreateUser: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, notFound(err, "user", nil)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	const op = "store.ListUsers"

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Scopes(paginate(page)).Order("created_at, id").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(u).
		Select("username", "password_hash", "role", "is_active", "is_staff", "updated_at").
		Updates(u)
	if res.Error != nil {
		return fmt.Errorf("store.UpdateUser: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("user", u.ID)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store.DeleteUser: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("user", id)
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return fmt.Errorf("store.CreateSession: %w", err)
	}
	return nil
}

func (s *Store) SessionByJTI(ctx context.Context, jti string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).First(&sess, "jti = ?", jti).Error; err != nil {
		return nil, notFound(err, "session", nil)
	}
	return &sess, nil
}

// RevokeSession is idempotent; revoking an already revoked session keeps the
// original timestamp.
func (s *Store) RevokeSession(ctx context.Context, jti string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("jti = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", at).Error
	if err != nil {
		return fmt.Errorf("store.RevokeSession: %w", err)
	}
	return nil
}
