package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"autoparts/internal/models"
)

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.d.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
	}
	if err := u.BeforeCreate(nil); err != nil {
		return err
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	m.d.users[u.ID] = *u
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	u, ok := lo.Find(lo.Values(m.d.users), func(u models.User) bool { return u.Email == email })
	if !ok {
		return nil, models.NotFound("user", nil)
	}
	return &u, nil
}

func (m *Memory) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.d.users[id]
	if !ok {
		return nil, models.NotFound("user", id)
	}
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context, p models.Page) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := lo.Values(m.d.users)
	slices.SortFunc(users, func(a, b models.User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return page(users, p), int64(len(users)), nil
}

func (m *Memory) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.d.users[u.ID]; !ok {
		return models.NotFound("user", u.ID)
	}
	m.d.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.d.users[id]; !ok {
		return models.NotFound("user", id)
	}
	delete(m.d.users, id)
	for jti, s := range m.d.sessions {
		if s.UserID == id {
			delete(m.d.sessions, jti)
		}
	}
	return nil
}

func (m *Memory) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.d.sessions[s.JTI] = *s
	return nil
}

func (m *Memory) SessionByJTI(_ context.Context, jti string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.d.sessions[jti]
	if !ok {
		return nil, models.NotFound("session", nil)
	}
	return &s, nil
}

func (m *Memory) RevokeSession(_ context.Context, jti string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.d.sessions[jti]
	if !ok || s.RevokedAt != nil {
		return nil
	}
	s.RevokedAt = &at
	m.d.sessions[jti] = s
	return nil
}
