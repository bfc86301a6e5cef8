// Package identity registers users, exchanges credentials for tokens and
// administers accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"autoparts/internal/auth"
	"autoparts/internal/models"
)

var ErrBadCredentials = fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, page models.Page) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateSession(ctx context.Context, s *models.Session) error
	SessionByJTI(ctx context.Context, jti string) (*models.Session, error)
	RevokeSession(ctx context.Context, jti string, at time.Time) error

	RecordAudit(ctx context.Context, entry *models.AuditLog) error
}

type Service struct {
	repo   Repository
	tokens *auth.Manager
	lg     *zap.SugaredLogger
	now    func() time.Time
}

func NewService(repo Repository, tokens *auth.Manager, lg *zap.SugaredLogger) *Service {
	return &Service{repo: repo, tokens: tokens, lg: lg, now: time.Now}
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *Registration) validate() (models.Role, error) {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	if r.Email == "" {
		return 0, models.Invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return 0, models.Invalid("email", "is not a valid address")
	}
	if r.Username == "" {
		r.Username = strings.SplitN(r.Email, "@", 2)[0]
	}
	if err := auth.ValidatePassword(r.Password); err != nil {
		return 0, err
	}
	if r.Role == "" {
		return models.RoleUser, nil
	}
	return models.ParseRole(r.Role)
}

// Register creates an account. Anyone may register as a user; only an admin
// caller may create another admin.
func (s *Service) Register(ctx context.Context, reg Registration) (*models.User, error) {
	const op = "identity.Register"

	role, err := reg.validate()
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		caller, ok := auth.FromContext(ctx)
		if !ok {
			return nil, auth.ErrMissingToken
		}
		if !caller.IsAdmin() {
			return nil, fmt.Errorf("%w: only admins can create admin users", models.ErrForbidden)
		}
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	u := &models.User{
		Email:        reg.Email,
		Username:     reg.Username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsStaff:      role == models.RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, models.Internal(op, err)
	}
	s.audit(ctx, models.ActionRegister, &u.ID, datatypes.JSONMap{"email": u.Email, "role": u.Role.String()})
	return u, nil
}

// Login checks the credentials and issues an access/refresh pair. The
// refresh token is backed by a session row so it can be revoked.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	const op = "identity.Login"

	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return TokenPair{}, ErrBadCredentials
		}
		return TokenPair{}, models.Internal(op, err)
	}
	if !u.IsActive || auth.CheckPassword(u.PasswordHash, password) != nil {
		return TokenPair{}, ErrBadCredentials
	}

	access, err := s.tokens.Issue(u.ID, u.Role, auth.AccessToken)
	if err != nil {
		return TokenPair{}, models.Internal(op, err)
	}
	refresh, err := s.tokens.Issue(u.ID, u.Role, auth.RefreshToken)
	if err != nil {
		return TokenPair{}, models.Internal(op, err)
	}
	sess := &models.Session{JTI: refresh.JTI, UserID: u.ID, ExpiresAt: refresh.ExpiresAt}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return TokenPair{}, models.Internal(op, err)
	}
	s.audit(ctx, models.ActionLogin, &u.ID, datatypes.JSONMap{"jti": refresh.JTI})
	return TokenPair{Access: access.Value, Refresh: refresh.Value}, nil
}

// Refresh exchanges a live refresh token for a new access token. The role is
// re-read so a demotion takes effect on the next refresh.
func (s *Service) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	const op = "identity.Refresh"

	claims, err := s.tokens.Verify(raw, auth.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.liveSession(ctx, claims.ID); err != nil {
		return TokenPair{}, models.Internal(op, err)
	}
	u, err := s.repo.UserByID(ctx, claims.Identity().UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return TokenPair{}, auth.ErrInvalidToken
		}
		return TokenPair{}, models.Internal(op, err)
	}
	if !u.IsActive {
		return TokenPair{}, auth.ErrInvalidToken
	}
	access, err := s.tokens.Issue(u.ID, u.Role, auth.AccessToken)
	if err != nil {
		return TokenPair{}, models.Internal(op, err)
	}
	return TokenPair{Access: access.Value, Refresh: raw}, nil
}

func (s *Service) liveSession(ctx context.Context, jti string) error {
	sess, err := s.repo.SessionByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return auth.ErrInvalidToken
		}
		return err
	}
	if sess.RevokedAt != nil || !s.now().Before(sess.ExpiresAt) {
		return auth.ErrInvalidToken
	}
	return nil
}

// Logout revokes the session behind a refresh token. Access tokens already
// issued stay valid until they expire.
func (s *Service) Logout(ctx context.Context, raw string) error {
	const op = "identity.Logout"

	claims, err := s.tokens.Verify(raw, auth.RefreshToken)
	if err != nil {
		return err
	}
	caller, ok := auth.FromContext(ctx)
	if ok && caller.UserID != claims.Identity().UserID {
		return fmt.Errorf("%w: refresh token belongs to another user", models.ErrForbidden)
	}
	if err := s.repo.RevokeSession(ctx, claims.ID, s.now().UTC()); err != nil {
		return models.Internal(op, err)
	}
	uid := claims.Identity().UserID
	s.audit(ctx, models.ActionLogout, &uid, datatypes.JSONMap{"jti": claims.ID})
	return nil
}

func (s *Service) Me(ctx context.Context) (*models.User, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return nil, auth.ErrMissingToken
	}
	u, err := s.repo.UserByID(ctx, caller.UserID)
	if err != nil {
		return nil, models.Internal("identity.Me", err)
	}
	return u, nil
}

// audit records best effort; a failed audit write never fails the request.
func (s *Service) audit(ctx context.Context, action string, userID *uuid.UUID, meta datatypes.JSONMap) {
	entry := &models.AuditLog{UserID: userID, Action: action, Metadata: meta}
	if caller, ok := auth.FromContext(ctx); ok {
		uid := caller.UserID
		entry.UserID = &uid
	}
	if err := s.repo.RecordAudit(ctx, entry); err != nil {
		s.lg.Warnw("audit write failed", "action", action, "error", err)
	}
}
