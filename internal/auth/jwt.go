package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"autoparts/internal/models"
)

var (
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", models.ErrUnauthorized)
	ErrMissingToken = fmt.Errorf("%w: authorization token required", models.ErrUnauthorized)
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	Role models.Role `json:"role"`
	Type TokenType   `json:"typ"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	JTI       string
	ExpiresAt time.Time
}

// Manager signs and verifies HS256 access and refresh tokens.
type Manager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{key: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (m *Manager) Issue(userID uuid.UUID, role models.Role, typ TokenType) (Token, error) {
	ttl := m.accessTTL
	if typ == RefreshToken {
		ttl = m.refreshTTL
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify parses raw and checks signature, expiry and that it is a token of
// the expected type.
func (m *Manager) Verify(raw string, typ TokenType) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.Type != typ || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identity converts verified claims into the request identity.
func (c *Claims) Identity() Identity {
	return Identity{UserID: uuid.MustParse(c.Subject), Role: c.Role}
}
