package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(10);not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == 0 {
		u.Role = RoleUser
	}
	return nil
}

// Session backs a refresh token. Revoking it (logout) invalidates the token
// even before it expires.
type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string            `gorm:"not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

const (
	ActionAssociate         = "ASSOCIATE"
	ActionAssociationCreate = "ASSOCIATION_CREATE"
	ActionAssociationDelete = "ASSOCIATION_DELETE"
	ActionPartCreate        = "PART_CREATE"
	ActionPartUpdate        = "PART_UPDATE"
	ActionPartDelete        = "PART_DELETE"
	ActionCarModelCreate    = "CAR_MODEL_CREATE"
	ActionCarModelUpdate    = "CAR_MODEL_UPDATE"
	ActionCarModelDelete    = "CAR_MODEL_DELETE"
	ActionPartsImport       = "PARTS_IMPORT"
	ActionLogin             = "LOGIN"
	ActionLogout            = "LOGOUT"
	ActionRegister          = "REGISTER"
	ActionUserUpdate        = "USER_UPDATE"
	ActionUserDelete        = "USER_DELETE"
)
