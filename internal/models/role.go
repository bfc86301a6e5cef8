package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the authorization level carried by an identity. Only RoleUser and
// RoleAdmin are valid; the zero value is rejected at every boundary.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, Invalid("role", fmt.Sprintf("unknown role %q", s))
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return "invalid"
}

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Value stores the role as its string name.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return r.String(), nil
}

func (r *Role) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		return fmt.Errorf("role scan: null role")
	default:
		return fmt.Errorf("role scan: unsupported type %T", value)
	}
}
