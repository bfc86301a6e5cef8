package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// maxPrice is the first value numeric(10,2) cannot hold.
var maxPrice = decimal.New(1, 8)

type Part struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PartNumber string          `gorm:"size:50;not null" json:"part_number"`
	Name       string          `gorm:"size:100;not null;index" json:"name"`
	Details    string          `gorm:"type:text;not null;default:''" json:"details"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity   int             `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate checks the invariants every stored part must hold.
func (p *Part) Validate() error {
	p.PartNumber = strings.TrimSpace(p.PartNumber)
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.PartNumber == "":
		return Invalid("part_number", "is required")
	case utf8.RuneCountInString(p.PartNumber) > 50:
		return Invalid("part_number", "must be <= 50 characters")
	case p.Name == "":
		return Invalid("name", "is required")
	case utf8.RuneCountInString(p.Name) > 100:
		return Invalid("name", "must be <= 100 characters")
	case !p.Price.IsPositive():
		return Invalid("price", "must be greater than zero")
	case !p.Price.Equal(p.Price.Truncate(2)):
		return Invalid("price", "must have at most 2 decimal places")
	case p.Price.GreaterThanOrEqual(maxPrice):
		return Invalid("price", "must be less than 100000000")
	case p.Quantity < 0:
		return Invalid("quantity", "cannot be negative")
	case p.Quantity > math.MaxInt32:
		return Invalid("quantity", "must be <= 2147483647")
	}
	return nil
}

type CarModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Manufacturer string `gorm:"size:255;not null" json:"manufacturer"`
	Year         int    `gorm:"not null" json:"year"`
}

func (c *CarModel) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Manufacturer = strings.TrimSpace(c.Manufacturer)
	switch {
	case c.Name == "":
		return Invalid("name", "is required")
	case utf8.RuneCountInString(c.Name) > 255:
		return Invalid("name", "must be <= 255 characters")
	case c.Manufacturer == "":
		return Invalid("manufacturer", "is required")
	case utf8.RuneCountInString(c.Manufacturer) > 255:
		return Invalid("manufacturer", "must be <= 255 characters")
	case c.Year <= 0:
		return Invalid("year", "is required")
	}
	return nil
}

// PartCarModel records that a part fits a car model. The (part_id,
// car_model_id) pair is unique; rows go away with either end.
type PartCarModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PartID     int64     `gorm:"not null;uniqueIndex:idx_part_car_model" json:"part_id"`
	CarModelID int64     `gorm:"not null;uniqueIndex:idx_part_car_model;index" json:"car_model_id"`
	Part       *Part     `gorm:"constraint:OnDelete:CASCADE" json:"part,omitempty"`
	CarModel   *CarModel `gorm:"constraint:OnDelete:CASCADE" json:"car_model,omitempty"`
}

func (PartCarModel) TableName() string { return "part_car_models" }

type PartFilter struct {
	Search string
}

type CarModelFilter struct {
	Name         string
	Manufacturer string
	Year         *int
}
