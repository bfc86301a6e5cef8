package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"autoparts/internal/models"
)

var partColumns = []string{"part_number", "name", "details", "price", "quantity", "updated_at"}

func partFilter(f models.PartFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(f.Search); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(part_number) LIKE ?", like, like)
		}
		return q
	}
}

func (s *Store) ListParts(ctx context.Context, f models.PartFilter, page models.Page) ([]models.Part, int64, error) {
	const op = "store.ListParts"

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Part{}).Scopes(partFilter(f)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}
	var parts []models.Part
	err := s.db.WithContext(ctx).
		Scopes(partFilter(f), paginate(page)).
		Order("name, id").
		Find(&parts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return parts, total, nil
}

func (s *Store) PartByID(ctx context.Context, id int64) (*models.Part, error) {
	var p models.Part
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "part", id)
	}
	return &p, nil
}

const partBatchSize = 500

func (s *Store) CreatePart(ctx context.Context, p *models.Part) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("store.CreatePart: %w", err)
	}
	return nil
}

// CreateParts inserts parts in batches of partBatchSize, filling in their ids.
func (s *Store) CreateParts(ctx context.Context, parts []models.Part) error {
	if err := s.db.WithContext(ctx).CreateInBatches(parts, partBatchSize).Error; err != nil {
		return fmt.Errorf("store.CreateParts: %w", err)
	}
	return nil
}

// UpdatePart writes every mutable column, zero values included.
func (s *Store) UpdatePart(ctx context.Context, p *models.Part) error {
	res := s.db.WithContext(ctx).Model(p).Select(partColumns).Updates(p)
	if res.Error != nil {
		return fmt.Errorf("store.UpdatePart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("part", p.ID)
	}
	return nil
}

func (s *Store) DeletePart(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Part{}, id)
	if res.Error != nil {
		return fmt.Errorf("store.DeletePart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("part", id)
	}
	return nil
}

func (s *Store) ExistingPartIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	if len(ids) == 0 {
		return found, nil
	}
	err := s.db.WithContext(ctx).Model(&models.Part{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("store.ExistingPartIDs: %w", err)
	}
	return found, nil
}
