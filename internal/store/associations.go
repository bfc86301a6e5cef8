package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autoparts/internal/models"
)

var pairConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "part_id"}, {Name: "car_model_id"}},
	DoNothing: true,
}

// InsertAssociationIfAbsent relies on the unique (part_id, car_model_id)
// index; a pair that already exists affects no rows.
func (s *Store) InsertAssociationIfAbsent(ctx context.Context, a *models.PartCarModel) (bool, error) {
	res := s.db.WithContext(ctx).Omit(clause.Associations).Clauses(pairConflict).Create(a)
	if res.Error != nil {
		return false, associationError("store.InsertAssociationIfAbsent", a, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) CreateAssociation(ctx context.Context, a *models.PartCarModel) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return associationError("store.CreateAssociation", a, err)
	}
	return nil
}

func associationError(op string, a *models.PartCarModel, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: part %d is already associated with car_model %d",
			models.ErrConflict, a.PartID, a.CarModelID)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.NotFound("part or car_model", nil)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) AssociationByID(ctx context.Context, id int64) (*models.PartCarModel, error) {
	var a models.PartCarModel
	err := s.db.WithContext(ctx).Preload("Part").Preload("CarModel").First(&a, id).Error
	if err != nil {
		return nil, notFound(err, "association", id)
	}
	return &a, nil
}

func (s *Store) AssociationsByPart(ctx context.Context, partID int64) ([]models.PartCarModel, error) {
	var rows []models.PartCarModel
	err := s.db.WithContext(ctx).Preload("CarModel").
		Where("part_id = ?", partID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store.AssociationsByPart: %w", err)
	}
	return rows, nil
}

func (s *Store) AssociationsByCarModel(ctx context.Context, carModelID int64) ([]models.PartCarModel, error) {
	var rows []models.PartCarModel
	err := s.db.WithContext(ctx).Preload("Part").
		Where("car_model_id = ?", carModelID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store.AssociationsByCarModel: %w", err)
	}
	return rows, nil
}

func (s *Store) ListAssociations(ctx context.Context, page models.Page) ([]models.PartCarModel, int64, error) {
	const op = "store.ListAssociations"

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.PartCarModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}
	var rows []models.PartCarModel
	if err := s.db.WithContext(ctx).Scopes(paginate(page)).Order("id").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, total, nil
}

func (s *Store) DeleteAssociation(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.PartCarModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("store.DeleteAssociation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("association", id)
	}
	return nil
}
