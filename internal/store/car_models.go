package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"autoparts/internal/models"
)

const carModelOrder = "manufacturer, name, year, id"

func carModelFilter(f models.CarModelFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name = ?", f.Name)
		}
		if f.Manufacturer != "" {
			q = q.Where("manufacturer = ?", f.Manufacturer)
		}
		if f.Year != nil {
			q = q.Where("year = ?", *f.Year)
		}
		return q
	}
}

func (s *Store) ListCarModels(ctx context.Context, f models.CarModelFilter, page models.Page) ([]models.CarModel, int64, error) {
	const op = "store.ListCarModels"

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.CarModel{}).Scopes(carModelFilter(f)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}
	var cms []models.CarModel
	err := s.db.WithContext(ctx).
		Scopes(carModelFilter(f), paginate(page)).
		Order(carModelOrder).
		Find(&cms).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return cms, total, nil
}

func (s *Store) CarModelByID(ctx context.Context, id int64) (*models.CarModel, error) {
	var c models.CarModel
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "car_model", id)
	}
	return &c, nil
}

func (s *Store) CreateCarModel(ctx context.Context, c *models.CarModel) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("store.CreateCarModel: %w", err)
	}
	return nil
}

func (s *Store) UpdateCarModel(ctx context.Context, c *models.CarModel) error {
	res := s.db.WithContext(ctx).Model(c).Select("name", "manufacturer", "year").Updates(c)
	if res.Error != nil {
		return fmt.Errorf("store.UpdateCarModel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("car_model", c.ID)
	}
	return nil
}

func (s *Store) DeleteCarModel(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.CarModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("store.DeleteCarModel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("car_model", id)
	}
	return nil
}

func (s *Store) ExistingCarModelIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	if len(ids) == 0 {
		return found, nil
	}
	err := s.db.WithContext(ctx).Model(&models.CarModel{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("store.ExistingCarModelIDs: %w", err)
	}
	return found, nil
}

func (s *Store) CarModelsForPart(ctx context.Context, partID int64) ([]models.CarModel, error) {
	var cms []models.CarModel
	err := s.db.WithContext(ctx).
		Joins("JOIN part_car_models pcm ON pcm.car_model_id = car_models.id").
		Where("pcm.part_id = ?", partID).
		Order("car_models.manufacturer, car_models.name, car_models.year, car_models.id").
		Find(&cms).Error
	if err != nil {
		return nil, fmt.Errorf("store.CarModelsForPart: %w", err)
	}
	return cms, nil
}
