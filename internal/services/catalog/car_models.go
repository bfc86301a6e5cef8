package catalog

import (
	"context"

	"gorm.io/datatypes"

	"autoparts/internal/models"
)

type CarModelPatch struct {
	Name         *string `json:"name"`
	Manufacturer *string `json:"manufacturer"`
	Year         *int    `json:"year"`
}

func (p CarModelPatch) apply(c *models.CarModel) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Manufacturer != nil {
		c.Manufacturer = *p.Manufacturer
	}
	if p.Year != nil {
		c.Year = *p.Year
	}
}

func (s *Service) ListCarModels(ctx context.Context, f models.CarModelFilter, page models.Page) (models.PageResult[models.CarModel], error) {
	page = s.normalize(page)
	cms, total, err := s.repo.ListCarModels(ctx, f, page)
	if err != nil {
		return models.PageResult[models.CarModel]{}, models.Internal("catalog.ListCarModels", err)
	}
	return pageResult(cms, total, page), nil
}

func (s *Service) CarModel(ctx context.Context, id int64) (*models.CarModel, error) {
	c, err := s.repo.CarModelByID(ctx, id)
	if err != nil {
		return nil, models.Internal("catalog.CarModel", err)
	}
	return c, nil
}

func (s *Service) CreateCarModel(ctx context.Context, c *models.CarModel) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = 0
	err := s.write(ctx, models.ActionCarModelCreate, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.CreateCarModel(ctx, c); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"car_model_id": c.ID}, nil
	})
	return models.Internal("catalog.CreateCarModel", err)
}

func (s *Service) ReplaceCarModel(ctx context.Context, id int64, c *models.CarModel) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = id
	return s.saveCarModel(ctx, "catalog.ReplaceCarModel", c)
}

func (s *Service) PatchCarModel(ctx context.Context, id int64, patch CarModelPatch) (*models.CarModel, error) {
	const op = "catalog.PatchCarModel"

	c, err := s.repo.CarModelByID(ctx, id)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	patch.apply(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.saveCarModel(ctx, op, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) saveCarModel(ctx context.Context, op string, c *models.CarModel) error {
	err := s.write(ctx, models.ActionCarModelUpdate, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.UpdateCarModel(ctx, c); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"car_model_id": c.ID}, nil
	})
	return models.Internal(op, err)
}

func (s *Service) DeleteCarModel(ctx context.Context, id int64) error {
	err := s.write(ctx, models.ActionCarModelDelete, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.DeleteCarModel(ctx, id); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"car_model_id": id}, nil
	})
	return models.Internal("catalog.DeleteCarModel", err)
}
