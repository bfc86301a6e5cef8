package catalog

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/datatypes"

	"autoparts/internal/metrics"
	"autoparts/internal/models"
)

// Associate links every part in partIDs to every car model in carModelIDs.
// Pairs that already exist are skipped, so repeating a call is safe; only the
// rows created by this call are returned, part-major then car-model-minor.
// Unknown ids fail the whole call before anything is written.
func (s *Service) Associate(ctx context.Context, partIDs, carModelIDs []int64) ([]models.PartCarModel, error) {
	const op = "catalog.Associate"

	partIDs = lo.Uniq(partIDs)
	carModelIDs = lo.Uniq(carModelIDs)
	if len(partIDs) == 0 {
		return nil, models.Invalid("part_ids", "part_ids and car_model_ids are required")
	}
	if len(carModelIDs) == 0 {
		return nil, models.Invalid("car_model_ids", "part_ids and car_model_ids are required")
	}

	var created []models.PartCarModel
	err := s.write(ctx, models.ActionAssociate, func(tx Repository) (datatypes.JSONMap, error) {
		created = make([]models.PartCarModel, 0, len(partIDs)*len(carModelIDs))

		if err := resolve(ctx, tx.ExistingPartIDs, partIDs, "part"); err != nil {
			return nil, err
		}
		if err := resolve(ctx, tx.ExistingCarModelIDs, carModelIDs, "car_model"); err != nil {
			return nil, err
		}

		for _, partID := range partIDs {
			for _, carModelID := range carModelIDs {
				row := models.PartCarModel{PartID: partID, CarModelID: carModelID}
				inserted, err := tx.InsertAssociationIfAbsent(ctx, &row)
				if err != nil {
					return nil, err
				}
				if inserted {
					created = append(created, row)
				}
			}
		}
		return datatypes.JSONMap{
			"part_ids":      partIDs,
			"car_model_ids": carModelIDs,
			"created":       len(created),
		}, nil
	})
	if err != nil {
		return nil, models.Internal(op, err)
	}

	skipped := len(partIDs)*len(carModelIDs) - len(created)
	metrics.AssociationsCreated.Add(float64(len(created)))
	metrics.AssociationsSkipped.Add(float64(skipped))
	s.lg.Infow("parts associated",
		"parts", len(partIDs), "car_models", len(carModelIDs),
		"created", len(created), "skipped", skipped)
	return created, nil
}

// resolve fails with a NotFoundError naming only the resource category when
// any id does not exist.
func resolve(ctx context.Context, existing func(context.Context, []int64) ([]int64, error), ids []int64, resource string) error {
	found, err := existing(ctx, ids)
	if err != nil {
		return err
	}
	if len(lo.Intersect(ids, found)) != len(ids) {
		return models.NotFound(resource, nil)
	}
	return nil
}

// CreateAssociation inserts one pair and rejects duplicates with
// models.ErrConflict.
func (s *Service) CreateAssociation(ctx context.Context, partID, carModelID int64) (*models.PartCarModel, error) {
	const op = "catalog.CreateAssociation"

	if partID <= 0 {
		return nil, models.Invalid("part", "is required")
	}
	if carModelID <= 0 {
		return nil, models.Invalid("car_model", "is required")
	}

	row := models.PartCarModel{PartID: partID, CarModelID: carModelID}
	err := s.write(ctx, models.ActionAssociationCreate, func(tx Repository) (datatypes.JSONMap, error) {
		if err := resolve(ctx, tx.ExistingPartIDs, []int64{partID}, "part"); err != nil {
			return nil, err
		}
		if err := resolve(ctx, tx.ExistingCarModelIDs, []int64{carModelID}, "car_model"); err != nil {
			return nil, err
		}
		if err := tx.CreateAssociation(ctx, &row); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"association_id": row.ID, "part_id": partID, "car_model_id": carModelID}, nil
	})
	if err != nil {
		return nil, models.Internal(op, err)
	}
	metrics.AssociationsCreated.Inc()
	return &row, nil
}

func (s *Service) Association(ctx context.Context, id int64) (*models.PartCarModel, error) {
	a, err := s.repo.AssociationByID(ctx, id)
	if err != nil {
		return nil, models.Internal("catalog.Association", err)
	}
	return a, nil
}

func (s *Service) ListAssociations(ctx context.Context, page models.Page) (models.PageResult[models.PartCarModel], error) {
	page = s.normalize(page)
	rows, total, err := s.repo.ListAssociations(ctx, page)
	if err != nil {
		return models.PageResult[models.PartCarModel]{}, models.Internal("catalog.ListAssociations", err)
	}
	return pageResult(rows, total, page), nil
}

// FindByCarModel returns every association of a car model. An empty result
// is reported as not found; the message says whether the car model itself is
// unknown or simply has no parts.
func (s *Service) FindByCarModel(ctx context.Context, carModelID int64) ([]models.PartCarModel, error) {
	const op = "catalog.FindByCarModel"

	rows, err := s.repo.AssociationsByCarModel(ctx, carModelID)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	if len(rows) > 0 {
		return rows, nil
	}
	if _, err := s.repo.CarModelByID(ctx, carModelID); err != nil {
		return nil, models.Internal(op, err)
	}
	return nil, &models.NotFoundError{
		Resource: "association",
		Msg:      fmt.Sprintf("no parts associated with car_model %d", carModelID),
	}
}

// FindByPart mirrors FindByCarModel for the part side.
func (s *Service) FindByPart(ctx context.Context, partID int64) ([]models.PartCarModel, error) {
	const op = "catalog.FindByPart"

	rows, err := s.repo.AssociationsByPart(ctx, partID)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	if len(rows) > 0 {
		return rows, nil
	}
	if _, err := s.repo.PartByID(ctx, partID); err != nil {
		return nil, models.Internal(op, err)
	}
	return nil, &models.NotFoundError{
		Resource: "association",
		Msg:      fmt.Sprintf("no car models associated with part %d", partID),
	}
}

func (s *Service) DeleteAssociation(ctx context.Context, id int64) error {
	err := s.write(ctx, models.ActionAssociationDelete, func(tx Repository) (datatypes.JSONMap, error) {
		a, err := tx.AssociationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := tx.DeleteAssociation(ctx, id); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"association_id": id, "part_id": a.PartID, "car_model_id": a.CarModelID}, nil
	})
	return models.Internal("catalog.DeleteAssociation", err)
}
