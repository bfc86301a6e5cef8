package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"autoparts/internal/models"
)

// PartPatch carries the fields of a partial update; nil means unchanged.
type PartPatch struct {
	PartNumber *string          `json:"part_number"`
	Name       *string          `json:"name"`
	Details    *string          `json:"details"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   *int             `json:"quantity"`
}

func (p PartPatch) apply(part *models.Part) {
	if p.PartNumber != nil {
		part.PartNumber = *p.PartNumber
	}
	if p.Name != nil {
		part.Name = *p.Name
	}
	if p.Details != nil {
		part.Details = *p.Details
	}
	if p.Price != nil {
		part.Price = *p.Price
	}
	if p.Quantity != nil {
		part.Quantity = *p.Quantity
	}
}

func (s *Service) ListParts(ctx context.Context, f models.PartFilter, page models.Page) (models.PageResult[models.Part], error) {
	page = s.normalize(page)
	parts, total, err := s.repo.ListParts(ctx, f, page)
	if err != nil {
		return models.PageResult[models.Part]{}, models.Internal("catalog.ListParts", err)
	}
	return pageResult(parts, total, page), nil
}

func (s *Service) Part(ctx context.Context, id int64) (*models.Part, error) {
	p, err := s.repo.PartByID(ctx, id)
	if err != nil {
		return nil, models.Internal("catalog.Part", err)
	}
	return p, nil
}

// PartCarModels lists the car models a part fits.
func (s *Service) PartCarModels(ctx context.Context, id int64) ([]models.CarModel, error) {
	const op = "catalog.PartCarModels"

	if _, err := s.repo.PartByID(ctx, id); err != nil {
		return nil, models.Internal(op, err)
	}
	cms, err := s.repo.CarModelsForPart(ctx, id)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	if cms == nil {
		cms = []models.CarModel{}
	}
	return cms, nil
}

func (s *Service) CreatePart(ctx context.Context, p *models.Part) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = 0
	p.UpdatedAt = time.Now().UTC()
	err := s.write(ctx, models.ActionPartCreate, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.CreatePart(ctx, p); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"part_id": p.ID, "part_number": p.PartNumber}, nil
	})
	return models.Internal("catalog.CreatePart", err)
}

// ReplacePart overwrites every mutable field of an existing part.
func (s *Service) ReplacePart(ctx context.Context, id int64, p *models.Part) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = id
	return s.savePart(ctx, "catalog.ReplacePart", p)
}

func (s *Service) PatchPart(ctx context.Context, id int64, patch PartPatch) (*models.Part, error) {
	const op = "catalog.PatchPart"

	p, err := s.repo.PartByID(ctx, id)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	patch.apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.savePart(ctx, op, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) savePart(ctx context.Context, op string, p *models.Part) error {
	p.UpdatedAt = time.Now().UTC()
	err := s.write(ctx, models.ActionPartUpdate, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.UpdatePart(ctx, p); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"part_id": p.ID}, nil
	})
	return models.Internal(op, err)
}

// DeletePart removes a part together with its associations.
func (s *Service) DeletePart(ctx context.Context, id int64) error {
	err := s.write(ctx, models.ActionPartDelete, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.DeletePart(ctx, id); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"part_id": id}, nil
	})
	return models.Internal("catalog.DeletePart", err)
}

// ImportParts validates every row before inserting anything, then creates
// the parts in batches inside one transaction. The first invalid row aborts
// the import. Row numbers in errors follow the CSV file, whose header is row 1.
func (s *Service) ImportParts(ctx context.Context, parts []models.Part) (int, error) {
	const op = "catalog.ImportParts"

	for i := range parts {
		if err := parts[i].Validate(); err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				return 0, models.Invalid(ve.Field, fmt.Sprintf("row %d: %s", i+2, ve.Msg))
			}
			return 0, err
		}
		parts[i].ID = 0
		parts[i].UpdatedAt = time.Now().UTC()
	}
	if len(parts) == 0 {
		return 0, nil
	}

	err := s.write(ctx, models.ActionPartsImport, func(tx Repository) (datatypes.JSONMap, error) {
		if err := tx.CreateParts(ctx, parts); err != nil {
			return nil, err
		}
		return datatypes.JSONMap{"count": len(parts)}, nil
	})
	if err != nil {
		return 0, models.Internal(op, err)
	}
	s.lg.Infow("parts imported", "count", len(parts))
	return len(parts), nil
}
