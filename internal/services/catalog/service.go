// Package catalog owns parts, car models and the many-to-many association
// between them.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"autoparts/internal/auth"
	"autoparts/internal/models"
)

// Repository is the persistence the catalog needs. Implementations must
// enforce the (part_id, car_model_id) uniqueness constraint themselves.
type Repository interface {
	// WithinTx runs fn inside one transaction; an error from fn rolls back
	// every write made through tx.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error

	ListParts(ctx context.Context, f models.PartFilter, page models.Page) ([]models.Part, int64, error)
	PartByID(ctx context.Context, id int64) (*models.Part, error)
	CreatePart(ctx context.Context, p *models.Part) error
	CreateParts(ctx context.Context, parts []models.Part) error
	UpdatePart(ctx context.Context, p *models.Part) error
	DeletePart(ctx context.Context, id int64) error
	ExistingPartIDs(ctx context.Context, ids []int64) ([]int64, error)

	ListCarModels(ctx context.Context, f models.CarModelFilter, page models.Page) ([]models.CarModel, int64, error)
	CarModelByID(ctx context.Context, id int64) (*models.CarModel, error)
	CreateCarModel(ctx context.Context, c *models.CarModel) error
	UpdateCarModel(ctx context.Context, c *models.CarModel) error
	DeleteCarModel(ctx context.Context, id int64) error
	ExistingCarModelIDs(ctx context.Context, ids []int64) ([]int64, error)
	CarModelsForPart(ctx context.Context, partID int64) ([]models.CarModel, error)

	// InsertAssociationIfAbsent inserts a and reports true, or reports false
	// without error when the pair already exists.
	InsertAssociationIfAbsent(ctx context.Context, a *models.PartCarModel) (bool, error)
	// CreateAssociation fails with models.ErrConflict when the pair exists.
	CreateAssociation(ctx context.Context, a *models.PartCarModel) error
	AssociationByID(ctx context.Context, id int64) (*models.PartCarModel, error)
	AssociationsByPart(ctx context.Context, partID int64) ([]models.PartCarModel, error)
	AssociationsByCarModel(ctx context.Context, carModelID int64) ([]models.PartCarModel, error)
	ListAssociations(ctx context.Context, page models.Page) ([]models.PartCarModel, int64, error)
	DeleteAssociation(ctx context.Context, id int64) error

	RecordAudit(ctx context.Context, entry *models.AuditLog) error
	AuditLogs(ctx context.Context, userID *uuid.UUID, limit int) ([]models.AuditLog, error)
}

type Options struct {
	PageSize    int
	MaxPageSize int
}

type Service struct {
	repo Repository
	lg   *zap.SugaredLogger
	opts Options
}

func NewService(repo Repository, lg *zap.SugaredLogger, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	return &Service{repo: repo, lg: lg, opts: opts}
}

// normalize clamps a requested page to the configured bounds.
func (s *Service) normalize(p models.Page) models.Page {
	if p.Number < 1 {
		p.Number = 1
	}
	switch {
	case p.Size <= 0:
		p.Size = s.opts.PageSize
	case p.Size > s.opts.MaxPageSize:
		p.Size = s.opts.MaxPageSize
	}
	return p
}

func pageResult[T any](items []T, total int64, p models.Page) models.PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return models.PageResult[T]{Count: total, Page: p.Number, PageSize: p.Size, Results: items}
}

// write runs fn in a transaction and records an audit entry for it in the
// same transaction.
func (s *Service) write(ctx context.Context, action string, fn func(tx Repository) (datatypes.JSONMap, error)) error {
	return s.repo.WithinTx(ctx, func(tx Repository) error {
		meta, err := fn(tx)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, newAudit(ctx, action, meta))
	})
}

func newAudit(ctx context.Context, action string, meta datatypes.JSONMap) *models.AuditLog {
	entry := &models.AuditLog{Action: action, Metadata: meta}
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}
	if id, ok := auth.FromContext(ctx); ok {
		uid := id.UserID
		entry.UserID = &uid
	}
	return entry
}

// Logs returns recent audit entries. Admins may ask for everyone's entries.
func (s *Service) Logs(ctx context.Context, all bool) ([]models.AuditLog, error) {
	const op = "catalog.Logs"

	var filter *uuid.UUID
	id, _ := auth.FromContext(ctx)
	if !all || !id.IsAdmin() {
		uid := id.UserID
		filter = &uid
	}
	logs, err := s.repo.AuditLogs(ctx, filter, 200)
	if err != nil {
		return nil, models.Internal(op, err)
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}
