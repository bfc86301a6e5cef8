// Package memory is an in-process implementation of the catalog and identity
// repositories. It backs the test suites and DATABASE_URL=memory:// for local
// runs; nothing survives a restart.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"autoparts/internal/models"
	"autoparts/internal/services/catalog"
)

type pairKey struct{ part, carModel int64 }

type data struct {
	parts     map[int64]models.Part
	carModels map[int64]models.CarModel
	assocs    map[int64]models.PartCarModel
	pairs     map[pairKey]int64
	users     map[uuid.UUID]models.User
	sessions  map[string]models.Session
	audit     []models.AuditLog

	partSeq, carModelSeq, assocSeq, auditSeq int64
}

func (d *data) clone() *data {
	c := *d
	c.parts = maps.Clone(d.parts)
	c.carModels = maps.Clone(d.carModels)
	c.assocs = maps.Clone(d.assocs)
	c.pairs = maps.Clone(d.pairs)
	c.users = maps.Clone(d.users)
	c.sessions = maps.Clone(d.sessions)
	c.audit = slices.Clone(d.audit)
	return &c
}

type Memory struct {
	mu *sync.Mutex
	d  *data
}

func New() *Memory {
	return &Memory{
		mu: &sync.Mutex{},
		d: &data{
			parts:     map[int64]models.Part{},
			carModels: map[int64]models.CarModel{},
			assocs:    map[int64]models.PartCarModel{},
			pairs:     map[pairKey]int64{},
			users:     map[uuid.UUID]models.User{},
			sessions:  map[string]models.Session{},
		},
	}
}

// WithinTx hands fn a copy of the data and publishes it only when fn
// succeeds. Other callers wait until the transaction finishes.
func (m *Memory) WithinTx(ctx context.Context, fn func(tx catalog.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &Memory{mu: &sync.Mutex{}, d: m.d.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.d = tx.d
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func page[T any](items []T, p models.Page) []T {
	if p.Size <= 0 {
		return items
	}
	start := min(p.Offset(), len(items))
	end := min(start+p.Size, len(items))
	return items[start:end]
}

func (m *Memory) ListParts(_ context.Context, f models.PartFilter, p models.Page) ([]models.Part, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(f.Search))
	parts := lo.Filter(lo.Values(m.d.parts), func(p models.Part, _ int) bool {
		return term == "" ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.PartNumber), term)
	})
	slices.SortFunc(parts, func(a, b models.Part) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return page(parts, p), int64(len(parts)), nil
}

func (m *Memory) PartByID(_ context.Context, id int64) (*models.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.d.parts[id]
	if !ok {
		return nil, models.NotFound("part", id)
	}
	return &p, nil
}

func (m *Memory) CreatePart(_ context.Context, p *models.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.d.partSeq++
	p.ID = m.d.partSeq
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	m.d.parts[p.ID] = *p
	return nil
}

func (m *Memory) CreateParts(ctx context.Context, parts []models.Part) error {
	for i := range parts {
		if err := m.CreatePart(ctx, &parts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) UpdatePart(_ context.Context, p *models.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.d.parts[p.ID]; !ok {
		return models.NotFound("part", p.ID)
	}
	m.d.parts[p.ID] = *p
	return nil
}

func (m *Memory) DeletePart(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.d.parts[id]; !ok {
		return models.NotFound("part", id)
	}
	delete(m.d.parts, id)
	m.cascade(func(a models.PartCarModel) bool { return a.PartID == id })
	return nil
}

func (m *Memory) ExistingPartIDs(_ context.Context, ids []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return lo.Filter(ids, func(id int64, _ int) bool {
		_, ok := m.d.parts[id]
		return ok
	}), nil
}

func (m *Memory) ListCarModels(_ context.Context, f models.CarModelFilter, p models.Page) ([]models.CarModel, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cms := lo.Filter(lo.Values(m.d.carModels), func(c models.CarModel, _ int) bool {
		return (f.Name == "" || c.Name == f.Name) &&
			(f.Manufacturer == "" || c.Manufacturer == f.Manufacturer) &&
			(f.Year == nil || c.Year == *f.Year)
	})
	slices.SortFunc(cms, compareCarModels)
	return page(cms, p), int64(len(cms)), nil
}

func compareCarModels(a, b models.CarModel) int {
	return cmp.Or(
		cmp.Compare(a.Manufacturer, b.Manufacturer),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Year, b.Year),
		cmp.Compare(a.ID, b.ID),
	)
}

func (m *Memory) CarModelByID(_ context.Context, id int64) (*models.CarModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.d.carModels[id]
	if !ok {
		return nil, models.NotFound("car_model", id)
	}
	return &c, nil
}

func (m *Memory) CreateCarModel(_ context.Context, c *models.CarModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.d.carModelSeq++
	c.ID = m.d.carModelSeq
	m.d.carModels[c.ID] = *c
	return nil
}

func (m *Memory) UpdateCarModel(_ context.Context, c *models.CarModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.d.carModels[c.ID]; !ok {
		return models.NotFound("car_model", c.ID)
	}
	m.d.carModels[c.ID] = *c
	return nil
}

func (m *Memory) DeleteCarModel(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.d.carModels[id]; !ok {
		return models.NotFound("car_model", id)
	}
	delete(m.d.carModels, id)
	m.cascade(func(a models.PartCarModel) bool { return a.CarModelID == id })
	return nil
}

func (m *Memory) ExistingCarModelIDs(_ context.Context, ids []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return lo.Filter(ids, func(id int64, _ int) bool {
		_, ok := m.d.carModels[id]
		return ok
	}), nil
}

func (m *Memory) CarModelsForPart(_ context.Context, partID int64) ([]models.CarModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cms []models.CarModel
	for _, a := range m.d.assocs {
		if a.PartID == partID {
			cms = append(cms, m.d.carModels[a.CarModelID])
		}
	}
	slices.SortFunc(cms, compareCarModels)
	return cms, nil
}

// cascade drops every association matching drop. Callers hold m.mu.
func (m *Memory) cascade(drop func(models.PartCarModel) bool) {
	for id, a := range m.d.assocs {
		if drop(a) {
			delete(m.d.assocs, id)
			delete(m.d.pairs, pairKey{a.PartID, a.CarModelID})
		}
	}
}

func (m *Memory) insertAssociation(a *models.PartCarModel) (bool, error) {
	if _, ok := m.d.parts[a.PartID]; !ok {
		return false, models.NotFound("part", a.PartID)
	}
	if _, ok := m.d.carModels[a.CarModelID]; !ok {
		return false, models.NotFound("car_model", a.CarModelID)
	}
	key := pairKey{a.PartID, a.CarModelID}
	if _, ok := m.d.pairs[key]; ok {
		return false, nil
	}
	m.d.assocSeq++
	a.ID = m.d.assocSeq
	m.d.assocs[a.ID] = models.PartCarModel{ID: a.ID, PartID: a.PartID, CarModelID: a.CarModelID}
	m.d.pairs[key] = a.ID
	return true, nil
}

func (m *Memory) InsertAssociationIfAbsent(_ context.Context, a *models.PartCarModel) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertAssociation(a)
}

func (m *Memory) CreateAssociation(_ context.Context, a *models.PartCarModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted, err := m.insertAssociation(a)
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("%w: part %d is already associated with car_model %d",
			models.ErrConflict, a.PartID, a.CarModelID)
	}
	return nil
}

// withRefs fills Part and CarModel the way the gorm store preloads them.
// Callers hold m.mu.
func (m *Memory) withRefs(a models.PartCarModel, part, carModel bool) models.PartCarModel {
	if part {
		p := m.d.parts[a.PartID]
		a.Part = &p
	}
	if carModel {
		c := m.d.carModels[a.CarModelID]
		a.CarModel = &c
	}
	return a
}

func (m *Memory) AssociationByID(_ context.Context, id int64) (*models.PartCarModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.d.assocs[id]
	if !ok {
		return nil, models.NotFound("association", id)
	}
	a = m.withRefs(a, true, true)
	return &a, nil
}

func (m *Memory) associations(keep func(models.PartCarModel) bool) []models.PartCarModel {
	rows := lo.Filter(lo.Values(m.d.assocs), func(a models.PartCarModel, _ int) bool { return keep(a) })
	slices.SortFunc(rows, func(a, b models.PartCarModel) int { return cmp.Compare(a.ID, b.ID) })
	return rows
}

func (m *Memory) AssociationsByPart(_ context.Context, partID int64) ([]models.PartCarModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.associations(func(a models.PartCarModel) bool { return a.PartID == partID })
	return lo.Map(rows, func(a models.PartCarModel, _ int) models.PartCarModel {
		return m.withRefs(a, false, true)
	}), nil
}

func (m *Memory) AssociationsByCarModel(_ context.Context, carModelID int64) ([]models.PartCarModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.associations(func(a models.PartCarModel) bool { return a.CarModelID == carModelID })
	return lo.Map(rows, func(a models.PartCarModel, _ int) models.PartCarModel {
		return m.withRefs(a, true, false)
	}), nil
}

func (m *Memory) ListAssociations(_ context.Context, p models.Page) ([]models.PartCarModel, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.associations(func(models.PartCarModel) bool { return true })
	return page(rows, p), int64(len(rows)), nil
}

func (m *Memory) DeleteAssociation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.d.assocs[id]
	if !ok {
		return models.NotFound("association", id)
	}
	delete(m.d.assocs, id)
	delete(m.d.pairs, pairKey{a.PartID, a.CarModelID})
	return nil
}

func (m *Memory) RecordAudit(_ context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.d.auditSeq++
	entry.ID = m.d.auditSeq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	m.d.audit = append(m.d.audit, *entry)
	return nil
}

func (m *Memory) AuditLogs(_ context.Context, userID *uuid.UUID, limit int) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AuditLog
	for i := len(m.d.audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		e := m.d.audit[i]
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
