package catalog_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autoparts/internal/auth"
	"autoparts/internal/models"
	"autoparts/internal/services/catalog"
	"autoparts/internal/store/memory"
)

func newService(t *testing.T) (*catalog.Service, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	return catalog.NewService(repo, zap.NewNop().Sugar(), catalog.Options{PageSize: 10, MaxPageSize: 50}), repo
}

func adminCtx() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin})
}

func fakePart() models.Part {
	return models.Part{
		PartNumber: gofakeit.Numerify("PN-######"),
		Name:       gofakeit.ProductName(),
		Details:    gofakeit.Sentence(8),
		Price:      decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		Quantity:   gofakeit.IntRange(0, 100),
	}
}

func fakeCarModel() models.CarModel {
	return models.CarModel{
		Name:         gofakeit.CarModel(),
		Manufacturer: gofakeit.CarMaker(),
		Year:         gofakeit.IntRange(1990, 2025),
	}
}

func seedParts(t *testing.T, svc *catalog.Service, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for range n {
		p := fakePart()
		require.NoError(t, svc.CreatePart(adminCtx(), &p))
		ids = append(ids, p.ID)
	}
	return ids
}

func seedCarModels(t *testing.T, svc *catalog.Service, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for range n {
		c := fakeCarModel()
		require.NoError(t, svc.CreateCarModel(adminCtx(), &c))
		ids = append(ids, c.ID)
	}
	return ids
}
