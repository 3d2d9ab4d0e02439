package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	client, err := Connect(uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("cart_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	require.NoError(t, EnsureIndexes(context.Background(), db))
	return db
}

func TestProductCatalog(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	catalog := NewProductCatalog(db)

	sale := 90000.0
	require.NoError(t, catalog.Upsert(ctx, models.Product{
		ProductID: 42,
		SKU:       "AT-042",
		Name:      "Áo thun",
		Price:     100000,
		SalePrice: &sale,
		Stock:     models.Stock{WarehouseMain: 4, WarehouseWest: 1},
		Status:    "active",
	}))

	p, err := catalog.ProductByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock.Total)
	assert.Equal(t, 90000.0, p.FinalPrice())

	_, err = catalog.ProductByID(ctx, 404)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCustomerRepository(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	require.NoError(t, repo.Upsert(ctx, models.Customer{
		UserID:        1001,
		Email:         " An.Nguyen@Example.com ",
		Password:      "$2a$10$hash",
		FirstName:     "An",
		LastName:      "Nguyen",
		AccountStatus: "active",
	}))

	c, err := repo.FindByEmail(ctx, "an.nguyen@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), c.UserID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)
}
