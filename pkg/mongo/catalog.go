package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// ProductCatalog reads products from the products collection by product_id.
type ProductCatalog struct {
	coll *mongo.Collection
}

func NewProductCatalog(db *mongo.Database) *ProductCatalog {
	return &ProductCatalog{coll: db.Collection(productsCollection)}
}

func (c *ProductCatalog) ProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	var product models.Product
	err := c.coll.FindOne(ctx, bson.D{{Key: "product_id", Value: productID}}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %d: %w", productID, err)
	}
	return &product, nil
}

// Upsert writes products keyed by product_id, recomputing stock totals.
func (c *ProductCatalog) Upsert(ctx context.Context, products ...models.Product) error {
	for _, product := range products {
		product.CalculateTotalStock()
		product.SetTimestamps()
		filter := bson.D{{Key: "product_id", Value: product.ProductID}}
		if _, err := c.coll.ReplaceOne(ctx, filter, product, options.Replace().SetUpsert(true)); err != nil {
			return fmt.Errorf("failed to upsert product %d: %w", product.ProductID, err)
		}
	}
	return nil
}
