package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

type ProductCatalog struct {
	db *pgxpool.Pool
}

func NewProductCatalog(db *pgxpool.Pool) *ProductCatalog {
	return &ProductCatalog{db: db}
}

func (c *ProductCatalog) ProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	var p models.Product
	err := c.db.QueryRow(ctx, `
		SELECT product_id, sku, name, price::float8, sale_price::float8, images,
		       warehouse_main, warehouse_east, warehouse_west, status, created_at, updated_at
		FROM products
		WHERE product_id = $1
	`, productID).Scan(
		&p.ProductID, &p.SKU, &p.Name, &p.Price, &p.SalePrice, &p.Images,
		&p.Stock.WarehouseMain, &p.Stock.WarehouseEast, &p.Stock.WarehouseWest, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	p.CalculateTotalStock()
	return &p, nil
}

func (c *ProductCatalog) Upsert(ctx context.Context, products ...models.Product) error {
	for _, p := range products {
		images := p.Images
		if images == nil {
			images = []string{}
		}
		_, err := c.db.Exec(ctx, `
			INSERT INTO products (product_id, sku, name, price, sale_price, images,
			                      warehouse_main, warehouse_east, warehouse_west, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (product_id) DO UPDATE SET
			  sku = EXCLUDED.sku,
			  name = EXCLUDED.name,
			  price = EXCLUDED.price,
			  sale_price = EXCLUDED.sale_price,
			  images = EXCLUDED.images,
			  warehouse_main = EXCLUDED.warehouse_main,
			  warehouse_east = EXCLUDED.warehouse_east,
			  warehouse_west = EXCLUDED.warehouse_west,
			  status = EXCLUDED.status,
			  updated_at = now()
		`, p.ProductID, p.SKU, p.Name, p.Price, p.SalePrice, images,
			p.Stock.WarehouseMain, p.Stock.WarehouseEast, p.Stock.WarehouseWest, p.Status)
		if err != nil {
			return fmt.Errorf("failed to upsert product %d: %w", p.ProductID, err)
		}
	}
	return nil
}
