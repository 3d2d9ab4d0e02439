package models

import (
	"time"
)

// Stock represents inventory levels across different warehouses
type Stock struct {
	WarehouseMain int `json:"warehouse_main" bson:"warehouse_main" validate:"gte=0"`
	WarehouseEast int `json:"warehouse_east" bson:"warehouse_east" validate:"gte=0"`
	WarehouseWest int `json:"warehouse_west" bson:"warehouse_west" validate:"gte=0"`
	Total         int `json:"total" bson:"total" validate:"gte=0"`
}

// Product is the catalog view the cart needs: identity, pricing, stock.
type Product struct {
	ProductID int64     `json:"product_id" bson:"product_id" validate:"required,gt=0"`
	SKU       string    `json:"sku" bson:"sku" validate:"required,min=3,max=50"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Price     float64   `json:"price" bson:"price" validate:"required,gt=0"`
	SalePrice *float64  `json:"sale_price,omitempty" bson:"sale_price,omitempty"`
	Images    []string  `json:"images" bson:"images" validate:"dive,url"`
	Stock     Stock     `json:"stock" bson:"stock"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=active inactive deleted"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Product) CalculateTotalStock() {
	p.Stock.Total = p.Stock.WarehouseMain + p.Stock.WarehouseEast + p.Stock.WarehouseWest
}

// FinalPrice is the sale price when one is set and actually discounts.
func (p *Product) FinalPrice() float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// IsInStock reports whether any unit can be sold.
func (p *Product) IsInStock() bool {
	return p.Stock.Total > 0 && p.Status == "active"
}

// AvailableStock is what can still be sold; inactive products have none.
func (p *Product) AvailableStock() int {
	if p.Status != "active" || p.Stock.Total < 0 {
		return 0
	}
	return p.Stock.Total
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

func (p *Product) images() []string {
	if p.Images == nil {
		return []string{}
	}
	return p.Images
}

// CartItem renders one cart line for this product.
func (p *Product) CartItem(lineID int64, quantity int, addedAt time.Time) CartItem {
	final := p.FinalPrice()
	item := CartItem{
		ID:            lineID,
		ProductID:     p.ProductID,
		ProductName:   p.Name,
		SKU:           p.SKU,
		Images:        p.images(),
		Price:         p.Price,
		SalePrice:     p.SalePrice,
		FinalPrice:    final,
		Quantity:      quantity,
		StockQuantity: p.AvailableStock(),
		Total:         final * float64(quantity),
	}
	if !addedAt.IsZero() {
		item.AddedAt = addedAt.UTC().Format(time.RFC3339)
	}
	return item
}

func (p *Product) BuyNowItem(quantity int) BuyNowItem {
	final := p.FinalPrice()
	return BuyNowItem{
		ProductID:     p.ProductID,
		ProductName:   p.Name,
		SKU:           p.SKU,
		Images:        p.images(),
		Price:         p.Price,
		SalePrice:     p.SalePrice,
		FinalPrice:    final,
		Quantity:      quantity,
		StockQuantity: p.AvailableStock(),
		Total:         final * float64(quantity),
	}
}
