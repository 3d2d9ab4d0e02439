package models

import "time"

// BuyNowItem is the single product line of an express checkout.
type BuyNowItem struct {
	ProductID     int64    `json:"product_id"`
	ProductName   string   `json:"product_name"`
	SKU           string   `json:"sku"`
	Images        []string `json:"images"`
	Price         float64  `json:"price"`
	SalePrice     *float64 `json:"sale_price,omitempty"`
	FinalPrice    float64  `json:"final_price"`
	Quantity      int      `json:"quantity"`
	StockQuantity int      `json:"stock_quantity"`
	Total         float64  `json:"total"`
}

type BuyNowSummary struct {
	ItemCount   int     `json:"item_count"`
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`
}

type BuyNowSession struct {
	BuyNowSessionID string        `json:"buy_now_session_id"`
	Item            BuyNowItem    `json:"item"`
	Summary         BuyNowSummary `json:"summary"`
	UserID          *int64        `json:"user_id,omitempty"`
	SessionID       string        `json:"session_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

// Expired reports whether the session is past its expiry. A zero ExpiresAt
// never expires.
func (s *BuyNowSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type BuyNowRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
	Scope
}
