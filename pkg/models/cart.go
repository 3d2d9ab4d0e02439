package models

import (
	"fmt"
	"time"

	"github.com/cuong200111/baitap-sub001/pkg/global"
)

// Cart models shared by the cart backend and the storefront client

type CartItem struct {
	ID            int64    `json:"id"`
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
	AddedAt       string   `json:"added_at,omitempty"`
}

// CartSummary is recomputed by the backend on every read. ItemCount is the
// sum of line quantities, not the number of lines.
type CartSummary struct {
	ItemCount   int     `json:"item_count"`
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`
}

// CartLine is the stored form of a cart row; product details are joined in
// from the catalog when the cart is read.
type CartLine struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type CartData struct {
	Items   []CartItem  `json:"items"`
	Summary CartSummary `json:"summary"`
}

type CartAction string

const (
	CartActionAdded   CartAction = "added"
	CartActionUpdated CartAction = "updated"
	CartActionRemoved CartAction = "removed"
)

type CartActionData struct {
	CartItemID int64      `json:"cart_item_id"`
	Quantity   int        `json:"quantity"`
	Action     CartAction `json:"action"`
}

type CountData struct {
	Count int `json:"count"`
}

type StockStatus string

const (
	StockOutOfStock       StockStatus = "out_of_stock"
	StockInsufficient     StockStatus = "insufficient_stock"
	StockCartLimitReached StockStatus = "cart_limit_reached"
)

// StockDetails travels at the top level of add/buy-now responses when the
// backend refuses a quantity. Zero counts are sent as-is.
type StockDetails struct {
	StockStatus       StockStatus `json:"stock_status,omitempty"`
	CurrentInCart     int         `json:"current_in_cart"`
	AvailableStock    int         `json:"available_stock"`
	MaxCanAdd         int         `json:"max_can_add"`
	RequestedQuantity int         `json:"requested_quantity"`
}

// StockResponse is the APIResponse envelope extended with stock details.
type StockResponse struct {
	global.APIResponse
	StockDetails
}

// Scope carries the requester identity: exactly one of UserID or SessionID.
type Scope struct {
	UserID    *int64 `json:"user_id,omitempty" form:"user_id"`
	SessionID string `json:"session_id,omitempty" form:"session_id"`
}

func UserScope(userID int64) Scope {
	return Scope{UserID: &userID}
}

func SessionScope(sessionID string) Scope {
	return Scope{SessionID: sessionID}
}

func (s Scope) IsZero() bool {
	return s.UserID == nil && s.SessionID == ""
}

// Owner returns the storage key that cart lines for this scope live under.
// A user id wins when both are present.
func (s Scope) Owner() (string, bool) {
	if s.UserID != nil && *s.UserID > 0 {
		return fmt.Sprintf("user:%d", *s.UserID), true
	}
	if s.SessionID != "" {
		return "session:" + s.SessionID, true
	}
	return "", false
}

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
	Scope
}

type UpdateCartItemRequest struct {
	// Pointer so that a missing quantity is rejected instead of read as 0.
	Quantity *int `json:"quantity" binding:"required,min=0"`
	Scope
}

type MigrateRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	UserID    int64  `json:"user_id" binding:"required,gt=0"`
}

type MigrateData struct {
	Migrated int `json:"migrated"`
}
