package models

import "errors"

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrBuyNowNotFound   = errors.New("buy-now session not found")
)
