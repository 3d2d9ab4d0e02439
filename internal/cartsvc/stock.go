package cartsvc

import (
	"fmt"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// checkAdd applies the stock policy to adding requested units on top of
// current units already in the cart.
func checkAdd(product *models.Product, current, requested int) error {
	available := product.AvailableStock()
	details := models.StockDetails{
		CurrentInCart:     current,
		AvailableStock:    available,
		RequestedQuantity: requested,
		MaxCanAdd:         max(available-current, 0),
	}

	switch {
	case !product.IsInStock():
		details.StockStatus = models.StockOutOfStock
		return &StockError{Message: fmt.Sprintf("%s is out of stock", product.Name), Details: details}
	case current == 0 && requested > available:
		details.StockStatus = models.StockInsufficient
		return &StockError{
			Message: fmt.Sprintf("Only %d of %s left in stock", available, product.Name),
			Details: details,
		}
	case current+requested > available:
		details.StockStatus = models.StockCartLimitReached
		return &StockError{
			Message: fmt.Sprintf("You already have %d of %s in your cart; you can add %d more", current, product.Name, details.MaxCanAdd),
			Details: details,
		}
	}
	return nil
}

// checkSet applies the stock policy to setting a line to an absolute quantity.
func checkSet(product *models.Product, current, quantity int) error {
	available := product.AvailableStock()
	if quantity <= available {
		return nil
	}
	details := models.StockDetails{
		StockStatus:       models.StockInsufficient,
		CurrentInCart:     current,
		AvailableStock:    available,
		RequestedQuantity: quantity,
		MaxCanAdd:         max(available-current, 0),
	}
	if !product.IsInStock() {
		details.StockStatus = models.StockOutOfStock
		return &StockError{Message: fmt.Sprintf("%s is out of stock", product.Name), Details: details}
	}
	return &StockError{Message: fmt.Sprintf("Only %d of %s left in stock", available, product.Name), Details: details}
}
