package cartsvc

import (
	"github.com/shopspring/decimal"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// summarize recomputes line totals in decimal and derives the cart summary.
// Shipping is flat unless the cart is empty or reaches the free threshold.
func (s *Service) summarize(items []models.CartItem) models.CartSummary {
	subtotal := decimal.Zero
	count := 0
	for i := range items {
		lineTotal := decimal.NewFromFloat(items[i].FinalPrice).Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		items[i].Total = lineTotal.Round(2).InexactFloat64()
		subtotal = subtotal.Add(lineTotal)
		count += items[i].Quantity
	}

	shipping := decimal.NewFromFloat(s.opts.ShippingFee)
	threshold := decimal.NewFromFloat(s.opts.FreeShippingThreshold)
	if subtotal.IsZero() || (threshold.IsPositive() && subtotal.GreaterThanOrEqual(threshold)) {
		shipping = decimal.Zero
	}

	return models.CartSummary{
		ItemCount:   count,
		Subtotal:    subtotal.Round(2).InexactFloat64(),
		ShippingFee: shipping.Round(2).InexactFloat64(),
		Total:       subtotal.Add(shipping).Round(2).InexactFloat64(),
	}
}
