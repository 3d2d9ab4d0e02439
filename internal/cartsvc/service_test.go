package cartsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

func product(id int64, price float64, stock int) models.Product {
	return models.Product{
		ProductID: id,
		SKU:       fmt.Sprintf("TS-%03d", id),
		Name:      "Ao thun",
		Price:     price,
		Stock:     models.Stock{WarehouseMain: stock, Total: stock},
		Status:    "active",
	}
}

func newTestService(products ...models.Product) (*Service, *MemoryCatalog) {
	catalog := NewMemoryCatalog(products...)
	svc := NewService(NewMemoryRepository(), catalog, NewMemoryBuyNowStore(), Options{
		ShippingFee:           30000,
		FreeShippingThreshold: 500000,
		BuyNowTTL:             time.Minute,
	})
	return svc, catalog
}

func stockErr(t *testing.T, err error) *StockError {
	t.Helper()
	var se *StockError
	require.True(t, errors.As(err, &se), "expected *StockError, got %v", err)
	return se
}

func TestAddToCart_MergesSameProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(42, 100000, 10))
	scope := models.SessionScope("session_1_abc")

	first, err := svc.AddToCart(ctx, scope, 42, 2)
	require.NoError(t, err)
	assert.Equal(t, models.CartActionAdded, first.Action)

	second, err := svc.AddToCart(ctx, scope, 42, 3)
	require.NoError(t, err)
	assert.Equal(t, models.CartActionUpdated, second.Action)
	assert.Equal(t, first.CartItemID, second.CartItemID)
	assert.Equal(t, 5, second.Quantity)

	cart, err := svc.GetCart(ctx, scope)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 500000.0, cart.Items[0].Total)
}

func TestAddToCart_StockPolicy(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		stock      int
		status     string
		inCart     int
		request    int
		wantStatus models.StockStatus
		wantMax    int
	}{
		{name: "zero stock", stock: 0, request: 1, wantStatus: models.StockOutOfStock},
		{name: "inactive product", stock: 5, status: "inactive", request: 1, wantStatus: models.StockOutOfStock},
		{name: "more than stock on new line", stock: 3, request: 4, wantStatus: models.StockInsufficient, wantMax: 3},
		{name: "cart already holds most of stock", stock: 5, inCart: 4, request: 2, wantStatus: models.StockCartLimitReached, wantMax: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product(7, 50000, tt.stock)
			if tt.status != "" {
				p.Status = tt.status
			}
			svc, catalog := newTestService(p)
			scope := models.UserScope(9)

			if tt.inCart > 0 {
				catalog.SetStock(7, tt.stock)
				_, err := svc.AddToCart(ctx, scope, 7, tt.inCart)
				require.NoError(t, err)
			}

			_, err := svc.AddToCart(ctx, scope, 7, tt.request)
			se := stockErr(t, err)
			assert.Equal(t, tt.wantStatus, se.Details.StockStatus)
			assert.Equal(t, tt.wantMax, se.Details.MaxCanAdd)
			assert.Equal(t, tt.inCart, se.Details.CurrentInCart)
			assert.Equal(t, tt.request, se.Details.RequestedQuantity)

			count, err := svc.Count(ctx, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.inCart, count, "rejected add must not change the cart")
		})
	}
}

func TestAddToCart_RequiresScopeAndProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(1, 1000, 1))

	_, err := svc.AddToCart(ctx, models.Scope{}, 1, 1)
	assert.ErrorIs(t, err, ErrScopeRequired)

	_, err = svc.AddToCart(ctx, models.SessionScope("s"), 404, 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(1, 1000, 5))
	scope := models.SessionScope("s")

	added, err := svc.AddToCart(ctx, scope, 1, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, scope, added.CartItemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, scope, added.CartItemID, 6)
	assert.Equal(t, models.StockInsufficient, stockErr(t, err).Details.StockStatus)

	_, err = svc.UpdateQuantity(ctx, models.SessionScope("someone-else"), added.CartItemID, 2)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)

	removed, err := svc.UpdateQuantity(ctx, scope, added.CartItemID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.CartActionRemoved, removed.Action)

	cart, err := svc.GetCart(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveItem_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(1, 1000, 5))
	scope := models.SessionScope("s")

	added, err := svc.AddToCart(ctx, scope, 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, scope, added.CartItemID))
	assert.ErrorIs(t, svc.RemoveItem(ctx, scope, added.CartItemID), models.ErrCartItemNotFound)
}

func TestGetCart_Summary(t *testing.T) {
	ctx := context.Background()
	sale := 80000.0
	discounted := product(1, 100000, 10)
	discounted.SalePrice = &sale
	svc, _ := newTestService(discounted, product(2, 150000, 10))
	scope := models.SessionScope("s")

	_, err := svc.AddToCart(ctx, scope, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, scope, 2, 1)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, scope)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 80000.0, cart.Items[0].FinalPrice)
	assert.Equal(t, models.CartSummary{ItemCount: 3, Subtotal: 310000, ShippingFee: 30000, Total: 340000}, cart.Summary)

	_, err = svc.AddToCart(ctx, scope, 2, 2)
	require.NoError(t, err)
	cart, err = svc.GetCart(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cart.Summary.ShippingFee, "free shipping from the threshold")

	count, err := svc.Count(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, cart.Summary.ItemCount, count)
}

func TestGetCart_EmptyCartHasNoShipping(t *testing.T) {
	svc, _ := newTestService()
	cart, err := svc.GetCart(context.Background(), models.SessionScope("s"))
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, models.CartSummary{}, cart.Summary)
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(1, 1000, 5), product(2, 1000, 5))
	scope := models.UserScope(3)
	other := models.UserScope(4)

	for _, s := range []models.Scope{scope, other} {
		_, err := svc.AddToCart(ctx, s, 1, 1)
		require.NoError(t, err)
	}
	_, err := svc.AddToCart(ctx, scope, 2, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, scope))

	count, err := svc.Count(ctx, scope)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = svc.Count(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLineMutationsRequireScope(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(1, 1000, 5))
	user := models.UserScope(1001)

	added, err := svc.AddToCart(ctx, user, 1, 2)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, models.Scope{}, added.CartItemID, 0)
	assert.ErrorIs(t, err, ErrScopeRequired)
	assert.ErrorIs(t, svc.RemoveItem(ctx, models.Scope{}, added.CartItemID), ErrScopeRequired)

	count, err := svc.Count(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// failingInsertRepository fails the Insert call numbered failOn (1-based).
type failingInsertRepository struct {
	*MemoryRepository
	failOn  int
	inserts int
}

func (r *failingInsertRepository) Insert(ctx context.Context, owner string, productID int64, quantity int) (models.CartLine, error) {
	r.inserts++
	if r.inserts == r.failOn {
		return models.CartLine{}, errors.New("boom")
	}
	return r.MemoryRepository.Insert(ctx, owner, productID, quantity)
}

func TestMigrate_RetryAfterFailureMovesEachLineOnce(t *testing.T) {
	ctx := context.Background()
	repo := &failingInsertRepository{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, NewMemoryCatalog(product(1, 1000, 10), product(2, 1000, 10)), NewMemoryBuyNowStore(), Options{})
	guest := models.SessionScope("session_1_guest")
	user := models.UserScope(5)

	_, err := svc.AddToCart(ctx, guest, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, guest, 2, 2)
	require.NoError(t, err)

	repo.failOn = repo.inserts + 2
	_, err = svc.Migrate(ctx, "session_1_guest", 5)
	require.Error(t, err)

	res, err := svc.Migrate(ctx, "session_1_guest", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)

	cart, err := svc.GetCart(ctx, user)
	require.NoError(t, err)
	quantities := map[int64]int{}
	for _, item := range cart.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.Equal(t, map[int64]int{1: 2, 2: 2}, quantities)

	guestCount, err := svc.Count(ctx, guest)
	require.NoError(t, err)
	assert.Zero(t, guestCount)
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(product(42, 1000, 10), product(43, 1000, 3), product(44, 1000, 10))
	guest := models.SessionScope("session_1_guest")
	user := models.UserScope(5)

	_, err := svc.AddToCart(ctx, guest, 42, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, guest, 43, 3)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user, 43, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user, 44, 1)
	require.NoError(t, err)

	res, err := svc.Migrate(ctx, "session_1_guest", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Migrated)

	cart, err := svc.GetCart(ctx, user)
	require.NoError(t, err)
	quantities := map[int64]int{}
	for _, item := range cart.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.Equal(t, map[int64]int{42: 2, 43: 3, 44: 1}, quantities, "merged quantity capped at stock")

	guestCount, err := svc.Count(ctx, guest)
	require.NoError(t, err)
	assert.Zero(t, guestCount)

	again, err := svc.Migrate(ctx, "session_1_guest", 5)
	require.NoError(t, err)
	assert.Zero(t, again.Migrated)
}

func TestCreateBuyNow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	catalog := NewMemoryCatalog(product(42, 250000, 3), product(7, 1000, 0))
	svc := NewService(NewMemoryRepository(), catalog, NewMemoryBuyNowStore(), Options{
		ShippingFee: 30000, FreeShippingThreshold: 500000, BuyNowTTL: 30 * time.Minute,
		Now: func() time.Time { return now },
	})
	scope := models.SessionScope("s")

	session, err := svc.CreateBuyNow(ctx, scope, 42, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, session.BuyNowSessionID)
	assert.Equal(t, 2, session.Item.Quantity)
	assert.Equal(t, models.BuyNowSummary{ItemCount: 2, Subtotal: 500000, ShippingFee: 0, Total: 500000}, session.Summary)
	assert.Equal(t, now.Add(30*time.Minute), session.ExpiresAt)

	count, err := svc.Count(ctx, scope)
	require.NoError(t, err)
	assert.Zero(t, count, "buy-now never touches the cart")

	stored, err := svc.GetBuyNow(ctx, session.BuyNowSessionID)
	require.NoError(t, err)
	assert.Equal(t, session.BuyNowSessionID, stored.BuyNowSessionID)

	next, err := svc.CreateBuyNow(ctx, scope, 42, 1)
	require.NoError(t, err)
	assert.NotEqual(t, session.BuyNowSessionID, next.BuyNowSessionID)

	_, err = svc.CreateBuyNow(ctx, scope, 42, 4)
	assert.Equal(t, models.StockInsufficient, stockErr(t, err).Details.StockStatus)

	_, err = svc.CreateBuyNow(ctx, scope, 7, 1)
	assert.Equal(t, models.StockOutOfStock, stockErr(t, err).Details.StockStatus)
}

func TestGetBuyNow_Expired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryRepository(), NewMemoryCatalog(product(1, 1000, 5)), NewMemoryBuyNowStore(), Options{
		BuyNowTTL: time.Minute,
		Now:       func() time.Time { return now },
	})

	session, err := svc.CreateBuyNow(ctx, models.SessionScope("s"), 1, 1)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.GetBuyNow(ctx, session.BuyNowSessionID)
	assert.ErrorIs(t, err, models.ErrBuyNowNotFound)
}

func TestMemoryBuyNowStore_SaveDropsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	store := NewMemoryBuyNowStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &models.BuyNowSession{BuyNowSessionID: "old"}, time.Minute))
	require.NoError(t, store.Save(ctx, &models.BuyNowSession{BuyNowSessionID: "fresh"}, time.Hour))

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, &models.BuyNowSession{BuyNowSessionID: "new"}, time.Minute))

	assert.Len(t, store.sessions, 2)
	assert.NotContains(t, store.sessions, "old")
	_, err := store.Get(ctx, "fresh")
	assert.NoError(t, err)
}
