// Package cartsvc holds the cart and buy-now rules behind the storefront API:
// stock policy, line merging, summaries, and guest-to-user migration.
package cartsvc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

var ErrScopeRequired = errors.New("user_id or session_id is required")

type Repository interface {
	// Lines returns the owner's lines ordered by id.
	Lines(ctx context.Context, owner string) ([]models.CartLine, error)
	Line(ctx context.Context, id int64) (models.CartLine, error)
	Insert(ctx context.Context, owner string, productID int64, quantity int) (models.CartLine, error)
	SetQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	DeleteOwner(ctx context.Context, owner string) error
}

type Catalog interface {
	ProductByID(ctx context.Context, productID int64) (*models.Product, error)
}

type BuyNowStore interface {
	Save(ctx context.Context, session *models.BuyNowSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.BuyNowSession, error)
}

// StockError is a refused quantity. It is an expected outcome reported to
// the shopper, not a server fault.
type StockError struct {
	Message string
	Details models.StockDetails
}

func (e *StockError) Error() string {
	return e.Message
}

type Options struct {
	ShippingFee           float64
	FreeShippingThreshold float64
	BuyNowTTL             time.Duration
	Now                   func() time.Time
}

type Service struct {
	repo    Repository
	catalog Catalog
	buyNow  BuyNowStore
	opts    Options

	// mu serializes read-modify-write sequences on cart lines.
	mu sync.Mutex
}

func NewService(repo Repository, catalog Catalog, buyNow BuyNowStore, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BuyNowTTL <= 0 {
		opts.BuyNowTTL = 30 * time.Minute
	}
	return &Service{repo: repo, catalog: catalog, buyNow: buyNow, opts: opts}
}

func ownerOf(scope models.Scope) (string, error) {
	owner, ok := scope.Owner()
	if !ok {
		return "", ErrScopeRequired
	}
	return owner, nil
}

// GetCart joins the owner's lines with the catalog. Lines whose product has
// left the catalog are dropped.
func (s *Service) GetCart(ctx context.Context, scope models.Scope) (models.CartData, error) {
	owner, err := ownerOf(scope)
	if err != nil {
		return models.CartData{}, err
	}

	lines, err := s.repo.Lines(ctx, owner)
	if err != nil {
		return models.CartData{}, fmt.Errorf("failed to load cart lines: %w", err)
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.catalog.ProductByID(ctx, line.ProductID)
		if errors.Is(err, models.ErrProductNotFound) {
			log.Printf("Warning: dropping cart line %d, product %d no longer exists", line.ID, line.ProductID)
			if delErr := s.repo.Delete(ctx, line.ID); delErr != nil {
				log.Printf("Warning: failed to drop orphan cart line %d: %v", line.ID, delErr)
			}
			continue
		}
		if err != nil {
			return models.CartData{}, fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
		}
		items = append(items, product.CartItem(line.ID, line.Quantity, line.AddedAt))
	}

	return models.CartData{Items: items, Summary: s.summarize(items)}, nil
}

// Count is the sum of quantities over the owner's lines.
func (s *Service) Count(ctx context.Context, scope models.Scope) (int, error) {
	owner, err := ownerOf(scope)
	if err != nil {
		return 0, err
	}
	lines, err := s.repo.Lines(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart lines: %w", err)
	}
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count, nil
}

// AddToCart merges quantity into the owner's line for the product, or opens
// a new line. Nothing is written when stock refuses the quantity.
func (s *Service) AddToCart(ctx context.Context, scope models.Scope, productID int64, quantity int) (models.CartActionData, error) {
	owner, err := ownerOf(scope)
	if err != nil {
		return models.CartActionData{}, err
	}
	if quantity < 1 {
		return models.CartActionData{}, fmt.Errorf("quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		return models.CartActionData{}, err
	}

	lines, err := s.repo.Lines(ctx, owner)
	if err != nil {
		return models.CartActionData{}, fmt.Errorf("failed to load cart lines: %w", err)
	}
	var existing *models.CartLine
	for i := range lines {
		if lines[i].ProductID == productID {
			existing = &lines[i]
			break
		}
	}
	current := 0
	if existing != nil {
		current = existing.Quantity
	}

	if err := checkAdd(product, current, quantity); err != nil {
		return models.CartActionData{}, err
	}

	if existing != nil {
		newQty := current + quantity
		if err := s.repo.SetQuantity(ctx, existing.ID, newQty); err != nil {
			return models.CartActionData{}, fmt.Errorf("failed to update cart line %d: %w", existing.ID, err)
		}
		return models.CartActionData{CartItemID: existing.ID, Quantity: newQty, Action: models.CartActionUpdated}, nil
	}

	line, err := s.repo.Insert(ctx, owner, productID, quantity)
	if err != nil {
		return models.CartActionData{}, fmt.Errorf("failed to insert cart line: %w", err)
	}
	return models.CartActionData{CartItemID: line.ID, Quantity: line.Quantity, Action: models.CartActionAdded}, nil
}

// UpdateQuantity sets an absolute quantity. Zero removes the line. The
// scope must own the line.
func (s *Service) UpdateQuantity(ctx context.Context, scope models.Scope, lineID int64, quantity int) (models.CartActionData, error) {
	if quantity < 0 {
		return models.CartActionData{}, fmt.Errorf("quantity must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.ownedLine(ctx, scope, lineID)
	if err != nil {
		return models.CartActionData{}, err
	}

	if quantity == 0 {
		if err := s.repo.Delete(ctx, line.ID); err != nil {
			return models.CartActionData{}, fmt.Errorf("failed to remove cart line %d: %w", line.ID, err)
		}
		return models.CartActionData{CartItemID: line.ID, Quantity: 0, Action: models.CartActionRemoved}, nil
	}

	product, err := s.catalog.ProductByID(ctx, line.ProductID)
	if err != nil {
		return models.CartActionData{}, err
	}
	if err := checkSet(product, line.Quantity, quantity); err != nil {
		return models.CartActionData{}, err
	}

	if err := s.repo.SetQuantity(ctx, line.ID, quantity); err != nil {
		return models.CartActionData{}, fmt.Errorf("failed to update cart line %d: %w", line.ID, err)
	}
	return models.CartActionData{CartItemID: line.ID, Quantity: quantity, Action: models.CartActionUpdated}, nil
}

func (s *Service) RemoveItem(ctx context.Context, scope models.Scope, lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.ownedLine(ctx, scope, lineID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, line.ID); err != nil {
		return fmt.Errorf("failed to remove cart line %d: %w", line.ID, err)
	}
	return nil
}

func (s *Service) ClearCart(ctx context.Context, scope models.Scope) error {
	owner, err := ownerOf(scope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteOwner(ctx, owner); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Migrate folds a guest cart into the user's cart. Quantities for products
// already in the user's cart are added together and capped at stock; the
// guest cart is deleted afterwards.
func (s *Service) Migrate(ctx context.Context, sessionID string, userID int64) (models.MigrateData, error) {
	from, err := ownerOf(models.SessionScope(sessionID))
	if err != nil {
		return models.MigrateData{}, err
	}
	to, err := ownerOf(models.UserScope(userID))
	if err != nil {
		return models.MigrateData{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	guestLines, err := s.repo.Lines(ctx, from)
	if err != nil {
		return models.MigrateData{}, fmt.Errorf("failed to load guest cart: %w", err)
	}
	if len(guestLines) == 0 {
		return models.MigrateData{}, nil
	}

	userLines, err := s.repo.Lines(ctx, to)
	if err != nil {
		return models.MigrateData{}, fmt.Errorf("failed to load user cart: %w", err)
	}
	byProduct := make(map[int64]models.CartLine, len(userLines))
	for _, line := range userLines {
		byProduct[line.ProductID] = line
	}

	migrated := 0
	for _, guest := range guestLines {
		product, err := s.catalog.ProductByID(ctx, guest.ProductID)
		if errors.Is(err, models.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return models.MigrateData{Migrated: migrated}, err
		}
		available := product.AvailableStock()

		if existing, ok := byProduct[guest.ProductID]; ok {
			qty := min(existing.Quantity+guest.Quantity, max(available, existing.Quantity))
			if qty != existing.Quantity {
				if err := s.repo.SetQuantity(ctx, existing.ID, qty); err != nil {
					return models.MigrateData{Migrated: migrated}, fmt.Errorf("failed to merge cart line %d: %w", existing.ID, err)
				}
			}
		} else {
			qty := min(guest.Quantity, available)
			if qty <= 0 {
				continue
			}
			if _, err := s.repo.Insert(ctx, to, guest.ProductID, qty); err != nil {
				return models.MigrateData{Migrated: migrated}, fmt.Errorf("failed to move cart line %d: %w", guest.ID, err)
			}
		}

		// A retry after a later failure must not merge this line again.
		if err := s.repo.Delete(ctx, guest.ID); err != nil {
			return models.MigrateData{Migrated: migrated + 1}, fmt.Errorf("failed to drop moved guest line %d: %w", guest.ID, err)
		}
		migrated++
	}

	if err := s.repo.DeleteOwner(ctx, from); err != nil {
		return models.MigrateData{Migrated: migrated}, fmt.Errorf("failed to delete guest cart: %w", err)
	}
	return models.MigrateData{Migrated: migrated}, nil
}

// CreateBuyNow opens a fresh single-item session, independent of any cart.
func (s *Service) CreateBuyNow(ctx context.Context, scope models.Scope, productID int64, quantity int) (*models.BuyNowSession, error) {
	if _, err := ownerOf(scope); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	product, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkAdd(product, 0, quantity); err != nil {
		return nil, err
	}

	item := product.BuyNowItem(quantity)
	summary := s.summarize([]models.CartItem{{FinalPrice: item.FinalPrice, Quantity: item.Quantity}})
	item.Total = summary.Subtotal

	now := s.opts.Now().UTC()
	session := &models.BuyNowSession{
		BuyNowSessionID: uuid.NewString(),
		Item:            item,
		Summary: models.BuyNowSummary{
			ItemCount:   summary.ItemCount,
			Subtotal:    summary.Subtotal,
			ShippingFee: summary.ShippingFee,
			Total:       summary.Total,
		},
		UserID:    scope.UserID,
		SessionID: scope.SessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.BuyNowTTL),
	}
	if err := s.buyNow.Save(ctx, session, s.opts.BuyNowTTL); err != nil {
		return nil, fmt.Errorf("failed to save buy-now session: %w", err)
	}
	return session, nil
}

func (s *Service) GetBuyNow(ctx context.Context, id string) (*models.BuyNowSession, error) {
	session, err := s.buyNow.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.opts.Now()) {
		return nil, models.ErrBuyNowNotFound
	}
	return session, nil
}

func (s *Service) ownedLine(ctx context.Context, scope models.Scope, lineID int64) (models.CartLine, error) {
	owner, err := ownerOf(scope)
	if err != nil {
		return models.CartLine{}, err
	}
	line, err := s.repo.Line(ctx, lineID)
	if err != nil {
		return models.CartLine{}, err
	}
	if owner != line.Owner {
		return models.CartLine{}, models.ErrCartItemNotFound
	}
	return line, nil
}
