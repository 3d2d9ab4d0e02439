// Package cartdtest runs the storefront cart API in-process for client tests.
package cartdtest

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuong200111/baitap-sub001/internal/auth"
	"github.com/cuong200111/baitap-sub001/internal/cartsvc"
	"github.com/cuong200111/baitap-sub001/internal/router"
	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// Seeded catalog and accounts.
const (
	ProductShirt    int64 = 42
	ProductJacket   int64 = 7
	ProductSoldOut  int64 = 99
	ShirtStock            = 10
	JacketStock           = 3
	CustomerID      int64 = 1001
	CustomerEmail         = "an.nguyen@example.com"
	CustomerPass          = "matkhau123"
	JWTSecret             = "cartdtest-secret"
	ShippingFee           = 30000
	FreeShippingMin       = 500000
)

type Server struct {
	*httptest.Server

	Catalog   *cartsvc.MemoryCatalog
	Repo      *cartsvc.MemoryRepository
	BuyNow    *cartsvc.MemoryBuyNowStore
	Customers *auth.MemoryCustomerRepository
	JWT       *auth.JWTManager
	Service   *cartsvc.Service

	requests atomic.Int64
	now      atomic.Pointer[time.Time]
}

type Option func(*options)

type options struct {
	buyNowTTL time.Duration
	rateRPS   float64
	rateBurst int
}

func WithBuyNowTTL(ttl time.Duration) Option {
	return func(o *options) { o.buyNowTTL = ttl }
}

func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateRPS = rps
		o.rateBurst = burst
	}
}

// New starts a server and closes it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	o := options{buyNowTTL: 30 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	jwtManager, err := auth.NewJWTManager(auth.JWTConfig{Issuer: "cartdtest", Secret: JWTSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	hash, err := auth.HashPassword(CustomerPass)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	s := &Server{
		Catalog:   cartsvc.NewMemoryCatalog(seedProducts()...),
		Repo:      cartsvc.NewMemoryRepository(),
		BuyNow:    cartsvc.NewMemoryBuyNowStore(),
		Customers: auth.NewMemoryCustomerRepository(),
		JWT:       jwtManager,
	}
	s.Customers.Put(models.Customer{
		UserID:        CustomerID,
		Email:         CustomerEmail,
		Password:      hash,
		FirstName:     "An",
		LastName:      "Nguyen",
		AccountStatus: "active",
	})
	s.Service = cartsvc.NewService(s.Repo, s.Catalog, s.BuyNow, cartsvc.Options{
		ShippingFee:           ShippingFee,
		FreeShippingThreshold: FreeShippingMin,
		BuyNowTTL:             o.buyNowTTL,
		Now:                   s.Now,
	})

	engine := router.New(router.EngineConfig{
		Production: true,
		RateRPS:    o.rateRPS,
		RateBurst:  o.rateBurst,
	}, router.Dependencies{
		Service:   s.Service,
		JWT:       jwtManager,
		Customers: s.Customers,
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		engine.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests counts every request the server has received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Now is the server clock. It follows wall time until Advance is called.
func (s *Server) Now() time.Time {
	if p := s.now.Load(); p != nil {
		return *p
	}
	return time.Now()
}

func (s *Server) Advance(d time.Duration) {
	next := s.Now().Add(d)
	s.now.Store(&next)
}

// Token mints a valid bearer token for userID.
func (s *Server) Token(t testing.TB, userID int64) string {
	t.Helper()
	token, _, err := s.JWT.Sign(userID)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func seedProducts() []models.Product {
	shirtSale := 120000.0
	products := []models.Product{
		{
			ProductID: ProductShirt,
			SKU:       "AT-042",
			Name:      "Áo thun cotton",
			Price:     150000,
			SalePrice: &shirtSale,
			Images:    []string{"https://cdn.example.com/at-042.jpg"},
			Stock:     models.Stock{WarehouseMain: ShirtStock},
			Status:    "active",
		},
		{
			ProductID: ProductJacket,
			SKU:       "AK-007",
			Name:      "Áo khoác gió",
			Price:     600000,
			Images:    []string{"https://cdn.example.com/ak-007.jpg"},
			Stock:     models.Stock{WarehouseMain: 2, WarehouseEast: 1},
			Status:    "active",
		},
		{
			ProductID: ProductSoldOut,
			SKU:       "QJ-099",
			Name:      "Quần jean",
			Price:     350000,
			Status:    "active",
		},
	}
	for i := range products {
		products[i].CalculateTotalStock()
		products[i].SetTimestamps()
	}
	return products
}
