package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
}

// Authenticate checks a password against the stored bcrypt hash. Unknown
// emails, wrong passwords and inactive accounts all yield
// ErrInvalidCredentials.
func Authenticate(ctx context.Context, repo CustomerRepository, email, password string) (*models.Customer, error) {
	customer, err := repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, models.ErrCustomerNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() || !CheckPassword(customer.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return customer, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type MemoryCustomerRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.Customer
}

func NewMemoryCustomerRepository(customers ...models.Customer) *MemoryCustomerRepository {
	r := &MemoryCustomerRepository{byEmail: make(map[string]models.Customer)}
	for _, c := range customers {
		r.Put(c)
	}
	return r
}

func (r *MemoryCustomerRepository) Put(c models.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Email = NormalizeEmail(c.Email)
	c.SetTimestamps()
	r.byEmail[c.Email] = c
}

func (r *MemoryCustomerRepository) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	return &c, nil
}
