package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(customersCollection)}
}

// FindByEmail expects an already normalized email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

// Upsert stores a customer keyed by user_id. Password must already be hashed.
func (r *CustomerRepository) Upsert(ctx context.Context, customer models.Customer) error {
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.SetTimestamps()
	filter := bson.D{{Key: "user_id", Value: customer.UserID}}
	_, err := r.coll.ReplaceOne(ctx, filter, customer, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert customer %d: %w", customer.UserID, err)
	}
	return nil
}
