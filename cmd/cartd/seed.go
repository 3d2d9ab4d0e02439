package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/cuong200111/baitap-sub001/internal/auth"
	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// seedCustomer carries a plain password; it is hashed before storing.
type seedCustomer struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type seedData struct {
	Products  []models.Product `json:"products"`
	Customers []seedCustomer   `json:"customers"`
}

func seedFromFile(ctx context.Context, path string, b *backends) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var data seedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid seed file: %w", err)
	}

	for i := range data.Products {
		data.Products[i].CalculateTotalStock()
		if data.Products[i].Status == "" {
			data.Products[i].Status = "active"
		}
	}
	switch {
	case b.memCatalog != nil:
		b.memCatalog.Put(data.Products...)
	case b.mongoCatalog != nil:
		err = b.mongoCatalog.Upsert(ctx, data.Products...)
	case b.pgCatalog != nil:
		err = b.pgCatalog.Upsert(ctx, data.Products...)
	}
	if err != nil {
		return err
	}

	for _, sc := range data.Customers {
		hash, err := auth.HashPassword(sc.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", sc.Email, err)
		}
		customer := models.Customer{
			UserID:        sc.UserID,
			Email:         auth.NormalizeEmail(sc.Email),
			Password:      hash,
			FirstName:     sc.FirstName,
			LastName:      sc.LastName,
			AccountStatus: "active",
		}
		if b.mongoCusts != nil {
			if err := b.mongoCusts.Upsert(ctx, customer); err != nil {
				return err
			}
		} else {
			b.memCustomers.Put(customer)
		}
	}

	log.Printf("Seeded %d products and %d customers from %s", len(data.Products), len(data.Customers), path)
	return nil
}
