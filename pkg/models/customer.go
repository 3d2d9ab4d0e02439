package models

import (
	"time"
)

// Customer is a storefront account able to log in and own a cart
type Customer struct {
	UserID        int64     `bson:"user_id" json:"user_id" validate:"required,gt=0"`
	Email         string    `bson:"email" json:"email" validate:"required,email"`
	Password      string    `bson:"password" json:"-" validate:"required,min=6"` // Never expose in JSON
	FirstName     string    `bson:"first_name" json:"first_name" validate:"required,min=2,max=50"`
	LastName      string    `bson:"last_name" json:"last_name" validate:"required,min=2,max=50"`
	AccountStatus string    `bson:"account_status" json:"account_status" validate:"required,oneof=active inactive suspended deleted"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// SetTimestamps sets created_at on first call and always updates updated_at
func (c *Customer) SetTimestamps() {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// GetFullName returns the customer's full name
func (c *Customer) GetFullName() string {
	return c.FirstName + " " + c.LastName
}

// IsActive checks if the customer account is active
func (c *Customer) IsActive() bool {
	return c.AccountStatus == "active"
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginData struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}
