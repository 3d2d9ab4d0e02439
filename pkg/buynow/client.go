// Package buynow is the single-item express checkout client. A created
// session is mirrored into the visitor store so checkout can read it without
// another round trip; at most one mirror exists at a time.
package buynow

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/cuong200111/baitap-sub001/pkg/apiclient"
	"github.com/cuong200111/baitap-sub001/pkg/identity"
	"github.com/cuong200111/baitap-sub001/pkg/models"
	"github.com/cuong200111/baitap-sub001/pkg/storage"
)

type Client struct {
	api *apiclient.Client
	ids *identity.Resolver
	now func() time.Time
}

type Option func(*Client)

// WithClock sets the clock used to expire mirrored sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(api *apiclient.Client, ids *identity.Resolver, opts ...Option) *Client {
	c := &Client{api: api, ids: ids, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateBuyNowSession opens a fresh session for one product, independent of
// the cart, and overwrites any previous mirror with the response data.
func (c *Client) CreateBuyNowSession(ctx context.Context, productID int64, quantity int) apiclient.Result[models.BuyNowSession] {
	id, err := c.ids.Identifier(ctx)
	if err != nil {
		return apiclient.Fail[models.BuyNowSession](apiclient.StorageError("Could not resolve cart owner", err))
	}

	body := models.BuyNowRequest{ProductID: productID, Quantity: quantity, Scope: id.Scope()}
	env, err := c.api.Call(ctx, http.MethodPost, "/api/buy-now", nil, body)
	if err != nil {
		return apiclient.Fail[models.BuyNowSession](err)
	}
	session, err := apiclient.DecodeData[models.BuyNowSession](env)
	if err != nil {
		return apiclient.Fail[models.BuyNowSession](err)
	}
	if session.BuyNowSessionID == "" {
		return apiclient.Fail[models.BuyNowSession](apiclient.Rejection("Invalid buy-now session from server", nil))
	}

	if err := c.ids.Store().Set(ctx, storage.KeyBuyNowSession, string(env.Data)); err != nil {
		r := apiclient.Fail[models.BuyNowSession](apiclient.StorageError("Could not save buy-now session", err))
		r.Data = session
		return r
	}
	return apiclient.Ok(session, env.Message)
}

// GetBuyNowSession reads the mirror without touching the network. Absent,
// unreadable and expired mirrors all read as nil; an expired one is removed.
func (c *Client) GetBuyNowSession(ctx context.Context) *models.BuyNowSession {
	raw, ok := c.GetBuyNowSessionRaw(ctx)
	if !ok {
		return nil
	}
	var session models.BuyNowSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.BuyNowSessionID == "" {
		return nil
	}
	if session.Expired(c.now()) {
		if err := c.ClearBuyNowSession(ctx); err != nil {
			log.Printf("Warning: failed to remove expired buy-now session: %v", err)
		}
		return nil
	}
	return &session
}

// GetBuyNowSessionRaw returns the mirror exactly as it was stored.
func (c *Client) GetBuyNowSessionRaw(ctx context.Context) (string, bool) {
	raw, err := c.ids.Store().Get(ctx, storage.KeyBuyNowSession)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Warning: failed to read buy-now session: %v", err)
		}
		return "", false
	}
	return raw, true
}

// ClearBuyNowSession drops the mirror. The backend is not told.
func (c *Client) ClearBuyNowSession(ctx context.Context) error {
	return c.ids.Store().Remove(ctx, storage.KeyBuyNowSession)
}

// FetchBuyNowSession asks the backend for a session by id, for checkout
// pages that want to confirm the mirror is still live.
func (c *Client) FetchBuyNowSession(ctx context.Context, buyNowSessionID string) apiclient.Result[models.BuyNowSession] {
	env, err := c.api.Call(ctx, http.MethodGet, "/api/buy-now/"+url.PathEscape(buyNowSessionID), nil, nil)
	if err != nil {
		return apiclient.Fail[models.BuyNowSession](err)
	}
	session, err := apiclient.DecodeData[models.BuyNowSession](env)
	if err != nil {
		return apiclient.Fail[models.BuyNowSession](err)
	}
	return apiclient.Ok(session, env.Message)
}
