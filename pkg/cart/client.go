// Package cart is the storefront cart client. Every call is scoped by the
// resolved identity and returns an apiclient.Result; nothing is thrown at the
// caller.
package cart

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cuong200111/baitap-sub001/pkg/apiclient"
	"github.com/cuong200111/baitap-sub001/pkg/identity"
	"github.com/cuong200111/baitap-sub001/pkg/models"
)

const (
	opGetCart  = "cart.get"
	opGetCount = "cart.count"
)

type Client struct {
	api *apiclient.Client
	ids *identity.Resolver
	seq *apiclient.Sequencer
}

func New(api *apiclient.Client, ids *identity.Resolver) *Client {
	return &Client{api: api, ids: ids, seq: apiclient.NewSequencer()}
}

func (c *Client) identity(ctx context.Context) (identity.Identity, error) {
	id, err := c.ids.Identifier(ctx)
	if err != nil {
		return identity.Identity{}, apiclient.StorageError("Could not resolve cart owner", err)
	}
	return id, nil
}

// GetCart fetches every line and the summary. A read that resolves after a
// newer GetCart has been issued comes back stale. On failure Data is an
// empty cart.
func (c *Client) GetCart(ctx context.Context) apiclient.Result[models.CartData] {
	ticket := c.seq.Begin(opGetCart)
	r := apiclient.Guard(ticket, c.getCart(ctx))
	if r.Data.Items == nil {
		r.Data.Items = []models.CartItem{}
	}
	return r
}

func (c *Client) getCart(ctx context.Context) apiclient.Result[models.CartData] {
	none := models.CartData{Items: []models.CartItem{}}

	id, err := c.identity(ctx)
	if err != nil {
		return failWith(none, err)
	}
	env, err := c.api.Call(ctx, http.MethodGet, "/api/cart", id.Query(), nil)
	if err != nil {
		return failWith(none, err)
	}
	data, err := apiclient.DecodeData[models.CartData](env)
	if err != nil {
		return failWith(none, err)
	}
	if data.Items == nil {
		data.Items = []models.CartItem{}
	}
	return apiclient.Ok(data, env.Message)
}

// GetCartCount is the badge count: the sum of quantities. GetCart's summary
// stays the authoritative figure.
func (c *Client) GetCartCount(ctx context.Context) apiclient.Result[int] {
	ticket := c.seq.Begin(opGetCount)

	id, err := c.identity(ctx)
	if err != nil {
		return apiclient.Guard(ticket, apiclient.Fail[int](err))
	}
	env, err := c.api.Call(ctx, http.MethodGet, "/api/cart/count", id.Query(), nil)
	if err != nil {
		return apiclient.Guard(ticket, apiclient.Fail[int](err))
	}
	data, err := apiclient.DecodeData[models.CountData](env)
	if err != nil {
		return apiclient.Guard(ticket, apiclient.Fail[int](err))
	}
	return apiclient.Guard(ticket, apiclient.Ok(data.Count, env.Message))
}

// AddToCart merges into an existing line for the product or opens a new one.
// Stock refusals come back as rejections carrying stock details.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) apiclient.Result[models.CartActionData] {
	id, err := c.identity(ctx)
	if err != nil {
		return apiclient.Fail[models.CartActionData](err)
	}
	body := models.AddToCartRequest{ProductID: productID, Quantity: quantity, Scope: id.Scope()}
	return action(c.api.Call(ctx, http.MethodPost, "/api/cart", nil, body))
}

// UpdateQuantity sets an absolute quantity. Zero is sent as is; the backend
// removes the line.
func (c *Client) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) apiclient.Result[models.CartActionData] {
	id, err := c.identity(ctx)
	if err != nil {
		return apiclient.Fail[models.CartActionData](err)
	}
	body := models.UpdateCartItemRequest{Quantity: &quantity, Scope: id.Scope()}
	return action(c.api.Call(ctx, http.MethodPut, itemPath(cartItemID), nil, body))
}

// RemoveItem deletes one line. Removing a line twice yields a failure
// result for the second call.
func (c *Client) RemoveItem(ctx context.Context, cartItemID int64) apiclient.Result[struct{}] {
	id, err := c.identity(ctx)
	if err != nil {
		return apiclient.Fail[struct{}](err)
	}
	return empty(c.api.Call(ctx, http.MethodDelete, itemPath(cartItemID), id.Query(), nil))
}

func (c *Client) ClearCart(ctx context.Context) apiclient.Result[struct{}] {
	id, err := c.identity(ctx)
	if err != nil {
		return apiclient.Fail[struct{}](err)
	}
	return empty(c.api.Call(ctx, http.MethodDelete, "/api/cart", nil, id.Scope()))
}

func itemPath(cartItemID int64) string {
	return "/api/cart/" + strconv.FormatInt(cartItemID, 10)
}

func action(env *apiclient.Envelope, err error) apiclient.Result[models.CartActionData] {
	if err != nil {
		return apiclient.Fail[models.CartActionData](err)
	}
	data, err := apiclient.DecodeData[models.CartActionData](env)
	if err != nil {
		return apiclient.Fail[models.CartActionData](err)
	}
	return apiclient.Ok(data, env.Message)
}

func empty(env *apiclient.Envelope, err error) apiclient.Result[struct{}] {
	if err != nil {
		return apiclient.Fail[struct{}](err)
	}
	return apiclient.Ok(struct{}{}, env.Message)
}

func failWith[T any](data T, err error) apiclient.Result[T] {
	r := apiclient.Fail[T](err)
	r.Data = data
	return r
}
