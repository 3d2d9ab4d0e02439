// Package account drives the guest to user transition: log in, keep the
// token, migrate the guest cart once.
package account

import (
	"context"
	"net/http"

	"github.com/cuong200111/baitap-sub001/pkg/apiclient"
	"github.com/cuong200111/baitap-sub001/pkg/identity"
	"github.com/cuong200111/baitap-sub001/pkg/migration"
	"github.com/cuong200111/baitap-sub001/pkg/models"
	"github.com/cuong200111/baitap-sub001/pkg/storage"
)

type Client struct {
	api      *apiclient.Client
	ids      *identity.Resolver
	migrator *migration.Migrator
}

func New(api *apiclient.Client, ids *identity.Resolver) *Client {
	return &Client{api: api, ids: ids, migrator: migration.New(api, ids)}
}

// LoginResult pairs the login outcome with the migration it triggered.
type LoginResult struct {
	apiclient.Result[models.LoginData]
	Migration apiclient.Result[models.MigrateData]
}

// Login stores the issued token and then migrates the guest cart. A failed
// migration leaves the login in place and the guest session for a retry.
func (c *Client) Login(ctx context.Context, email, password string) LoginResult {
	env, err := c.api.Call(ctx, http.MethodPost, "/api/auth/login", nil, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResult{Result: apiclient.Fail[models.LoginData](err)}
	}
	data, err := apiclient.DecodeData[models.LoginData](env)
	if err != nil {
		return LoginResult{Result: apiclient.Fail[models.LoginData](err)}
	}
	if data.Token == "" {
		return LoginResult{Result: apiclient.Fail[models.LoginData](apiclient.Rejection("Login response carried no token", nil))}
	}

	if err := c.ids.Store().Set(ctx, storage.KeyToken, data.Token); err != nil {
		return LoginResult{Result: apiclient.Fail[models.LoginData](apiclient.StorageError("Could not save login token", err))}
	}

	res := LoginResult{Result: apiclient.Ok(data, env.Message)}
	res.Migration = c.migrator.MigrateCart(ctx, data.UserID)
	if !res.Migration.Success() {
		res.Message = "Logged in, but the guest cart could not be moved: " + res.Migration.Message
	}
	return res
}

// Logout forgets the token; the next request runs as a guest again.
func (c *Client) Logout(ctx context.Context) error {
	return c.ids.Store().Remove(ctx, storage.KeyToken)
}
