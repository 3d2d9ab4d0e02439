// Package migration folds a guest cart into the user's cart after login.
package migration

import (
	"context"
	"log"
	"net/http"

	"github.com/cuong200111/baitap-sub001/pkg/apiclient"
	"github.com/cuong200111/baitap-sub001/pkg/identity"
	"github.com/cuong200111/baitap-sub001/pkg/models"
)

const NothingToMigrate = "No guest cart to migrate"

type Migrator struct {
	api *apiclient.Client
	ids *identity.Resolver
}

func New(api *apiclient.Client, ids *identity.Resolver) *Migrator {
	return &Migrator{api: api, ids: ids}
}

// MigrateCart moves the stored guest session's cart to userID. Without a
// stored session it succeeds without calling the backend. The session id is
// forgotten only after the backend confirms, so a failed migration can be
// retried.
func (m *Migrator) MigrateCart(ctx context.Context, userID int64) apiclient.Result[models.MigrateData] {
	sid, ok := m.ids.PeekSessionID(ctx)
	if !ok {
		return apiclient.Ok(models.MigrateData{}, NothingToMigrate)
	}

	body := models.MigrateRequest{SessionID: sid, UserID: userID}
	env, err := m.api.Call(ctx, http.MethodPost, "/api/cart/migrate", nil, body)
	if err != nil {
		log.Printf("Cart migration for user %d failed: %v", userID, err)
		return apiclient.Fail[models.MigrateData](err)
	}
	data, err := apiclient.DecodeData[models.MigrateData](env)
	if err != nil {
		return apiclient.Fail[models.MigrateData](err)
	}

	if err := m.ids.ForgetSession(ctx); err != nil {
		r := apiclient.Fail[models.MigrateData](apiclient.StorageError("Cart migrated but the guest session could not be cleared", err))
		r.Data = data
		return r
	}
	return apiclient.Ok(data, env.Message)
}
