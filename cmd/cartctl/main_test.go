package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuong200111/baitap-sub001/internal/cartdtest"
	"github.com/cuong200111/baitap-sub001/pkg/storage"
)

func TestRun_GuestThenLogin(t *testing.T) {
	srv := cartdtest.New(t)
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "profile.json"))
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := newApp(store, srv.URL, 5*time.Second, &out)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, "add", []string{strconv.FormatInt(cartdtest.ProductShirt, 10), "2"}))
	assert.Contains(t, out.String(), `"action": "added"`)

	out.Reset()
	require.NoError(t, a.run(ctx, "whoami", nil))
	assert.Contains(t, out.String(), `"kind": "session"`)

	err = a.run(ctx, "add", []string{strconv.FormatInt(cartdtest.ProductSoldOut, 10)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out_of_stock")

	out.Reset()
	require.NoError(t, a.run(ctx, "login", []string{cartdtest.CustomerEmail, cartdtest.CustomerPass}))
	assert.Contains(t, out.String(), strconv.FormatInt(cartdtest.CustomerID, 10))

	out.Reset()
	require.NoError(t, a.run(ctx, "count", nil))
	assert.Contains(t, out.String(), "2")

	out.Reset()
	require.NoError(t, a.run(ctx, "buy-now", []string{strconv.FormatInt(cartdtest.ProductJacket, 10)}))
	require.NoError(t, a.run(ctx, "checkout", nil))
	assert.Contains(t, out.String(), "buy_now_session_id")

	require.NoError(t, a.run(ctx, "buy-now-clear", nil))
	assert.Error(t, a.run(ctx, "checkout", nil))

	require.NoError(t, a.run(ctx, "logout", nil))
	assert.ErrorContains(t, a.run(ctx, "migrate", nil), "log in first")
}

func TestRun_Usage(t *testing.T) {
	a, err := newApp(storage.NewMemoryStore(), "http://localhost:0", time.Second, &bytes.Buffer{})
	require.NoError(t, err)

	for _, args := range [][]string{{"bogus"}, {"update", "1"}, {"login", "a@b.vn"}, {"add"}} {
		assert.ErrorIs(t, a.run(context.Background(), args[0], args[1:]), errUsage, args)
	}
	assert.ErrorContains(t, a.run(context.Background(), "add", []string{"abc"}), "invalid id")
}
