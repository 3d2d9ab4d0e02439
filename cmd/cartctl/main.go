// Command cartctl drives the storefront cart from a terminal. It keeps the
// visitor's token, guest session and buy-now mirror in a profile, the way a
// browser keeps them in local storage.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/cuong200111/baitap-sub001/pkg/account"
	"github.com/cuong200111/baitap-sub001/pkg/apiclient"
	"github.com/cuong200111/baitap-sub001/pkg/buynow"
	"github.com/cuong200111/baitap-sub001/pkg/cart"
	"github.com/cuong200111/baitap-sub001/pkg/global"
	"github.com/cuong200111/baitap-sub001/pkg/identity"
	"github.com/cuong200111/baitap-sub001/pkg/migration"
	"github.com/cuong200111/baitap-sub001/pkg/redis"
	"github.com/cuong200111/baitap-sub001/pkg/storage"
)

const usage = `usage: cartctl [flags] <command> [args]

commands:
  whoami                      show the identity requests are scoped to
  cart                        list cart lines and summary
  count                       cart badge count
  add <product_id> [qty]      add to cart (qty defaults to 1)
  update <item_id> <qty>      set a line's quantity (0 removes it)
  remove <item_id>            remove a line
  clear                       empty the cart
  buy-now <product_id> [qty]  start an express checkout
  checkout                    show the saved buy-now session
  buy-now-clear               forget the saved buy-now session
  login <email> <password>    log in and move the guest cart
  logout                      forget the login token
  migrate                     retry moving the guest cart

flags:
`

type app struct {
	ids     *identity.Resolver
	cart    *cart.Client
	buyNow  *buynow.Client
	account *account.Client
	migr    *migration.Migrator
	out     io.Writer
}

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)

	defaultProfile := global.GetEnvOrDefault("CARTCTL_PROFILE", "")
	if defaultProfile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			defaultProfile = filepath.Join(dir, "cartctl", "profile.json")
		} else {
			defaultProfile = "cartctl-profile.json"
		}
	}

	fs := flag.NewFlagSet("cartctl", flag.ExitOnError)
	apiURL := fs.String("api", global.GetEnvOrDefault("CART_API_URL", "http://localhost:8000"), "cart API base URL")
	profile := fs.String("profile", defaultProfile, "profile file holding visitor storage")
	redisAddr := fs.String("redis", global.GetEnvOrDefault("CARTCTL_REDIS_ADDRESS", ""), "keep visitor storage in Redis at this address instead of a file")
	redisProfile := fs.String("redis-profile", "default", "profile name inside Redis")
	timeout := fs.Duration("timeout", 15*time.Second, "request timeout")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	var store storage.Store
	if *redisAddr != "" {
		client := redis.NewClient(*redisAddr, global.GetEnvOrDefault("REDIS_PASSWORD", ""), 0)
		defer client.Close()
		store = storage.NewRedisStore(client, *redisProfile)
	} else {
		fileStore, err := storage.NewFileStore(*profile)
		if err != nil {
			log.Fatalf("Failed to open profile: %v", err)
		}
		store = fileStore
	}

	a, err := newApp(store, *apiURL, *timeout, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := a.run(context.Background(), fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}

func newApp(store storage.Store, apiURL string, timeout time.Duration, out io.Writer) (*app, error) {
	ids := identity.NewResolver(store)
	api, err := apiclient.New(apiclient.Config{BaseURL: apiURL, Timeout: timeout, Token: ids.Token})
	if err != nil {
		return nil, err
	}
	return &app{
		ids:     ids,
		cart:    cart.New(api, ids),
		buyNow:  buynow.New(api, ids),
		account: account.New(api, ids),
		migr:    migration.New(api, ids),
		out:     out,
	}, nil
}

var errUsage = errors.New("usage")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "whoami":
		id, err := a.ids.Identifier(ctx)
		if err != nil {
			return err
		}
		return a.print(map[string]string{"identity": id.String(), "kind": string(id.Kind)})
	case "cart":
		return report(a, a.cart.GetCart(ctx))
	case "count":
		return report(a, a.cart.GetCartCount(ctx))
	case "add":
		id, qty, err := idAndQty(args, 1)
		if err != nil {
			return err
		}
		return report(a, a.cart.AddToCart(ctx, id, qty))
	case "update":
		if len(args) != 2 {
			return errUsage
		}
		id, qty, err := idAndQty(args, 0)
		if err != nil {
			return err
		}
		return report(a, a.cart.UpdateQuantity(ctx, id, qty))
	case "remove":
		id, _, err := idAndQty(args, 0)
		if err != nil {
			return err
		}
		return report(a, a.cart.RemoveItem(ctx, id))
	case "clear":
		return report(a, a.cart.ClearCart(ctx))
	case "buy-now":
		id, qty, err := idAndQty(args, 1)
		if err != nil {
			return err
		}
		return report(a, a.buyNow.CreateBuyNowSession(ctx, id, qty))
	case "checkout":
		session := a.buyNow.GetBuyNowSession(ctx)
		if session == nil {
			return errors.New("no buy-now session saved")
		}
		return a.print(session)
	case "buy-now-clear":
		return a.buyNow.ClearBuyNowSession(ctx)
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		res := a.account.Login(ctx, args[0], args[1])
		if !res.Success() {
			return failure(res.Result)
		}
		if res.Migration.Message != "" {
			fmt.Fprintln(a.out, res.Migration.Message)
		}
		return a.print(map[string]any{"user_id": res.Data.UserID, "name": res.Data.Name, "expires_at": res.Data.ExpiresAt})
	case "logout":
		return a.account.Logout(ctx)
	case "migrate":
		uid, ok := a.ids.UserID(ctx)
		if !ok {
			return errors.New("log in first")
		}
		return report(a, a.migr.MigrateCart(ctx, uid))
	default:
		return errUsage
	}
}

func report[T any](a *app, r apiclient.Result[T]) error {
	if !r.Success() {
		return failure(r)
	}
	if r.Message != "" {
		fmt.Fprintln(a.out, r.Message)
	}
	return a.print(r.Data)
}

func failure[T any](r apiclient.Result[T]) error {
	if stock := r.Stock(); stock != nil {
		return fmt.Errorf("%s (%s: available %d, in cart %d, can add %d)",
			r.Message, stock.StockStatus, stock.AvailableStock, stock.CurrentInCart, stock.MaxCanAdd)
	}
	return fmt.Errorf("%s", r.Message)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func idAndQty(args []string, defaultQty int) (int64, int, error) {
	if len(args) == 0 || len(args) > 2 {
		return 0, 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid id %q", args[0])
	}
	qty := defaultQty
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 0 {
			return 0, 0, fmt.Errorf("invalid quantity %q", args[1])
		}
	}
	return id, qty, nil
}
