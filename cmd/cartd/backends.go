package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cuong200111/baitap-sub001/internal/auth"
	"github.com/cuong200111/baitap-sub001/internal/cartsvc"
	"github.com/cuong200111/baitap-sub001/internal/config"
	"github.com/cuong200111/baitap-sub001/pkg/mongo"
	"github.com/cuong200111/baitap-sub001/pkg/postgres"
	"github.com/cuong200111/baitap-sub001/pkg/redis"
)

// backends holds whatever STORE_BACKEND and CATALOG_BACKEND selected.
type backends struct {
	repo      cartsvc.Repository
	catalog   cartsvc.Catalog
	buyNow    cartsvc.BuyNowStore
	customers auth.CustomerRepository

	// Seed targets; nil when the backend has no writer.
	memCatalog   *cartsvc.MemoryCatalog
	mongoCatalog *mongo.ProductCatalog
	pgCatalog    *postgres.ProductCatalog
	memCustomers *auth.MemoryCustomerRepository
	mongoCusts   *mongo.CustomerRepository

	health  map[string]func(context.Context) error
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends closes whatever it already opened when it fails part way.
func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{health: map[string]func(context.Context) error{}}
	if err := b.open(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) open(ctx context.Context, cfg config.Config) error {
	var (
		redisClient *goredis.Client
		mongoDB     *mongodriver.Database
		pgPool      *pgxpool.Pool
	)

	needRedis := cfg.StoreBackend == config.BackendRedis
	needMongo := cfg.CatalogBackend == config.BackendMongo || cfg.MongoURI != ""
	needPostgres := cfg.StoreBackend == config.BackendPostgres || cfg.CatalogBackend == config.BackendPostgres

	if needRedis {
		redisClient = redis.NewClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		b.closers = append(b.closers, func() { redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddress, err)
		}
		log.Println("Connected to Redis successfully")
		b.health["redis"] = redis.Ping(redisClient)
	}

	if needMongo {
		if cfg.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo catalog")
		}
		client, err := mongo.Connect(cfg.MongoURI)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		mongoDB = client.Database(cfg.MongoDatabase)
		if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
		b.health["database"] = mongo.Ping(client)
	}

	if needPostgres {
		if cfg.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		log.Println("Connected to Postgres successfully")
		pgPool = pool
		b.health["postgres"] = postgres.Ping(pool)
	}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		b.repo = cartsvc.NewMemoryRepository()
		b.buyNow = cartsvc.NewMemoryBuyNowStore()
	case config.BackendRedis:
		b.repo = redis.NewCartRepository(redisClient, cfg.CartTTL())
		b.buyNow = redis.NewBuyNowStore(redisClient)
	case config.BackendPostgres:
		b.repo = postgres.NewCartRepository(pgPool)
		b.buyNow = cartsvc.NewMemoryBuyNowStore()
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.CatalogBackend {
	case config.BackendMemory:
		b.memCatalog = cartsvc.NewMemoryCatalog()
		b.catalog = b.memCatalog
	case config.BackendMongo:
		b.mongoCatalog = mongo.NewProductCatalog(mongoDB)
		b.catalog = b.mongoCatalog
	case config.BackendPostgres:
		b.pgCatalog = postgres.NewProductCatalog(pgPool)
		b.catalog = b.pgCatalog
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", cfg.CatalogBackend)
	}
	if redisClient != nil && cfg.CatalogBackend != config.BackendMemory {
		b.catalog = redis.NewProductCache(redisClient, b.catalog, cfg.ProductCacheTTL())
	}

	if mongoDB != nil {
		b.mongoCusts = mongo.NewCustomerRepository(mongoDB)
		b.customers = b.mongoCusts
	} else {
		b.memCustomers = auth.NewMemoryCustomerRepository()
		b.customers = b.memCustomers
	}

	return nil
}
