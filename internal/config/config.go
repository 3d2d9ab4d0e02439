package config

import (
	"time"

	"github.com/cuong200111/baitap-sub001/pkg/global"
)

// Backend names accepted by STORE_BACKEND and CATALOG_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

type Config struct {
	Env  string
	Port string

	StoreBackend   string
	CatalogBackend string

	MongoURI      string
	MongoDatabase string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	ProductCacheTTLSec int

	PostgresURL string

	JWTIssuer   string
	JWTSecret   string
	TokenTTLMin int

	// Amounts are in VND.
	ShippingFee           float64
	FreeShippingThreshold float64

	CartTTLHours int
	BuyNowTTLMin int

	RateRPS   float64
	RateBurst int

	AllowedOrigins []string

	// SeedFile optionally points at a JSON file of products and customers
	// loaded at startup.
	SeedFile string
}

func Load() Config {
	return Config{
		Env:  global.GetEnvOrDefault("ENV", "development"),
		Port: global.GetEnvOrDefault("PORT", "8000"),

		StoreBackend:   global.GetEnvOrDefault("STORE_BACKEND", BackendMemory),
		CatalogBackend: global.GetEnvOrDefault("CATALOG_BACKEND", BackendMemory),

		MongoURI:      global.GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase: global.GetEnvOrDefault("MONGODB_DATABASE", "storefront"),

		RedisAddress:  global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       global.GetEnvIntOrDefault("REDIS_DB", 0),

		ProductCacheTTLSec: global.GetEnvIntOrDefault("PRODUCT_CACHE_TTL_SEC", 300),

		PostgresURL: global.GetEnvOrDefault("DATABASE_URL", ""),

		JWTIssuer:   global.GetEnvOrDefault("JWT_ISSUER", "storefront"),
		JWTSecret:   global.GetEnvOrDefault("JWT_SECRET", ""),
		TokenTTLMin: global.GetEnvIntOrDefault("TOKEN_TTL_MIN", 60*24),

		ShippingFee:           global.GetEnvFloatOrDefault("SHIPPING_FEE", 30000),
		FreeShippingThreshold: global.GetEnvFloatOrDefault("FREE_SHIPPING_THRESHOLD", 500000),

		CartTTLHours: global.GetEnvIntOrDefault("CART_TTL_HOURS", 24*7),
		BuyNowTTLMin: global.GetEnvIntOrDefault("BUY_NOW_TTL_MIN", 30),

		RateRPS:   global.GetEnvFloatOrDefault("RATE_RPS", 20),
		RateBurst: global.GetEnvIntOrDefault("RATE_BURST", 40),

		AllowedOrigins: global.GetEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		SeedFile: global.GetEnvOrDefault("SEED_FILE", ""),
	}
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMin) * time.Minute
}

func (c Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

func (c Config) BuyNowTTL() time.Duration {
	return time.Duration(c.BuyNowTTLMin) * time.Minute
}

func (c Config) ProductCacheTTL() time.Duration {
	return time.Duration(c.ProductCacheTTLSec) * time.Second
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
