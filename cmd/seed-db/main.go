// Command seed-db loads development fixtures: a demo user with a shipping
// address and API key, a small product catalog, and a handful of discount
// codes.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Jose-Daniel-Lopez/E-Commerce-Backend-sub000/internal/storage/postgres"
)

type variantJSON struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func main() {
	var (
		databaseURL  string
		variantsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&variantsFile, "variants-file", "db/seed/variants.json", "path to variants JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SHOP_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, variantsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, variantsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedUser(ctx, pool); err != nil {
		return errors.Wrap(err, "seed user")
	}

	if err := seedVariants(ctx, pool, variantsFile); err != nil {
		return errors.Wrap(err, "seed variants")
	}

	if err := seedDiscountCodes(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discount codes")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

const (
	upsertUserSQL = `
INSERT INTO users (id, name, email)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`

	upsertAddressSQL = `
INSERT INTO shipping_addresses (id, user_id, line1, line2, city, postal_code, country)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    line1 = EXCLUDED.line1, line2 = EXCLUDED.line2, city = EXCLUDED.city,
    postal_code = EXCLUDED.postal_code, country = EXCLUDED.country`

	upsertVariantSQL = `
INSERT INTO variants (id, sku, name, price, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    sku = EXCLUDED.sku, name = EXCLUDED.name,
    price = EXCLUDED.price, stock = EXCLUDED.stock`

	upsertDiscountSQL = `
INSERT INTO discount_codes (code, discount_type, value, min_subtotal, description, active)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO UPDATE SET
    discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
    min_subtotal = EXCLUDED.min_subtotal, description = EXCLUDED.description,
    active = EXCLUDED.active`

	upsertAPIKeySQL = `
INSERT INTO api_keys (id, key_hash, name, user_id, scopes, active)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    key_hash = EXCLUDED.key_hash, name = EXCLUDED.name,
    user_id = EXCLUDED.user_id, scopes = EXCLUDED.scopes, active = EXCLUDED.active`
)

func seedUser(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo user")

	if _, err := pool.Exec(ctx, upsertUserSQL, "demo", "Demo User", "demo@example.com"); err != nil {
		return errors.Wrap(err, "upsert demo user")
	}

	if _, err := pool.Exec(ctx, upsertAddressSQL,
		"demo-home", "demo", "1 Example Street", "", "Springfield", "12345", "US",
	); err != nil {
		return errors.Wrap(err, "upsert demo address")
	}

	slog.Info("upserted demo user", slog.String("id", "demo"), slog.String("address", "demo-home"))
	return nil
}

func seedVariants(ctx context.Context, pool *pgxpool.Pool, variantsFile string) error {
	slog.Info("reading variants file", slog.String("path", variantsFile))

	data, err := os.ReadFile(variantsFile)
	if err != nil {
		return errors.Wrap(err, "read variants file")
	}

	var variants []variantJSON
	if err := json.Unmarshal(data, &variants); err != nil {
		return errors.Wrap(err, "parse variants JSON")
	}

	slog.Info("upserting variants", slog.Int("count", len(variants)))

	for _, v := range variants {
		if _, err := pool.Exec(ctx, upsertVariantSQL, v.ID, v.SKU, v.Name, v.Price, v.Stock); err != nil {
			return errors.Wrapf(err, "upsert variant %s", v.ID)
		}

		slog.Info("upserted variant", slog.String("id", v.ID), slog.String("name", v.Name))
	}

	return nil
}

func seedDiscountCodes(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding discount codes")

	codes := []struct {
		code         string
		discountType string
		value        decimal.Decimal
		minSubtotal  decimal.Decimal
		description  string
		active       bool
	}{
		{"SAVE10", "fixed", decimal.NewFromInt(10), decimal.Zero, "Flat $10 off", true},
		{"TENPCT", "percentage", decimal.NewFromInt(10), decimal.Zero, "10% off entire order", true},
		{"HALFOFF", "percentage", decimal.NewFromInt(50), decimal.NewFromInt(100), "50% off orders of $100+", true},
		{"BULK5", "tiered", decimal.NewFromInt(5), decimal.NewFromInt(50), "$5 off per $50 spent", true},
		{"RETIRED", "fixed", decimal.NewFromInt(20), decimal.Zero, "Retired promotion", false},
	}

	for _, c := range codes {
		if _, err := pool.Exec(ctx, upsertDiscountSQL,
			c.code, c.discountType, c.value, c.minSubtotal, c.description, c.active,
		); err != nil {
			return errors.Wrapf(err, "upsert discount code %s", c.code)
		}

		slog.Info("upserted discount code", slog.String("code", c.code), slog.String("description", c.description))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL,
		"default", keyHash, "Default test key", "demo", []string{"checkout"}, true,
	); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"), slog.String("user", "demo"))

	return nil
}
