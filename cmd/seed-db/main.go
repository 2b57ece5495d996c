// Command seed-db loads a demo catalog, shipping geography, coupons, roles,
// settings, an admin account, and API keys into the database.
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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/storefront/db"
	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/settings"
	"github.com/xenking/storefront/internal/domain/shipping"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/repository"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    struct {
		Thumbnail string `json:"thumbnail"`
		Mobile    string `json:"mobile"`
		Tablet    string `json:"tablet"`
		Desktop   string `json:"desktop"`
	} `json:"image"`
	Variants []struct {
		SKU        string          `json:"sku"`
		Label      string          `json:"label"`
		PriceDelta decimal.Decimal `json:"priceDelta"`
	} `json:"variants"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
		apiKey        string
		apiKeyPepper  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (empty uses the embedded catalog)")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedGeography(ctx, pool); err != nil {
		return errors.Wrap(err, "seed geography")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	adminRoleID, err := seedRoles(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "seed roles")
	}
	adminID, err := seedAdmin(ctx, pool, adminRoleID, adminEmail, adminPassword)
	if err != nil {
		return errors.Wrap(err, "seed admin account")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper, adminID); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	if err := seedSettings(ctx, pool); err != nil {
		return errors.Wrap(err, "seed settings")
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	data := db.SeedProducts
	if productsFile != "" {
		slog.Info("reading products file", slog.String("path", productsFile))
		var err error
		data, err = os.ReadFile(productsFile)
		if err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	var items []productJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(items)))

	repo := repository.NewProductRepository(pool)
	for _, item := range items {
		p := &product.Product{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Category: item.Category,
			Image: product.Image{
				Thumbnail: item.Image.Thumbnail,
				Mobile:    item.Image.Mobile,
				Tablet:    item.Image.Tablet,
				Desktop:   item.Image.Desktop,
			},
		}
		for _, v := range item.Variants {
			p.Variants = append(p.Variants, product.Variant{
				SKU:        v.SKU,
				Label:      v.Label,
				PriceDelta: v.PriceDelta,
			})
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}

func seedGeography(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding shipping geography")

	repo := repository.NewShippingRepository(pool)

	// Location names are unique within their parent, so a rerun would
	// collide. Treat an existing country as already seeded.
	existing, err := repo.ListCountries(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("shipping geography already present, skipping")
		return nil
	}

	cost := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	country := &shipping.Country{Name: "Jordan", Cost: cost("10.00")}
	if err := repo.SaveCountry(ctx, country); err != nil {
		return err
	}

	amman := &shipping.State{CountryID: country.ID, Name: "Amman", Cost: cost("7.50")}
	if err := repo.SaveState(ctx, amman); err != nil {
		return err
	}
	irbid := &shipping.State{CountryID: country.ID, Name: "Irbid"}
	if err := repo.SaveState(ctx, irbid); err != nil {
		return err
	}

	sweifieh := &shipping.City{StateID: amman.ID, Name: "Sweifieh", Cost: cost("5.00")}
	if err := repo.SaveCity(ctx, sweifieh); err != nil {
		return err
	}
	downtown := &shipping.City{StateID: amman.ID, Name: "Downtown"}
	return repo.SaveCity(ctx, downtown)
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding coupons")

	const upsertCouponSQL = `INSERT INTO coupons (code, discount_type, value, description, status, min_cart_value)
		VALUES ($1, $2, $3, $4, 'ENABLED', $5)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
			description = EXCLUDED.description, min_cart_value = EXCLUDED.min_cart_value`

	min20 := decimal.RequireFromString("20.00")
	coupons := []struct {
		code         string
		discountType string
		value        decimal.Decimal
		description  string
		minCart      *decimal.Decimal
	}{
		{"WELCOME10", "PERCENTAGE", decimal.NewFromInt(10), "10% off your first order", nil},
		{"FLAT5", "FLAT", decimal.NewFromInt(5), "5.00 off orders over 20.00", &min20},
	}

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, upsertCouponSQL, c.code, c.discountType, c.value, c.description, c.minCart); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}
		slog.Info("upserted coupon", slog.String("code", c.code))
	}
	return nil
}

func seedRoles(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	slog.Info("seeding roles")

	const upsertRoleSQL = `INSERT INTO roles (name, scopes) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET scopes = EXCLUDED.scopes
		RETURNING id`

	var adminRoleID int64
	err := pool.QueryRow(ctx, upsertRoleSQL, "admin", []string{auth.ScopeAdmin}).Scan(&adminRoleID)
	if err != nil {
		return 0, errors.Wrap(err, "upsert admin role")
	}

	var shopperRoleID int64
	err = pool.QueryRow(ctx, upsertRoleSQL, "shopper", []string{auth.ScopeCatalog, auth.ScopeCheckout}).Scan(&shopperRoleID)
	if err != nil {
		return 0, errors.Wrap(err, "upsert shopper role")
	}
	return adminRoleID, nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, roleID int64, email, password string) (string, error) {
	if password == "" {
		slog.Info("no admin password supplied, skipping admin account")
		return "", nil
	}

	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}

	const upsertAdminSQL = `INSERT INTO users (id, email, name, password_hash, role_id, status, email_verified)
		VALUES ($1, $2, 'Administrator', $3, $4, $5, TRUE)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, role_id = EXCLUDED.role_id
		RETURNING id`

	var id string
	err = pool.QueryRow(ctx, upsertAdminSQL, uuid.New().String(), email, string(hash), roleID, user.StatusActive).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "upsert admin")
	}
	return id, nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper, adminID string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, user_id, scopes, active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash, user_id = EXCLUDED.user_id, scopes = EXCLUDED.scopes`

	scopes := []string{auth.ScopeAdmin}
	if _, err := pool.Exec(ctx, upsertAPIKeySQL, "default", keyHash, "Default admin key", adminID, scopes); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding settings")

	repo := repository.NewSettingsRepository(pool)
	defaults := map[string]string{
		settings.KeyStoreName:       "Storefront",
		settings.KeyStoreEmail:      "hello@example.com",
		settings.KeyCurrencyCode:    "USD",
		settings.KeyDefaultTaxRate:  "0.05",
		settings.KeyCheckoutEnabled: "true",
	}
	for key, value := range defaults {
		if err := repo.Put(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
