// Command seed populates the storefront database with demo categories and
// products. Categories that already exist are left alone together with their
// products, so the command can be run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/config"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/migrations"
	"github.com/dungpham-npc/storefront/internal/repository/postgres"
	"github.com/dungpham-npc/storefront/internal/service"
	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/logger"
)

type categoryDef struct {
	name        string
	description string
}

type productDef struct {
	name        string
	description string
	category    string
	price       string
	featured    bool
}

var categories = []categoryDef{
	{"Electronics", "Gadgets, audio and computer accessories"},
	{"Clothing", "Everyday apparel and footwear"},
	{"Home & Kitchen", "Cookware and kitchen appliances"},
	{"Books", "Software engineering classics"},
}

var products = []productDef{
	{"Wireless Bluetooth Headphones", "Noise-cancelling over-ear headphones with 30-hour battery life.", "Electronics", "79.99", true},
	{"USB-C Hub Adapter", "7-in-1 hub with HDMI 4K output and 100W power delivery.", "Electronics", "34.99", false},
	{"Mechanical Keyboard", "RGB backlit keyboard with tactile switches.", "Electronics", "89.99", false},
	{"Portable SSD 1TB", "External solid state drive with USB 3.2 Gen 2.", "Electronics", "99.99", true},
	{"Classic Cotton T-Shirt", "Organic cotton tee with a relaxed fit.", "Clothing", "24.99", false},
	{"Slim Fit Jeans", "Stretch denim with classic 5-pocket styling.", "Clothing", "49.99", false},
	{"Rain Jacket", "Waterproof breathable jacket with sealed seams.", "Clothing", "79.99", true},
	{"Stainless Steel Cookware Set", "10-piece tri-ply cookware set with glass lids.", "Home & Kitchen", "149.99", true},
	{"Coffee Maker", "12-cup programmable drip brewer with thermal carafe.", "Home & Kitchen", "49.99", false},
	{"Cast Iron Skillet", "Pre-seasoned 12-inch skillet, oven safe.", "Home & Kitchen", "34.99", false},
	{"The Go Programming Language", "Donovan and Kernighan on Go fundamentals.", "Books", "39.99", true},
	{"Designing Data-Intensive Applications", "Reliable, scalable and maintainable data systems.", "Books", "44.99", false},
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed complete")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if cfg.AdminEmail != "" {
		users := service.NewUserService(
			postgres.NewUserRepository(pool),
			postgres.NewRoleRepository(pool),
			auth.NewBcryptHasher(cfg.BcryptCost),
			log,
		)
		if err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	now := time.Now().UTC()

	created := make(map[string]string, len(categories))
	for _, def := range categories {
		c := &domain.Category{
			ID:          uuid.NewString(),
			Name:        def.name,
			Description: def.description,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := categoryRepo.Create(ctx, c); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				log.Info("category exists, skipping", slog.String("name", def.name))
				continue
			}
			return fmt.Errorf("create category %q: %w", def.name, err)
		}
		created[def.name] = c.ID
		log.Info("category created", slog.String("name", def.name), slog.String("id", c.ID))
	}

	var count int
	for _, def := range products {
		categoryID, ok := created[def.category]
		if !ok {
			continue
		}
		p := &domain.Product{
			ID:          uuid.NewString(),
			Name:        def.name,
			Description: def.description,
			Price:       decimal.RequireFromString(def.price),
			IsActive:    true,
			IsFeatured:  def.featured,
			CategoryID:  categoryID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := productRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %q: %w", def.name, err)
		}
		count++
	}
	log.Info("products created", slog.Int("count", count))
	return nil
}
