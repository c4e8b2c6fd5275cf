package cmd

import (
	"context"
	"fmt"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/auth"
	authPostgres "github.com/frahmantamala/shopping-list/internal/auth/postgres"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	catalogPostgres "github.com/frahmantamala/shopping-list/internal/catalog/postgres"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	"github.com/spf13/cobra"
)

var seedUsers bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with categories and sample products",
	Long:  `Seed categories, a starter product catalog and optionally demo users. Rows that already exist are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		conns, err := initDB(cfg.Database, cfg.Env)
		if err != nil {
			return err
		}
		defer conns.Close()

		log := logger.LoggerWrapper()
		ctx := context.Background()

		catalogService := catalog.NewService(
			catalogPostgres.NewProductRepository(conns.Gorm),
			catalogPostgres.NewCategoryRepository(conns.Gorm),
			catalog.NewProductCache(cfg.Catalog.CacheSize, cfg.Catalog.CacheTTL),
			log,
		)

		for _, c := range seedCategories {
			_, err := catalogService.CreateCategory(ctx, c)
			if skipExisting(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed category %s: %w", c.Code, err)
			}
			fmt.Println("Seeded category:", c.Code)
		}

		for _, p := range seedProducts {
			_, err := catalogService.CreateProduct(ctx, p)
			if skipExisting(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed product %s: %w", p.Barcode, err)
			}
			fmt.Println("Seeded product:", p.Name)
		}

		if !seedUsers {
			return nil
		}

		tokenGen := auth.NewJWTTokenGenerator(
			cfg.Security.AccessTokenSecret,
			cfg.Security.RefreshTokenSecret,
			cfg.Security.AccessTokenDuration,
			cfg.Security.RefreshTokenDuration,
		)
		authService := auth.NewService(authPostgres.NewRepository(conns.Gorm), tokenGen, cfg.Security.BCryptCost, log)
		for _, u := range demoUsers {
			_, err := authService.Register(ctx, u)
			if skipExisting(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}
		return nil
	},
}

func skipExisting(err error) bool {
	return err != nil && errors.IsType(err, errors.ErrorTypeConflict)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

var seedCategories = []catalog.CreateCategoryDTO{
	{Code: "produce", Name: "Fruit & Vegetables", Icon: "leaf", Color: "#4caf50", DefaultUnits: []string{"kg", "pcs"}, CustomOrder: 1},
	{Code: "fruit", Name: "Fruit", Parent: strPtr("produce"), DefaultUnits: []string{"kg", "pcs"}, CustomOrder: 1},
	{Code: "vegetables", Name: "Vegetables", Parent: strPtr("produce"), DefaultUnits: []string{"kg", "pcs"}, CustomOrder: 2},
	{Code: "dairy", Name: "Dairy & Eggs", Icon: "milk", Color: "#90caf9", DefaultUnits: []string{"l", "pcs"}, CustomOrder: 2},
	{Code: "bakery", Name: "Bakery", Icon: "bread", Color: "#ffb74d", DefaultUnits: []string{"pcs"}, CustomOrder: 3},
	{Code: "pantry", Name: "Pantry", Icon: "jar", Color: "#a1887f", DefaultUnits: []string{"pcs", "kg"}, CustomOrder: 4},
	{Code: "household", Name: "Household", Icon: "home", Color: "#b0bec5", DefaultUnits: []string{"pcs"}, CustomOrder: 5},
}

var seedProducts = []catalog.CreateProductDTO{
	{
		Barcode: "4000000000017", Name: "Bananas", Price: floatPtr(1.29), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "produce", Sub: "fruit"}, DefaultUnit: "kg",
		AvailableUnits: []string{"kg", "pcs"}, Tags: []string{"fruit", "organic"},
	},
	{
		Barcode: "4000000000024", Name: "Tomatoes", Price: floatPtr(2.49), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "produce", Sub: "vegetables"}, DefaultUnit: "kg",
		AvailableUnits: []string{"kg"}, Tags: []string{"vegetable"},
	},
	{
		Barcode: "4000000000031", Name: "Whole Milk 1L", Price: floatPtr(0.99), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "dairy"}, DefaultUnit: "l",
		AvailableUnits: []string{"l"}, Tags: []string{"milk"}, Allergens: []string{"lactose"},
	},
	{
		Barcode: "4000000000048", Name: "Free Range Eggs (10)", Price: floatPtr(2.99), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "dairy"}, DefaultUnit: "pcs",
		AvailableUnits: []string{"pcs"}, Tags: []string{"eggs"}, Allergens: []string{"egg"},
	},
	{
		Barcode: "4000000000055", Name: "Sourdough Bread", Price: floatPtr(3.50), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "bakery"}, DefaultUnit: "pcs",
		AvailableUnits: []string{"pcs"}, Tags: []string{"bread"}, Allergens: []string{"gluten"},
	},
	{
		Barcode: "4000000000062", Name: "Spaghetti 500g", Price: floatPtr(1.19), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "pantry"}, DefaultUnit: "pcs",
		AvailableUnits: []string{"pcs"}, Tags: []string{"pasta"}, Allergens: []string{"gluten"},
	},
	{
		Barcode: "4000000000079", Name: "Dish Soap", Price: floatPtr(2.19), Supermarket: "default",
		Category: catalog.ItemCategory{Main: "household"}, DefaultUnit: "pcs",
		AvailableUnits: []string{"pcs"}, Tags: []string{"cleaning"},
	},
}

var demoUsers = []auth.RegisterDTO{
	{Name: "Fadhil", Email: "fadhil@mail.com", Password: "password"},
	{Name: "Padil", Email: "padil@mail.com", Password: "password"},
}

func init() {
	seedCmd.Flags().BoolVar(&seedUsers, "users", false, "also create demo accounts (password: password)")
}
