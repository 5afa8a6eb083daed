package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/config"
	"github.com/jayansh1208/marketly/database"
	"github.com/jayansh1208/marketly/logger"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/repository"
	"github.com/jayansh1208/marketly/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     string
}

var users = []seedUser{
	{name: "Admin User", email: "admin@example.com", password: "admin123", role: models.RoleAdmin},
	{name: "John Doe", email: "user@example.com", password: "user123", role: models.RoleCustomer},
}

type seedProduct struct {
	name, description string
	price             float64
	category          models.Category
	stock             int
	image             string
	rating            float64
	reviews           int
}

var products = []seedProduct{
	{"Wireless Bluetooth Headphones", "Premium noise-cancelling wireless headphones with 30-hour battery life and superior sound quality.", 79.99, models.CategoryElectronics, 50, "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500", 4.5, 128},
	{"Smart Watch Pro", "Advanced fitness tracker with heart rate monitor, GPS, and waterproof design.", 199.99, models.CategoryElectronics, 30, "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500", 4.7, 95},
	{"Laptop Backpack", "Durable water-resistant backpack with padded laptop compartment and USB charging port.", 49.99, models.CategoryOther, 100, "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500", 4.3, 67},
	{"Wireless Gaming Mouse", "High-precision gaming mouse with customizable RGB lighting and programmable buttons.", 59.99, models.CategoryElectronics, 75, "https://images.unsplash.com/photo-1527814050087-3793815479db?w=500", 4.6, 142},
	{"Running Shoes", "Lightweight breathable running shoes with cushioned sole for maximum comfort.", 89.99, models.CategorySports, 60, "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500", 4.4, 89},
	{"Yoga Mat", "Non-slip eco-friendly yoga mat with carrying strap, perfect for all types of yoga.", 29.99, models.CategorySports, 120, "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500", 4.2, 54},
	{"Stainless Steel Water Bottle", "Insulated water bottle keeps drinks cold for 24 hours or hot for 12 hours.", 24.99, models.CategorySports, 150, "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=500", 4.8, 203},
	{"Coffee Maker", "Programmable coffee maker with thermal carafe and auto-brew feature.", 79.99, models.CategoryHomeKitchen, 45, "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=500", 4.6, 134},
	{"Cookbook: Healthy Meals", "Comprehensive cookbook with 200+ healthy and delicious recipes.", 24.99, models.CategoryBooks, 90, "https://images.unsplash.com/photo-1512820790803-83ca734da794?w=500", 4.7, 87},
	{"LED Desk Lamp", "Adjustable LED desk lamp with touch control and USB charging port.", 34.99, models.CategoryHomeKitchen, 65, "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?w=500", 4.4, 98},
}

func seedUsers(ctx context.Context, repo services.UserRepository, log *zap.Logger) error {
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), 10)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		err = repo.Create(ctx, &models.User{Name: u.name, Email: u.email, Password: string(hashed), Role: u.role})
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			log.Info("User already exists", zap.String("email", u.email))
			continue
		}
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		log.Info("User created", zap.String("email", u.email), zap.String("role", u.role))
	}
	return nil
}

func seedProducts(ctx context.Context, catalog *services.CatalogService, log *zap.Logger) error {
	existing, err := catalog.List(ctx, models.ProductFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("Catalog not empty, skipping products", zap.Int("count", len(existing)))
		return nil
	}
	for _, p := range products {
		price, stock := p.price, p.stock
		_, err := catalog.Create(ctx, models.ProductInput{
			Name:        p.name,
			Description: p.description,
			Price:       &price,
			Category:    p.category,
			Stock:       &stock,
			Images:      []string{p.image},
			Rating:      p.rating,
			NumReviews:  p.reviews,
		})
		if err != nil {
			return fmt.Errorf("create product %q: %w", p.name, err)
		}
	}
	log.Info("Products created", zap.Int("count", len(products)))
	return nil
}

func main() {
	reset := flag.Bool("reset", false, "drop users and products before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage != config.StorageMongo {
		fmt.Fprintln(os.Stderr, "seeding requires STORAGE=mongo")
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Encoding: "console", Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Close(context.Background())

	if *reset {
		for _, name := range []string{database.UserCollection, database.ProductCollection} {
			if err := db.DB.Collection(name).Drop(ctx); err != nil {
				log.Fatal("Failed to drop collection", zap.String("collection", name), zap.Error(err))
			}
		}
		log.Info("Cleared existing data")
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create indexes", zap.Error(err))
	}

	if err := seedUsers(ctx, repository.NewUserRepository(db.DB), log); err != nil {
		log.Fatal("Failed to seed users", zap.Error(err))
	}
	catalog := services.NewCatalogService(repository.NewProductRepository(db.DB), log)
	if err := seedProducts(ctx, catalog, log); err != nil {
		log.Fatal("Failed to seed products", zap.Error(err))
	}

	log.Info("Database seeded")
}
