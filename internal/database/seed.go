package database

import (
	"context"
	"fmt"
	"log"

	"sembako/internal/apperrors"
	"sembako/internal/models"
	"sembako/internal/repositories"
)

// SeedPassword is the password of every seeded user.
const SeedPassword = "password123"

// UserRegistrar hashes and stores a new user.
type UserRegistrar interface {
	RegisterUser(ctx context.Context, user *models.User) error
}

func seedUsers() []models.User {
	return []models.User{
		{Username: "testuser", Email: "testuser@example.com", Password: SeedPassword},
		{Username: "user2", Email: "user2@example.com", Password: SeedPassword},
	}
}

// SeedCatalog returns the initial product catalog.
func SeedCatalog() []models.Product {
	return []models.Product{
		{Name: "Beras", Description: "Beras kualitas premium 5kg", Price: models.NewMoney(75000), Stock: 100, Category: "Bahan Pokok"},
		{Name: "Minyak Goreng", Description: "Minyak goreng kemasan 2L", Price: models.NewMoney(30000), Stock: 50, Category: "Bahan Pokok"},
		{Name: "Gula Pasir", Description: "Gula pasir kemasan 1kg", Price: models.NewMoney(15000), Stock: 80, Category: "Bahan Pokok"},
		{Name: "Telur", Description: "Telur ayam segar 1kg", Price: models.NewMoney(25000), Stock: 60, Category: "Protein"},
		{Name: "Tepung Terigu", Description: "Tepung terigu kualitas baik 1kg", Price: models.NewMoney(12000), Stock: 40, Category: "Bahan Pokok"},
		{Name: "Mie Instant", Description: "Mie instant kemasan dus (40pcs)", Price: models.NewMoney(60000), Stock: 30, Category: "Makanan Instan"},
		{Name: "Kecap Manis", Description: "Kecap manis botol 600ml", Price: models.NewMoney(18000), Stock: 45, Category: "Bumbu Dapur"},
		{Name: "Garam", Description: "Garam dapur kemasan 500g", Price: models.NewMoney(8000), Stock: 70, Category: "Bumbu Dapur"},
	}
}

// Seed inserts the demo users and catalog. Users that already exist are
// skipped and the catalog is only seeded into an empty products table, so
// running it repeatedly is safe.
func Seed(ctx context.Context, repos repositories.Repositories, registrar UserRegistrar) error {
	for _, u := range seedUsers() {
		_, err := repos.Users.GetByUsername(ctx, u.Username)
		if err == nil {
			continue
		}
		if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return fmt.Errorf("failed to look up seed user %s: %w", u.Username, err)
		}
		user := u
		if err := registrar.RegisterUser(ctx, &user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		log.Printf("Seeded user: %s (ID: %d)", user.Username, user.ID)
	}

	count, err := repos.Products.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := SeedCatalog()
	for i := range products {
		if err := repos.Products.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		log.Printf("Seeded product: %s (ID: %d)", products[i].Name, products[i].ID)
	}
	return nil
}
